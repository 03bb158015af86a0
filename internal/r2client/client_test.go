package r2client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory objectAPI.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{ETag: aws.String(`"etag-` + aws.ToString(in.Key) + `"`)}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
		ETag: aws.String(`"etag-` + aws.ToString(in.Key) + `"`),
	}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound"}
	}
	return &s3.HeadObjectOutput{
		ETag:          aws.String(`"etag-` + aws.ToString(in.Key) + `"`),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func TestNew_RequiresConfig(t *testing.T) {
	t.Parallel()
	_, err := New(context.Background(), Config{Endpoint: "https://example.com"})
	assert.Error(t, err)
}

func TestUploadDownloadHead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := &Client{api: newFakeS3(), bucket: "bucket"}

	etag, err := c.Upload(ctx, "snap.zst", strings.NewReader("payload"), ContentType)
	require.NoError(t, err)
	assert.Equal(t, "etag-snap.zst", etag, "quotes are trimmed")

	info, err := c.HeadObject(ctx, "snap.zst")
	require.NoError(t, err)
	assert.Equal(t, ObjectInfo{ETag: "etag-snap.zst", Size: 7}, info)

	body, etag, err := c.Download(ctx, "snap.zst")
	require.NoError(t, err)
	defer func() { _ = body.Close() }()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, "etag-snap.zst", etag)
}

func TestMissingObject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := &Client{api: newFakeS3(), bucket: "bucket"}

	_, _, err := c.Download(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.HeadObject(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadError(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	fake.putErr = errors.New("network down")
	c := &Client{api: fake, bucket: "bucket"}

	_, err := c.Upload(context.Background(), "k", strings.NewReader("x"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "404"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("boom")))
}

func TestCompressDecompress(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	srcPath := filepath.Join(tmpDir, "source.db")
	compressedPath := filepath.Join(tmpDir, "compressed.zst")
	decompressedPath := filepath.Join(tmpDir, "restored.db")

	testData := strings.Repeat("visitor snapshot payload ", 1000)
	require.NoError(t, os.WriteFile(srcPath, []byte(testData), 0o644))

	require.NoError(t, CompressFile(srcPath, compressedPath))

	srcInfo, err := os.Stat(srcPath)
	require.NoError(t, err)
	compressedInfo, err := os.Stat(compressedPath)
	require.NoError(t, err)
	assert.Less(t, compressedInfo.Size(), srcInfo.Size())

	compressed, err := os.Open(compressedPath)
	require.NoError(t, err)
	defer func() { _ = compressed.Close() }()

	require.NoError(t, DecompressStream(compressed, decompressedPath))

	got, err := os.ReadFile(decompressedPath)
	require.NoError(t, err)
	assert.Equal(t, testData, string(got))
}

func TestDecompressStream_InvalidDataLeavesNoFile(t *testing.T) {
	t.Parallel()
	dst := filepath.Join(t.TempDir(), "restored.db")

	err := DecompressStream(strings.NewReader("definitely not zstd"), dst)
	require.Error(t, err)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files are cleaned up")
}

func TestCompressFile_MissingSource(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	err := CompressFile(filepath.Join(dir, "nope"), filepath.Join(dir, "out.zst"))
	assert.Error(t, err)
}
