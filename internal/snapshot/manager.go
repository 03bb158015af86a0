// Package snapshot backs up the visitor database to object storage and
// restores it on a fresh host.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/garyellow/itdept-site/internal/logger"
	"github.com/garyellow/itdept-site/internal/metrics"
	"github.com/garyellow/itdept-site/internal/r2client"
)

// ObjectStore is the object storage used for snapshots.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	HeadObject(ctx context.Context, key string) (r2client.ObjectInfo, error)
}

// Source produces a consistent copy of the live database.
type Source interface {
	SnapshotTo(ctx context.Context, dest string) error
}

// Config holds snapshot manager configuration.
type Config struct {
	SnapshotKey string // e.g. "snapshots/visitors.db.zst"
	TempDir     string // scratch space for the uncompressed copy
}

// Manager uploads and restores database snapshots.
type Manager struct {
	store   ObjectStore
	config  Config
	log     *logger.Logger
	metrics *metrics.Metrics

	// uploadMu keeps a scheduled upload and the shutdown upload from
	// overlapping on the same temp files.
	uploadMu sync.Mutex

	mu       sync.RWMutex
	lastETag string
}

// New creates a new snapshot manager. m may be nil.
func New(store ObjectStore, cfg Config, log *logger.Logger, m *metrics.Metrics) *Manager {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if log == nil {
		log = logger.New("info")
	}
	return &Manager{
		store:   store,
		config:  cfg,
		log:     log.WithModule("snapshot"),
		metrics: m,
	}
}

// Upload compresses a consistent copy of src and uploads it.
// It returns the ETag of the new object.
func (m *Manager) Upload(ctx context.Context, src Source) (etag string, err error) {
	m.uploadMu.Lock()
	defer m.uploadMu.Unlock()

	start := time.Now()
	defer func() { m.record("upload", err, start) }()

	snapshotPath := filepath.Join(m.config.TempDir, fmt.Sprintf("snapshot_%d.db", time.Now().UnixNano()))
	if err := src.SnapshotTo(ctx, snapshotPath); err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer func() { _ = os.Remove(snapshotPath) }()

	compressedPath := snapshotPath + ".zst"
	if err := r2client.CompressFile(snapshotPath, compressedPath); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}
	defer func() { _ = os.Remove(compressedPath) }()

	f, err := os.Open(compressedPath)
	if err != nil {
		return "", fmt.Errorf("open compressed snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	etag, err = m.store.Upload(ctx, m.config.SnapshotKey, f, r2client.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	m.mu.Lock()
	m.lastETag = etag
	m.mu.Unlock()

	m.log.WithField("etag", etag).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("Snapshot uploaded")
	return etag, nil
}

// Restore downloads the latest snapshot into destPath when no database
// exists there yet. It reports whether a snapshot was restored. A missing
// remote snapshot is not an error.
func (m *Manager) Restore(ctx context.Context, destPath string) (restored bool, err error) {
	start := time.Now()

	if _, statErr := os.Stat(destPath); statErr == nil {
		m.log.WithField("path", destPath).Info("Local database present, skipping snapshot restore")
		m.recordSkipped("restore", start)
		return false, nil
	}

	defer func() {
		if restored || err != nil {
			m.record("restore", err, start)
		}
	}()

	body, etag, err := m.store.Download(ctx, m.config.SnapshotKey)
	if err != nil {
		if errors.Is(err, r2client.ErrNotFound) {
			m.log.Info("No remote snapshot found, starting with an empty database")
			m.recordSkipped("restore", start)
			return false, nil
		}
		return false, fmt.Errorf("download snapshot: %w", err)
	}
	defer func() { _ = body.Close() }()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return false, fmt.Errorf("create data dir: %w", err)
	}
	if err := r2client.DecompressStream(body, destPath); err != nil {
		return false, fmt.Errorf("decompress snapshot: %w", err)
	}

	m.mu.Lock()
	m.lastETag = etag
	m.mu.Unlock()

	m.log.WithField("etag", etag).WithField("path", destPath).Info("Snapshot restored")
	return true, nil
}

// LastETag returns the ETag of the last uploaded or restored snapshot.
func (m *Manager) LastETag() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastETag
}

func (m *Manager) record(operation string, err error, start time.Time) {
	if m.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.metrics.RecordSnapshot(operation, status, time.Since(start).Seconds())
}

func (m *Manager) recordSkipped(operation string, start time.Time) {
	if m.metrics != nil {
		m.metrics.RecordSnapshot(operation, "skipped", time.Since(start).Seconds())
	}
}
