package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	idx, err := New(3)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Pos())
	assert.Equal(t, 3, idx.Len())

	for _, n := range []int{0, -1} {
		_, err := New(n)
		assert.ErrorIs(t, err, ErrEmpty, "n=%d", n)
	}
}

func TestNextPrevWrap(t *testing.T) {
	t.Parallel()
	idx, err := New(3)
	require.NoError(t, err)

	assert.Equal(t, 1, idx.Next().Pos())
	assert.Equal(t, 0, idx.Next().Next().Next().Pos())
	assert.Equal(t, 2, idx.Prev().Pos())
	assert.Equal(t, 1, idx.Prev().Prev().Pos())
}

func TestSingleItem(t *testing.T) {
	t.Parallel()
	idx, err := New(1)
	require.NoError(t, err)

	assert.Equal(t, 0, idx.Next().Pos())
	assert.Equal(t, 0, idx.Prev().Pos())
}

func TestStepsAreModular(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 5; n++ {
		base, err := New(n)
		require.NoError(t, err)

		for start := range n {
			for steps := 1; steps <= 2*n+1; steps++ {
				fwd, back := base.At(start), base.At(start)
				for range steps {
					fwd = fwd.Next()
					back = back.Prev()
				}
				assert.Equal(t, (start+steps)%n, fwd.Pos(), "n=%d start=%d next x%d", n, start, steps)
				assert.Equal(t, ((start-steps)%n+n)%n, back.Pos(), "n=%d start=%d prev x%d", n, start, steps)
			}
		}
	}
}

func TestPrevUndoesNext(t *testing.T) {
	t.Parallel()
	base, err := New(4)
	require.NoError(t, err)

	for p := range 4 {
		i := base.At(p)
		assert.Equal(t, i, i.Next().Prev())
		assert.Equal(t, i, i.Prev().Next())
	}
}

func TestAtNormalizes(t *testing.T) {
	t.Parallel()
	idx, err := New(3)
	require.NoError(t, err)

	tests := []struct {
		in, want int
	}{
		{0, 0}, {2, 2}, {3, 0}, {7, 1}, {-1, 2}, {-3, 0}, {-7, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, idx.At(tt.in).Pos(), "At(%d)", tt.in)
	}
}

func TestValueSemantics(t *testing.T) {
	t.Parallel()
	idx, err := New(3)
	require.NoError(t, err)

	_ = idx.Next()
	assert.Equal(t, 0, idx.Pos(), "Next must not mutate the receiver")
}

func TestZeroValueIsInert(t *testing.T) {
	t.Parallel()
	var idx Index
	assert.Equal(t, 0, idx.Next().Pos())
	assert.Equal(t, 0, idx.Prev().Len())
}
