// Package carousel implements the wrap-around read pointer of the news
// carousel.
package carousel

import "errors"

// ErrEmpty is returned when a carousel is created over zero items.
var ErrEmpty = errors.New("carousel: no items")

// Index is a position within n items. The zero value is not usable; build
// one with New. Index is a value type and every method returns a new Index.
type Index struct {
	pos int
	n   int
}

// New returns an index positioned at the first of n items.
func New(n int) (Index, error) {
	if n <= 0 {
		return Index{}, ErrEmpty
	}
	return Index{n: n}, nil
}

// Next moves forward one item, wrapping from the last to the first.
func (i Index) Next() Index {
	return i.At(i.pos + 1)
}

// Prev moves back one item, wrapping from the first to the last.
func (i Index) Prev() Index {
	return i.At(i.pos - 1)
}

// At returns the index positioned at p mod n. Any integer is accepted,
// which makes it safe for values read back from storage.
func (i Index) At(p int) Index {
	if i.n == 0 {
		return i
	}
	p %= i.n
	if p < 0 {
		p += i.n
	}
	return Index{pos: p, n: i.n}
}

// Pos returns the current position in [0, Len()).
func (i Index) Pos() int { return i.pos }

// Len returns the number of items.
func (i Index) Len() int { return i.n }
