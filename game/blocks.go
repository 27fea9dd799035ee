package game

import (
	"cmp"
	"slices"
)

// BlockSet is a set of surviving block coordinates.
type BlockSet map[Block]struct{}

// NewBlockSet builds a set from a reported block list. Duplicates collapse.
func NewBlockSet(blocks []Block) BlockSet {
	bs := make(BlockSet, len(blocks))
	for _, b := range blocks {
		bs[b] = struct{}{}
	}
	return bs
}

// Has reports whether b survives.
func (bs BlockSet) Has(b Block) bool {
	_, ok := bs[b]
	return ok
}

// Union adds every block of blocks to bs.
func (bs BlockSet) Union(blocks []Block) {
	for _, b := range blocks {
		bs[b] = struct{}{}
	}
}

// Intersect removes from bs every block that is not in other.
func (bs BlockSet) Intersect(other BlockSet) {
	for b := range bs {
		if !other.Has(b) {
			delete(bs, b)
		}
	}
}

// Sorted returns the blocks ordered by x then y.
func (bs BlockSet) Sorted() []Block {
	out := make([]Block, 0, len(bs))
	for b := range bs {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Block) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Y, b.Y)
	})
	return out
}
