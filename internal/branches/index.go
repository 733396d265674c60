package branches

import (
	"bytes"
	"iter"
	"slices"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/go-git/go-git/v5/plumbing"
)

// Index groups branches by the commit they point at.
//
// Groups are iterated in ascending commit id order and each group keeps the
// order in which its branches were given to New. Every stored group is
// non-empty. Apart from Remove, an Index is never modified after it is built:
// the relationship queries (Dependents, OnPath, Protected) return new indexes.
type Index struct {
	groups *treemap.Map
}

func compareHash(a, b any) int {
	ha := a.(plumbing.Hash)
	hb := b.(plumbing.Hash)
	return bytes.Compare(ha[:], hb[:])
}

func newIndex() *Index {
	return &Index{groups: treemap.NewWith(compareHash)}
}

// New builds an index from the given branches.
func New(branches iter.Seq[Branch]) *Index {
	idx := newIndex()
	for b := range branches {
		var group []Branch
		if v, ok := idx.groups.Get(b.ID); ok {
			group = v.([]Branch)
		}
		idx.groups.Put(b.ID, append(group, b))
	}
	return idx
}

// FromSlice builds an index from a slice of branches.
func FromSlice(branches []Branch) *Index {
	return New(slices.Values(branches))
}

// Contains returns true if any branch points at the given commit.
func (idx *Index) Contains(id plumbing.Hash) bool {
	_, ok := idx.groups.Get(id)
	return ok
}

// Get returns the branches that point at the given commit.
// The returned slice is a copy and may be modified by the caller.
func (idx *Index) Get(id plumbing.Hash) ([]Branch, bool) {
	v, ok := idx.groups.Get(id)
	if !ok {
		return nil, false
	}
	return slices.Clone(mustGroup(id, v)), true
}

// Remove evicts the group at the given commit and returns it.
func (idx *Index) Remove(id plumbing.Hash) ([]Branch, bool) {
	v, ok := idx.groups.Get(id)
	if !ok {
		return nil, false
	}
	idx.groups.Remove(id)
	return mustGroup(id, v), true
}

// IDs yields the commit ids of the index in ascending order.
func (idx *Index) IDs() iter.Seq[plumbing.Hash] {
	return func(yield func(plumbing.Hash) bool) {
		it := idx.groups.Iterator()
		for it.Next() {
			if !yield(it.Key().(plumbing.Hash)) {
				return
			}
		}
	}
}

// All yields every (commit id, branches) group in ascending commit id order.
func (idx *Index) All() iter.Seq2[plumbing.Hash, []Branch] {
	return func(yield func(plumbing.Hash, []Branch) bool) {
		it := idx.groups.Iterator()
		for it.Next() {
			id := it.Key().(plumbing.Hash)
			if !yield(id, slices.Clone(mustGroup(id, it.Value()))) {
				return
			}
		}
	}
}

// Branches returns every branch of the index, grouped by ascending commit id.
func (idx *Index) Branches() []Branch {
	var ret []Branch
	for _, group := range idx.All() {
		ret = append(ret, group...)
	}
	return ret
}

func (idx *Index) IsEmpty() bool {
	return idx.groups.Empty()
}

// Len returns the number of distinct commits in the index.
func (idx *Index) Len() int {
	return idx.groups.Size()
}

// Clone returns an independent copy of the index.
func (idx *Index) Clone() *Index {
	return idx.filter(func(_ plumbing.Hash, group []Branch) []Branch {
		return group
	})
}

// filter builds a new index from the groups of idx. keep returns the branches
// of a group that survive; a group with no surviving branches is dropped.
func (idx *Index) filter(keep func(id plumbing.Hash, group []Branch) []Branch) *Index {
	ret := newIndex()
	it := idx.groups.Iterator()
	for it.Next() {
		id := it.Key().(plumbing.Hash)
		kept := keep(id, mustGroup(id, it.Value()))
		if len(kept) == 0 {
			continue
		}
		ret.groups.Put(id, slices.Clone(kept))
	}
	return ret
}

func mustGroup(id plumbing.Hash, v any) []Branch {
	group, ok := v.([]Branch)
	if !ok || len(group) == 0 {
		panic("invariant error: empty branch group stored for commit " + id.String())
	}
	return group
}
