package sql

import "sort"

// RelationSet is an insertion-ordered set of relation names. Iteration order
// matches insertion order so that visitors built on top of it (the
// relation-name collector in particular) stay deterministic.
type RelationSet struct {
	order []QN
	index map[QN]int
}

// NewRelationSet builds a RelationSet containing names, in order,
// deduplicated.
func NewRelationSet(names ...QN) *RelationSet {
	s := &RelationSet{index: make(map[QN]int, len(names))}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts q if not already present.
func (s *RelationSet) Add(q QN) {
	if _, ok := s.index[q]; ok {
		return
	}
	s.index[q] = len(s.order)
	s.order = append(s.order, q)
}

// Contains reports whether q is a member.
func (s *RelationSet) Contains(q QN) bool {
	_, ok := s.index[q]
	return ok
}

// Len returns the number of members.
func (s *RelationSet) Len() int {
	return len(s.order)
}

// Slice returns the members in insertion order. The caller must not mutate
// the result.
func (s *RelationSet) Slice() []QN {
	return s.order
}

// Union returns a new set containing the members of both s and other, s's
// members first.
func (s *RelationSet) Union(other *RelationSet) *RelationSet {
	out := NewRelationSet(s.Slice()...)
	if other != nil {
		for _, q := range other.Slice() {
			out.Add(q)
		}
	}
	return out
}

// IsSubsetOf reports whether every member of s is also a member of other.
// The empty set is a subset of everything, including the empty set.
func (s *RelationSet) IsSubsetOf(other *RelationSet) bool {
	if other == nil {
		return s.Len() == 0
	}
	for _, q := range s.order {
		if !other.Contains(q) {
			return false
		}
	}
	return true
}

// Equals reports whether s and other contain exactly the same members,
// irrespective of order.
func (s *RelationSet) Equals(other *RelationSet) bool {
	if other == nil {
		return s.Len() == 0
	}
	if s.Len() != other.Len() {
		return false
	}
	return s.IsSubsetOf(other)
}

// Key returns a canonical string representation of the set, suitable for use
// as a map key when the map is keyed by set-of-relations (as the predicate
// splitter's dispatch map is). Two sets with the same members, regardless of
// insertion order, produce the same Key.
func (s *RelationSet) Key() string {
	sorted := append([]QN(nil), s.order...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	var b []byte
	for i, q := range sorted {
		if i > 0 {
			b = append(b, 0x1f) // unit separator: never appears in a QN
		}
		b = append(b, []byte(q)...)
	}
	return string(b)
}
