package plan

import "github.com/galedb/joinplan/sql"

// SourceMap is an insertion-ordered map from relation name to its
// QueriedRelation, preserving the original FROM-clause order.
type SourceMap struct {
	order []sql.QN
	byKey map[sql.QN]QueriedRelation
}

// NewSourceMap builds an empty SourceMap.
func NewSourceMap() *SourceMap {
	return &SourceMap{byKey: make(map[sql.QN]QueriedRelation)}
}

// Put inserts or overwrites the relation named name, preserving its
// original insertion position on overwrite.
func (m *SourceMap) Put(name sql.QN, rel QueriedRelation) {
	if _, ok := m.byKey[name]; !ok {
		m.order = append(m.order, name)
	}
	m.byKey[name] = rel
}

// Get looks up the relation named name.
func (m *SourceMap) Get(name sql.QN) (QueriedRelation, bool) {
	rel, ok := m.byKey[name]
	return rel, ok
}

// Names returns the relation names in insertion order.
func (m *SourceMap) Names() []sql.QN {
	return m.order
}

// Len returns the number of sources.
func (m *SourceMap) Len() int {
	return len(m.order)
}
