package analyzer

import (
	"github.com/galedb/joinplan/sql"
	"github.com/galedb/joinplan/sql/expression"
)

// dispatchEntry is one row of a split-query / dispatch map: the set of
// relations a predicate fragment reaches, paired with the fragment itself.
type dispatchEntry struct {
	relations *sql.RelationSet
	cond      sql.Symbol
}

// dispatchMap maps a set of relations to the predicate fragment that
// reaches exactly those relations, keyed by sql.RelationSet.Key() so that
// two fragments whose relation sets have the same members (regardless of
// discovery order) land in the same bucket and get AND-combined.
type dispatchMap struct {
	order []string
	byKey map[string]*dispatchEntry
}

func newDispatchMap() *dispatchMap {
	return &dispatchMap{byKey: make(map[string]*dispatchEntry)}
}

// insert adds cond under relations' key, AND-combining with whatever is
// already there.
func (d *dispatchMap) insert(relations *sql.RelationSet, cond sql.Symbol) {
	key := relations.Key()
	if e, ok := d.byKey[key]; ok {
		e.cond = sql.And(e.cond, cond)
		return
	}
	d.byKey[key] = &dispatchEntry{relations: relations, cond: cond}
	d.order = append(d.order, key)
}

func (d *dispatchMap) remove(key string) {
	delete(d.byKey, key)
	for i, k := range d.order {
		if k == key {
			d.order = append(d.order[:i:i], d.order[i+1:]...)
			return
		}
	}
}

// popExact removes and returns the fragment keyed by exactly relations, if
// any.
func (d *dispatchMap) popExact(relations *sql.RelationSet) (sql.Symbol, bool) {
	key := relations.Key()
	e, ok := d.byKey[key]
	if !ok {
		return nil, false
	}
	d.remove(key)
	return e.cond, true
}

// popSubsetsOf removes and returns, in insertion order, every fragment
// whose relation set is a subset of target.
func (d *dispatchMap) popSubsetsOf(target *sql.RelationSet) []sql.Symbol {
	var out []sql.Symbol
	var keys []string
	for _, k := range d.order {
		e := d.byKey[k]
		if e.relations.IsSubsetOf(target) {
			out = append(out, e.cond)
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		d.remove(k)
	}
	return out
}

// referencing returns, without removing, the fragments whose relation set
// contains a or b as a member — used to decide which intermediate outputs
// must survive to a future join.
func (d *dispatchMap) referencing(a, b sql.QN) []*dispatchEntry {
	var out []*dispatchEntry
	for _, k := range d.order {
		e := d.byKey[k]
		if e.relations.Contains(a) || e.relations.Contains(b) {
			out = append(out, e)
		}
	}
	return out
}

// relationSets returns every fragment's relation set, in insertion order.
func (d *dispatchMap) relationSets() []*sql.RelationSet {
	out := make([]*sql.RelationSet, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.byKey[k].relations)
	}
	return out
}

// remaining returns every fragment's condition, in insertion order,
// without removing them.
func (d *dispatchMap) remaining() []sql.Symbol {
	out := make([]sql.Symbol, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.byKey[k].cond)
	}
	return out
}

func (d *dispatchMap) isEmpty() bool {
	return len(d.order) == 0
}

// applyReplacer rewrites every fragment's relation set and condition with
// replace, re-keying entries whose relation sets collapse into each other
// as a result; the merge policy on collision is AND-combine, same as
// insert.
func (d *dispatchMap) applyReplacer(replace expression.FieldReplacer, retarget func(*sql.RelationSet) *sql.RelationSet) {
	old := d.order
	oldByKey := d.byKey
	d.order = nil
	d.byKey = make(map[string]*dispatchEntry)
	for _, k := range old {
		e := oldByKey[k]
		newRelations := retarget(e.relations)
		newCond := expression.Apply(e.cond, replace)
		d.insert(newRelations, newCond)
	}
}

// splitPredicate splits sym on top-level AND into a dispatchMap keyed by
// each fragment's referenced-relation set. A disjunction spanning multiple
// relations is never decomposed; it becomes a single fragment keyed by the
// union of its referents.
func splitPredicate(sym sql.Symbol) *dispatchMap {
	d := newDispatchMap()
	for _, leaf := range splitTopLevelAnd(sym) {
		d.insert(expression.CollectRelations(leaf), leaf)
	}
	return d
}

func splitTopLevelAnd(sym sql.Symbol) []sql.Symbol {
	if sql.IsMatchAll(sym) {
		return nil
	}
	if left, right, ok := sql.IsAnd(sym); ok {
		return append(splitTopLevelAnd(left), splitTopLevelAnd(right)...)
	}
	return []sql.Symbol{sym}
}
