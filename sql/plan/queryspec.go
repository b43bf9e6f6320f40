// Package plan holds the data model a join plan is built from and built
// into: query specs, queried relations, join pairs, and the two-table join
// tree itself. It depends on sql and sql/expression; nothing in
// sql/analyzer is visible from here, keeping the data model free of the
// search/build algorithms that operate on it.
package plan

import (
	"github.com/galedb/joinplan/sql"
	"github.com/galedb/joinplan/sql/expression"
)

// QS ("query spec") is the projection, filter, ordering and limit attached
// to a queried relation.
type QS struct {
	Outputs []sql.Symbol
	Where   sql.Symbol
	OrderBy sql.OrderBy
	Limit   sql.Symbol
}

// NewQS builds a QS with no filter, ordering, or limit.
func NewQS(outputs []sql.Symbol) *QS {
	return &QS{Outputs: outputs, Where: sql.MatchAll}
}

// Clone makes a QS whose slices are independent of q's (but whose Symbol
// leaves are shared, since Symbols are themselves immutable).
func (q *QS) Clone() *QS {
	if q == nil {
		return nil
	}
	return &QS{
		Outputs: append([]sql.Symbol(nil), q.Outputs...),
		Where:   q.Where,
		OrderBy: q.OrderBy.Clone(),
		Limit:   q.Limit,
	}
}

// Subset returns a new QS keeping only the outputs and ORDER BY terms whose
// referenced relations satisfy keep. WHERE is kept only if it too satisfies
// keep; otherwise it resets to MatchAll (the caller is responsible for
// re-attaching whatever fragment of the original WHERE belongs at this
// node). When isIntermediate is true this is not the user-facing terminal
// node of the tree, so any LIMIT is cleared — a LIMIT may only survive on
// the node whose output is observed directly; a later pass over the whole
// tree also clears the LIMIT of every join node below the last node that
// carries a row-filtering WHERE.
func (q *QS) Subset(keep func(*sql.RelationSet) bool, isIntermediate bool) *QS {
	out := &QS{Where: sql.MatchAll}
	for _, o := range q.Outputs {
		if keep(expression.CollectRelations(o)) {
			out.Outputs = append(out.Outputs, o)
		}
	}
	for _, ob := range q.OrderBy {
		if keep(expression.CollectRelations(ob.Expr)) {
			out.OrderBy = append(out.OrderBy, ob)
		}
	}
	if q.Where != nil && keep(expression.CollectRelations(q.Where)) {
		out.Where = q.Where
	}
	if !isIntermediate {
		out.Limit = q.Limit
	}
	return out
}

// CopyAndReplace applies a FieldReplacer to every Symbol held by q,
// returning a new QS. Independent calls never alias q's slices.
func (q *QS) CopyAndReplace(replace expression.FieldReplacer) *QS {
	return &QS{
		Outputs: expression.ApplyToAll(q.Outputs, replace),
		Where:   expression.Apply(q.Where, replace),
		OrderBy: expression.ApplyToOrderBy(q.OrderBy, replace),
		Limit:   expression.Apply(q.Limit, replace),
	}
}

// HasOutput reports whether sym is already present among q's Outputs: the
// same Symbol pointer, or, for a Field, any output Field with the same Owner
// and column path. Non-Field Symbols are compared by reference only.
func (q *QS) HasOutput(sym sql.Symbol) bool {
	for _, o := range q.Outputs {
		if o == sym {
			return true
		}
		if f1, ok := o.(*sql.Field); ok {
			if f2, ok := sym.(*sql.Field); ok && f1.Owner == f2.Owner && f1.Column() == f2.Column() {
				return true
			}
		}
	}
	return false
}

// AddOutput appends sym to q.Outputs if it is not already present.
func (q *QS) AddOutput(sym sql.Symbol) {
	if !q.HasOutput(sym) {
		q.Outputs = append(q.Outputs, sym)
	}
}
