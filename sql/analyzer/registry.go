package analyzer

import (
	"github.com/galedb/joinplan/sql"
	"github.com/galedb/joinplan/sql/expression"
	"github.com/galedb/joinplan/sql/plan"
)

// ofRelations finds the first pair in pairs whose endpoints are {a, b}.
// When exact is false a pair joining them in the opposite direction also
// matches.
func ofRelations(a, b sql.QN, pairs []*plan.JoinPair, exact bool) (*plan.JoinPair, bool) {
	for _, p := range pairs {
		if p.Connects(a, b, exact) {
			return p, true
		}
	}
	return nil, false
}

// ofRelationsWithMergedConditions is ofRelations, but when more than one
// pair connects {a, b} their conditions are AND-combined into a single
// synthetic pair description; when remove is true the matched pairs are
// removed from the returned slice.
func ofRelationsWithMergedConditions(a, b sql.QN, pairs []*plan.JoinPair, remove bool) (*plan.JoinPair, []*plan.JoinPair, bool) {
	var matched []*plan.JoinPair
	var rest []*plan.JoinPair
	for _, p := range pairs {
		if p.Connects(a, b, false) {
			matched = append(matched, p)
		} else {
			rest = append(rest, p)
		}
	}
	if len(matched) == 0 {
		return nil, pairs, false
	}

	merged := &plan.JoinPair{Left: matched[0].Left, Right: matched[0].Right, Kind: matched[0].Kind}
	var cond sql.Symbol = sql.MatchAll
	for _, m := range matched {
		cond = sql.And(cond, m.Condition)
		if m.Kind.IsOuter() {
			merged.Kind = m.Kind
		}
	}
	if !sql.IsMatchAll(cond) {
		merged.Condition = cond
	}

	if remove {
		return merged, rest, true
	}
	return merged, pairs, true
}

// outerJoinRelations is the set of every relation appearing on either side
// of a non-inner, non-cross pair. Reordering across these relations is
// forbidden.
func outerJoinRelations(pairs []*plan.JoinPair) *sql.RelationSet {
	out := sql.NewRelationSet()
	for _, p := range pairs {
		if p.Kind.IsOuter() {
			out.Add(p.Left)
			out.Add(p.Right)
		}
	}
	return out
}

// removeOrderByOnOuterRelation clears any ORDER BY on the nullable side of
// an outer join: nulls are introduced by the join itself, after the child
// has already been sorted, so an ordering computed inside the nullable
// child is meaningless and must be reapplied above the join instead.
func removeOrderByOnOuterRelation(pair *plan.JoinPair, leftQS, rightQS *plan.QS) {
	switch pair.Kind {
	case sql.LeftJoin:
		rightQS.OrderBy = nil
	case sql.RightJoin:
		leftQS.OrderBy = nil
	case sql.FullJoin:
		leftQS.OrderBy = nil
		rightQS.OrderBy = nil
	}
}

// rewriteNames applies replace to pair's condition and, when either
// endpoint has been absorbed into the synthetic relation newName, retargets
// that endpoint too.
func rewriteNames(oldLeft, oldRight, newName sql.QN, replace expression.FieldReplacer, pairs []*plan.JoinPair) []*plan.JoinPair {
	out := make([]*plan.JoinPair, len(pairs))
	for i, p := range pairs {
		np := &plan.JoinPair{Left: p.Left, Right: p.Right, Kind: p.Kind, Condition: expression.Apply(p.Condition, replace)}
		if np.Left == oldLeft || np.Left == oldRight {
			np.Left = newName
		}
		if np.Right == oldLeft || np.Right == oldRight {
			np.Right = newName
		}
		out[i] = np
	}
	return out
}
