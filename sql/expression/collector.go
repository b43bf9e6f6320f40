// Package expression implements the symbol-tree visitors used throughout
// the planner: the relation-name collector and the field replacer. Both
// are plain depth-first walks over sql.Symbol, dispatched by tagged-union
// match with a default recursion for interior (FunctionCall) nodes.
package expression

import "github.com/galedb/joinplan/sql"

// CollectRelations walks sym depth-first and returns the set of relation
// names reached through any Field, in the order they are first
// encountered. Deterministic, side-effect free; reused by the predicate
// splitter and by every QS.Subset call.
func CollectRelations(sym sql.Symbol) *sql.RelationSet {
	out := sql.NewRelationSet()
	collect(sym, out)
	return out
}

func collect(sym sql.Symbol, out *sql.RelationSet) {
	switch s := sym.(type) {
	case nil:
		return
	case *sql.Field:
		out.Add(s.Owner)
	case *sql.Literal:
		return
	case *sql.FunctionCall:
		for _, arg := range s.Args {
			collect(arg, out)
		}
	default:
		// MatchAll and any other side-effect-free leaf.
		return
	}
}

// HasAggregate reports whether sym contains a call to an aggregate
// function anywhere in its tree.
func HasAggregate(sym sql.Symbol) bool {
	switch s := sym.(type) {
	case nil:
		return false
	case *sql.FunctionCall:
		if sql.IsAggregate(s) {
			return true
		}
		for _, arg := range s.Args {
			if HasAggregate(arg) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
