package expression

import "github.com/galedb/joinplan/sql"

// FieldReplacer decides whether to substitute a Field reference. It returns
// the replacement Symbol and true if it substituted, or false to leave the
// Field as-is. Apply visits every Field in a tree and calls this function;
// interior FunctionCall nodes are never themselves candidates for
// substitution.
//
// Two FieldReplacers commute under Apply only when their substitution
// domains (the set of Fields each one matches) are disjoint; the planner
// is careful to never compose conflicting ones.
type FieldReplacer func(f *sql.Field) (sql.Symbol, bool)

// Apply recursively rewrites sym, substituting every Field that replace
// matches. Structural identity is preserved outside substitutions: a
// subtree that contains no matching Field is returned unchanged (same
// pointer), so applying a replacer whose domain does not intersect a given
// tree is a no-op in both the structural and the pointer-identity sense.
func Apply(sym sql.Symbol, replace FieldReplacer) sql.Symbol {
	switch s := sym.(type) {
	case nil:
		return nil
	case *sql.Field:
		if repl, ok := replace(s); ok {
			return repl
		}
		return s
	case *sql.Literal:
		return s
	case *sql.FunctionCall:
		changed := false
		newArgs := make([]sql.Symbol, len(s.Args))
		for i, arg := range s.Args {
			newArgs[i] = Apply(arg, replace)
			if newArgs[i] != arg {
				changed = true
			}
		}
		if !changed {
			return s
		}
		return &sql.FunctionCall{Op: s.Op, Args: newArgs}
	default:
		// MatchAll and any other field-free leaf.
		return s
	}
}

// ApplyToAll runs Apply over every element of syms, returning a new slice.
func ApplyToAll(syms []sql.Symbol, replace FieldReplacer) []sql.Symbol {
	if syms == nil {
		return nil
	}
	out := make([]sql.Symbol, len(syms))
	for i, s := range syms {
		out[i] = Apply(s, replace)
	}
	return out
}

// ApplyToOrderBy rewrites every expression in ob, returning a new OrderBy
// slice that never aliases ob's backing array.
func ApplyToOrderBy(ob sql.OrderBy, replace FieldReplacer) sql.OrderBy {
	if ob == nil {
		return nil
	}
	out := make(sql.OrderBy, len(ob))
	for i, item := range ob {
		out[i] = sql.OrderByItem{
			Expr:       Apply(item.Expr, replace),
			Desc:       item.Desc,
			NullsFirst: item.NullsFirst,
		}
	}
	return out
}
