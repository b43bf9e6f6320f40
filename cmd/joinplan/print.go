package main

import (
	"fmt"
	"strings"

	"github.com/galedb/joinplan/sql"
	"github.com/galedb/joinplan/sql/plan"
)

// renderTree prints root as an indented tree of relation names, pair
// conditions, and per-node QS, enough to see exactly how a fold trace
// shaped the plan without needing a full plan-printer.
func renderTree(root plan.QueriedRelation) string {
	var b strings.Builder
	writeNode(&b, root, 0)
	return b.String()
}

func writeNode(b *strings.Builder, rel plan.QueriedRelation, depth int) {
	indent := strings.Repeat("  ", depth)
	switch r := rel.(type) {
	case *plan.TwoTableJoin:
		fmt.Fprintf(b, "%s%s (%s)\n", indent, r.Name(), r.Pair.Kind)
		if r.Pair.Condition != nil {
			fmt.Fprintf(b, "%s  on: %s\n", indent, symbolString(r.Pair.Condition))
		}
		writeQS(b, r.QS, depth+1)
		writeNode(b, r.Left, depth+1)
		writeNode(b, r.Right, depth+1)
	case *plan.BaseRelation:
		fmt.Fprintf(b, "%s%s\n", indent, r.Name())
		writeQS(b, r.QS, depth+1)
	default:
		fmt.Fprintf(b, "%s%s\n", indent, rel.Name())
	}
}

func writeQS(b *strings.Builder, qs *plan.QS, depth int) {
	indent := strings.Repeat("  ", depth)
	if qs.Where != nil && !sql.IsMatchAll(qs.Where) {
		fmt.Fprintf(b, "%swhere: %s\n", indent, symbolString(qs.Where))
	}
	if len(qs.OrderBy) > 0 {
		parts := make([]string, len(qs.OrderBy))
		for i, item := range qs.OrderBy {
			parts[i] = symbolString(item.Expr)
		}
		fmt.Fprintf(b, "%sorder by: %s\n", indent, strings.Join(parts, ", "))
	}
}

func symbolString(sym sql.Symbol) string {
	switch s := sym.(type) {
	case nil:
		return "<nil>"
	case *sql.Field:
		return s.String()
	case *sql.Literal:
		return fmt.Sprintf("%v", s.Value)
	case *sql.FunctionCall:
		parts := make([]string, len(s.Args))
		for i, a := range s.Args {
			parts[i] = symbolString(a)
		}
		return "(" + strings.Join(parts, " "+s.Op+" ") + ")"
	default:
		return fmt.Sprintf("%v", sym)
	}
}
