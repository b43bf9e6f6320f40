package expression

import "github.com/galedb/joinplan/sql"

// CollectFields walks sym depth-first and returns every Field reached,
// including duplicates, in encounter order. Used by the tree builder to
// decide which Fields of an about-to-be-absorbed relation must survive as
// outputs of the join node that absorbs it.
func CollectFields(sym sql.Symbol) []*sql.Field {
	var out []*sql.Field
	collectFields(sym, &out)
	return out
}

func collectFields(sym sql.Symbol, out *[]*sql.Field) {
	switch s := sym.(type) {
	case nil:
		return
	case *sql.Field:
		*out = append(*out, s)
	case *sql.Literal:
		return
	case *sql.FunctionCall:
		for _, arg := range s.Args {
			collectFields(arg, out)
		}
	default:
		return
	}
}
