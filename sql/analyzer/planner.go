package analyzer

import (
	"github.com/galedb/joinplan/sql"
	"github.com/galedb/joinplan/sql/expression"
	"github.com/galedb/joinplan/sql/plan"
)

// PlannerContext turns a finished QueriedRelation into whatever downstream
// physical planning represents a runnable plan as. The core never inspects
// the result; it only hands its tree to this collaborator.
type PlannerContext interface {
	Plan(root plan.QueriedRelation) (*Result, error)
}

// FetchRewriter is an optional pluggable collaborator: given the join tree
// the core produced, it may offer a replacement root with a lighter
// top-level projection, turning a single plan into a two-phase "query then
// fetch" structure. Returning ok == false leaves the tree untouched.
type FetchRewriter interface {
	Rewrite(root plan.QueriedRelation) (rewritten plan.QueriedRelation, ok bool)
}

// ConsumerContext is the collaborator contract a caller of Plan supplies: a
// PlannerContext able to turn a queried relation into a Plan, a FetchMode
// the core may set to FetchModeNever once it has produced a self-sufficient
// plan, and a sink for validation errors.
type ConsumerContext interface {
	PlannerContext() PlannerContext
	SetFetchMode(mode sql.FetchMode)
	ValidationError(err error)
	FetchRewriter() FetchRewriter
}

// Result is the outcome of a successful planning pass: the root of the
// two-table join tree, optionally paired with a fetch-rewritten root when a
// FetchRewriter produced a lighter query-then-fetch projection.
type Result struct {
	Root          plan.QueriedRelation
	FetchRoot     plan.QueriedRelation
	HasFetchPhase bool
}

// Plan validates mss, builds its join tree, and hands the result to ctx's
// PlannerContext. Unsupported shapes are reported through
// ctx.ValidationError and this returns (nil, nil) — a validation failure
// is a normal outcome, not a Go error return. An internal invariant
// violation raised by the tree builder (a Field that cannot be resolved
// against its synthetic join) is recovered here and surfaced as a Go error,
// since it can never legitimately occur on well-formed input and must not
// escape as a bare panic.
func Plan(mss *plan.MultiSourceSelect, ctx ConsumerContext) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ierr, ok := r.(error); ok {
				err = ierr
				return
			}
			panic(r)
		}
	}()

	if len(mss.GroupBy) > 0 {
		ctx.ValidationError(sql.ErrGroupByUnsupported.New())
		return nil, nil
	}
	for _, out := range mss.QS.Outputs {
		if expression.HasAggregate(out) {
			ctx.ValidationError(sql.ErrAggregateUnsupported.New())
			return nil, nil
		}
	}

	root, err := BuildTwoTableJoinTree(mss)
	if err != nil {
		return nil, err
	}

	var queriedRoot plan.QueriedRelation = root
	p := &Result{Root: queriedRoot}

	if rewriter := ctx.FetchRewriter(); rewriter != nil {
		if fetchRoot, ok := rewriter.Rewrite(queriedRoot); ok {
			p.FetchRoot = fetchRoot
			p.HasFetchPhase = true
			ctx.SetFetchMode(sql.FetchModeNever)
		}
	}

	if pc := ctx.PlannerContext(); pc != nil {
		if _, err := pc.Plan(queriedRoot); err != nil {
			return nil, err
		}
	}

	return p, nil
}
