package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galedb/joinplan/sql"
	"github.com/galedb/joinplan/sql/plan"
)

type stubContext struct {
	plannerCtx    PlannerContext
	rewriter      FetchRewriter
	validationErr error
	fetchMode     sql.FetchMode
}

func (c *stubContext) PlannerContext() PlannerContext      { return c.plannerCtx }
func (c *stubContext) SetFetchMode(mode sql.FetchMode)     { c.fetchMode = mode }
func (c *stubContext) ValidationError(err error)           { c.validationErr = err }
func (c *stubContext) FetchRewriter() FetchRewriter        { return c.rewriter }

type stubPlannerContext struct {
	plannedRoot plan.QueriedRelation
}

func (c *stubPlannerContext) Plan(root plan.QueriedRelation) (*Result, error) {
	c.plannedRoot = root
	return &Result{Root: root}, nil
}

type stubRewriter struct {
	rewritten plan.QueriedRelation
	ok        bool
}

func (r *stubRewriter) Rewrite(root plan.QueriedRelation) (plan.QueriedRelation, bool) {
	return r.rewritten, r.ok
}

func twoSourceMSS(t *testing.T) *plan.MultiSourceSelect {
	t.Helper()
	t1a := sql.NewField("t1", "a")
	t2b := sql.NewField("t2", "b")
	return plan.NewMultiSourceSelect(
		sources(baseRel("t1", t1a), baseRel("t2", t2b)),
		plan.NewQS([]sql.Symbol{t1a, t2b}),
	)
}

func TestPlanRejectsGroupByOnMultiSourceSelect(t *testing.T) {
	mss := twoSourceMSS(t)
	mss.GroupBy = []sql.Symbol{sql.NewField("t1", "a")}
	ctx := &stubContext{plannerCtx: &stubPlannerContext{}}

	result, err := Plan(mss, ctx)

	require.NoError(t, err)
	require.Nil(t, result)
	require.True(t, sql.ErrGroupByUnsupported.Is(ctx.validationErr))
}

func TestPlanRejectsAggregateInOutputs(t *testing.T) {
	mss := twoSourceMSS(t)
	mss.QS.Outputs = []sql.Symbol{sql.NewFunctionCall("COUNT", sql.NewLiteral(1))}
	ctx := &stubContext{plannerCtx: &stubPlannerContext{}}

	result, err := Plan(mss, ctx)

	require.NoError(t, err)
	require.Nil(t, result)
	require.True(t, sql.ErrAggregateUnsupported.Is(ctx.validationErr))
}

func TestPlanBuildsTreeAndHandsItToPlannerContext(t *testing.T) {
	mss := twoSourceMSS(t)
	pc := &stubPlannerContext{}
	ctx := &stubContext{plannerCtx: pc}

	result, err := Plan(mss, ctx)

	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, sql.QN("join.t1.t2"), result.Root.Name())
	require.Same(t, result.Root, pc.plannedRoot)
	require.False(t, result.HasFetchPhase)
}

func TestPlanAppliesFetchRewriteWhenOffered(t *testing.T) {
	mss := twoSourceMSS(t)
	lightRoot := baseRel("join.t1.t2")
	ctx := &stubContext{
		plannerCtx: &stubPlannerContext{},
		rewriter:   &stubRewriter{rewritten: lightRoot, ok: true},
	}

	result, err := Plan(mss, ctx)

	require.NoError(t, err)
	require.True(t, result.HasFetchPhase)
	require.Same(t, plan.QueriedRelation(lightRoot), result.FetchRoot)
	require.Equal(t, sql.FetchModeNever, ctx.fetchMode)
}

func TestPlanRecoversInternalInvariantPanic(t *testing.T) {
	// Plan must never let an internal invariant violation escape as a bare
	// panic; verify the recover wrapper turns one into a returned error by
	// panicking from inside a PlannerContext, a collaborator hook Plan
	// invokes after building the tree.
	mss := twoSourceMSS(t)
	ctx := &stubContext{plannerCtx: panicOnPlan{}}

	result, err := Plan(mss, ctx)

	require.Nil(t, result)
	require.True(t, sql.ErrFieldUnresolved.Is(err))
}

type panicOnPlan struct{}

func (panicOnPlan) Plan(root plan.QueriedRelation) (*Result, error) {
	panic(sql.ErrFieldUnresolved.New("t1[x]", "join.t1.t2"))
}
