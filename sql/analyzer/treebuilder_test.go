package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galedb/joinplan/sql"
	"github.com/galedb/joinplan/sql/plan"
)

func baseRel(name sql.QN, outputs ...sql.Symbol) *plan.BaseRelation {
	return plan.NewBaseRelation(name, plan.NewQS(outputs))
}

func sources(rels ...*plan.BaseRelation) *plan.SourceMap {
	sm := plan.NewSourceMap()
	for _, r := range rels {
		sm.Put(r.Name(), r)
	}
	return sm
}

func innerPair(left, right sql.QN, cond sql.Symbol) *plan.JoinPair {
	return plan.NewJoinPair(left, right, sql.InnerJoin, cond)
}

// leftChild returns root.Left as a TwoTableJoin, failing the test if the
// left child is not a join node.
func leftChild(t *testing.T, root *plan.TwoTableJoin) *plan.TwoTableJoin {
	t.Helper()
	child, ok := root.Left.(*plan.TwoTableJoin)
	require.True(t, ok, "left child must be a TwoTableJoin")
	return child
}

func TestBuildTwoTableJoinTreePushesOnConditionsToEarliestPair(t *testing.T) {
	// SELECT * FROM t1 JOIN t2 ON t1.a=t2.b JOIN t3 ON t2.b=t3.c
	// ORDER BY t1.a, t2.b, t3.c
	t1a := sql.NewField("t1", "a")
	t2b := sql.NewField("t2", "b")
	t3c := sql.NewField("t3", "c")

	mss := plan.NewMultiSourceSelect(
		sources(baseRel("t1", t1a), baseRel("t2", t2b), baseRel("t3", t3c)),
		plan.NewQS([]sql.Symbol{t1a, t2b, t3c}),
	)
	mss.JoinPairs = []*plan.JoinPair{
		innerPair("t1", "t2", sql.Eq(t1a, t2b)),
		innerPair("t2", "t3", sql.Eq(t2b, t3c)),
	}
	mss.RemainingOrderBy = sql.OrderBy{{Expr: t1a}, {Expr: t2b}, {Expr: t3c}}

	root, err := BuildTwoTableJoinTree(mss)
	require.NoError(t, err)

	require.Equal(t, sql.QN("join.join.t1.t2.t3"), root.Name())

	inner := leftChild(t, root)
	require.Equal(t, sql.QN("join.t1.t2"), inner.Name())
	require.Equal(t, sql.Eq(t1a, t2b), inner.Pair.Condition)

	expectedRootCond := sql.Eq(sql.NewField("join.t1.t2", "t2", "b"), t3c)
	require.Equal(t, expectedRootCond, root.Pair.Condition)
}

func TestBuildTwoTableJoinTreeAttachesWhereFragmentToExactPair(t *testing.T) {
	// SELECT * FROM t1, t2, t3 WHERE t3.c = t2.b ORDER BY t3.c
	t2b := sql.NewField("t2", "b")
	t3c := sql.NewField("t3", "c")

	mss := plan.NewMultiSourceSelect(
		sources(baseRel("t1"), baseRel("t2", t2b), baseRel("t3", t3c)),
		plan.NewQS([]sql.Symbol{t2b, t3c}),
	)
	mss.QS.Where = sql.Eq(t3c, t2b)
	mss.RemainingOrderBy = sql.OrderBy{{Expr: t3c}}

	root, err := BuildTwoTableJoinTree(mss)
	require.NoError(t, err)

	inner := leftChild(t, root)
	require.Equal(t, sql.QN("t3"), inner.Left.Name(), "leaf order must begin with t3")
	leftBase, ok := inner.Left.(*plan.BaseRelation)
	require.True(t, ok)
	require.Equal(t, sql.QN("t3"), leftBase.Name())

	// find the t3/t2 pair wherever it folded in; its WHERE must carry the
	// predicate exactly once.
	var found int
	var walk func(qr plan.QueriedRelation)
	walk = func(qr plan.QueriedRelation) {
		join, ok := qr.(*plan.TwoTableJoin)
		if !ok {
			return
		}
		if eq, ok := join.QS.Where.(*sql.FunctionCall); ok && eq.Op == "=" {
			found++
		}
		walk(join.Left)
		walk(join.Right)
	}
	walk(root)
	require.Equal(t, 1, found, "the t3.c = t2.b predicate must attach exactly once in the tree")
}

func TestBuildTwoTableJoinTreeHonorsOrderByPrefixOverPushdown(t *testing.T) {
	// SELECT * FROM t1 JOIN t2 ON t1.a=t2.b JOIN t3 ON t2.b=t3.c
	// ORDER BY t3.c, t1.a, t2.b
	t1a := sql.NewField("t1", "a")
	t2b := sql.NewField("t2", "b")
	t3c := sql.NewField("t3", "c")

	mss := plan.NewMultiSourceSelect(
		sources(baseRel("t1", t1a), baseRel("t2", t2b), baseRel("t3", t3c)),
		plan.NewQS([]sql.Symbol{t1a, t2b, t3c}),
	)
	mss.JoinPairs = []*plan.JoinPair{
		innerPair("t1", "t2", sql.Eq(t1a, t2b)),
		innerPair("t2", "t3", sql.Eq(t2b, t3c)),
	}
	mss.RemainingOrderBy = sql.OrderBy{{Expr: t3c}, {Expr: t1a}, {Expr: t2b}}

	root, err := BuildTwoTableJoinTree(mss)
	require.NoError(t, err)

	inner := leftChild(t, root)
	require.Equal(t, sql.QN("join.t3.t1"), inner.Name())
	require.True(t, sql.IsMatchAll(inner.Pair.Condition), "t3/t1 share no direct predicate")

	expected := sql.And(
		sql.Eq(sql.NewField("join.t3.t1", "t1", "a"), t2b),
		sql.Eq(t2b, sql.NewField("join.t3.t1", "t3", "c")),
	)
	require.Equal(t, expected, root.Pair.Condition)
}

func TestBuildTwoTableJoinTreeCopiesOrderByRatherThanAliasingIt(t *testing.T) {
	// SELECT * FROM t1, t2 WHERE t1.x=1 OR t2.y=1 ORDER BY t1.x + t1.x
	//
	// t1's own per-relation ordering (pushed down by the upstream analyzer,
	// out of scope here) and the join's carried ORDER BY describe the same
	// expression but must never share a backing slice.
	t1x := sql.NewField("t1", "x")
	t2y := sql.NewField("t2", "y")
	orderExpr := sql.NewFunctionCall("+", t1x, t1x)

	left := baseRel("t1", t1x)
	left.QS.OrderBy = sql.OrderBy{{Expr: orderExpr}}

	mss := plan.NewMultiSourceSelect(
		sources(left, baseRel("t2", t2y)),
		plan.NewQS([]sql.Symbol{t1x, t2y}),
	)
	mss.QS.Where = sql.NewFunctionCall("OR", sql.Eq(t1x, sql.NewLiteral(1)), sql.Eq(t2y, sql.NewLiteral(1)))
	mss.RemainingOrderBy = sql.OrderBy{{Expr: orderExpr}}

	root, err := BuildTwoTableJoinTree(mss)
	require.NoError(t, err)

	require.Equal(t, sql.OrderBy{{Expr: orderExpr}}, root.QS.OrderBy)
	require.Equal(t, sql.OrderBy{{Expr: orderExpr}}, root.Left.Spec().OrderBy)
	require.False(t, &root.QS.OrderBy[0] == &left.QS.OrderBy[0], "root's ORDER BY must not alias the leaf's own slice")
}

func TestBuildTwoTableJoinTreeClearsOrderByOnOuterJoinNullableSide(t *testing.T) {
	// SELECT * FROM t1 LEFT JOIN t2 ON t1.a=t2.b ORDER BY t2.b
	t1a := sql.NewField("t1", "a")
	t2b := sql.NewField("t2", "b")

	right := baseRel("t2", t2b)
	right.QS.OrderBy = sql.OrderBy{{Expr: t2b}}

	mss := plan.NewMultiSourceSelect(
		sources(baseRel("t1", t1a), right),
		plan.NewQS([]sql.Symbol{t1a, t2b}),
	)
	mss.JoinPairs = []*plan.JoinPair{
		plan.NewJoinPair("t1", "t2", sql.LeftJoin, sql.Eq(t1a, t2b)),
	}
	mss.RemainingOrderBy = sql.OrderBy{{Expr: t2b}}

	root, err := BuildTwoTableJoinTree(mss)
	require.NoError(t, err)

	require.Nil(t, root.Right.Spec().OrderBy)
	require.Equal(t, sql.OrderBy{{Expr: t2b}}, root.QS.OrderBy)
}

func TestClearLimitsBelowLastFilterDropsLimitBelowALaterFilter(t *testing.T) {
	// Three fold steps: the first carries a pushed-down LIMIT with no filter
	// of its own, the second introduces a real filter, and the third (the
	// root) carries its own LIMIT. A filter anywhere below a node can still
	// change which rows reach it, so a LIMIT computed before that filter is
	// no longer trustworthy and must be dropped; the root's own LIMIT, with
	// no filter after it, survives untouched.
	t1a := sql.NewField("t1", "a")
	t2b := sql.NewField("t2", "b")
	t3c := sql.NewField("t3", "c")

	step1 := plan.NewTwoTableJoin(
		&plan.QS{Outputs: []sql.Symbol{t1a}, Where: sql.MatchAll, Limit: sql.NewLiteral(10)},
		baseRel("t1", t1a), baseRel("t2", t2b),
		innerPair("t1", "t2", sql.Eq(t1a, t2b)), nil,
	)
	step2 := plan.NewTwoTableJoin(
		&plan.QS{Outputs: []sql.Symbol{t3c}, Where: sql.Eq(t3c, sql.NewLiteral(1))},
		step1, baseRel("t3", t3c),
		innerPair(step1.Name(), "t3", nil), nil,
	)
	step3 := plan.NewTwoTableJoin(
		&plan.QS{Where: sql.MatchAll, Limit: sql.NewLiteral(5)},
		step2, baseRel("t4"),
		innerPair(step2.Name(), "t4", nil), nil,
	)

	clearLimitsBelowLastFilter([]*plan.TwoTableJoin{step1, step2, step3})

	require.Nil(t, step1.QS.Limit, "a LIMIT below a later filter must be dropped")
	require.Equal(t, sql.NewLiteral(5), step3.QS.Limit, "the root's own LIMIT has no filter after it and must survive")
}

func TestClearLimitsBelowLastFilterKeepsLimitsWhenNoFilterFollows(t *testing.T) {
	t1a := sql.NewField("t1", "a")
	t2b := sql.NewField("t2", "b")

	step1 := plan.NewTwoTableJoin(
		&plan.QS{Outputs: []sql.Symbol{t1a}, Where: sql.MatchAll, Limit: sql.NewLiteral(10)},
		baseRel("t1", t1a), baseRel("t2", t2b),
		innerPair("t1", "t2", sql.Eq(t1a, t2b)), nil,
	)

	clearLimitsBelowLastFilter([]*plan.TwoTableJoin{step1})

	require.Equal(t, sql.NewLiteral(10), step1.QS.Limit)
}

func TestBuildTwoTableJoinTreeRejectsFewerThanTwoSources(t *testing.T) {
	mss := plan.NewMultiSourceSelect(sources(baseRel("t1")), plan.NewQS(nil))

	_, err := BuildTwoTableJoinTree(mss)

	require.Error(t, err)
}
