package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galedb/joinplan/sql"
	"github.com/galedb/joinplan/sql/plan"
)

func crossJoin(a, b sql.QN) *plan.JoinPair {
	return plan.NewJoinPair(a, b, sql.CrossJoin, nil)
}

func leftJoin(a, b sql.QN) *plan.JoinPair {
	return plan.NewJoinPair(a, b, sql.LeftJoin, nil)
}

func TestOrderByJoinConditionsFallsBackToJoinPairsWhenNoPreSort(t *testing.T) {
	got := OrderByJoinConditions(
		[]sql.QN{"t1", "t2", "t3"},
		nil, nil,
		[]*plan.JoinPair{crossJoin("t1", "t2"), crossJoin("t2", "t3")},
		nil,
	)

	require.Equal(t, []sql.QN{"t1", "t2", "t3"}, got)
}

func TestOrderByJoinConditionsHonorsPreSortWhenNoJoinPredicates(t *testing.T) {
	got := OrderByJoinConditions(
		[]sql.QN{"t1", "t2", "t3"},
		nil, nil,
		nil,
		[]sql.QN{"t2"},
	)

	require.Equal(t, []sql.QN{"t2", "t1", "t3"}, got)
}

func TestOrderByJoinConditionsOuterJoinVetoesReordering(t *testing.T) {
	got := OrderByJoinConditions(
		[]sql.QN{"t1", "t2", "t3"},
		nil, nil,
		[]*plan.JoinPair{leftJoin("t1", "t2"), leftJoin("t2", "t3")},
		[]sql.QN{"t3", "t2"},
	)

	require.Equal(t, []sql.QN{"t1", "t2", "t3"}, got)
}

func TestOrderByJoinConditionsPreSortCoveringEverythingIsReturnedUnchanged(t *testing.T) {
	got := OrderByJoinConditions(
		[]sql.QN{"t1", "t2"},
		nil, nil,
		[]*plan.JoinPair{crossJoin("t1", "t2")},
		[]sql.QN{"t1", "t2"},
	)

	require.Equal(t, []sql.QN{"t1", "t2"}, got)
}

func TestOrderByJoinConditionsFindsFullPushdownOrder(t *testing.T) {
	// t1-t2 and t2-t3 are joined; starting the search from t3 should still
	// discover the t3,t2,t1 (or t1,t2,t3-shaped) linear chain that pushes
	// down every predicate.
	got := OrderByJoinConditions(
		[]sql.QN{"t1", "t2", "t3"},
		[]*sql.RelationSet{sql.NewRelationSet("t1", "t2"), sql.NewRelationSet("t2", "t3")},
		nil,
		[]*plan.JoinPair{plan.NewJoinPair("t1", "t2", sql.InnerJoin, nil), plan.NewJoinPair("t2", "t3", sql.InnerJoin, nil)},
		[]sql.QN{"t3"},
	)

	require.Equal(t, []sql.QN{"t3", "t2", "t1"}, got)
}

func TestOrderByJoinConditionsWideJoinUsesGreedyFallback(t *testing.T) {
	relations := []sql.QN{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9"}
	var pairs []*plan.JoinPair
	for i := 0; i < len(relations)-1; i++ {
		pairs = append(pairs, plan.NewJoinPair(relations[i], relations[i+1], sql.InnerJoin, nil))
	}

	got := OrderByJoinConditions(relations, nil, nil, pairs, []sql.QN{"t1"})

	require.Equal(t, relations, got)
}
