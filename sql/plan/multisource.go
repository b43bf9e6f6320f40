package plan

import "github.com/galedb/joinplan/sql"

// MultiSourceSelect is the planner's input: an analyzed SELECT over two or
// more relations, not yet organized into a join tree.
type MultiSourceSelect struct {
	Sources          *SourceMap
	JoinPairs        []*JoinPair
	QS               *QS
	RemainingOrderBy sql.OrderBy

	// GroupBy, when non-empty, triggers the "GROUP BY on JOINS is not
	// supported" validation error. The join planner never attempts to push
	// grouping through a join.
	GroupBy []sql.Symbol
}

// NewMultiSourceSelect builds a MultiSourceSelect with no join pairs,
// group-by, or remaining order.
func NewMultiSourceSelect(sources *SourceMap, qs *QS) *MultiSourceSelect {
	return &MultiSourceSelect{Sources: sources, QS: qs}
}
