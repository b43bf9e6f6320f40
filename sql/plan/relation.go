package plan

import "github.com/galedb/joinplan/sql"

// QueriedRelation is a relation together with the QS that filters,
// projects, and orders it — either a base table or a TwoTableJoin.
type QueriedRelation interface {
	Name() sql.QN
	Spec() *QS
}

// BaseRelation is a leaf of the join tree: a source named directly in the
// original multi-source select.
type BaseRelation struct {
	RelName sql.QN
	QS      *QS
}

// NewBaseRelation builds a BaseRelation.
func NewBaseRelation(name sql.QN, qs *QS) *BaseRelation {
	return &BaseRelation{RelName: name, QS: qs}
}

func (b *BaseRelation) Name() sql.QN { return b.RelName }
func (b *BaseRelation) Spec() *QS    { return b.QS }

// TwoTableJoin is a binary join node: itself a QueriedRelation, so the tree
// builder can fold it into the left side of the next join.
type TwoTableJoin struct {
	QS               *QS
	Left             QueriedRelation
	Right            QueriedRelation
	RemainingOrderBy sql.OrderBy
	Pair             *JoinPair
	RelName          sql.QN
}

// NewTwoTableJoin builds a TwoTableJoin whose synthetic name is derived
// from its two children's names, so upstream field references can be
// re-anchored onto it uniquely.
func NewTwoTableJoin(qs *QS, left, right QueriedRelation, pair *JoinPair, remainingOrderBy sql.OrderBy) *TwoTableJoin {
	return &TwoTableJoin{
		QS:               qs,
		Left:             left,
		Right:            right,
		Pair:             pair,
		RemainingOrderBy: remainingOrderBy,
		RelName:          sql.JoinName(left.Name(), right.Name()),
	}
}

func (j *TwoTableJoin) Name() sql.QN { return j.RelName }
func (j *TwoTableJoin) Spec() *QS    { return j.QS }
