package plan

import "github.com/galedb/joinplan/sql"

// JoinPair is the abstract description of a direct join between two
// relations: direction, kind, and an optional predicate. The pair is
// directional; Left/Right matter for outer kinds (LEFT/RIGHT preserve
// unmatched rows from one specific side).
type JoinPair struct {
	Left      sql.QN
	Right     sql.QN
	Kind      sql.JoinKind
	Condition sql.Symbol
}

// NewJoinPair builds a JoinPair.
func NewJoinPair(left, right sql.QN, kind sql.JoinKind, condition sql.Symbol) *JoinPair {
	return &JoinPair{Left: left, Right: right, Kind: kind, Condition: condition}
}

// Connects reports whether p directly joins a and b. When exact is false a
// pair is also a match if it joins them in the opposite direction (Right,
// Left); outer pairs care about direction, so exact callers should pass
// true whenever Left/Right order matters to them.
func (p *JoinPair) Connects(a, b sql.QN, exact bool) bool {
	if p.Left == a && p.Right == b {
		return true
	}
	if !exact {
		return p.Left == b && p.Right == a
	}
	return false
}

// Endpoints returns the pair's two relation names as a two-element slice,
// Left then Right.
func (p *JoinPair) Endpoints() []sql.QN {
	return []sql.QN{p.Left, p.Right}
}
