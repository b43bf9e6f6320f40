package sql

import "strings"

// QN is a qualified relation name: a dotted identifier naming either a base
// table ("db.users") or a synthetic relation produced by joining two others
// ("join.db.users.db.orders"). Equality is structural, so a QN is safe to
// use directly as a map key.
type QN string

// NewQN joins parts into a dotted relation name.
func NewQN(parts ...string) QN {
	return QN(strings.Join(parts, "."))
}

// JoinName derives the synthetic name for the relation produced by joining
// left and right, in that order. The derivation is order-sensitive so that
// "join.t1.t2" and a hypothetical "join.t2.t1" never collide.
func JoinName(left, right QN) QN {
	return QN("join." + string(left) + "." + string(right))
}

func (q QN) String() string {
	return string(q)
}

// Empty reports whether q is the zero QN.
func (q QN) Empty() bool {
	return q == ""
}
