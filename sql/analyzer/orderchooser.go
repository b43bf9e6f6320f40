package analyzer

import (
	"io"

	"github.com/galedb/joinplan/sql"
	"github.com/galedb/joinplan/sql/plan"
)

// MaxExhaustiveOrderWidth caps the relation count the order chooser will
// enumerate permutations for before falling back to a greedy
// nearest-neighbor order.
const MaxExhaustiveOrderWidth = 8

// OrderByJoinConditions produces the permutation of relations that
// maximizes the number of adjacent, directly-evaluable join predicates,
// honoring an ORDER BY prefix. Only the permutation search (policy 4) checks
// outer joins: it rejects candidates that alter the relative order of
// outer-join relations; policies 1-3 return their order without that check.
// Exported for direct testing.
func OrderByJoinConditions(
	relations []sql.QN,
	explicitKeys []*sql.RelationSet,
	implicitKeys []*sql.RelationSet,
	joinPairs []*plan.JoinPair,
	preSorted []sql.QN,
) []sql.QN {
	n := len(relations)

	// Policy 1: preSorted already covers every relation.
	if len(preSorted) == n && sameMembers(preSorted, relations) {
		return append([]sql.QN(nil), preSorted...)
	}

	hasJoinPredicates := len(explicitKeys) > 0 || len(implicitKeys) > 0 || len(joinPairs) > 0

	// Policy 2: nothing to push down, or too few relations to matter.
	if n <= 2 || !hasJoinPredicates {
		return appendMissing(preSorted, relations)
	}

	// Policy 3: no presort prefix — build directly from the key sets.
	if len(preSorted) == 0 {
		order := appendFromKeys(nil, explicitKeys)
		order = appendFromKeys(order, implicitKeys)
		return appendMissing(order, relations)
	}

	// Policy 4: search (or, above the width cap, greedily construct) a
	// permutation honoring the presort prefix.
	outer := outerJoinRelations(joinPairs)
	if n > MaxExhaustiveOrderWidth {
		return greedyOrder(relations, preSorted, explicitKeys, implicitKeys, joinPairs, outer)
	}
	return searchOrder(relations, preSorted, explicitKeys, implicitKeys, joinPairs, outer)
}

func sameMembers(a, b []sql.QN) bool {
	return sql.NewRelationSet(a...).Equals(sql.NewRelationSet(b...))
}

// missingFrom returns the members of all not present in prefix, preserving
// all's original order.
func missingFrom(prefix, all []sql.QN) []sql.QN {
	seen := sql.NewRelationSet(prefix...)
	var out []sql.QN
	for _, q := range all {
		if !seen.Contains(q) {
			out = append(out, q)
		}
	}
	return out
}

// appendMissing returns prefix followed by every member of all not already
// in prefix, in all's original order.
func appendMissing(prefix, all []sql.QN) []sql.QN {
	out := append([]sql.QN(nil), prefix...)
	return append(out, missingFrom(prefix, all)...)
}

// appendFromKeys appends every relation named by any key set, in key-set
// order and then in each set's own insertion order, skipping relations
// already present.
func appendFromKeys(order []sql.QN, keys []*sql.RelationSet) []sql.QN {
	seen := sql.NewRelationSet(order...)
	for _, k := range keys {
		for _, q := range k.Slice() {
			if !seen.Contains(q) {
				seen.Add(q)
				order = append(order, q)
			}
		}
	}
	return order
}

func directPair(a, b sql.QN, joinPairs []*plan.JoinPair) bool {
	for _, p := range joinPairs {
		if p.Connects(a, b, false) {
			return true
		}
	}
	return false
}

func inAnyKeySet(a, b sql.QN, keys []*sql.RelationSet) bool {
	for _, k := range keys {
		if k.Len() == 2 && k.Contains(a) && k.Contains(b) {
			return true
		}
	}
	return false
}

// outerOrderPreserved reports whether, restricted to the relations in
// outer, candidate visits them in the same relative order as original:
// the relative order of relations participating in an outer join is never
// altered.
func outerOrderPreserved(candidate []sql.QN, outer *sql.RelationSet, original []sql.QN) bool {
	var candFiltered, origFiltered []sql.QN
	for _, q := range candidate {
		if outer.Contains(q) {
			candFiltered = append(candFiltered, q)
		}
	}
	for _, q := range original {
		if outer.Contains(q) {
			origFiltered = append(origFiltered, q)
		}
	}
	if len(candFiltered) != len(origFiltered) {
		return false
	}
	for i := range candFiltered {
		if candFiltered[i] != origFiltered[i] {
			return false
		}
	}
	return true
}

// scoreAdjacency counts the adjacent pairs in perm that are directly
// joinable, and reports whether perm is valid at all: an adjacency between
// two outer-join relations with no direct JoinPair connecting them
// invalidates the whole permutation.
func scoreAdjacency(perm []sql.QN, explicitKeys, implicitKeys []*sql.RelationSet, joinPairs []*plan.JoinPair, outer *sql.RelationSet) (score int, valid bool) {
	for i := 0; i < len(perm)-1; i++ {
		a, b := perm[i], perm[i+1]
		direct := directPair(a, b, joinPairs)
		if outer.Contains(a) && outer.Contains(b) && !direct {
			return 0, false
		}
		if direct || inAnyKeySet(a, b, explicitKeys) || inAnyKeySet(a, b, implicitKeys) {
			score++
		}
	}
	return score, true
}

// searchOrder enumerates permutations of the relations not already fixed
// by preSorted, scoring each candidate full order, and returns the best.
func searchOrder(relations, preSorted []sql.QN, explicitKeys, implicitKeys []*sql.RelationSet, joinPairs []*plan.JoinPair, outer *sql.RelationSet) []sql.QN {
	remaining := missingFrom(preSorted, relations)
	if len(remaining) == 0 {
		return append([]sql.QN(nil), preSorted...)
	}

	n := len(relations)
	var best []sql.QN
	bestScore := -1

	qp := newQuickPerm(remaining)
	for {
		perm, err := qp.Next()
		if err == io.EOF {
			break
		}
		candidate := append(append([]sql.QN(nil), preSorted...), perm...)
		if !outerOrderPreserved(candidate, outer, relations) {
			continue
		}
		score, valid := scoreAdjacency(candidate, explicitKeys, implicitKeys, joinPairs, outer)
		if !valid {
			continue
		}
		if score == n-1 {
			return candidate
		}
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	if best != nil {
		return best
	}
	return append([]sql.QN(nil), relations...)
}

// greedyOrder builds an order one relation at a time, always picking the
// candidate that maximizes joinable adjacency with the relation placed so
// far. Used above MaxExhaustiveOrderWidth, where exhaustive permutation
// search is too expensive.
func greedyOrder(relations, preSorted []sql.QN, explicitKeys, implicitKeys []*sql.RelationSet, joinPairs []*plan.JoinPair, outer *sql.RelationSet) []sql.QN {
	order := append([]sql.QN(nil), preSorted...)
	remaining := missingFrom(preSorted, relations)

	for len(remaining) > 0 {
		bestIdx := -1
		bestScore := -1
		for i, cand := range remaining {
			if len(order) > 0 {
				last := order[len(order)-1]
				if outer.Contains(last) && outer.Contains(cand) && !directPair(last, cand, joinPairs) {
					continue
				}
			}
			s := 0
			if len(order) > 0 {
				last := order[len(order)-1]
				if directPair(last, cand, joinPairs) || inAnyKeySet(last, cand, explicitKeys) || inAnyKeySet(last, cand, implicitKeys) {
					s = 1
				}
			}
			if s > bestScore {
				bestScore = s
				bestIdx = i
			}
		}
		if bestIdx == -1 {
			// Every remaining candidate would violate the outer-adjacency
			// rule against the current tail; place the rest in their
			// original relative order, so the result keeps that one
			// violating adjacency.
			order = append(order, remaining...)
			break
		}
		order = append(order, remaining[bestIdx])
		remaining = append(remaining[:bestIdx:bestIdx], remaining[bestIdx+1:]...)
	}
	return order
}
