package analyzer

import (
	"github.com/galedb/joinplan/sql"
	"github.com/galedb/joinplan/sql/expression"
	"github.com/galedb/joinplan/sql/plan"
)

// BuildTwoTableJoinTree folds mss's sources into a left-deep tree of
// two-table joins, distributing predicates to the earliest pair of
// relations at which they become evaluable and rewriting symbol references
// so every pair's outputs stay addressable from above. mss must have at
// least two sources.
func BuildTwoTableJoinTree(mss *plan.MultiSourceSelect) (*plan.TwoTableJoin, error) {
	names := mss.Sources.Names()
	if len(names) < 2 {
		return nil, sql.ErrUnsupportedShape.New(len(names))
	}
	if len(names) == 2 {
		return twoTableJoin(mss)
	}

	// Preparation.
	splitQuery := splitPredicate(mss.QS.Where)
	mss.QS.Where = sql.MatchAll

	joinConditionsMap := newDispatchMap()
	for _, pair := range mss.JoinPairs {
		for _, leaf := range splitTopLevelAnd(pair.Condition) {
			joinConditionsMap.insert(expression.CollectRelations(leaf), leaf)
		}
	}

	order := OrderByJoinConditions(
		names,
		joinConditionsMap.relationSets(),
		splitQuery.relationSets(),
		mss.JoinPairs,
		presortPrefix(mss.RemainingOrderBy, names),
	)
	traceOrder(names, order)

	return fold(mss, order, splitQuery, joinConditionsMap)
}

// presortPrefix returns the sequence of relations first referenced by ob's
// symbols, in order. The chosen permutation must begin with this prefix.
func presortPrefix(ob sql.OrderBy, names []sql.QN) []sql.QN {
	nameSet := sql.NewRelationSet(names...)
	seen := sql.NewRelationSet()
	var prefix []sql.QN
	for _, item := range ob {
		for _, q := range expression.CollectRelations(item.Expr).Slice() {
			if nameSet.Contains(q) && !seen.Contains(q) {
				seen.Add(q)
				prefix = append(prefix, q)
			}
		}
	}
	return prefix
}

func orderByRelations(ob sql.OrderBy) *sql.RelationSet {
	out := sql.NewRelationSet()
	for _, item := range ob {
		out = out.Union(expression.CollectRelations(item.Expr))
	}
	return out
}

// fold walks the chosen relation order, building one TwoTableJoin per step
// and rewriting everything still outstanding (the split WHERE, the
// join-conditions dispatch map, the remaining join pairs, the carried
// ORDER BY, and the root QS) to address the new synthetic relation instead
// of the two it just absorbed.
func fold(mss *plan.MultiSourceSelect, order []sql.QN, splitQuery, joinConditionsMap *dispatchMap) (*plan.TwoTableJoin, error) {
	leftName := order[0]
	leftRelation, ok := mss.Sources.Get(leftName)
	if !ok {
		return nil, sql.ErrUnsupportedShape.New(len(order))
	}

	currentSet := sql.NewRelationSet(leftName)
	joinPairs := append([]*plan.JoinPair(nil), mss.JoinPairs...)
	remainingOrderBy := mss.RemainingOrderBy
	rootQS := mss.QS

	twoTableJoinList := make([]*plan.TwoTableJoin, 0, len(order)-1)

	for idx := 1; idx < len(order); idx++ {
		rightName := order[idx]
		rightRelation, ok := mss.Sources.Get(rightName)
		if !ok {
			return nil, sql.ErrUnsupportedShape.New(len(order))
		}
		currentSet.Add(rightName)
		names := sql.NewRelationSet(leftName, rightName)
		hasMore := idx < len(order)-1

		// Step 2: project the root QS down to what this pair can evaluate.
		newQS := rootQS.Subset(func(rs *sql.RelationSet) bool { return rs.IsSubsetOf(names) }, hasMore)

		// Step 3: the WHERE fragment exactly covering this pair, if any.
		if cond, ok := splitQuery.popExact(names); ok {
			newQS.Where = cond
		}

		// Step 4: keep alive every Field a later predicate — or a root
		// output symbol that reaches past this pair — still needs.
		if hasMore {
			for _, entry := range splitQuery.referencing(leftName, rightName) {
				exposeNeededFields(newQS, entry.cond, names)
			}
			for _, entry := range joinConditionsMap.referencing(leftName, rightName) {
				exposeNeededFields(newQS, entry.cond, names)
			}
			for _, out := range rootQS.Outputs {
				if !expression.CollectRelations(out).IsSubsetOf(names) {
					exposeNeededFields(newQS, out, names)
				}
			}
		}

		// Step 5: attach the carried ORDER BY once its relations are fully
		// covered; otherwise, if it still reaches into this pair, expose
		// whatever Fields of theirs it needs so it can be rewritten safely
		// once it carries forward past this step (the same requirement
		// step 4 applies to splitQuery and joinConditionsMap fragments).
		var attachedOrderBy sql.OrderBy
		if remainingOrderBy != nil && orderByRelations(remainingOrderBy).IsSubsetOf(names) {
			attachedOrderBy = remainingOrderBy.Clone()
			newQS.OrderBy = remainingOrderBy.Clone()
			remainingOrderBy = nil
		} else if hasMore {
			for _, item := range remainingOrderBy {
				exposeNeededFields(newQS, item.Expr, names)
			}
		}

		// Step 6: the direct pair between these two relations, or a
		// synthesized inner join with no condition. Only its Kind is used
		// below: every pair's ON condition was already split into
		// joinConditionsMap during Preparation, so reusing this pair's raw
		// Condition here too would double it against the fragments step 7
		// collects from that same map.
		pair, rest, found := ofRelationsWithMergedConditions(leftName, rightName, joinPairs, true)
		kind := sql.InnerJoin
		if found {
			kind = pair.Kind
			joinPairs = rest
		}

		// Step 7: fold in every ON-condition fragment now fully covered by
		// the relations joined so far.
		var cond sql.Symbol = sql.MatchAll
		for _, extra := range joinConditionsMap.popSubsetsOf(currentSet) {
			cond = sql.And(cond, extra)
		}
		mergedPair := plan.NewJoinPair(leftName, rightName, kind, normalizeCond(cond))

		// Step 8: outer joins never keep an ORDER BY computed on their
		// nullable side.
		removeOrderByOnOuterRelation(mergedPair, leftRelation.Spec(), rightRelation.Spec())

		// Step 9: emit the node.
		join := plan.NewTwoTableJoin(newQS, leftRelation, rightRelation, mergedPair, attachedOrderBy)
		twoTableJoinList = append(twoTableJoinList, join)

		// Step 10: retarget every outstanding reference to the two
		// absorbed relations onto the synthetic join.
		if hasMore {
			replace := makeJoinReplacer(leftName, rightName, join)
			retarget := func(rs *sql.RelationSet) *sql.RelationSet {
				return retargetRelationSet(rs, leftName, rightName, join.Name())
			}
			splitQuery.applyReplacer(replace, retarget)
			joinConditionsMap.applyReplacer(replace, retarget)
			joinPairs = rewriteNames(leftName, rightName, join.Name(), replace, joinPairs)
			remainingOrderBy = expression.ApplyToOrderBy(remainingOrderBy, replace)
			rootQS = rootQS.CopyAndReplace(replace)
			currentSet = retargetRelationSet(currentSet, leftName, rightName, join.Name())
		}

		// Step 11.
		leftRelation = join
		leftName = join.Name()
	}

	root := twoTableJoinList[len(twoTableJoinList)-1]

	// Finalization: anything left in splitQuery after the walk is attached
	// at the root.
	if !splitQuery.isEmpty() {
		root.QS.Where = sql.And(root.QS.Where, sql.AndAll(splitQuery.remaining()...))
	}

	clearLimitsBelowLastFilter(twoTableJoinList)

	return root, nil
}

func normalizeCond(cond sql.Symbol) sql.Symbol {
	if sql.IsMatchAll(cond) {
		return nil
	}
	return cond
}

// exposeNeededFields adds to qs every Field of cond owned by a relation in
// names, so a later join step can still reach it once this node's output
// becomes the only way to address that relation.
func exposeNeededFields(qs *plan.QS, cond sql.Symbol, names *sql.RelationSet) {
	for _, f := range expression.CollectFields(cond) {
		if names.Contains(f.Owner) {
			qs.AddOutput(f)
		}
	}
}

// makeJoinReplacer builds the FieldReplacer for the join that just absorbed
// oldLeft and oldRight: any Field owned by either is retargeted onto the
// join's synthetic name, with its column path prefixed by the original
// owner's name so fields from both sides never collide. Before
// retargeting, f itself (still owned by oldLeft/oldRight) must already
// resolve against the join's own output schema — join.QS.Outputs is
// expressed in terms of the join's immediate children, since that is what
// the join directly evaluates, so the check looks up f as-is rather than
// its prefixed form. If it is not there, every step that is supposed to
// keep a Field alive through this fold step (QS.Subset, and the step-4/5
// exposure passes over splitQuery, joinConditionsMap, and remainingOrderBy)
// failed to do so — an internal invariant violation, not a user error, so
// it panics rather than returning an error; the planner-entry boundary
// recovers it.
func makeJoinReplacer(oldLeft, oldRight sql.QN, join *plan.TwoTableJoin) expression.FieldReplacer {
	return func(f *sql.Field) (sql.Symbol, bool) {
		if f.Owner != oldLeft && f.Owner != oldRight {
			return nil, false
		}
		if !join.QS.HasOutput(f) {
			panic(sql.ErrFieldUnresolved.New(f.String(), join.Name().String()))
		}
		return f.Prefixed(join.Name(), string(f.Owner)), true
	}
}

func retargetRelationSet(rs *sql.RelationSet, oldLeft, oldRight, newName sql.QN) *sql.RelationSet {
	out := sql.NewRelationSet()
	for _, q := range rs.Slice() {
		if q == oldLeft || q == oldRight {
			out.Add(newName)
		} else {
			out.Add(q)
		}
	}
	return out
}

// clearLimitsBelowLastFilter enforces that a LIMIT may be pushed to a
// child only when no ancestor below the node that introduces a new
// row-filtering predicate could reduce the row count further. Retained
// verbatim for bug-compatibility; its optimality beyond that is not
// re-litigated here.
func clearLimitsBelowLastFilter(list []*plan.TwoTableJoin) {
	lastFilterIdx := -1
	for i := len(list) - 1; i >= 0; i-- {
		if !sql.IsLiteral(list[i].QS.Where) {
			lastFilterIdx = i
			break
		}
	}
	if lastFilterIdx <= 0 {
		return
	}
	for i := 0; i < lastFilterIdx; i++ {
		list[i].QS.Limit = nil
	}
}

// twoTableJoin is the n == 2 fast path: no split/reorder is needed, since
// there is only one possible adjacency.
func twoTableJoin(mss *plan.MultiSourceSelect) (*plan.TwoTableJoin, error) {
	names := mss.Sources.Names()
	leftName, rightName := names[0], names[1]
	leftRelation, _ := mss.Sources.Get(leftName)
	rightRelation, _ := mss.Sources.Get(rightName)

	pair, _, found := ofRelationsWithMergedConditions(leftName, rightName, mss.JoinPairs, false)
	if !found {
		pair = plan.NewJoinPair(leftName, rightName, sql.InnerJoin, nil)
	}
	removeOrderByOnOuterRelation(pair, leftRelation.Spec(), rightRelation.Spec())

	var ob sql.OrderBy
	if mss.RemainingOrderBy != nil && orderByRelations(mss.RemainingOrderBy).IsSubsetOf(sql.NewRelationSet(leftName, rightName)) {
		ob = mss.RemainingOrderBy.Clone()
		mss.QS.OrderBy = ob
	}

	return plan.NewTwoTableJoin(mss.QS, leftRelation, rightRelation, pair, ob), nil
}
