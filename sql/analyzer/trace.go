package analyzer

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/galedb/joinplan/sql"
)

// traceOrder logs the original and chosen relation order at trace level,
// the one piece of operator-facing diagnostics this planner emits, so plan
// selection is auditable without re-deriving it by hand. It is gated on
// logrus.IsLevelEnabled so the join names are never formatted on a hot
// path when tracing is off.
func traceOrder(original, chosen []sql.QN) {
	if !logrus.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	logrus.WithFields(logrus.Fields{
		"original_order": joinQNs(original),
		"chosen_order":   joinQNs(chosen),
	}).Trace("join order chosen")
}

func joinQNs(names []sql.QN) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ",")
}
