package analyzer

import (
	"io"

	"github.com/galedb/joinplan/sql"
)

// quickPerm lazily enumerates every permutation of a slice of relation
// names, one at a time, so the order chooser never materializes the full
// n! list up front. It implements the classic QuickPerm / Heap's-algorithm
// loop-control scheme, which visits every permutation exactly once in a
// fixed, reproducible sequence for a given input order, so that ties
// between equally-costed orderings are always broken the same way.
type quickPerm struct {
	items []sql.QN
	c     []int
	i     int
	first bool
	done  bool
}

func newQuickPerm(items []sql.QN) *quickPerm {
	return &quickPerm{
		items: append([]sql.QN(nil), items...),
		c:     make([]int, len(items)),
		first: true,
	}
}

// Next returns the next permutation, or io.EOF once every permutation of
// the input has been produced. The returned slice is owned by the caller.
func (q *quickPerm) Next() ([]sql.QN, error) {
	if q.done {
		return nil, io.EOF
	}
	if q.first {
		q.first = false
		return append([]sql.QN(nil), q.items...), nil
	}
	for q.i < len(q.items) {
		if q.c[q.i] < q.i {
			if q.i%2 == 0 {
				q.items[0], q.items[q.i] = q.items[q.i], q.items[0]
			} else {
				q.items[q.c[q.i]], q.items[q.i] = q.items[q.i], q.items[q.c[q.i]]
			}
			q.c[q.i]++
			q.i = 0
			return append([]sql.QN(nil), q.items...), nil
		}
		q.c[q.i] = 0
		q.i++
	}
	q.done = true
	return nil, io.EOF
}
