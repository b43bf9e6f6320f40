package sql

import errors "gopkg.in/src-d/go-errors.v1"

// Validation errors: unsupported statement shapes. These are ordinary,
// expected outcomes reported through ConsumerContext.ValidationError; they
// never panic.
var (
	ErrGroupByUnsupported   = errors.NewKind("GROUP BY on JOINS is not supported")
	ErrAggregateUnsupported = errors.NewKind("AGGREGATIONS on JOINS are not supported")
)

// ErrFieldUnresolved is an internal invariant violation: a Field could not
// be resolved against the synthetic join it was rewritten to reference. It
// never occurs on well-formed analyzed input; callers recover it at the
// planner-entry boundary rather than letting it escape as a panic.
var ErrFieldUnresolved = errors.NewKind("internal error: field %s could not be resolved against join %s")

// ErrUnsupportedShape covers multi-source shapes the builder does not
// handle (fewer than two sources).
var ErrUnsupportedShape = errors.NewKind("multi-source select requires at least two sources, got %d")
