package main

import (
	"github.com/galedb/joinplan/sql"
	"github.com/galedb/joinplan/sql/analyzer"
	"github.com/galedb/joinplan/sql/plan"
)

// cliConsumer is the smallest ConsumerContext that satisfies analyzer.Plan:
// it records the outcome for printing and never offers a fetch rewrite.
type cliConsumer struct {
	fetchMode     sql.FetchMode
	validationErr error
	plannedRoot   plan.QueriedRelation
}

func (c *cliConsumer) PlannerContext() analyzer.PlannerContext { return c }
func (c *cliConsumer) SetFetchMode(mode sql.FetchMode)         { c.fetchMode = mode }
func (c *cliConsumer) ValidationError(err error)               { c.validationErr = err }
func (c *cliConsumer) FetchRewriter() analyzer.FetchRewriter   { return nil }

func (c *cliConsumer) Plan(root plan.QueriedRelation) (*analyzer.Result, error) {
	c.plannedRoot = root
	return &analyzer.Result{Root: root}, nil
}
