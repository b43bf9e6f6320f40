package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/galedb/joinplan/sql"
	"github.com/galedb/joinplan/sql/plan"
)

// fixture is the on-disk shape of a MultiSourceSelect, expressed in YAML so
// a fold trace can be exercised without wiring up a real parser/analyzer
// front end. Predicate and ORDER BY fields hold small infix expression
// strings ("t1.a = t2.b", "t1.a AND t2.b = 1") parsed by parseExpr below.
type fixture struct {
	Sources []sourceFixture `yaml:"sources"`
	Joins   []joinFixture   `yaml:"joins"`
	Where   string          `yaml:"where"`
	OrderBy []string        `yaml:"orderBy"`
	GroupBy []string        `yaml:"groupBy"`
}

type sourceFixture struct {
	Name    string   `yaml:"name"`
	Outputs []string `yaml:"outputs"`
}

type joinFixture struct {
	Left      string `yaml:"left"`
	Right     string `yaml:"right"`
	Kind      string `yaml:"kind"`
	Condition string `yaml:"condition"`
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &f, nil
}

// build turns a fixture into a MultiSourceSelect, the planner's real input
// type.
func (f *fixture) build() (*plan.MultiSourceSelect, error) {
	if len(f.Sources) < 2 {
		return nil, fmt.Errorf("fixture must declare at least two sources, got %d", len(f.Sources))
	}

	sources := plan.NewSourceMap()
	var allOutputs []sql.Symbol
	for _, s := range f.Sources {
		name := sql.QN(s.Name)
		var outs []sql.Symbol
		for _, col := range s.Outputs {
			field, err := parseFieldRef(col)
			if err != nil {
				return nil, fmt.Errorf("source %s: %w", s.Name, err)
			}
			outs = append(outs, field)
			allOutputs = append(allOutputs, field)
		}
		sources.Put(name, plan.NewBaseRelation(name, plan.NewQS(outs)))
	}

	var joinPairs []*plan.JoinPair
	for _, j := range f.Joins {
		kind, err := parseJoinKind(j.Kind)
		if err != nil {
			return nil, err
		}
		var cond sql.Symbol
		if strings.TrimSpace(j.Condition) != "" {
			cond, err = parseExpr(j.Condition)
			if err != nil {
				return nil, fmt.Errorf("join %s-%s condition: %w", j.Left, j.Right, err)
			}
		}
		joinPairs = append(joinPairs, plan.NewJoinPair(sql.QN(j.Left), sql.QN(j.Right), kind, cond))
	}

	qs := plan.NewQS(allOutputs)
	if strings.TrimSpace(f.Where) != "" {
		where, err := parseExpr(f.Where)
		if err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
		qs.Where = where
	}

	var orderBy sql.OrderBy
	for _, item := range f.OrderBy {
		expr, err := parseExpr(item)
		if err != nil {
			return nil, fmt.Errorf("orderBy %q: %w", item, err)
		}
		orderBy = append(orderBy, sql.OrderByItem{Expr: expr})
	}

	mss := plan.NewMultiSourceSelect(sources, qs)
	mss.JoinPairs = joinPairs
	mss.RemainingOrderBy = orderBy
	for _, col := range f.GroupBy {
		field, err := parseFieldRef(col)
		if err != nil {
			return nil, fmt.Errorf("groupBy: %w", err)
		}
		mss.GroupBy = append(mss.GroupBy, field)
	}
	return mss, nil
}

func parseJoinKind(s string) (sql.JoinKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "INNER":
		return sql.InnerJoin, nil
	case "LEFT":
		return sql.LeftJoin, nil
	case "RIGHT":
		return sql.RightJoin, nil
	case "FULL":
		return sql.FullJoin, nil
	case "CROSS":
		return sql.CrossJoin, nil
	default:
		return 0, fmt.Errorf("unknown join kind %q", s)
	}
}

func parseFieldRef(s string) (*sql.Field, error) {
	dot := strings.LastIndex(s, ".")
	if dot <= 0 || dot == len(s)-1 {
		return nil, fmt.Errorf("expected table.column, got %q", s)
	}
	return sql.NewField(sql.QN(s[:dot]), s[dot+1:]), nil
}

// parseExpr parses a tiny, self-contained predicate grammar:
//
//	expr       := andExpr (OR andExpr)*
//	andExpr    := primary (AND primary)*
//	primary    := '(' expr ')' | operand '=' operand | operand
//	operand    := field-ref | integer-literal
//
// This is deliberately a small hand-rolled recursive-descent parser, not a
// general SQL expression grammar — the fixture format only needs to
// exercise the planner's own Symbol shapes (Field/Literal/FunctionCall),
// not parse real SQL.
func parseExpr(s string) (sql.Symbol, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}
	sym, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected token %q", p.toks[p.pos])
	}
	return sym, nil
}

type exprParser struct {
	toks []string
	pos  int
}

func (p *exprParser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *exprParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *exprParser) parseOr() (sql.Symbol, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for strings.EqualFold(p.peek(), "OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = sql.NewFunctionCall("OR", left, right)
	}
	return left, nil
}

func (p *exprParser) parseAnd() (sql.Symbol, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for strings.EqualFold(p.peek(), "AND") {
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = sql.And(left, right)
	}
	return left, nil
}

func (p *exprParser) parsePrimary() (sql.Symbol, error) {
	if p.peek() == "(" {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next() != ")" {
			return nil, fmt.Errorf("expected closing paren")
		}
		return inner, nil
	}
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if p.peek() == "=" {
		p.next()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return sql.Eq(left, right), nil
	}
	return left, nil
}

func (p *exprParser) parseOperand() (sql.Symbol, error) {
	tok := p.next()
	if tok == "" {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	if n, err := strconv.Atoi(tok); err == nil {
		return sql.NewLiteral(n), nil
	}
	return parseFieldRef(tok)
}

// tokenize splits s into parens, "=", and maximal runs of every other
// non-whitespace character (so '.' stays inside dotted field references).
func tokenize(s string) ([]string, error) {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '=':
			flush()
			toks = append(toks, string(r))
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks, nil
}
