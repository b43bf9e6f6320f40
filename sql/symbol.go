package sql

import "strings"

// Symbol is a node in the planner's expression tree: a Field reference to a
// column of some relation, a Literal constant, or a FunctionCall over
// nested Symbols (this covers operators like "=" and "AND" as well as real
// function invocations — the planner does not distinguish them, only the
// downstream evaluator cares). Symbol trees are immutable; every
// transformation in this package returns a new tree rather than mutating
// one in place.
type Symbol interface {
	isSymbol()
}

// Field references a single column of a specific relation. Owner is the
// relation the column is read from at the point this Field appears in a
// tree; a FieldReplacer retargets Owner (and, when the field is absorbed
// into a synthetic join, prefixes Path) as the tree is rewritten.
type Field struct {
	Owner QN
	Path  []string
}

func (f *Field) isSymbol() {}

// NewField builds a Field owned by owner addressing the given column path.
func NewField(owner QN, path ...string) *Field {
	return &Field{Owner: owner, Path: append([]string(nil), path...)}
}

// Column renders Path as a single dotted string.
func (f *Field) Column() string {
	return strings.Join(f.Path, ".")
}

func (f *Field) String() string {
	return string(f.Owner) + "[" + f.Column() + "]"
}

// WithOwner returns a copy of f re-owned by owner, path unchanged.
func (f *Field) WithOwner(owner QN) *Field {
	return &Field{Owner: owner, Path: append([]string(nil), f.Path...)}
}

// Prefixed returns a copy of f owned by owner with prefix prepended to the
// column path — used when a Field is absorbed into a synthetic join and
// needs a column path unique among both of the join's former children.
func (f *Field) Prefixed(owner QN, prefix string) *Field {
	return &Field{Owner: owner, Path: append([]string{prefix}, f.Path...)}
}

// Literal is a constant value.
type Literal struct {
	Value interface{}
}

func (l *Literal) isSymbol() {}

// NewLiteral wraps v as a Literal Symbol.
func NewLiteral(v interface{}) *Literal {
	return &Literal{Value: v}
}

// FunctionCall is an n-ary operator or function application. Comparison and
// boolean operators ("=", "AND", "OR", "+", …) are represented the same way
// as genuine function calls; Op is the operator/function name.
type FunctionCall struct {
	Op   string
	Args []Symbol
}

func (f *FunctionCall) isSymbol() {}

// NewFunctionCall builds a FunctionCall node.
func NewFunctionCall(op string, args ...Symbol) *FunctionCall {
	return &FunctionCall{Op: op, Args: args}
}

const (
	opAnd = "AND"
	opOr  = "OR"
	opEq  = "="
)

// matchAllSymbol is the sentinel WHERE value meaning "no filter applied".
type matchAllSymbol struct{}

func (m *matchAllSymbol) isSymbol() {}

// MatchAll is the canonical "no filter" predicate.
var MatchAll Symbol = &matchAllSymbol{}

// IsMatchAll reports whether s is the MatchAll sentinel, or nil (treated
// the same way by every caller in this package).
func IsMatchAll(s Symbol) bool {
	if s == nil {
		return true
	}
	_, ok := s.(*matchAllSymbol)
	return ok
}

// And combines a and b with a boolean AND, treating MatchAll/nil as the
// identity element so that repeated folding never accumulates spurious
// "AND MATCH_ALL" wrappers.
func And(a, b Symbol) Symbol {
	if IsMatchAll(a) {
		return b
	}
	if IsMatchAll(b) {
		return a
	}
	return NewFunctionCall(opAnd, a, b)
}

// AndAll folds And across parts in order, left to right.
func AndAll(parts ...Symbol) Symbol {
	var acc Symbol = MatchAll
	for _, p := range parts {
		acc = And(acc, p)
	}
	return acc
}

// Eq builds an "a = b" comparison.
func Eq(a, b Symbol) Symbol {
	return NewFunctionCall(opEq, a, b)
}

// IsAnd reports whether s is a top-level AND, returning its two operands.
func IsAnd(s Symbol) (left, right Symbol, ok bool) {
	fc, isFc := s.(*FunctionCall)
	if !isFc || fc.Op != opAnd || len(fc.Args) != 2 {
		return nil, nil, false
	}
	return fc.Args[0], fc.Args[1], true
}

// IsLiteral reports whether s is a Literal or the MatchAll sentinel — i.e.
// a symbol whose evaluation never depends on a row from any relation.
func IsLiteral(s Symbol) bool {
	if IsMatchAll(s) {
		return true
	}
	_, ok := s.(*Literal)
	return ok
}

// aggregateFunctions names the function-call operators the planner treats
// as aggregates for the purpose of rejecting aggregate outputs on joins.
// This is deliberately the small set a join-ordering core needs to
// recognize, not a full SQL function catalog.
var aggregateFunctions = map[string]bool{
	"COUNT": true,
	"SUM":   true,
	"AVG":   true,
	"MIN":   true,
	"MAX":   true,
}

// IsAggregate reports whether s is a call to a known aggregate function.
func IsAggregate(s Symbol) bool {
	fc, ok := s.(*FunctionCall)
	return ok && aggregateFunctions[strings.ToUpper(fc.Op)]
}
