package query

import (
	"fmt"
	"strings"

	"github.com/koba/litestore/internal/schema"
)

// Operator is a comparison operator
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpIn             Operator = "IN"
	OpNotIn          Operator = "NOT IN"
)

func (op Operator) isSet() bool {
	return op == OpIn || op == OpNotIn
}

func (op Operator) valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual, OpIn, OpNotIn:
		return true
	}
	return false
}

// Logic is a boolean combinator
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
	LogicNot Logic = "NOT"
)

// Condition is an immutable boolean expression over columns.
// Implementations are Comparison and Combinator.
type Condition interface {
	SQL() (string, error)
	isCondition()
}

// Comparison is a leaf: column, operator and a literal, literal set or
// another column.
type Comparison struct {
	Column   string
	Operator Operator
	Value    schema.Value
	Values   []schema.Value
	// Ref is set for column-to-column comparisons
	Ref string

	err error
}

// Combinator joins child conditions with AND / OR, or negates a single
// child with NOT.
type Combinator struct {
	Logic    Logic
	Children []Condition
}

func (Comparison) isCondition() {}
func (Combinator) isCondition() {}

// SQL renders the comparison
func (c Comparison) SQL() (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if c.Column == "" {
		return "", fmt.Errorf("%w: comparison without a column", ErrInvalidCondition)
	}
	if !c.Operator.valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedOperator, string(c.Operator))
	}

	if c.Operator.isSet() {
		if c.Ref != "" {
			return "", fmt.Errorf("%w: %s needs a literal list", ErrInvalidCondition, c.Operator)
		}
		literals := make([]string, len(c.Values))
		for i, v := range c.Values {
			literals[i] = v.Literal()
		}
		return fmt.Sprintf("%s %s (%s)", c.Column, c.Operator, strings.Join(literals, ", ")), nil
	}

	if c.Ref != "" {
		return fmt.Sprintf("%s %s %s", c.Column, c.Operator, c.Ref), nil
	}

	if c.Value.IsNull() {
		switch c.Operator {
		case OpEqual:
			return c.Column + " IS NULL", nil
		case OpNotEqual:
			return c.Column + " IS NOT NULL", nil
		}
	}

	return fmt.Sprintf("%s %s %s", c.Column, c.Operator, c.Value.Literal()), nil
}

// SQL renders the combinator. A child combinator of a different logic is
// parenthesized; a NOT child is parenthesized unless it wraps a comparison.
func (c Combinator) SQL() (string, error) {
	switch c.Logic {
	case LogicNot:
		if len(c.Children) != 1 {
			return "", fmt.Errorf("%w: NOT takes exactly one condition, got %d", ErrInvalidCondition, len(c.Children))
		}
		child := c.Children[0]
		inner, err := render(child)
		if err != nil {
			return "", err
		}
		if _, ok := child.(Combinator); ok {
			inner = "(" + inner + ")"
		}
		return "NOT " + inner, nil

	case LogicAnd, LogicOr:
		if len(c.Children) == 0 {
			return "", fmt.Errorf("%w: %s without conditions", ErrInvalidCondition, c.Logic)
		}
		parts := make([]string, len(c.Children))
		for i, child := range c.Children {
			part, err := render(child)
			if err != nil {
				return "", err
			}
			if needsParens(c.Logic, child) {
				part = "(" + part + ")"
			}
			parts[i] = part
		}
		return strings.Join(parts, " "+string(c.Logic)+" "), nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedOperator, string(c.Logic))
}

func render(c Condition) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: nil condition", ErrInvalidCondition)
	}
	return c.SQL()
}

func needsParens(parent Logic, child Condition) bool {
	comb, ok := child.(Combinator)
	if !ok {
		return false
	}
	if comb.Logic == LogicNot {
		if len(comb.Children) == 1 {
			_, leaf := comb.Children[0].(Comparison)
			return !leaf
		}
		return true
	}
	return comb.Logic != parent
}

func compare(column string, op Operator, value any) Comparison {
	v, err := schema.ValueOf(value)
	return Comparison{Column: column, Operator: op, Value: v, err: err}
}

func compareSet(column string, op Operator, values []any) Comparison {
	c := Comparison{Column: column, Operator: op, Values: make([]schema.Value, 0, len(values))}
	for _, value := range values {
		v, err := schema.ValueOf(value)
		if err != nil {
			c.err = err
			return c
		}
		c.Values = append(c.Values, v)
	}
	return c
}

func Equal(column string, value any) Condition { return compare(column, OpEqual, value) }
func NotEqual(column string, value any) Condition { return compare(column, OpNotEqual, value) }
func Greater(column string, value any) Condition { return compare(column, OpGreater, value) }
func GreaterOrEqual(column string, value any) Condition { return compare(column, OpGreaterOrEqual, value) }
func Less(column string, value any) Condition { return compare(column, OpLess, value) }
func LessOrEqual(column string, value any) Condition { return compare(column, OpLessOrEqual, value) }
func In(column string, values ...any) Condition { return compareSet(column, OpIn, values) }
func NotIn(column string, values ...any) Condition { return compareSet(column, OpNotIn, values) }

// EqualColumn compares two columns, typically in a join condition
func EqualColumn(left, right string) Condition {
	return Comparison{Column: left, Operator: OpEqual, Ref: right}
}

func And(conds ...Condition) Condition { return Combinator{Logic: LogicAnd, Children: conds} }
func Or(conds ...Condition) Condition { return Combinator{Logic: LogicOr, Children: conds} }
func Not(cond Condition) Condition { return Combinator{Logic: LogicNot, Children: []Condition{cond}} }

// Column names a column and builds comparisons against it
type Column string

// Col is shorthand for Column(name)
func Col(name string) Column { return Column(name) }

func (c Column) Equal(value any) Condition { return Equal(string(c), value) }
func (c Column) NotEqual(value any) Condition { return NotEqual(string(c), value) }
func (c Column) Greater(value any) Condition { return Greater(string(c), value) }
func (c Column) GreaterOrEqual(value any) Condition { return GreaterOrEqual(string(c), value) }
func (c Column) Less(value any) Condition { return Less(string(c), value) }
func (c Column) LessOrEqual(value any) Condition { return LessOrEqual(string(c), value) }
func (c Column) In(values ...any) Condition { return In(string(c), values...) }
func (c Column) NotIn(values ...any) Condition { return NotIn(string(c), values...) }

// Qualify prefixes a column with its table
func Qualify(table, column string) string {
	return table + "." + column
}
