package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koba/litestore/internal/schema"
)

func sql(t *testing.T, c Condition) string {
	t.Helper()
	s, err := c.SQL()
	require.NoError(t, err)
	return s
}

func TestConditionGrouping(t *testing.T) {
	k1, k2 := Col("k1"), Col("k2")
	a, b, c := k1.Equal(1), k2.Greater(2), k1.NotIn(2, 3, 4)

	tests := []struct {
		name string
		cond Condition
		want string
	}{
		{"or of and", Or(And(a, b), c), "(k1 = 1 AND k2 > 2) OR k1 NOT IN (2, 3, 4)"},
		{"and of or", And(a, Or(b, c)), "k1 = 1 AND (k2 > 2 OR k1 NOT IN (2, 3, 4))"},
		{"same logic nests flat", And(And(a, b), c), "k1 = 1 AND k2 > 2 AND k1 NOT IN (2, 3, 4)"},
		{"not of comparison", Not(a), "NOT k1 = 1"},
		{"not of combinator", Not(Or(a, b)), "NOT (k1 = 1 OR k2 > 2)"},
		{"not comparison child", And(Not(a), b), "NOT k1 = 1 AND k2 > 2"},
		{"not combinator child", Or(Not(And(a, b)), c), "(NOT (k1 = 1 AND k2 > 2)) OR k1 NOT IN (2, 3, 4)"},
		{"double not", Not(Not(a)), "NOT (NOT k1 = 1)"},
		{"in", k2.In("a", "b"), "k2 IN ('a', 'b')"},
		{"all operators", And(k1.GreaterOrEqual(1), k1.Less(5), k1.LessOrEqual(4), k1.NotEqual(3)),
			"k1 >= 1 AND k1 < 5 AND k1 <= 4 AND k1 != 3"},
		{"is null", Equal("k", nil), "k IS NULL"},
		{"is not null", NotEqual("k", nil), "k IS NOT NULL"},
		{"escaped text", Equal("k", "o'clock"), "k = 'o''clock'"},
		{"real", Less("k", 0.25), "k < 0.25"},
		{"blob", Equal("k", []byte{1, 2}), "k = X'0102'"},
		{"column ref", EqualColumn("a.id", "b.id"), "a.id = b.id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sql(t, tt.cond))
		})
	}
}

func TestConditionErrors(t *testing.T) {
	_, err := Equal("k", struct{}{}).SQL()
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)

	_, err = In("k", 1, map[string]int{}).SQL()
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)

	_, err = And().SQL()
	assert.ErrorIs(t, err, ErrInvalidCondition)

	_, err = And(Equal("k", 1), nil).SQL()
	assert.ErrorIs(t, err, ErrInvalidCondition)

	_, err = Combinator{Logic: LogicNot, Children: []Condition{Equal("a", 1), Equal("b", 2)}}.SQL()
	assert.ErrorIs(t, err, ErrInvalidCondition)

	_, err = Combinator{Logic: "XOR", Children: []Condition{Equal("a", 1)}}.SQL()
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	_, err = Equal("", 1).SQL()
	assert.ErrorIs(t, err, ErrInvalidCondition)
}

func TestConditionSharedAcrossQueries(t *testing.T) {
	cond := Or(Equal("a", 1), Equal("b", 2))

	sel, err := From("t").Select(All()).Where(cond).Statement()
	require.NoError(t, err)
	del, err := From("t").Delete().Where(cond).Statement()
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM t WHERE a = 1 OR b = 2;", sel)
	assert.Equal(t, "DELETE FROM t WHERE a = 1 OR b = 2;", del)
}
