package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorySelection_Associations(t *testing.T) {
	sel := CategorySelection{Revenue: []string{"r1", "r2"}, Expense: []string{"d1"}}

	rows := sel.Associations("user-1")
	require.Len(t, rows, 3)

	assert.Equal(t, CategoryTypeRevenue, rows[0].Type())
	assert.Equal(t, "r1", rows[0].CategoryID())
	assert.Nil(t, rows[0].ExpenseCategoryID)
	assert.Equal(t, CategoryTypeRevenue, rows[1].Type())
	assert.Equal(t, "r2", rows[1].CategoryID())
	assert.Equal(t, CategoryTypeExpense, rows[2].Type())
	assert.Equal(t, "d1", rows[2].CategoryID())
	assert.Nil(t, rows[2].RevenueCategoryID)

	for _, r := range rows {
		assert.Equal(t, "user-1", r.UserID)
		assert.True(t, r.Active)
	}
}

func TestCategorySelection_Empty(t *testing.T) {
	assert.Empty(t, CategorySelection{}.Associations("user-1"))
	assert.Equal(t, 0, CategorySelection{}.Len())
}

func TestSplitAssociations(t *testing.T) {
	rows := CategorySelection{Revenue: []string{"r1"}, Expense: []string{"d1", "d2"}}.Associations("u")

	sel := SplitAssociations(rows)
	assert.Equal(t, []string{"r1"}, sel.Revenue)
	assert.Equal(t, []string{"d1", "d2"}, sel.Expense)

	empty := SplitAssociations(nil)
	assert.NotNil(t, empty.Revenue)
	assert.NotNil(t, empty.Expense)
}
