package categories_test

import (
	"context"
	"testing"

	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
	"github.com/Veraticus/shopkeep/internal/testutil"
	"github.com/Veraticus/shopkeep/internal/testutil/categories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_WithFixture(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	cats, err := categories.NewBuilder(t).
		WithFixture(categories.FixtureBarbershop).
		Build(ctx, db.Storage)
	require.NoError(t, err)
	assert.Len(t, cats, 6)

	revenues, err := db.Storage.ListCategories(ctx, model.CategoryTypeRevenue, service.CategoryFilter{
		BusinessTypeID: model.BusinessTypeBarbershop,
	})
	require.NoError(t, err)
	assert.Len(t, revenues, 3)
	assert.Len(t, cats.IDs(model.CategoryTypeExpense), 3)
}

func TestBuilder_SameNameBothKinds(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cats, err := categories.NewBuilder(t).
		WithRevenue(categories.CategorySupplies).
		WithExpense(categories.CategorySupplies).
		WithExpense(categories.CategorySupplies).
		Build(context.Background(), db.Storage)
	require.NoError(t, err)
	require.Len(t, cats, 2)

	r := cats.MustFind(t, model.CategoryTypeRevenue, categories.CategorySupplies)
	d := cats.MustFind(t, model.CategoryTypeExpense, categories.CategorySupplies)
	assert.NotEqual(t, r.ID, d.ID)
}

func TestBuilder_Inactive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := categories.NewBuilder(t).
		ForBusinessType(model.BusinessTypeCarWash).
		WithFixture(categories.FixtureCarWash).
		WithInactive(categories.CategoryElectric).
		Build(ctx, db.Storage)
	require.NoError(t, err)

	active, err := db.Storage.ListCategories(ctx, model.CategoryTypeExpense, service.CategoryFilter{
		BusinessTypeID: model.BusinessTypeCarWash,
		ActiveOnly:     true,
	})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, categories.CategoryRent.String(), active[0].Name)
}

func TestBuilder_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cats, err := categories.NewBuilder(t).Build(context.Background(), db.Storage)
	require.NoError(t, err)
	assert.Empty(t, cats)
	assert.Nil(t, cats.Find(model.CategoryTypeRevenue, categories.CategoryHaircut))
}
