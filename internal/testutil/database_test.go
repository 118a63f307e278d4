package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
	"github.com/Veraticus/shopkeep/internal/testutil/categories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB_Isolated(t *testing.T) {
	a := SetupTestDB(t)
	b := SetupTestDB(t)

	a.CreateUser("only-in-a@example.com")

	users, err := b.Storage.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestCreateUser_Options(t *testing.T) {
	db := SetupTestDB(t)

	admin := db.CreateUser("root@example.com", AsAdmin(), WithExternalID("auth-root"))
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, "auth-root", admin.ExternalID)

	wash := db.CreateUser("wash@example.com", WithBusinessType(model.BusinessTypeCarWash))
	got, err := db.Storage.GetUserByID(context.Background(), wash.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BusinessTypeCarWash, got.BusinessTypeID)
}

func TestWithTransaction_RollsBack(t *testing.T) {
	db, cats := SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithFixture(categories.FixtureMinimal)
	})
	u := db.CreateUser("tx@example.com")

	err := db.WithTransaction(func(tx service.Transaction) error {
		sel := model.CategorySelection{Revenue: cats.IDs(model.CategoryTypeRevenue)}
		return tx.InsertActiveCategories(context.Background(), sel.Associations(u.ID))
	})
	require.NoError(t, err)

	assert.Zero(t, db.AssociationCount(u.ID))
}
