package repository

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/bizledger/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type supplier struct {
	ID   snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	Name string
}

func newSupplierStore(t *testing.T) (Repository[supplier], *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&supplier{}))
	return ProvideStore[supplier](db), db
}

func TestStoreCreateAndFind(t *testing.T) {
	store, _ := newSupplierStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &supplier{ID: 10, Name: "Cement Co"}))
	require.NoError(t, store.Create(ctx, &supplier{ID: 11, Name: "Anbessa Steel"}))

	found, err := store.FindByID(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Cement Co", found.Name)

	missing, err := store.FindByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := store.List(ctx, option.WithSortBy("name", false))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Anbessa Steel", list[0].Name)
}

func TestStoreWithTrxRollsBack(t *testing.T) {
	store, db := newSupplierStore(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := store.WithTrx(tx).Create(ctx, &supplier{ID: 20, Name: "Rolled"}); err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	require.ErrorIs(t, err, gorm.ErrInvalidData)

	found, err := store.FindByID(ctx, 20)
	require.NoError(t, err)
	assert.Nil(t, found)
	assert.Same(t, store, store.WithTrx(nil))
}
