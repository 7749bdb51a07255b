package database

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrudenko/bookcatalog/internal/entities"
)

func setupTestDatabase(t *testing.T) (*Database, func()) {
	dbPath := "./test_database_" + t.Name() + ".db"

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestRunInTransaction_CommitsOnSuccess(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	err := db.RunInTransaction(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&entities.Author{ID: "a1", Name: "One"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.DB.Model(&entities.Author{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	boom := errors.New("boom")
	err := db.RunInTransaction(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&entities.Author{ID: "a1", Name: "One"}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.DB.Model(&entities.Author{}).Count(&count).Error)
	assert.Zero(t, count, "write must not survive an aborted unit")
}

func TestRunInTransaction_StepsObserveEarlierWrites(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	err := db.RunInTransaction(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&entities.Author{ID: "a1", Name: "One"}).Error; err != nil {
			return err
		}
		var found entities.Author
		return tx.First(&found, "id = ?", "a1").Error
	})
	require.NoError(t, err)
}
