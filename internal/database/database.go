// Package database owns connection bootstrapping and the transactional
// unit-of-work primitive shared by all mutating operations.
package database

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrudenko/bookcatalog/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Author{},
		&entities.Book{},
		&entities.AuthorBookRef{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RunInTransaction executes fn inside a single transaction-scoped session.
// The transaction commits when fn returns nil and rolls back on error or
// panic; the session is released on every exit path. Every read and write
// performed through the tx handle observes writes made earlier in the same
// unit. There is no retry on conflict: the storage error is returned as-is.
func (d *Database) RunInTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
