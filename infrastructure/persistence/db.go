// Package persistence provides database storage implementations.
package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/helixml/moviesearch/internal/database"
)

// models lists every table the dataset loader owns, in creation order.
func models() []any {
	return []any{&MovieModel{}, &RatingModel{}, &TagModel{}}
}

// AutoMigrate runs GORM auto migration for all dataset models.
func AutoMigrate(db database.Database) error {
	return db.GORM().AutoMigrate(models()...)
}

// Reset drops the dataset tables and recreates them empty.
func Reset(ctx context.Context, db database.Database) error {
	return database.WithTransaction(ctx, db, func(tx *gorm.DB) error {
		migrator := tx.Migrator()
		for _, m := range models() {
			if err := migrator.DropTable(m); err != nil {
				return fmt.Errorf("drop %T: %w", m, err)
			}
		}
		if err := migrator.AutoMigrate(models()...); err != nil {
			return fmt.Errorf("recreate dataset tables: %w", err)
		}
		return nil
	})
}

// Schema owns the dataset tables of one database.
type Schema struct {
	db database.Database
}

// NewSchema creates a Schema.
func NewSchema(db database.Database) Schema {
	return Schema{db: db}
}

// Migrate creates any missing dataset tables.
func (s Schema) Migrate(context.Context) error {
	return AutoMigrate(s.db)
}

// Reset drops and recreates the dataset tables.
func (s Schema) Reset(ctx context.Context) error {
	return Reset(ctx, s.db)
}
