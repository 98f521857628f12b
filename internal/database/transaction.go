package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// WithTransaction runs fn on a transaction session. The transaction commits
// when fn returns nil and rolls back on an error or panic.
func WithTransaction(ctx context.Context, db Database, fn func(tx *gorm.DB) error) error {
	var fnErr error
	err := db.Session(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(tx)
		return fnErr
	})
	if err == nil || err == fnErr {
		return err
	}
	return fmt.Errorf("transaction: %w", err)
}
