package service

import (
	"context"

	"fixflow/internal/repository"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
// Serialization failures and deadlocks are surfaced as *ConflictError so the
// caller can retry the whole operation.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	err := db.WithContext(ctx).Transaction(fn)
	if repository.IsSerializationFailure(err) {
		return &ConflictError{Err: err}
	}
	return err
}
