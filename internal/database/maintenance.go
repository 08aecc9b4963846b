package database

import (
	"context"
	"fmt"

	"github.com/saltyorg/userstore/internal/users"
)

// Optimize runs SQLite's PRAGMA optimize to refresh planner stats.
func (db *DB) Optimize(ctx context.Context) error {
	if db == nil || db.conn == nil {
		return fmt.Errorf("database not initialized")
	}

	err := db.observe(ctx, "optimize", func(ctx context.Context) error {
		_, err := db.exec(ctx, "PRAGMA optimize")
		return err
	})
	if err != nil {
		return users.NewStoreError("optimize", users.ErrQueryFailed, err)
	}

	return nil
}

// Vacuum rebuilds the database file to reclaim unused space.
func (db *DB) Vacuum(ctx context.Context) error {
	if db == nil || db.conn == nil {
		return fmt.Errorf("database not initialized")
	}

	err := db.observe(ctx, "vacuum", func(ctx context.Context) error {
		_, err := db.exec(ctx, "VACUUM")
		return err
	})
	if err != nil {
		return users.NewStoreError("vacuum", users.ErrQueryFailed, err)
	}

	return nil
}
