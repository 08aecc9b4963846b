package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/userstore/internal/users"
)

const createUsersTable = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		name TEXT,
		age INTEGER
	)
`

// NULL columns read back as zero values.
var userColumns = []string{
	"id",
	"COALESCE(name, '') AS name",
	"COALESCE(age, 0) AS age",
}

// CreateTable ensures the users table exists.
func (db *DB) CreateTable(ctx context.Context) error {
	log.Debug().Msg("Preparing to create the users table")

	err := db.observe(ctx, "create_table", func(ctx context.Context) error {
		_, err := db.exec(ctx, createUsersTable)
		return err
	})
	if err != nil {
		return users.NewStoreError("create table", users.ErrQueryFailed, err)
	}

	log.Debug().Msg("Users table ready")
	return nil
}

// Find retrieves a user by ID.
func (db *DB) Find(ctx context.Context, id int64) (*users.User, error) {
	log.Debug().Int64("id", id).Msg("Querying for user")

	user := &users.User{}
	err := db.observe(ctx, "find", func(ctx context.Context) error {
		err := db.get(ctx, user, sq.Select(userColumns...).
			From("users").
			Where(sq.Eq{"id": id}).
			Limit(1))
		if errors.Is(err, sql.ErrNoRows) {
			return users.ErrNotFound
		}
		return err
	})
	if errors.Is(err, users.ErrNotFound) {
		return nil, users.NewStoreError("find", users.ErrNotFound, fmt.Errorf("no user with id %d", id))
	}
	if err != nil {
		return nil, users.NewStoreError("find", users.ErrQueryFailed, err)
	}

	log.Debug().Int64("id", user.ID).Str("name", user.Name).Int("age", user.Age).Msg("Found user")
	return user, nil
}

// All retrieves every user in insertion order.
func (db *DB) All(ctx context.Context) ([]*users.User, error) {
	log.Debug().Msg("Loading all users")

	all := []*users.User{}
	err := db.observe(ctx, "all", func(ctx context.Context) error {
		return db.selectAll(ctx, &all, sq.Select(userColumns...).
			From("users").
			OrderBy("id"))
	})
	if err != nil {
		return nil, users.NewStoreError("all", users.ErrQueryFailed, err)
	}

	log.Debug().Int("count", len(all)).Msg("Loaded users")
	return all, nil
}

// Insert writes u as a new row and records the assigned ID on it.
func (db *DB) Insert(ctx context.Context, u *users.User) (*users.User, error) {
	if u == nil {
		return nil, users.NewStoreError("insert", users.ErrQueryFailed, errors.New("nil user"))
	}

	log.Debug().Str("name", u.Name).Msg("Inserting user")

	var id int64
	err := db.observe(ctx, "insert", func(ctx context.Context) error {
		result, err := db.execBuilder(ctx, sq.Insert("users").
			Columns("name", "age").
			Values(u.Name, u.Age))
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get user id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, users.NewStoreError("insert", users.ErrQueryFailed, err)
	}

	u.ID = id
	log.Debug().Int64("id", id).Msg("User inserted")
	return u, nil
}
