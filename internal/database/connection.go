package database

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, query, args...)
}

func (db *DB) execBuilder(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return db.conn.ExecContext(ctx, query, args...)
}

func (db *DB) get(ctx context.Context, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	return db.conn.GetContext(ctx, dest, query, args...)
}

func (db *DB) selectAll(ctx context.Context, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	return db.conn.SelectContext(ctx, dest, query, args...)
}
