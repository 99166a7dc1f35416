// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Drivers accepted by Open. "postgres" is lib/pq, "pgx" is pgx's
// database/sql driver.
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// DB wraps a *sqlx.DB and implements domain repository interfaces.
type DB struct {
	sql *sqlx.DB
}

// Open connects to PostgreSQL with the named driver, pings, and runs
// migrations.
func Open(driver, connStr string) (*DB, error) {
	if driver == "" {
		driver = DriverPQ
	}
	if driver != DriverPQ && driver != DriverPGX {
		return nil, fmt.Errorf("unknown postgres driver %q", driver)
	}
	s, err := sqlx.Open(driver, connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping checks the connection for health probes.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS users (id BIGSERIAL PRIMARY KEY, username TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, user_agent TEXT NOT NULL DEFAULT '', ip TEXT NOT NULL DEFAULT '', expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
		`CREATE TABLE IF NOT EXISTS weight_entries (
			id TEXT NOT NULL,
			user_id BIGINT NOT NULL,
			date TEXT NOT NULL,
			weight TEXT NOT NULL DEFAULT '',
			height TEXT NOT NULL DEFAULT '',
			fat_percentage TEXT NOT NULL DEFAULT '',
			muscle_percentage TEXT NOT NULL DEFAULT '',
			visceral_fat TEXT NOT NULL DEFAULT '',
			imc TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, id)
		);`,
		"CREATE INDEX IF NOT EXISTS idx_weight_entries_user_date ON weight_entries(user_id, date);",
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT NOT NULL,
			user_id BIGINT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			media JSONB NOT NULL DEFAULT '[]',
			video_links JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, id)
		);`,
		"CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes(user_id);",
		`CREATE TABLE IF NOT EXISTS exercise_logs (
			seq BIGSERIAL,
			id TEXT NOT NULL,
			user_id BIGINT NOT NULL,
			book TEXT NOT NULL CHECK(book IN ('daily','summary')),
			date TEXT NOT NULL,
			day TEXT NOT NULL DEFAULT '',
			exercise_name TEXT NOT NULL DEFAULT '',
			sede TEXT NOT NULL DEFAULT '',
			series TEXT NOT NULL DEFAULT '',
			reps TEXT NOT NULL DEFAULT '',
			kilos TEXT NOT NULL DEFAULT '',
			tiempo TEXT NOT NULL DEFAULT '',
			calorias TEXT NOT NULL DEFAULT '',
			distance_unit TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			media JSONB NOT NULL DEFAULT '[]',
			PRIMARY KEY (user_id, book, id)
		);`,
		"CREATE INDEX IF NOT EXISTS idx_exercise_logs_seq ON exercise_logs(user_id, book, seq);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Databases created before sessions were bound to a client, and before
	// entry ids were scoped to their owner.
	alterStmts := []string{
		"ALTER TABLE sessions ADD COLUMN IF NOT EXISTS user_agent TEXT NOT NULL DEFAULT '';",
		"ALTER TABLE sessions ADD COLUMN IF NOT EXISTS ip TEXT NOT NULL DEFAULT '';",
		rekey("weight_entries"),
		rekey("notes"),
	}
	for _, stmt := range alterStmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// rekey swaps a single-column primary key for (user_id, id). It is a no-op
// once the key already has two columns.
func rekey(table string) string {
	return fmt.Sprintf(`DO $$
BEGIN
	IF (SELECT count(*) FROM information_schema.key_column_usage k
		JOIN information_schema.table_constraints c
			ON c.constraint_name = k.constraint_name AND c.table_schema = k.table_schema
		WHERE c.table_schema = current_schema() AND c.table_name = '%[1]s'
			AND c.constraint_type = 'PRIMARY KEY') = 1 THEN
		ALTER TABLE %[1]s DROP CONSTRAINT %[1]s_pkey;
		ALTER TABLE %[1]s ADD PRIMARY KEY (user_id, id);
	END IF;
END $$;`, table)
}

type txKey struct{}

// InTx runs fn in one transaction. Replace* calls made with the context fn
// receives join it instead of opening their own.
func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	tx, err := d.sql.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// inTx runs fn in the transaction carried by ctx, or in a new one.
func (d *DB) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(tx)
	}
	tx, err := d.sql.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
