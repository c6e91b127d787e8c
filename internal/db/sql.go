package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type dialect struct {
	driver string
	schema string
	get    string
	upsert string
	delete string
}

var postgresDialect = dialect{
	driver: "postgres",
	schema: `
        CREATE TABLE IF NOT EXISTS kv_collections (
            key        TEXT PRIMARY KEY,
            value      TEXT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
	get: `SELECT value FROM kv_collections WHERE key=$1`,
	upsert: `
        INSERT INTO kv_collections (key, value, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`,
	delete: `DELETE FROM kv_collections WHERE key=$1`,
}

var sqliteDialect = dialect{
	driver: "sqlite",
	schema: `
        CREATE TABLE IF NOT EXISTS kv_collections (
            key        TEXT PRIMARY KEY,
            value      TEXT NOT NULL,
            updated_at TIMESTAMP NOT NULL
        )`,
	get: `SELECT value FROM kv_collections WHERE key=?`,
	upsert: `
        INSERT INTO kv_collections (key, value, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT (key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
	delete: `DELETE FROM kv_collections WHERE key=?`,
}

// SQLStore keeps every collection as one row of kv_collections.
type SQLStore struct {
	DB      *sql.DB
	dialect dialect
}

// OpenPostgres connects with lib/pq and creates the table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	return open(ctx, postgresDialect, dsn, 0)
}

// OpenSQLite opens a modernc.org/sqlite database. Writes are serialized on a
// single connection, which also keeps ":memory:" databases coherent.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	return open(ctx, sqliteDialect, path, 1)
}

func open(ctx context.Context, d dialect, dsn string, maxConns int) (*SQLStore, error) {
	conn, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	if maxConns > 0 {
		conn.SetMaxOpenConns(maxConns)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", d.driver, err)
	}
	if _, err := conn.ExecContext(ctx, d.schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate %s: %w", d.driver, err)
	}
	return &SQLStore{DB: conn, dialect: d}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, s.dialect.get, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMany(ctx, []Entry{{Key: key, Value: value}})
}

func (s *SQLStore) SetMany(ctx context.Context, entries []Entry) error {
	if err := validateEntries(entries); err != nil {
		return err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, s.dialect.upsert, e.Key, string(e.Value), now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write %s: %w", e.Key, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, s.dialect.delete, key)
	return err
}

func (s *SQLStore) Close() error {
	return s.DB.Close()
}

var _ Store = (*SQLStore)(nil)
