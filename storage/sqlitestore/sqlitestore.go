// Package sqlitestore persists client state in a SQLite table through bun.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/jrsteele09/aquamind/storage"
)

var _ storage.Storage = (*Storage)(nil)

type entry struct {
	bun.BaseModel `bun:"table:kv_entries"`

	Name      string `bun:",pk"`
	Value     string `bun:",notnull"`
	UpdatedAt time.Time
}

type Storage struct {
	db *bun.DB
}

// Open opens (or creates) the SQLite database at dsn and ensures the entries table exists.
func Open(ctx context.Context, dsn string) (*Storage, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	sqldb.SetMaxOpenConns(1)

	s, err := New(ctx, bun.NewDB(sqldb, sqlitedialect.New()))
	if err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return s, nil
}

func New(ctx context.Context, db *bun.DB) (*Storage, error) {
	s := &Storage{db: db}
	_, err := db.NewCreateTable().
		Model((*entry)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage table: %w", err)
	}
	return s, nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	e := new(entry)
	err := s.db.NewSelect().
		Model(e).
		Where("name = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return e.Value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	e := &entry{Name: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().
		Model(e).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*entry)(nil)).
		Where("name = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
