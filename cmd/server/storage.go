package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/aquamind/internal/config"
	"github.com/jrsteele09/aquamind/storage"
	"github.com/jrsteele09/aquamind/storage/redisstore"
	"github.com/jrsteele09/aquamind/storage/sqlitestore"
	"github.com/jrsteele09/aquamind/storage/tomlfile"
)

// openStorage builds the durable storage backend named by STORAGE_DRIVER.
func openStorage(ctx context.Context, c config.EnvConfig) (storage.Storage, func(), error) {
	noop := func() {}
	switch driver := c.GetStorageDriver(); driver {
	case config.StorageMemory:
		return storage.NewInMemory(), noop, nil
	case config.StorageTOML:
		s, err := tomlfile.New(filepath.Join(c.GetDataFolder(), "client.toml"))
		if err != nil {
			return nil, nil, fmt.Errorf("open toml storage: %w", err)
		}
		return s, noop, nil
	case config.StorageSQLite:
		if err := os.MkdirAll(c.GetDataFolder(), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data folder: %w", err)
		}
		s, err := sqlitestore.Open(ctx, "file:"+filepath.Join(c.GetDataFolder(), "client.db"))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorageRedis:
		s, err := redisstore.Dial(ctx, c.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("open redis storage: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
