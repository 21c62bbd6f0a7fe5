package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"calmcompanion/internal/config"
	"calmcompanion/internal/database"
	"calmcompanion/migrations"
)

// OpenBackend builds the backend selected by cfg.StoreBackend
func OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch strings.ToLower(cfg.StoreBackend) {
	case "sql", "":
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			return nil, err
		}
		log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

		if err := db.RunMigrations(migrationsFS(cfg.MigrationsPath)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return NewSQLBackend(db), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Printf("Redis connection established (addr: %s)", cfg.RedisAddr)
		return NewRedisBackend(client), nil

	case "memory":
		log.Println("Warning: using in-memory store, data will not survive a restart")
		return NewMemoryBackend(), nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.StoreBackend)
	}
}

// migrationsFS prefers an on-disk migrations directory so operators can add
// files without rebuilding, and falls back to the embedded copy.
func migrationsFS(path string) fs.FS {
	if path != "" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return os.DirFS(path)
		}
	}
	return migrations.FS
}
