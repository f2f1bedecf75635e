// Package bootstrap connects the runtime dependencies shared by the server
// and the maintenance commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/middleware"
	"yatube/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipSchema leaves the schema untouched (migrate commands manage it).
	SkipSchema bool
	// LoadDefaultGroups upserts the built-in group fixtures.
	LoadDefaultGroups bool
}

// InitRuntime connects to the database and Redis, applies the schema and
// optionally loads the default groups. A nil Redis client means Redis was
// unreachable and callers should fall back to in-process stores.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if !opts.SkipSchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	r, err := cache.InitRedis(cfg.RedisURL)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "redis unavailable, continuing with in-memory cache",
			slog.String("addr", cfg.RedisURL), slog.String("error", err.Error()))
		r = nil
	}

	if opts.LoadDefaultGroups {
		res, err := seed.DefaultGroups(ctx, db)
		if err != nil {
			return nil, nil, fmt.Errorf("load default groups: %w", err)
		}
		middleware.Logger.InfoContext(ctx, "default groups ensured",
			slog.Int("created", res.Created), slog.Int("updated", res.Updated))
	}

	return db, r, nil
}
