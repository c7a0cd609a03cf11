package docstore

import (
	"context"
	"fmt"

	"cooptrick/internal/config"
)

// Open builds the store backend the config selects.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return NewMemory(), nil
	case config.StoreRedis:
		return NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case config.StorePostgres:
		return NewPostgres(ctx, cfg.DatabaseURL)
	case config.StoreNATS:
		return NewNATS(cfg.NATSURL)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
