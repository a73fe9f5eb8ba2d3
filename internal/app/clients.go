package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	redisclient "github.com/yungbote/survey-backend/internal/clients/redis"
	"github.com/yungbote/survey-backend/internal/platform/logger"
)

type Clients struct {
	Redis  *goredis.Client
	Events redisclient.EventBus
}

// wireClients connects to Redis only when REDIS_ADDR is set. Without it the service runs
// with no event fan-out.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return Clients{}, nil
	}
	rdb, err := redisclient.NewClient(ctx, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis client: %w", err)
	}
	bus, err := redisclient.NewEventBus(log, rdb, cfg.Redis.Channel)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis event bus: %w", err)
	}
	return Clients{Redis: rdb, Events: bus}, nil
}
