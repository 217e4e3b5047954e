package cli

import (
	"context"
	"log"
	"time"

	"addition-drill/internal/app"
	"addition-drill/internal/config"
	"addition-drill/internal/infra/file"
	"addition-drill/internal/infra/memory"
	pghistory "addition-drill/internal/infra/postgres"
	redishistory "addition-drill/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// openHistory picks a history backend: Redis, then Postgres, then a JSON file,
// then memory. The returned func releases backend connections.
func openHistory(ctx context.Context, cfg config.Config) (*app.History, func(), error) {
	repo, closeFn, err := openHistoryRepository(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return app.NewHistory(repo), closeFn, nil
}

func openHistoryRepository(ctx context.Context, cfg config.Config) (app.HistoryRepository, func(), error) {
	switch {
	case cfg.Redis.Addr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.TTLDuration(cfg.Redis.TTL, 0)
		log.Printf("history: redis %s key %q", cfg.Redis.Addr, cfg.Redis.Key)
		return redishistory.NewHistoryStore(client, cfg.Redis.Key, ttl), func() { _ = client.Close() }, nil
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("history: postgres")
		return pghistory.NewHistoryStore(pool), pool.Close, nil
	case cfg.History.File != "":
		log.Printf("history: file %s", cfg.History.File)
		return file.NewHistoryStore(cfg.History.File), func() {}, nil
	default:
		log.Printf("history: in-memory, records will not survive restarts")
		return memory.NewHistoryStore(), func() {}, nil
	}
}

func controllerOptions(cfg config.Config) []app.ControllerOption {
	delay := config.TTLDuration(cfg.Drill.AutoAdvanceDelay, app.DefaultAutoAdvanceDelay)
	return []app.ControllerOption{app.WithAutoAdvanceDelay(delay)}
}

func requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, 30*time.Second)
}
