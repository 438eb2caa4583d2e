package bootstrap

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/appointment-booking/internal/api"
	"github.com/hackgods/appointment-booking/internal/appointment"
	"github.com/hackgods/appointment-booking/internal/config"
	mongostore "github.com/hackgods/appointment-booking/internal/mongo"
	"github.com/hackgods/appointment-booking/internal/notify"
	pgstore "github.com/hackgods/appointment-booking/internal/postgres"
	redisstore "github.com/hackgods/appointment-booking/internal/redis"
)

// OpenStore connects the configured backend. The returned checks are used
// by the readiness probe; close releases the connection.
func OpenStore(ctx context.Context, cfg config.Config) (appointment.Store, map[string]api.Pinger, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		store := redisstore.NewStore(rdb, cfg.StateKey)
		return store, map[string]api.Pinger{"redis": store}, func() { _ = rdb.Close() }, nil

	case config.StorePostgres:
		pool, err := pgstore.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		store := pgstore.NewStore(pool, cfg.StateKey)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return store, map[string]api.Pinger{"postgres": store}, pool.Close, nil

	case config.StoreMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, nil, err
		}
		store := mongostore.NewStore(client, cfg.MongoDatabase, cfg.StateKey)
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return store, map[string]api.Pinger{"mongo": store}, closeFn, nil

	default:
		return appointment.NewMemoryStore(), nil, func() {}, nil
	}
}

func OpenNotifier(cfg config.Config, logger *zap.Logger) (appointment.Notifier, func(), error) {
	switch cfg.Notifier {
	case config.NotifierEmailJS:
		n := notify.NewEmailJS(notify.EmailJSConfig{
			Endpoint:   cfg.EmailJSEndpoint,
			PublicKey:  cfg.EmailJSPublicKey,
			PrivateKey: cfg.EmailJSPrivateKey,
		}, nil)
		return n, func() {}, nil

	case config.NotifierSMTP:
		return notify.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPTo), func() {}, nil

	case config.NotifierKafka:
		k, err := notify.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		return k, closeQuietly(k, logger), nil

	default:
		return notify.NewLog(logger), func() {}, nil
	}
}

func closeQuietly(c io.Closer, logger *zap.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("close error", zap.Error(err))
		}
	}
}
