package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"user-search/internal/config"
)

// Open - создает источник по DATA_SOURCE. Возвращаемая функция закрывает соединения.
func Open(ctx context.Context, cfg *config.ServerConfig, log *zap.Logger) (Source, func(), error) {
	switch cfg.DataSource {
	case config.SourceFile:
		log.Info("using file data source", zap.String("path", cfg.DataFile))
		return NewFileSource(cfg.DataFile), func() {}, nil

	case config.SourcePostgres:
		pool, err := ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using postgres data source",
			zap.String("table", cfg.UsersTable),
			zap.Int32("max_conns", pool.Config().MaxConns),
		)
		return NewPostgresSource(pool, cfg.UsersTable), pool.Close, nil

	case config.SourceRedis:
		client, err := ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using redis data source",
			zap.String("addr", cfg.RedisAddr),
			zap.String("key", cfg.RedisKey),
		)
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Warn("redis close failed", zap.Error(err))
			}
		}
		return NewRedisSource(client, cfg.RedisKey), closeFn, nil
	}
	return nil, nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
}
