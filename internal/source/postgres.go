package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"user-search/internal/domain"
)

// querier - часть pgxpool.Pool, которая нужна источнику
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource - таблица с колонками id, email, number
type PostgresSource struct {
	db    querier
	query string
}

// NewPostgresSource создает источник для таблицы table. Имя таблицы проверяется в config.
func NewPostgresSource(db querier, table string) *PostgresSource {
	return &PostgresSource{
		db:    db,
		query: fmt.Sprintf("SELECT email, number FROM %s ORDER BY id", table),
	}
}

type userRow struct {
	Email  *string `db:"email"`
	Number *string `db:"number"`
}

// Load выполняет запрос при каждом вызове, порядок - по id
func (s *PostgresSource) Load(ctx context.Context) ([]domain.UserRecord, error) {
	rows, err := s.db.Query(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	raw, err := pgx.CollectRows(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	records := make([]domain.UserRecord, 0, len(raw))
	for i, r := range raw {
		rec, err := validateRecord(i, r.Email, r.Number)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ConnectPostgres - пул соединений для чтения справочника
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.ConnectTimeout = 10 * time.Second

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
