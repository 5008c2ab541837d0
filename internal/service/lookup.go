package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"user-search/internal/domain"
	"user-search/internal/source"
)

// LookupService ищет пользователей в справочнике. Состояния между вызовами не хранит.
type LookupService struct {
	source  source.Source
	log     *zap.Logger
	metrics *Metrics
}

// NewLookupService создает сервис поиска поверх источника данных
func NewLookupService(src source.Source, log *zap.Logger, metrics *Metrics) *LookupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LookupService{
		source:  src,
		log:     log,
		metrics: metrics,
	}
}

// Find - читает справочник заново и возвращает записи, подходящие под запрос,
// в порядке источника. Ошибка чтения или разбора оборачивается в domain.ErrDataUnavailable.
func (s *LookupService) Find(ctx context.Context, query domain.SearchQuery) ([]domain.UserRecord, error) {
	start := time.Now()

	records, err := s.source.Load(ctx)
	if err != nil {
		s.metrics.observeLookup(time.Since(start).Seconds(), err)
		s.log.Error("failed to load user data",
			zap.String("email", query.Email),
			zap.String("number", query.Number),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}

	results := make([]domain.UserRecord, 0, len(records))
	for _, rec := range records {
		if query.Matches(rec) {
			results = append(results, rec)
		}
	}

	s.metrics.observeLookup(time.Since(start).Seconds(), nil)
	s.log.Debug("lookup completed",
		zap.String("email", query.Email),
		zap.String("number", query.Number),
		zap.Int("total", len(records)),
		zap.Int("found", len(results)),
	)

	return results, nil
}
