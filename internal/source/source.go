// Package source - источники справочника пользователей. Каждый вызов Load читает данные заново.
package source

import (
	"context"
	"encoding/json"
	"fmt"

	"user-search/internal/domain"
)

// Source - внешний read-only источник полного набора записей
type Source interface {
	Load(ctx context.Context) ([]domain.UserRecord, error)
}

// Func - адаптер обычной функции к Source
type Func func(ctx context.Context) ([]domain.UserRecord, error)

// Load вызывает f(ctx).
func (f Func) Load(ctx context.Context) ([]domain.UserRecord, error) {
	return f(ctx)
}

// rawRecord - запись в JSON документе; указатели отличают отсутствующее поле от пустого
type rawRecord struct {
	Email  *string `json:"email"`
	Number *string `json:"number"`
}

// decodeRecords - разбирает JSON массив записей, проверяет схему и приводит номера к цифрам
func decodeRecords(data []byte) ([]domain.UserRecord, error) {
	var raw []rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse user data: %w", err)
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

func validateRecord(i int, email, number *string) (domain.UserRecord, error) {
	if email == nil || *email == "" {
		return domain.UserRecord{}, fmt.Errorf("%w: record %d has no email", domain.ErrInvalidRecord, i)
	}
	if number == nil {
		return domain.UserRecord{}, fmt.Errorf("%w: record %d has no number", domain.ErrInvalidRecord, i)
	}
	return domain.UserRecord{
		Email:  *email,
		Number: domain.CanonicalNumber(*number),
	}, nil
}
