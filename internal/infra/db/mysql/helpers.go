package mysql

import (
	"encoding/json"
	"fmt"

	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads the column order used by every SELECT in this package.
func scanRecord(s scanner) (*domain.Record, error) {
	var (
		a     domain.Record
		input []byte
	)
	if err := s.Scan(&a.ID, &a.OwnerID, &a.OwnerEmail, &input, &a.Result, &a.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(input, &a.Input); err != nil {
		return nil, fmt.Errorf("decode input of %s: %w", a.ID, err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
