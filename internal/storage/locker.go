package storage

import (
	"context"
	"fmt"
)

func (s *Storage) ListLockers(ctx context.Context) ([]*Locker, error) {
	rows, err := s.lockers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lockers: %w", err)
	}

	lockers := make([]*Locker, len(rows))
	for i, row := range rows {
		lockers[i] = toLocker(row)
	}
	return lockers, nil
}
