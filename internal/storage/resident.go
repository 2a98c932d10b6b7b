package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/abishek1718/package-locker/internal/repository"
)

func (s *Storage) CreateResident(ctx context.Context, name, email string, unitNumber *string) (*Resident, error) {
	row := &repository.Resident{
		ID:         uuid.New().String(),
		Name:       name,
		Email:      email,
		UnitNumber: unitNumber,
		CreatedAt:  s.timeNow().UTC(),
	}
	if err := s.residents.Create(ctx, row); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create resident: %w", err)
	}
	return toResident(row), nil
}

func (s *Storage) ListResidents(ctx context.Context) ([]*Resident, error) {
	rows, err := s.residents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}

	residents := make([]*Resident, len(rows))
	for i, row := range rows {
		residents[i] = toResident(row)
	}
	return residents, nil
}

// ImportResidentsCSV ingests Name,Email,Unit lines. Lines are split on
// commas as-is; malformed lines and duplicate emails become per-line
// errors and the import always runs to completion. Error messages carry
// 1-based line numbers from the uploaded file.
func (s *Storage) ImportResidentsCSV(ctx context.Context, csvText string) *ImportResult {
	result := &ImportResult{Errors: []string{}}

	lines := strings.Split(csvText, "\n")
	startIndex := 0
	if len(lines) > 0 && strings.Contains(strings.ToLower(lines[0]), "email") {
		startIndex = 1
	}

	for i := startIndex; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Line %d: Invalid format (expected Name,Email,Unit)", i+1))
			continue
		}

		name := strings.TrimSpace(parts[0])
		email := strings.TrimSpace(parts[1])
		unit := strings.TrimSpace(parts[2])
		if name == "" || email == "" || unit == "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Line %d: Missing required fields", i+1))
			continue
		}

		row := &repository.Resident{
			ID:         uuid.New().String(),
			Name:       name,
			Email:      email,
			UnitNumber: &unit,
			CreatedAt:  s.timeNow().UTC(),
		}
		if err := s.residents.Create(ctx, row); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Line %d: Failed to create %s (might already exist)", i+1, email))
			continue
		}
		result.SuccessCount++
	}

	return result
}

// ImportRecipientsCSV is the email-only directory variant: Name,Email
// lines, upserted by email so a re-upload refreshes names instead of
// failing on duplicates.
func (s *Storage) ImportRecipientsCSV(ctx context.Context, csvText string) *ImportResult {
	result := &ImportResult{Errors: []string{}}

	lines := strings.Split(csvText, "\n")
	startIndex := 0
	if len(lines) > 0 {
		first := strings.ToLower(lines[0])
		if strings.Contains(first, "name") && strings.Contains(first, "email") {
			startIndex = 1
		}
	}

	for i := startIndex; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Line %d: Invalid format (Expected: Name,Email)", i+1))
			continue
		}

		name := strings.TrimSpace(parts[0])
		email := strings.TrimSpace(parts[1])
		if name == "" || email == "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Line %d: Missing name or email", i+1))
			continue
		}

		row := &repository.Resident{
			ID:        uuid.New().String(),
			Name:      name,
			Email:     email,
			CreatedAt: s.timeNow().UTC(),
		}
		if err := s.residents.UpsertByEmail(ctx, row); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Failed to import %s", email))
			continue
		}
		result.SuccessCount++
	}

	return result
}
