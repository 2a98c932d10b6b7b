package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abishek1718/package-locker/internal/metrics"
	"github.com/abishek1718/package-locker/internal/notify"
	"github.com/abishek1718/package-locker/internal/repository"
)

// CreatePackage registers a delivered package: it claims the locker with
// a fresh PIN, persists the package, and emails the resident. The locker
// claim and the package insert commit together; the email is best-effort
// and never rolls either back.
func (s *Storage) CreatePackage(ctx context.Context, lockerID, residentID string, photoURL *string) (*Package, error) {
	resident, err := s.residents.GetByID(ctx, residentID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, fmt.Errorf("resident %s: %w", residentID, repository.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	locker, err := s.lockers.GetByIDTx(ctx, tx, lockerID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, repository.ErrLockerUnavailable
		}
		return nil, fmt.Errorf("failed to get locker: %w", err)
	}

	pin := s.newPin()
	if locker.CurrentPin != nil && *locker.CurrentPin == pin {
		// Best-effort de-duplication against the locker's previous PIN.
		pin = s.newPin()
	}

	if err := s.lockers.AllocateTx(ctx, tx, lockerID, pin); err != nil {
		return nil, err
	}

	pkg := &repository.Package{
		ID:         uuid.New().String(),
		LockerID:   lockerID,
		ResidentID: residentID,
		Pin:        pin,
		PhotoURL:   photoURL,
		Status:     repository.PackagePending,
		CreatedAt:  s.timeNow().UTC(),
	}
	if err := s.packages.CreateTx(ctx, tx, pkg); err != nil {
		return nil, fmt.Errorf("failed to create package: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit package creation: %w", err)
	}

	detail := &repository.PackageDetail{
		Package:       *pkg,
		ResidentName:  resident.Name,
		ResidentEmail: resident.Email,
		ResidentUnit:  resident.UnitNumber,
		LockerNumber:  locker.LockerNumber,
		QRIdentifier:  locker.QRIdentifier,
		LockerStatus:  repository.LockerOccupied,
		LockerPin:     &pin,
	}
	s.cache.Set(detail)
	metrics.PackagesCreatedTotal.Inc()

	// Possession of the package is the ground truth; a failed email must
	// not undo the stored package.
	if err := s.notifier.Notify(ctx, notify.Notification{
		To:           resident.Email,
		ResidentName: resident.Name,
		LockerNumber: locker.LockerNumber,
		Pin:          pin,
		PickupLink:   s.pickupLink(pkg.ID),
	}); err != nil {
		s.logger.Warn("notification dispatch failed",
			zap.String("package_id", pkg.ID), zap.Error(err))
	}

	return toPackage(detail), nil
}

// MarkPickedUp transitions the package to PICKED_UP and frees its locker
// in one transaction. A repeated call on an already-picked-up package is
// a no-op success, since both the resident's link and a staff click may
// submit the same pickup.
func (s *Storage) MarkPickedUp(ctx context.Context, id string) (*Package, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	pkg, err := s.packages.GetByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}

	transitioned, err := s.packages.MarkPickedUpTx(ctx, tx, id, s.timeNow().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update package status: %w", err)
	}
	if transitioned {
		if err := s.lockers.ReleaseTx(ctx, tx, pkg.LockerID); err != nil {
			return nil, fmt.Errorf("failed to release locker: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit pickup: %w", err)
	}

	if transitioned {
		s.cache.Delete(id)
		metrics.PackagesPickedUpTotal.Inc()
	}

	detail, err := s.packages.GetDetailByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load picked-up package: %w", err)
	}
	return toPackage(detail), nil
}

// GetPackage is a public read backing the unauthenticated pickup page.
func (s *Storage) GetPackage(ctx context.Context, id string) (*Package, error) {
	if detail, ok := s.cache.Get(id); ok {
		return toPackage(detail), nil
	}

	detail, err := s.packages.GetDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}

	s.cache.Set(detail)
	return toPackage(detail), nil
}

func (s *Storage) ListPackages(ctx context.Context) ([]*Package, error) {
	details, err := s.packages.ListDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	packages := make([]*Package, len(details))
	for i, d := range details {
		packages[i] = toPackage(d)
	}
	return packages, nil
}

func (s *Storage) pickupLink(packageID string) string {
	return fmt.Sprintf("%s/pickup/%s", s.baseURL, packageID)
}
