package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/abishek1718/package-locker/internal/db"
	"github.com/abishek1718/package-locker/internal/repository"
	"github.com/abishek1718/package-locker/internal/storage"
)

const packageDetailColumns = `
        p.id, p.locker_id, p.resident_id, p.pin, p.photo_url, p.status, p.created_at, p.picked_up_at,
        r.name AS resident_name, r.email AS resident_email, r.unit_number AS resident_unit,
        l.locker_number, l.qr_identifier, l.status AS locker_status, l.current_pin AS locker_pin`

const packageDetailFrom = `
        FROM packages p
        JOIN residents r ON r.id = p.resident_id
        JOIN lockers l ON l.id = p.locker_id`

type PackageRepo struct {
	db db.DB
}

func NewPackageRepo(db db.DB) storage.PackageRepository {
	return &PackageRepo{db: db}
}

func (r *PackageRepo) CreateTx(ctx context.Context, tx db.Tx, pkg *repository.Package) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO packages (id, locker_id, resident_id, pin, photo_url, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, pkg.ID, pkg.LockerID, pkg.ResidentID, pkg.Pin, pkg.PhotoURL, pkg.Status, pkg.CreatedAt)
	return err
}

func (r *PackageRepo) GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Package, error) {
	var pkg repository.Package
	err := tx.Get(ctx, &pkg, "SELECT * FROM packages WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *PackageRepo) GetDetailByID(ctx context.Context, id string) (*repository.PackageDetail, error) {
	var detail repository.PackageDetail
	err := r.db.Get(ctx, &detail,
		"SELECT"+packageDetailColumns+packageDetailFrom+" WHERE p.id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &detail, nil
}

func (r *PackageRepo) ListDetails(ctx context.Context) ([]*repository.PackageDetail, error) {
	var details []*repository.PackageDetail
	err := r.db.Select(ctx, &details,
		"SELECT"+packageDetailColumns+packageDetailFrom+" ORDER BY p.created_at DESC")
	return details, err
}

// ListPendingBefore returns pending packages created before the cutoff,
// oldest first, joined for re-notification.
func (r *PackageRepo) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*repository.PackageDetail, error) {
	var details []*repository.PackageDetail
	err := r.db.Select(ctx, &details,
		"SELECT"+packageDetailColumns+packageDetailFrom+`
        WHERE p.status = $1 AND p.created_at < $2
        ORDER BY p.created_at ASC`, repository.PackagePending, cutoff)
	return details, err
}

// MarkPickedUpTx flips the package to PICKED_UP only when it is still
// PENDING. The boolean reports whether this call made the transition.
func (r *PackageRepo) MarkPickedUpTx(ctx context.Context, tx db.Tx, id string, at time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `
        UPDATE packages
        SET status = $2, picked_up_at = $3
        WHERE id = $1 AND status = $4
    `, id, repository.PackagePickedUp, at, repository.PackagePending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
