package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"github.com/abishek1718/package-locker/internal/db"
	"github.com/abishek1718/package-locker/internal/repository"
	"github.com/abishek1718/package-locker/internal/storage"
)

type LockerRepo struct {
	db db.DB
}

func NewLockerRepo(db db.DB) storage.LockerRepository {
	return &LockerRepo{db: db}
}

func (r *LockerRepo) Create(ctx context.Context, locker *repository.Locker) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO lockers (id, locker_number, qr_identifier, status, current_pin)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (locker_number) DO NOTHING
    `, locker.ID, locker.LockerNumber, locker.QRIdentifier, locker.Status, locker.CurrentPin)
	return err
}

func (r *LockerRepo) List(ctx context.Context) ([]*repository.Locker, error) {
	var lockers []*repository.Locker
	err := r.db.Select(ctx, &lockers, "SELECT * FROM lockers ORDER BY locker_number ASC")
	return lockers, err
}

func (r *LockerRepo) GetByID(ctx context.Context, id string) (*repository.Locker, error) {
	var locker repository.Locker
	err := r.db.Get(ctx, &locker, "SELECT * FROM lockers WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &locker, nil
}

func (r *LockerRepo) GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Locker, error) {
	var locker repository.Locker
	err := tx.Get(ctx, &locker, "SELECT * FROM lockers WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &locker, nil
}

// AllocateTx claims the locker with a single conditional write so two
// concurrent allocations cannot both succeed.
func (r *LockerRepo) AllocateTx(ctx context.Context, tx db.Tx, id, pin string) error {
	tag, err := tx.Exec(ctx, `
        UPDATE lockers
        SET status = $2, current_pin = $3
        WHERE id = $1 AND status = $4
    `, id, repository.LockerOccupied, pin, repository.LockerAvailable)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrLockerUnavailable
	}
	return nil
}

// ReleaseTx frees the locker unconditionally and is safe to repeat.
func (r *LockerRepo) ReleaseTx(ctx context.Context, tx db.Tx, id string) error {
	_, err := tx.Exec(ctx, `
        UPDATE lockers
        SET status = $2, current_pin = NULL
        WHERE id = $1
    `, id, repository.LockerAvailable)
	return err
}
