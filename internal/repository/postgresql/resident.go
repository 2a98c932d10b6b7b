package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/abishek1718/package-locker/internal/db"
	"github.com/abishek1718/package-locker/internal/repository"
	"github.com/abishek1718/package-locker/internal/storage"
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

type ResidentRepo struct {
	db db.DB
}

func NewResidentRepo(db db.DB) storage.ResidentRepository {
	return &ResidentRepo{db: db}
}

func (r *ResidentRepo) Create(ctx context.Context, resident *repository.Resident) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO residents (id, name, email, unit_number, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, resident.ID, resident.Name, resident.Email, resident.UnitNumber, resident.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// UpsertByEmail inserts the resident or, when the email is already
// registered, refreshes the name and leaves the unit untouched.
func (r *ResidentRepo) UpsertByEmail(ctx context.Context, resident *repository.Resident) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO residents (id, name, email, unit_number, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
    `, resident.ID, resident.Name, resident.Email, resident.UnitNumber, resident.CreatedAt)
	return err
}

func (r *ResidentRepo) List(ctx context.Context) ([]*repository.Resident, error) {
	var residents []*repository.Resident
	err := r.db.Select(ctx, &residents, "SELECT * FROM residents ORDER BY name ASC")
	return residents, err
}

func (r *ResidentRepo) GetByID(ctx context.Context, id string) (*repository.Resident, error) {
	var resident repository.Resident
	err := r.db.Get(ctx, &resident, "SELECT * FROM residents WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &resident, nil
}
