package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mock_db "github.com/abishek1718/package-locker/internal/db/mocks"
	"github.com/abishek1718/package-locker/internal/repository"
	"github.com/abishek1718/package-locker/internal/repository/postgresql"
)

func TestResidentRepo_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	resident := &repository.Resident{
		ID:        "res-1",
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		CreatedAt: now,
	}

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_db.NewMockDB(ctrl)
		repo := postgresql.NewResidentRepo(mockDB)

		mockDB.EXPECT().Exec(
			gomock.Any(),
			gomock.Any(),
			gomock.Eq(resident.ID),
			gomock.Eq(resident.Name),
			gomock.Eq(resident.Email),
			gomock.Nil(),
			gomock.Eq(resident.CreatedAt),
		).Return(pgconn.CommandTag("INSERT 0 1"), nil)

		assert.NoError(t, repo.Create(ctx, resident))
	})

	t.Run("unique violation maps to duplicate email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_db.NewMockDB(ctrl)
		repo := postgresql.NewResidentRepo(mockDB)

		mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, &pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, resident)
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	})
}

func TestResidentRepo_UpsertByEmail(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_db.NewMockDB(ctrl)
	repo := postgresql.NewResidentRepo(mockDB)

	resident := &repository.Resident{
		ID:    "res-1",
		Name:  "John Doe",
		Email: "john@example.com",
	}

	mockDB.EXPECT().Exec(
		gomock.Any(),
		gomock.Any(),
		gomock.Eq(resident.ID),
		gomock.Eq(resident.Name),
		gomock.Eq(resident.Email),
		gomock.Nil(),
		gomock.Any(),
	).Return(pgconn.CommandTag("INSERT 0 1"), nil)

	assert.NoError(t, repo.UpsertByEmail(ctx, resident))
}
