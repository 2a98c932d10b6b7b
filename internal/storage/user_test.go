package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/abishek1718/package-locker/internal/repository"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to staff role and hashes the password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.users.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, row *repository.User) error {
				assert.Equal(t, repository.RoleStaff, row.Role)
				assert.NotEqual(t, "hunter2", row.Password)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(row.Password), []byte("hunter2")))
				return nil
			})

		user, err := stg.CreateUser(ctx, "Front Desk", "desk@example.com", "hunter2", "")
		require.NoError(t, err)
		assert.Equal(t, repository.RoleStaff, user.Role)
	})

	t.Run("admin role passes through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.users.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		user, err := stg.CreateUser(ctx, "Manager", "mgr@example.com", "hunter2", repository.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, repository.RoleAdmin, user.Role)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, _ := newTestStorage(ctrl)

		_, err := stg.CreateUser(ctx, "Sneaky", "s@example.com", "hunter2", "SUPERUSER")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("duplicate email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.users.EXPECT().Create(ctx, gomock.Any()).Return(repository.ErrDuplicateEmail)

		_, err := stg.CreateUser(ctx, "Front Desk", "desk@example.com", "hunter2", "")
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.users.EXPECT().Delete(ctx, "user-2").Return(nil)

		assert.NoError(t, stg.DeleteUser(ctx, "user-2", "user-1"))
	})

	t.Run("self delete is refused", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, _ := newTestStorage(ctrl)

		assert.ErrorIs(t, stg.DeleteUser(ctx, "user-1", "user-1"), ErrSelfDelete)
	})

	t.Run("unknown user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.users.EXPECT().Delete(ctx, "ghost").Return(repository.ErrObjectNotFound)

		assert.ErrorIs(t, stg.DeleteUser(ctx, "ghost", "user-1"), repository.ErrObjectNotFound)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	row := &repository.User{
		ID:       "user-1",
		Name:     "Front Desk",
		Email:    "desk@example.com",
		Password: string(hash),
		Role:     repository.RoleStaff,
	}

	t.Run("valid credentials", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.users.EXPECT().GetByEmail(ctx, "desk@example.com").Return(row, nil)

		user, err := stg.Authenticate(ctx, "desk@example.com", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.users.EXPECT().GetByEmail(ctx, "desk@example.com").Return(row, nil)

		_, err := stg.Authenticate(ctx, "desk@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.users.EXPECT().GetByEmail(ctx, "ghost@example.com").Return(nil, repository.ErrObjectNotFound)

		_, err := stg.Authenticate(ctx, "ghost@example.com", "hunter2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
