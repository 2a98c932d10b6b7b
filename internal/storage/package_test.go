package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/abishek1718/package-locker/internal/db"
	"github.com/abishek1718/package-locker/internal/notify"
	"github.com/abishek1718/package-locker/internal/repository"
)

func TestCreatePackage(t *testing.T) {
	ctx := context.Background()

	resident := &repository.Resident{
		ID:         "res-1",
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		UnitNumber: strPtr("5A"),
	}
	locker := &repository.Locker{
		ID:           "lock-1",
		LockerNumber: "101",
		QRIdentifier: "LOCKER-101",
		Status:       repository.LockerAvailable,
	}

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)
		stg.newPin = func() string { return "123456" }

		m.residents.EXPECT().GetByID(ctx, "res-1").Return(resident, nil)
		m.expectTx()
		m.lockers.EXPECT().GetByIDTx(ctx, m.tx, "lock-1").Return(locker, nil)
		m.lockers.EXPECT().AllocateTx(ctx, m.tx, "lock-1", "123456").Return(nil)
		m.packages.EXPECT().
			CreateTx(ctx, m.tx, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ db.Tx, pkg *repository.Package) error {
				assert.NotEmpty(t, pkg.ID)
				assert.Equal(t, "lock-1", pkg.LockerID)
				assert.Equal(t, "res-1", pkg.ResidentID)
				assert.Equal(t, "123456", pkg.Pin)
				assert.Equal(t, repository.PackagePending, pkg.Status)
				assert.Equal(t, testTime, pkg.CreatedAt)
				return nil
			})
		m.notifier.EXPECT().
			Notify(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, n notify.Notification) error {
				assert.Equal(t, "ada@example.com", n.To)
				assert.Equal(t, "Ada Lovelace", n.ResidentName)
				assert.Equal(t, "101", n.LockerNumber)
				assert.Equal(t, "123456", n.Pin)
				assert.Contains(t, n.PickupLink, "http://localhost:9000/pickup/")
				return nil
			})

		pkg, err := stg.CreatePackage(ctx, "lock-1", "res-1", nil)
		require.NoError(t, err)
		assert.Equal(t, "123456", pkg.Pin)
		assert.Equal(t, repository.PackagePending, pkg.Status)
		assert.Equal(t, "Ada Lovelace", pkg.Resident.Name)
		assert.Equal(t, "101", pkg.Locker.LockerNumber)

		cached, found := m.cache.Get(pkg.ID)
		require.True(t, found)
		assert.Equal(t, pkg.ID, cached.ID)
	})

	t.Run("regenerates pin matching the locker's previous one", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)
		pins := []string{"111111", "222222"}
		stg.newPin = func() string {
			pin := pins[0]
			pins = pins[1:]
			return pin
		}

		reusedLocker := *locker
		reusedLocker.CurrentPin = strPtr("111111")

		m.residents.EXPECT().GetByID(ctx, "res-1").Return(resident, nil)
		m.expectTx()
		m.lockers.EXPECT().GetByIDTx(ctx, m.tx, "lock-1").Return(&reusedLocker, nil)
		m.lockers.EXPECT().AllocateTx(ctx, m.tx, "lock-1", "222222").Return(nil)
		m.packages.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).Return(nil)
		m.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil)

		pkg, err := stg.CreatePackage(ctx, "lock-1", "res-1", nil)
		require.NoError(t, err)
		assert.Equal(t, "222222", pkg.Pin)
	})

	t.Run("unknown resident", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.residents.EXPECT().GetByID(ctx, "ghost").Return(nil, repository.ErrObjectNotFound)

		_, err := stg.CreatePackage(ctx, "lock-1", "ghost", nil)
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})

	t.Run("unknown locker reads as unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.residents.EXPECT().GetByID(ctx, "res-1").Return(resident, nil)
		m.expectFailedTx()
		m.lockers.EXPECT().GetByIDTx(ctx, m.tx, "ghost").Return(nil, repository.ErrObjectNotFound)

		_, err := stg.CreatePackage(ctx, "ghost", "res-1", nil)
		assert.ErrorIs(t, err, repository.ErrLockerUnavailable)
	})

	t.Run("occupied locker rolls everything back", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)
		stg.newPin = func() string { return "123456" }

		occupied := *locker
		occupied.Status = repository.LockerOccupied

		m.residents.EXPECT().GetByID(ctx, "res-1").Return(resident, nil)
		m.expectFailedTx()
		m.lockers.EXPECT().GetByIDTx(ctx, m.tx, "lock-1").Return(&occupied, nil)
		m.lockers.EXPECT().AllocateTx(ctx, m.tx, "lock-1", "123456").Return(repository.ErrLockerUnavailable)

		_, err := stg.CreatePackage(ctx, "lock-1", "res-1", nil)
		assert.ErrorIs(t, err, repository.ErrLockerUnavailable)

		_, found := m.cache.Get("lock-1")
		assert.False(t, found)
	})

	t.Run("failed notification does not fail the creation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)
		stg.newPin = func() string { return "123456" }

		m.residents.EXPECT().GetByID(ctx, "res-1").Return(resident, nil)
		m.expectTx()
		m.lockers.EXPECT().GetByIDTx(ctx, m.tx, "lock-1").Return(locker, nil)
		m.lockers.EXPECT().AllocateTx(ctx, m.tx, "lock-1", "123456").Return(nil)
		m.packages.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).Return(nil)
		m.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(errors.New("smtp down"))

		pkg, err := stg.CreatePackage(ctx, "lock-1", "res-1", nil)
		require.NoError(t, err)
		assert.Equal(t, repository.PackagePending, pkg.Status)
	})
}

func TestMarkPickedUp(t *testing.T) {
	ctx := context.Background()
	pickedUpAt := testTime

	pendingRow := &repository.Package{
		ID:         "pkg-1",
		LockerID:   "lock-1",
		ResidentID: "res-1",
		Pin:        "123456",
		Status:     repository.PackagePending,
	}
	pickedUpDetail := &repository.PackageDetail{
		Package: repository.Package{
			ID:         "pkg-1",
			LockerID:   "lock-1",
			ResidentID: "res-1",
			Pin:        "123456",
			Status:     repository.PackagePickedUp,
			PickedUpAt: &pickedUpAt,
		},
		ResidentName: "Ada Lovelace",
		LockerNumber: "101",
		LockerStatus: repository.LockerAvailable,
	}

	t.Run("pickup frees the locker", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)
		m.cache.Set(&repository.PackageDetail{Package: *pendingRow})

		m.expectTx()
		m.packages.EXPECT().GetByIDTx(ctx, m.tx, "pkg-1").Return(pendingRow, nil)
		m.packages.EXPECT().MarkPickedUpTx(ctx, m.tx, "pkg-1", testTime).Return(true, nil)
		m.lockers.EXPECT().ReleaseTx(ctx, m.tx, "lock-1").Return(nil)
		m.packages.EXPECT().GetDetailByID(ctx, "pkg-1").Return(pickedUpDetail, nil)

		pkg, err := stg.MarkPickedUp(ctx, "pkg-1")
		require.NoError(t, err)
		assert.Equal(t, repository.PackagePickedUp, pkg.Status)
		assert.NotNil(t, pkg.PickedUpAt)
		assert.Equal(t, repository.LockerAvailable, pkg.Locker.Status)

		_, found := m.cache.Get("pkg-1")
		assert.False(t, found)
	})

	t.Run("second pickup is a no-op success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		alreadyPicked := *pendingRow
		alreadyPicked.Status = repository.PackagePickedUp
		alreadyPicked.PickedUpAt = &pickedUpAt

		m.expectTx()
		m.packages.EXPECT().GetByIDTx(ctx, m.tx, "pkg-1").Return(&alreadyPicked, nil)
		m.packages.EXPECT().MarkPickedUpTx(ctx, m.tx, "pkg-1", testTime).Return(false, nil)
		m.packages.EXPECT().GetDetailByID(ctx, "pkg-1").Return(pickedUpDetail, nil)

		pkg, err := stg.MarkPickedUp(ctx, "pkg-1")
		require.NoError(t, err)
		assert.Equal(t, repository.PackagePickedUp, pkg.Status)
	})

	t.Run("unknown package", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.expectFailedTx()
		m.packages.EXPECT().GetByIDTx(ctx, m.tx, "ghost").Return(nil, repository.ErrObjectNotFound)

		_, err := stg.MarkPickedUp(ctx, "ghost")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})
}

func TestGetPackage(t *testing.T) {
	ctx := context.Background()

	detail := &repository.PackageDetail{
		Package: repository.Package{
			ID:       "pkg-1",
			LockerID: "lock-1",
			Pin:      "123456",
			Status:   repository.PackagePending,
		},
		ResidentName: "Ada Lovelace",
		LockerNumber: "101",
	}

	t.Run("cache hit skips the database", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)
		m.cache.Set(detail)

		pkg, err := stg.GetPackage(ctx, "pkg-1")
		require.NoError(t, err)
		assert.Equal(t, "123456", pkg.Pin)
	})

	t.Run("cache miss reads through and fills the cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.packages.EXPECT().GetDetailByID(ctx, "pkg-1").Return(detail, nil)

		pkg, err := stg.GetPackage(ctx, "pkg-1")
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", pkg.Resident.Name)

		_, found := m.cache.Get("pkg-1")
		assert.True(t, found)
	})

	t.Run("unknown package", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		stg, m := newTestStorage(ctrl)

		m.packages.EXPECT().GetDetailByID(ctx, "ghost").Return(nil, repository.ErrObjectNotFound)

		_, err := stg.GetPackage(ctx, "ghost")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})
}

func TestListPackages(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stg, m := newTestStorage(ctrl)

	m.packages.EXPECT().ListDetails(ctx).Return([]*repository.PackageDetail{
		{Package: repository.Package{ID: "pkg-2", CreatedAt: testTime}},
		{Package: repository.Package{ID: "pkg-1", CreatedAt: testTime.Add(-time.Hour)}},
	}, nil)

	packages, err := stg.ListPackages(ctx)
	require.NoError(t, err)
	require.Len(t, packages, 2)
	assert.Equal(t, "pkg-2", packages[0].ID)
}
