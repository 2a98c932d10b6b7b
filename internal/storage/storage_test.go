package storage

import (
	"time"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/abishek1718/package-locker/internal/cache"
	mock_db "github.com/abishek1718/package-locker/internal/db/mocks"
	mock_notify "github.com/abishek1718/package-locker/internal/notify/mocks"
	mock_storage "github.com/abishek1718/package-locker/internal/storage/mocks"
)

type storageMocks struct {
	db        *mock_db.MockDB
	tx        *mock_db.MockTx
	lockers   *mock_storage.MockLockerRepository
	residents *mock_storage.MockResidentRepository
	packages  *mock_storage.MockPackageRepository
	users     *mock_storage.MockUserRepository
	notifier  *mock_notify.MockNotifier
	cache     *cache.PackageCache
}

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestStorage(ctrl *gomock.Controller) (*Storage, *storageMocks) {
	m := &storageMocks{
		db:        mock_db.NewMockDB(ctrl),
		tx:        mock_db.NewMockTx(ctrl),
		lockers:   mock_storage.NewMockLockerRepository(ctrl),
		residents: mock_storage.NewMockResidentRepository(ctrl),
		packages:  mock_storage.NewMockPackageRepository(ctrl),
		users:     mock_storage.NewMockUserRepository(ctrl),
		notifier:  mock_notify.NewMockNotifier(ctrl),
		cache:     cache.NewPackageCache(),
	}

	stg := New(m.db, m.lockers, m.residents, m.packages, m.users,
		m.notifier, m.cache, "http://localhost:9000", zap.NewNop())
	stg.timeNow = func() time.Time { return testTime }

	return stg, m
}

// expectTx sets up a transaction that commits; the deferred rollback
// after commit is a no-op.
func (m *storageMocks) expectTx() {
	m.db.EXPECT().BeginTx(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
}

// expectFailedTx sets up a transaction that only ever rolls back.
func (m *storageMocks) expectFailedTx() {
	m.db.EXPECT().BeginTx(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
}

func strPtr(s string) *string {
	return &s
}
