//go:generate mockgen -source ./storage.go -destination=./mocks/storage.go -package=mock_storage
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abishek1718/package-locker/internal/cache"
	"github.com/abishek1718/package-locker/internal/db"
	"github.com/abishek1718/package-locker/internal/notify"
	"github.com/abishek1718/package-locker/internal/repository"
)

var (
	ErrSelfDelete         = errors.New("cannot delete your own account")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
)

type LockerRepository interface {
	Create(ctx context.Context, locker *repository.Locker) error
	List(ctx context.Context) ([]*repository.Locker, error)
	GetByID(ctx context.Context, id string) (*repository.Locker, error)
	GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Locker, error)
	AllocateTx(ctx context.Context, tx db.Tx, id, pin string) error
	ReleaseTx(ctx context.Context, tx db.Tx, id string) error
}

type ResidentRepository interface {
	Create(ctx context.Context, resident *repository.Resident) error
	UpsertByEmail(ctx context.Context, resident *repository.Resident) error
	List(ctx context.Context) ([]*repository.Resident, error)
	GetByID(ctx context.Context, id string) (*repository.Resident, error)
}

type PackageRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, pkg *repository.Package) error
	GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Package, error)
	GetDetailByID(ctx context.Context, id string) (*repository.PackageDetail, error)
	ListDetails(ctx context.Context) ([]*repository.PackageDetail, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*repository.PackageDetail, error)
	MarkPickedUpTx(ctx context.Context, tx db.Tx, id string, at time.Time) (bool, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *repository.User) error
	List(ctx context.Context) ([]*repository.User, error)
	GetByEmail(ctx context.Context, email string) (*repository.User, error)
	Delete(ctx context.Context, id string) error
}

type OutboxTaskRepository interface {
	Create(ctx context.Context, db db.DB, task *repository.OutboxTask) error
	GetProcessableTasks(ctx context.Context, tx db.Tx, limit int) ([]*repository.OutboxTask, error)
	UpdateTaskStatusTx(ctx context.Context, tx db.Tx, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
	UpdateTaskStatus(ctx context.Context, db db.DB, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
}

// Storage is the service facade the HTTP layer talks to. All shared
// state lives in postgres; the struct itself only carries handles.
type Storage struct {
	db        db.DB
	lockers   LockerRepository
	residents ResidentRepository
	packages  PackageRepository
	users     UserRepository
	notifier  notify.Notifier
	cache     *cache.PackageCache
	logger    *zap.Logger

	baseURL string

	// injectable for tests
	timeNow func() time.Time
	newPin  func() string
}

func New(
	database db.DB,
	lockers LockerRepository,
	residents ResidentRepository,
	packages PackageRepository,
	users UserRepository,
	notifier notify.Notifier,
	pkgCache *cache.PackageCache,
	baseURL string,
	logger *zap.Logger,
) *Storage {
	return &Storage{
		db:        database,
		lockers:   lockers,
		residents: residents,
		packages:  packages,
		users:     users,
		notifier:  notifier,
		cache:     pkgCache,
		logger:    logger,
		baseURL:   baseURL,
		timeNow:   time.Now,
		newPin:    generatePin,
	}
}
