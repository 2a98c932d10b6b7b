// Seed provisions the initial admin account, the building's lockers and
// a couple of sample residents. Safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/abishek1718/package-locker/internal/config"
	"github.com/abishek1718/package-locker/internal/db"
	"github.com/abishek1718/package-locker/internal/logger"
	"github.com/abishek1718/package-locker/internal/repository"
	"github.com/abishek1718/package-locker/internal/repository/postgresql"
)

func main() {
	ctx := context.Background()

	log := logger.New()
	defer log.Sync()

	cfg := config.Load()

	database, err := db.NewDb(ctx, cfg.DSN())
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer database.Close()

	if err := seedAdmin(ctx, database, cfg, log); err != nil {
		log.Fatal("failed to seed admin user", zap.Error(err))
	}
	if err := seedLockers(ctx, database, log); err != nil {
		log.Fatal("failed to seed lockers", zap.Error(err))
	}
	if err := seedResidents(ctx, database, log); err != nil {
		log.Fatal("failed to seed residents", zap.Error(err))
	}

	log.Info("seeding complete")
}

func seedAdmin(ctx context.Context, database db.DB, cfg *config.Config, log *zap.Logger) error {
	users := postgresql.NewUserRepo(database)

	_, err := users.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		log.Info("admin user already exists", zap.String("email", cfg.AdminEmail))
		return nil
	}
	if !errors.Is(err, repository.ErrObjectNotFound) {
		return err
	}

	password := cfg.AdminPassword
	if password == "" {
		password = "password123"
		log.Warn("ADMIN_PASSWORD not set, using default credentials")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := users.Create(ctx, &repository.User{
		ID:        uuid.NewString(),
		Name:      "Admin User",
		Email:     cfg.AdminEmail,
		Password:  string(hash),
		Role:      repository.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	log.Info("admin user created", zap.String("email", cfg.AdminEmail))
	return nil
}

func seedLockers(ctx context.Context, database db.DB, log *zap.Logger) error {
	lockers := postgresql.NewLockerRepo(database)

	for i := 101; i <= 110; i++ {
		err := lockers.Create(ctx, &repository.Locker{
			ID:           uuid.NewString(),
			LockerNumber: fmt.Sprintf("%d", i),
			QRIdentifier: fmt.Sprintf("LOCKER-%d", i),
			Status:       repository.LockerAvailable,
		})
		if err != nil {
			return err
		}
	}

	log.Info("lockers seeded", zap.Int("count", 10))
	return nil
}

func seedResidents(ctx context.Context, database db.DB, log *zap.Logger) error {
	residents := postgresql.NewResidentRepo(database)

	samples := []repository.Resident{
		{Name: "John Doe", Email: "john@example.com"},
		{Name: "Jane Smith", Email: "jane@example.com"},
	}

	for _, sample := range samples {
		resident := sample
		resident.ID = uuid.NewString()
		resident.CreatedAt = time.Now().UTC()
		if err := residents.UpsertByEmail(ctx, &resident); err != nil {
			return err
		}
	}

	log.Info("sample residents seeded", zap.Int("count", len(samples)))
	return nil
}
