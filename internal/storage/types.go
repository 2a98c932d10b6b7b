package storage

import (
	"time"

	"github.com/abishek1718/package-locker/internal/repository"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type Resident struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	UnitNumber *string   `json:"unitNumber,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Locker struct {
	ID           string  `json:"id"`
	LockerNumber string  `json:"lockerNumber"`
	QRIdentifier string  `json:"qrIdentifier"`
	Status       string  `json:"status"`
	CurrentPin   *string `json:"currentPin,omitempty"`
}

// Package is the joined representation returned by every package
// operation, mirroring what the pickup page renders.
type Package struct {
	ID         string     `json:"id"`
	LockerID   string     `json:"lockerId"`
	ResidentID string     `json:"residentId"`
	Pin        string     `json:"pin"`
	PhotoURL   *string    `json:"photoUrl,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	PickedUpAt *time.Time `json:"pickedUpAt,omitempty"`
	Resident   Resident   `json:"resident"`
	Locker     Locker     `json:"locker"`
}

type ImportResult struct {
	SuccessCount int      `json:"successCount"`
	Errors       []string `json:"errors"`
}

type ReminderOutcome struct {
	ID       string `json:"id"`
	Resident string `json:"resident"`
	Status   string `json:"status"`
}

type SweepResult struct {
	Message string            `json:"message"`
	Results []ReminderOutcome `json:"results"`
}

func toUser(u *repository.User) *User {
	return &User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toResident(r *repository.Resident) *Resident {
	return &Resident{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		UnitNumber: r.UnitNumber,
		CreatedAt:  r.CreatedAt,
	}
}

func toLocker(l *repository.Locker) *Locker {
	return &Locker{
		ID:           l.ID,
		LockerNumber: l.LockerNumber,
		QRIdentifier: l.QRIdentifier,
		Status:       l.Status,
		CurrentPin:   l.CurrentPin,
	}
}

func toPackage(d *repository.PackageDetail) *Package {
	return &Package{
		ID:         d.ID,
		LockerID:   d.LockerID,
		ResidentID: d.ResidentID,
		Pin:        d.Pin,
		PhotoURL:   d.PhotoURL,
		Status:     d.Status,
		CreatedAt:  d.CreatedAt,
		PickedUpAt: d.PickedUpAt,
		Resident: Resident{
			ID:         d.ResidentID,
			Name:       d.ResidentName,
			Email:      d.ResidentEmail,
			UnitNumber: d.ResidentUnit,
		},
		Locker: Locker{
			ID:           d.LockerID,
			LockerNumber: d.LockerNumber,
			QRIdentifier: d.QRIdentifier,
			Status:       d.LockerStatus,
			CurrentPin:   d.LockerPin,
		},
	}
}
