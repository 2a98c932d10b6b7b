package repository

import (
	"errors"
	"time"
)

var (
	ErrObjectNotFound    = errors.New("not found")
	ErrLockerUnavailable = errors.New("locker not available")
	ErrDuplicateEmail    = errors.New("email already exists")
)

const (
	RoleStaff = "STAFF"
	RoleAdmin = "ADMIN"

	LockerAvailable = "AVAILABLE"
	LockerOccupied  = "OCCUPIED"

	PackagePending  = "PENDING"
	PackagePickedUp = "PICKED_UP"
)

type User struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

type Resident struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	UnitNumber *string   `db:"unit_number"`
	CreatedAt  time.Time `db:"created_at"`
}

type Locker struct {
	ID           string  `db:"id"`
	LockerNumber string  `db:"locker_number"`
	QRIdentifier string  `db:"qr_identifier"`
	Status       string  `db:"status"`
	CurrentPin   *string `db:"current_pin"`
}

type Package struct {
	ID         string     `db:"id"`
	LockerID   string     `db:"locker_id"`
	ResidentID string     `db:"resident_id"`
	Pin        string     `db:"pin"`
	PhotoURL   *string    `db:"photo_url"`
	Status     string     `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
	PickedUpAt *time.Time `db:"picked_up_at"`
}

// PackageDetail is the joined row the pickup page and package listings
// are built from.
type PackageDetail struct {
	Package

	ResidentName  string  `db:"resident_name"`
	ResidentEmail string  `db:"resident_email"`
	ResidentUnit  *string `db:"resident_unit"`
	LockerNumber  string  `db:"locker_number"`
	QRIdentifier  string  `db:"qr_identifier"`
	LockerStatus  string  `db:"locker_status"`
	LockerPin     *string `db:"locker_pin"`
}
