//go:generate mockgen -source ./notifier.go -destination=./mocks/notifier.go -package=mock_notify
package notify

import "context"

// Notification is the pickup-instruction message sent when a package is
// registered and re-sent by the reminder sweep.
type Notification struct {
	To           string
	ResidentName string
	LockerNumber string
	Pin          string
	PickupLink   string
}

// Notifier delivers a pickup notification. Implementations are expected
// to be best-effort: a returned error means the attempt failed, but
// callers treat delivery as fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
