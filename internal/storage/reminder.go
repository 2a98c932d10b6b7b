package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abishek1718/package-locker/internal/metrics"
	"github.com/abishek1718/package-locker/internal/notify"
)

// ReminderThreshold is how long a package may sit pending before the
// sweep re-notifies its resident.
const ReminderThreshold = 48 * time.Hour

// SweepReminders re-sends the pickup notification for every package
// pending longer than the threshold. One resident's failure never stops
// the sweep for the rest.
func (s *Storage) SweepReminders(ctx context.Context) (*SweepResult, error) {
	cutoff := s.timeNow().UTC().Add(-ReminderThreshold)

	expired, err := s.packages.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired packages: %w", err)
	}

	result := &SweepResult{
		Message: fmt.Sprintf("Processed %d expired packages", len(expired)),
		Results: []ReminderOutcome{},
	}

	for _, pkg := range expired {
		outcome := ReminderOutcome{ID: pkg.ID, Resident: pkg.ResidentEmail}

		err := s.notifier.Notify(ctx, notify.Notification{
			To:           pkg.ResidentEmail,
			ResidentName: pkg.ResidentName,
			LockerNumber: pkg.LockerNumber,
			Pin:          pkg.Pin,
			PickupLink:   s.pickupLink(pkg.ID),
		})
		if err != nil {
			s.logger.Warn("reminder dispatch failed",
				zap.String("package_id", pkg.ID), zap.Error(err))
			outcome.Status = "Failed: " + err.Error()
		} else {
			outcome.Status = "Reminder Sent"
			metrics.RemindersSentTotal.Inc()
		}

		result.Results = append(result.Results, outcome)
	}

	return result, nil
}
