package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PackagesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "packagelocker_packages_created_total",
		Help: "Total number of packages successfully registered.",
	})

	PackagesPickedUpTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "packagelocker_packages_picked_up_total",
		Help: "Total number of packages marked as picked up.",
	})

	RemindersSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "packagelocker_reminders_sent_total",
		Help: "Total number of reminder emails sent by the sweep.",
	})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "packagelocker_notification_failures_total",
		Help: "Total number of notification dispatches that failed.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "packagelocker_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	PackageCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "packagelocker_package_cache_items",
		Help: "Current number of items in the pending-package cache.",
	})
)
