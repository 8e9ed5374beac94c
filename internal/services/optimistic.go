package services

import (
	"anitrackr/internal/models"
	"anitrackr/internal/providers"
)

// optimisticDeps bundles what every store needs to run the
// apply-attempt-revert discipline: local mutation first, remote write after,
// rollback plus a user-visible error on failure.
type optimisticDeps struct {
	logger        providers.Logger
	metrics       providers.MetricsProviderInterface
	notifications NotificationServiceInterface
}

type mutation struct {
	store       string
	failTitle   string
	failMessage string
	apply       func()
	attempt     func() error
	revert      func()
}

// run executes the mutation and reports whether the remote write succeeded.
// The local state visible between apply and a failed attempt is the
// optimistic state; revert must restore the exact pre-apply snapshot.
func (d optimisticDeps) run(m mutation) bool {
	m.apply()
	if err := m.attempt(); err != nil {
		d.logger.Errorf(providers.TypeStore, "%s write failed, rolling back: %s", m.store, err)
		d.metrics.IncOptimisticRollbacks(m.store)
		m.revert()
		d.notifications.Notify(models.AppNotification{
			Kind:    models.NotificationInfo,
			Title:   m.failTitle,
			Message: m.failMessage,
			Icon:    "❌",
		})
		return false
	}
	return true
}
