package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/containrrr/shoutrrr"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/logger"
)

// NotificationService pushes rollback notices to the shoutrrr service URLs
// configured for the deployment (slack://, discord://, smtp://, ...).
type NotificationService struct {
	urls []string
	send func(url, message string) error
	wg   sync.WaitGroup
}

// NewNotificationService returns a notifier for urls. Blank entries are
// ignored; with no urls it does nothing.
func NewNotificationService(urls []string) *NotificationService {
	clean := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			clean = append(clean, u)
		}
	}
	return &NotificationService{urls: clean, send: shoutrrr.Send}
}

// Enabled reports whether any destination is configured.
func (s *NotificationService) Enabled() bool {
	return len(s.urls) > 0
}

// RollbackApplied sends one message per destination in the background.
// Delivery failures are logged only.
func (s *NotificationService) RollbackApplied(_ context.Context, result *RollbackResult) {
	if !s.Enabled() || result == nil || result.Trail == nil {
		return
	}
	msg := rollbackMessage(result)
	for i, url := range s.urls {
		s.wg.Add(1)
		go func(i int, url string) {
			defer s.wg.Done()
			if err := s.send(url, msg); err != nil {
				// the url may carry credentials, log its position only
				logger.Log().WithError(err).WithField("destination", i).Warn("failed to send rollback notification")
			}
		}(i, url)
	}
}

// Wait blocks until in-flight notifications finish.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func rollbackMessage(r *RollbackResult) string {
	verb := "restored"
	if r.Operation == OperationDelete {
		verb = "removed"
	}
	msg := fmt.Sprintf("Rollback applied\n\n%s %s was %s (trail %s).", r.Trail.EntityKind, r.Trail.EntityID, verb, r.Trail.ID)
	if len(r.ClearedReferences) > 0 {
		msg += fmt.Sprintf(" Cleared missing references: %s.", strings.Join(r.ClearedReferences, ", "))
	}
	return msg
}
