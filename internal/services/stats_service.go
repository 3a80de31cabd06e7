package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/logger"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/metrics"
)

// StatsService keeps the decision trail gauges current.
type StatsService struct {
	trails *TrailService
}

func NewStatsService(trails *TrailService) *StatsService {
	return &StatsService{trails: trails}
}

// Refresh recomputes the active trail gauge.
func (s *StatsService) Refresh(ctx context.Context) error {
	n, err := s.trails.CountActive(ctx)
	if err != nil {
		return err
	}
	metrics.SetActiveTrails(n)
	return nil
}

// Schedule registers Refresh on c using a cron spec such as "@every 1m".
func (s *StatsService) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			logger.Log().WithError(err).Warn("failed to refresh decision trail stats")
		}
	})
}
