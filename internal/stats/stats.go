// Package stats computes the hero counters shown by the bot and the
// landing page: finished projects, happy clients, years of experience
// and estimates given.
package stats

import (
	"context"
	"time"

	"cabino/internal/config"
	"cabino/internal/storage"

	"go.uber.org/zap"
)

// Source reports the live counters. Implemented by storage.PostgresStorage.
type Source interface {
	GetLeadStatistics(ctx context.Context) (*storage.LeadStatistics, error)
	EstimateCount(ctx context.Context) (int64, error)
}

var _ Source = (*storage.PostgresStorage)(nil)

type Statistics struct {
	Projects  int64 `json:"projects"`
	Clients   int64 `json:"clients"`
	Years     int64 `json:"years"`
	Estimates int64 `json:"estimates"`
}

type Service struct {
	cfg    config.StatsConfig
	source Source
	logger *zap.Logger
	now    func() time.Time
}

// New builds the service. source may be nil, in which case only the
// configured baseline is reported.
func New(cfg config.StatsConfig, source Source, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Get never fails: when the database or Redis is unavailable the baseline
// is returned and the error logged.
func (s *Service) Get(ctx context.Context) Statistics {
	st := Statistics{
		Projects: s.cfg.ProjectsBase,
		Clients:  s.cfg.ClientsBase,
		Years:    s.years(),
	}
	if s.source == nil {
		return st
	}

	leads, err := s.source.GetLeadStatistics(ctx)
	if err != nil {
		s.logger.Warn("Failed to load lead statistics", zap.Error(err))
	} else {
		st.Projects += leads.CompletedLeads
		st.Clients += leads.Customers
	}

	estimates, err := s.source.EstimateCount(ctx)
	if err != nil {
		s.logger.Warn("Failed to load estimate counter", zap.Error(err))
	} else {
		st.Estimates = estimates
	}

	return st
}

func (s *Service) years() int64 {
	if s.cfg.FoundedYear <= 0 {
		return 0
	}
	y := int64(s.now().Year() - s.cfg.FoundedYear)
	if y < 0 {
		return 0
	}
	return y
}
