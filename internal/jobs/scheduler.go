// Package jobs runs the periodic housekeeping tasks of the server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/pricing"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
)

// Sweeper drops expired pending state. The in-memory balance edit store is one.
type Sweeper interface {
	Sweep() int
}

type Scheduler struct {
	cron    *cron.Cron
	repo    *repositories.Repository
	cfg     *config.Config
	sweeper Sweeper
	log     *logrus.Logger
}

// NewScheduler builds the scheduler. sweeper may be nil when pending edits
// expire on their own (Redis).
func NewScheduler(repo *repositories.Repository, cfg *config.Config, sweeper Sweeper, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		repo:    repo,
		cfg:     cfg,
		sweeper: sweeper,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if s.sweeper != nil {
		if _, err := s.cron.AddFunc("@every 1m", func() { s.SweepBalanceEdits() }); err != nil {
			return fmt.Errorf("schedule balance edit sweep: %w", err)
		}
	}

	spec := s.cfg.ConsistencyCron
	if spec == "" {
		spec = "0 3 * * *"
	}
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.CheckFormTotals(ctx); err != nil {
			s.log.WithError(err).Error("form total consistency check failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule consistency check %q: %w", spec, err)
	}

	s.cron.Start()
	s.log.WithField("consistency_cron", spec).Info("scheduler started")
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) SweepBalanceEdits() int {
	if s.sweeper == nil {
		return 0
	}
	removed := s.sweeper.Sweep()
	if removed > 0 {
		s.log.WithField("removed", removed).Info("expired balance edits swept")
	}
	return removed
}

// Drift is an active form whose cached total no longer matches its responses.
type Drift struct {
	TenantID string
	EventID  string
	FormID   string
	Cached   decimal.Decimal
	Live     decimal.Decimal
}

type ConsistencyReport struct {
	Checked int
	Drifts  []Drift
}

// CheckFormTotals recomputes every active form and reports cached totals that
// drifted. It only logs; balances are always computed live anyway.
func (s *Scheduler) CheckFormTotals(ctx context.Context) (*ConsistencyReport, error) {
	forms, err := s.repo.EventFormRepo.ListAllActiveForms(ctx)
	if err != nil {
		return nil, err
	}

	byTenant := make(map[string][]models.EventForm)
	order := make([]string, 0)
	for _, f := range forms {
		tid := f.TenantID.String()
		if _, ok := byTenant[tid]; !ok {
			order = append(order, tid)
		}
		byTenant[tid] = append(byTenant[tid], f)
	}

	report := &ConsistencyReport{Drifts: []Drift{}}
	for _, tenantID := range order {
		tenantForms := byTenant[tenantID]
		defs, err := s.definitions(ctx, tenantID, tenantForms)
		if err != nil {
			return nil, err
		}

		for _, f := range tenantForms {
			report.Checked++
			live := pricing.FormTotalOf(f.Snapshot().Input(), defs)
			if live.Equal(pricing.RoundMoney(f.FormTotal)) {
				continue
			}
			d := Drift{TenantID: tenantID, EventID: f.EventID.String(), FormID: f.ID.String(), Cached: f.FormTotal, Live: live}
			report.Drifts = append(report.Drifts, d)
			s.log.WithFields(logrus.Fields{
				"tenant_id":     d.TenantID,
				"event_id":      d.EventID,
				"event_form_id": d.FormID,
				"cached_total":  d.Cached.StringFixed(2),
				"live_total":    d.Live.StringFixed(2),
			}).Warn("cached form total drifted")
		}
	}

	s.log.WithFields(logrus.Fields{
		"checked": report.Checked,
		"drifted": len(report.Drifts),
	}).Info("form total consistency check finished")
	return report, nil
}

func (s *Scheduler) definitions(ctx context.Context, tenantID string, forms []models.EventForm) (map[string]pricing.FieldDefinition, error) {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, f := range forms {
		for id := range f.Responses() {
			if _, err := uuid.Parse(id); err != nil {
				continue
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	defs, err := s.repo.FieldRepo.GetFieldsByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	return models.DefinitionMap(defs), nil
}
