package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/logging"
	"github.com/BijjaSagar/vashihat-nama/internal/server/metrics"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/notify"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/repomanager"
	"go.opentelemetry.io/otel/attribute"
)

// Evaluator runs the dead man's switch sweep: it finds every armed user whose
// deadline has passed and grants their nominees access.
type Evaluator struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    notify.Notifier
	log         logging.Logger
	now         func() time.Time
}

func NewEvaluator(db *sql.DB, m repomanager.RepositoryManager, notifier notify.Notifier, log logging.Logger) *Evaluator {
	return &Evaluator{
		db:          db,
		repomanager: m,
		notifier:    notifier,
		log:         log.With("module", "evaluator"),
		now:         time.Now,
	}
}

// EvaluateOnce performs a single sweep. Each lapsed user is processed on its
// own; a failure for one user is recorded in the report and the sweep goes
// on. If any user failed the report is returned together with an error
// matching common.ErrPartialSweep.
func (e *Evaluator) EvaluateOnce(ctx context.Context) (report *models.SweepReport, err error) {
	start := time.Now()
	now := e.now().UTC()

	ctx, span := metrics.StartSpan(ctx, "Evaluator.EvaluateOnce")
	defer func() { metrics.EndSpan(span, err) }()

	lapsed, err := e.repomanager.Users(e.db).FindLapsed(ctx, now)
	if err != nil {
		metrics.Sweep("error", time.Since(start), 0, 0)
		e.log.Error(ctx, "sweep: lapse query failed", "error", err)
		return nil, fmt.Errorf("find lapsed users: %w", err)
	}

	report = &models.SweepReport{
		TriggeredCount: len(lapsed),
		OverdueUsers:   lapsed,
		NewlyGranted:   []models.Nominee{},
	}
	if report.OverdueUsers == nil {
		report.OverdueUsers = []models.OverdueUser{}
	}

	nominees := e.repomanager.Nominees(e.db)
	for _, u := range lapsed {
		granted, gErr := nominees.GrantAccessForUsers(ctx, []int64{u.ID}, now)
		if gErr != nil {
			e.log.Error(ctx, "sweep: grant failed", "user_id", u.ID, "error", gErr)
			report.Failures = append(report.Failures, models.SweepFailure{UserID: u.ID, Error: gErr.Error()})
			continue
		}
		for _, n := range granted {
			report.NewlyGranted = append(report.NewlyGranted, *n)
			e.notifyNominee(ctx, u, n)
		}
	}

	span.SetAttributes(
		attribute.Int("sweep.lapsed", len(lapsed)),
		attribute.Int("sweep.granted", len(report.NewlyGranted)),
		attribute.Int("sweep.failed", len(report.Failures)),
	)

	result := "ok"
	if len(report.Failures) > 0 {
		result = "partial"
		err = fmt.Errorf("%w: %d of %d users failed", common.ErrPartialSweep, len(report.Failures), len(lapsed))
	}
	metrics.Sweep(result, time.Since(start), len(lapsed), len(report.NewlyGranted))

	e.log.Info(ctx, "sweep finished",
		"lapsed", len(lapsed), "granted", len(report.NewlyGranted), "failed", len(report.Failures))

	return report, err
}

// Run sweeps every interval until ctx is cancelled. A non-positive interval
// disables the scheduler.
func (e *Evaluator) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		e.log.Info(ctx, "sweep scheduler disabled")
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// failures are already logged per user
			_, _ = e.EvaluateOnce(ctx)
		}
	}
}

func (e *Evaluator) notifyNominee(ctx context.Context, owner models.OverdueUser, n *models.Nominee) {
	if e.notifier == nil || n.Email == "" {
		return
	}
	msg := fmt.Sprintf("Dear %s,\n\n%s has not checked in within the agreed period. "+
		"You have been granted access to the documents they left for you in Vasihat Nama.\n",
		n.Name, owner.Name)
	if err := e.notifier.Send(ctx, n.Email, msg); err != nil {
		e.log.Warn(ctx, "sweep: nominee notification failed", "nominee_id", n.ID, "error", err)
	}
}
