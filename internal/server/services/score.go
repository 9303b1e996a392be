package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/server/metrics"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/repomanager"
	"go.opentelemetry.io/otel/attribute"
)

// ComputeScore evaluates the fixed, ordered list of security checks.
// The result is always between 30 and 100.
func ComputeScore(snap models.ScoreSnapshot) models.SecurityScore {
	checks := []models.SecurityCheck{
		{Label: "Account Created", Passed: true, Points: 10},
		{Label: "Nominee Added", Passed: snap.NomineeCount > 0, Points: 20,
			Fix: "Add a nominee to ensure legacy transfer"},
		{Label: "Dead Man's Switch Check", Passed: snap.SwitchActive, Points: 20,
			Fix: "Activate Proof of Life monitoring"},
		{Label: "Vault Active", Passed: snap.VaultItemCount > 0, Points: 20,
			Fix: "Add your first secure item"},
		{Label: "Document Intelligence", Passed: snap.SmartDocCount > 0, Points: 10,
			Fix: "Scan a document for auto-reminders"},
		// Placeholder until a breach lookup is wired in.
		{Label: "Email Breach Check", Passed: true, Points: 20},
	}

	score := 0
	for i := range checks {
		if checks[i].Passed {
			score += checks[i].Points
			checks[i].Fix = ""
		}
	}
	return models.SecurityScore{Score: score, Checks: checks}
}

// ScoreService gathers the snapshot for a user. It never writes.
type ScoreService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewScoreService(db *sql.DB, m repomanager.RepositoryManager) *ScoreService {
	return &ScoreService{db: db, repomanager: m}
}

func (s *ScoreService) Compute(ctx context.Context, userID int64) (res *models.SecurityScore, err error) {
	ctx, span := metrics.StartSpan(ctx, "ScoreService.Compute", attribute.Int64("user.id", userID))
	defer func() { metrics.EndSpan(span, err) }()

	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("score: %w", err)
	}

	nominees, err := s.repomanager.Nominees(s.db).CountForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	items, err := s.repomanager.VaultItems(s.db).CountForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	docs, err := s.repomanager.SmartDocs(s.db).CountForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	sc := ComputeScore(models.ScoreSnapshot{
		NomineeCount:   nominees,
		SwitchActive:   u.SwitchActive,
		VaultItemCount: items,
		SmartDocCount:  docs,
	})
	span.SetAttributes(attribute.Int("score", sc.Score))
	return &sc, nil
}
