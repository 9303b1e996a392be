package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/logging"
	"github.com/BijjaSagar/vashihat-nama/internal/server/auth"
	"github.com/BijjaSagar/vashihat-nama/internal/server/config"
	"github.com/BijjaSagar/vashihat-nama/internal/server/metrics"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/notify"
	"github.com/BijjaSagar/vashihat-nama/internal/server/otpstore"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/repomanager"
)

type NomineeRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email"`
	Relationship string `json:"relationship" validate:"max=100"`
}

// NomineeSession is returned to a nominee after a successful code check.
// Nominees lists every nomination made for the email, granted or not.
type NomineeSession struct {
	AccessToken string            `json:"access_token"`
	Nominees    []*models.Nominee `json:"nominees"`
}

type NomineeService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	otp                         otpstore.Store
	mailer                      notify.Notifier
	log                         logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	otpMaxAttempts              int
	devMode                     bool
}

func NewNomineeService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, otp otpstore.Store,
	mailer notify.Notifier, log logging.Logger) *NomineeService {
	return &NomineeService{
		db:                          db,
		repomanager:                 m,
		otp:                         otp,
		mailer:                      mailer,
		log:                         log.With("module", "nominees"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		otpMaxAttempts:              cfg.OTPMaxAttempts,
		devMode:                     cfg.DevMode,
	}
}

func nomineeCodeKey(email string) string { return "email:" + strings.ToLower(email) }

func (s *NomineeService) Add(ctx context.Context, userID int64, req NomineeRequest) (*models.Nominee, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	n, err := s.repomanager.Nominees(s.db).Create(ctx, &models.Nominee{
		UserID:       userID,
		Name:         req.Name,
		Email:        req.Email,
		Relationship: req.Relationship,
	})
	if err != nil {
		return nil, fmt.Errorf("add nominee: %w", err)
	}
	s.log.Info(ctx, "nominee added", "user_id", userID, "nominee_id", n.ID)
	return n, nil
}

func (s *NomineeService) List(ctx context.Context, userID int64) ([]*models.Nominee, error) {
	list, err := s.repomanager.Nominees(s.db).ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list nominees: %w", err)
	}
	return list, nil
}

// RequestNomineeCode emails a sign-in code to a nominee. An email that is
// not nominated anywhere gets no mail, and the caller cannot tell the
// difference.
func (s *NomineeService) RequestNomineeCode(ctx context.Context, email string) (string, error) {
	in := struct {
		Email string `validate:"required,email"`
	}{email}
	if err := validateStruct(in); err != nil {
		return "", err
	}

	list, err := s.repomanager.Nominees(s.db).ListByEmail(ctx, email)
	if err != nil {
		return "", common.ErrorInternal
	}
	if len(list) == 0 {
		s.log.Debug(ctx, "nominee code requested for unknown email")
		return "", nil
	}

	code, err := issueChallenge(ctx, s.otp, nomineeCodeKey(email))
	if err != nil {
		s.log.Error(ctx, "storing nominee code failed", "error", err)
		return "", common.ErrorInternal
	}

	msg := fmt.Sprintf("Your Vasihat Nama nominee sign-in code is %s. It expires shortly.", code)
	if err := s.mailer.Send(ctx, email, msg); err != nil {
		metrics.OTP("email", models.OTPStatusFailed)
		_ = s.otp.Delete(ctx, nomineeCodeKey(email))
		return "", fmt.Errorf("send nominee code: %w", err)
	}
	metrics.OTP("email", models.OTPStatusSent)

	if s.devMode {
		return code, nil
	}
	return "", nil
}

// VerifyNomineeCode exchanges a valid code for a nominee access token.
func (s *NomineeService) VerifyNomineeCode(ctx context.Context, email, code string) (*NomineeSession, error) {
	if err := verifyChallenge(ctx, s.otp, nomineeCodeKey(email), code, s.otpMaxAttempts); err != nil {
		if errors.Is(err, common.ErrOTPInvalid) {
			metrics.OTP("email", "rejected")
		}
		return nil, err
	}
	metrics.OTP("email", models.OTPStatusVerified)

	list, err := s.repomanager.Nominees(s.db).ListByEmail(ctx, email)
	if err != nil {
		return nil, common.ErrorInternal
	}

	token, err := auth.GenerateNomineeToken(email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &NomineeSession{AccessToken: token, Nominees: list}, nil
}
