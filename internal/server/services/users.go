// This file implements UserService: mobile OTP sign-in, registration,
// profile updates, and issuing/refreshing JWTs plus server-stored refresh
// tokens.

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/dbx"
	"github.com/BijjaSagar/vashihat-nama/internal/logging"
	"github.com/BijjaSagar/vashihat-nama/internal/server/auth"
	"github.com/BijjaSagar/vashihat-nama/internal/server/config"
	"github.com/BijjaSagar/vashihat-nama/internal/server/metrics"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/notify"
	"github.com/BijjaSagar/vashihat-nama/internal/server/otpstore"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/repomanager"
)

const (
	otpDigits       = 6
	minMobileLength = 10

	NextStepRegister             = "register"
	NextStepCompleteRegistration = "complete_registration"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterRequest carries the fields of a new account. Keys are generated and
// encrypted on the device; the server stores them as opaque strings.
type RegisterRequest struct {
	MobileNumber        string `json:"mobile_number" validate:"required,min=10,max=15"`
	Name                string `json:"name" validate:"required,max=255"`
	Email               string `json:"email" validate:"omitempty,email"`
	PublicKey           string `json:"public_key" validate:"required"`
	EncryptedPrivateKey string `json:"encrypted_private_key" validate:"required"`
}

// VerifyResult is the outcome of a successful OTP verification. For a known
// user signing in User and Tokens are set; otherwise NextStep tells the
// client what to do.
type VerifyResult struct {
	User     *models.User `json:"user,omitempty"`
	Tokens   *TokenPair   `json:"tokens,omitempty"`
	NextStep string       `json:"next_step,omitempty"`
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	otp                          otpstore.Store
	sms                          notify.Notifier
	liveness                     *LivenessService
	log                          logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	otpMaxAttempts               int
	defaultFrequencyDays         int
	devMode                      bool
	now                          func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, otp otpstore.Store,
	sms notify.Notifier, liveness *LivenessService, log logging.Logger) *UserService {
	freq := cfg.DefaultCheckInFrequencyDays
	if freq <= 0 {
		freq = common.DefaultCheckInFrequencyDays
	}
	return &UserService{
		db:                           db,
		repomanager:                  m,
		otp:                          otp,
		sms:                          sms,
		liveness:                     liveness,
		log:                          log.With("module", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		otpMaxAttempts:               cfg.OTPMaxAttempts,
		defaultFrequencyDays:         freq,
		devMode:                      cfg.DevMode,
		now:                          time.Now,
	}
}

func otpKey(purpose, mobile string) string   { return "sms:" + purpose + ":" + mobile }
func verifiedKey(mobile string) string       { return "verified:" + mobile }
func normalizePurpose(purpose string) string { return strings.ToLower(strings.TrimSpace(purpose)) }

// RequestOTP sends a fresh code to mobile. In dev mode the code is also
// returned so it can be entered without a phone.
func (s *UserService) RequestOTP(ctx context.Context, mobile, purpose string) (string, error) {
	purpose = normalizePurpose(purpose)
	if purpose == "" {
		purpose = models.OTPPurposeLogin
	}
	if purpose != models.OTPPurposeLogin && purpose != models.OTPPurposeRegister {
		return "", fmt.Errorf("%w: unknown otp purpose %q", common.ErrInvalidArgument, purpose)
	}
	if len(mobile) < minMobileLength {
		return "", fmt.Errorf("%w: invalid mobile number", common.ErrInvalidArgument)
	}

	code, err := issueChallenge(ctx, s.otp, otpKey(purpose, mobile))
	if err != nil {
		s.log.Error(ctx, "storing otp failed", "error", err)
		return "", common.ErrorInternal
	}

	msg := fmt.Sprintf("%s is your OTP for login into your account. GGISKB", code)
	if err := s.sms.Send(ctx, mobile, msg); err != nil {
		s.log.Error(ctx, "sending otp failed", "error", err)
		s.logOTP(ctx, mobile, purpose, models.OTPStatusFailed)
		metrics.OTP("sms", models.OTPStatusFailed)
		_ = s.otp.Delete(ctx, otpKey(purpose, mobile))
		return "", fmt.Errorf("send otp: %w", err)
	}

	s.logOTP(ctx, mobile, purpose, models.OTPStatusSent)
	metrics.OTP("sms", models.OTPStatusSent)

	if s.devMode {
		return code, nil
	}
	return "", nil
}

// VerifyOTP checks code against the pending challenge. Every attempt counts
// against the budget; once it is used up the challenge is dropped.
func (s *UserService) VerifyOTP(ctx context.Context, mobile, code, purpose string) (*VerifyResult, error) {
	purpose = normalizePurpose(purpose)
	if purpose == "" {
		purpose = models.OTPPurposeLogin
	}
	key := otpKey(purpose, mobile)

	if err := verifyChallenge(ctx, s.otp, key, code, s.otpMaxAttempts); err != nil {
		if errors.Is(err, common.ErrOTPInvalid) {
			metrics.OTP("sms", "rejected")
		}
		return nil, err
	}

	s.logOTP(ctx, mobile, purpose, models.OTPStatusVerified)
	metrics.OTP("sms", models.OTPStatusVerified)

	if purpose != models.OTPPurposeLogin {
		return s.markVerified(ctx, mobile, NextStepCompleteRegistration)
	}

	user, err := s.repomanager.Users(s.db).GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return s.markVerified(ctx, mobile, NextStepRegister)
		}
		return nil, common.ErrorInternal
	}

	// signing in is proof of life
	if _, err := s.liveness.CheckIn(ctx, user.ID, string(models.CheckInLogin)); err != nil {
		s.log.Warn(ctx, "login check-in failed", "user_id", user.ID, "error", err)
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{User: user, Tokens: pair}, nil
}

// markVerified remembers that mobile passed OTP so Register can proceed.
func (s *UserService) markVerified(ctx context.Context, mobile, next string) (*VerifyResult, error) {
	if err := s.otp.Save(ctx, verifiedKey(mobile), &otpstore.Challenge{}); err != nil {
		return nil, common.ErrorInternal
	}
	return &VerifyResult{NextStep: next}, nil
}

// Register creates the account for a mobile number that has just passed OTP
// verification and signs the user in. Liveness starts now with the default
// frequency and the switch disarmed.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, *TokenPair, error) {
	if err := validateStruct(req); err != nil {
		return nil, nil, err
	}

	if _, err := s.otp.Get(ctx, verifiedKey(req.MobileNumber)); err != nil {
		if errors.Is(err, common.ErrOTPExpired) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}

	user := &models.User{
		MobileNumber:         req.MobileNumber,
		Name:                 req.Name,
		Email:                req.Email,
		PublicKey:            req.PublicKey,
		EncryptedPrivateKey:  req.EncryptedPrivateKey,
		CheckInFrequencyDays: s.defaultFrequencyDays,
		SwitchActive:         false,
	}

	var pair *TokenPair
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = u
		pair, err = s.generateTokenPair(ctx, u.ID, tx)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, nil, common.ErrAlreadyExists
		}
		return nil, nil, fmt.Errorf("error creating user: %w", err)
	}

	_ = s.otp.Delete(ctx, verifiedKey(req.MobileNumber))
	s.log.Info(ctx, "user registered", "user_id", user.ID)

	return user, pair, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name, email string) (*models.User, error) {
	in := struct {
		Name  string `validate:"required,max=255"`
		Email string `validate:"omitempty,email"`
	}{name, email}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, name, email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return s.GetProfile(ctx, userID)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// --- helpers below ---

func (s *UserService) logOTP(ctx context.Context, mobile, purpose, status string) {
	if err := s.repomanager.OTPLogs(s.db).Create(ctx, mobile, purpose, status); err != nil {
		s.log.Warn(ctx, "writing otp log failed", "status", status, "error", err)
	}
}

func (s *UserService) generateAccessToken(userID int64) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID int64, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.now().Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
