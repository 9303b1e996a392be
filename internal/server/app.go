// Package server wires configuration, storage, collaborators and services
// together and runs the gRPC API, the HTTP admin surface and the sweep
// scheduler until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/logging"
	"github.com/BijjaSagar/vashihat-nama/internal/server/config"
	"github.com/BijjaSagar/vashihat-nama/internal/server/httpapi"
	"github.com/BijjaSagar/vashihat-nama/internal/server/notify"
	"github.com/BijjaSagar/vashihat-nama/internal/server/otpstore"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/repomanager"
	"github.com/BijjaSagar/vashihat-nama/internal/server/services"
	"github.com/BijjaSagar/vashihat-nama/internal/server/shared/db"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	gs "github.com/BijjaSagar/vashihat-nama/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client

	users     *services.UserService
	liveness  *services.LivenessService
	score     *services.ScoreService
	nominees  *services.NomineeService
	vault     *services.VaultService
	files     *services.FileService
	gate      *services.AccessGate
	evaluator *services.Evaluator
	admin     *services.AdminService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.DevMode)

	conn, err := db.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := db.RunMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	rdb, err := otpstore.NewRedisClient(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
	if err != nil {
		conn.Close()
		return nil, err
	}

	otp := otpstore.NewRedisStore(rdb, c.OTPValidityDuration)
	m := repomanager.NewPostgresRepositoryManager()

	sms := notify.NewSMSNotifier(notify.SMSConfig{
		BaseURL:  c.SMSBaseURL,
		Username: c.SMSUsername,
		SenderID: c.SMSSenderID,
		APIKey:   c.SMSAPIKey,
		DevMode:  c.DevMode,
	}, nil, logger)

	var codeMailer, grantMailer notify.Notifier
	if c.SMTPHost == "" {
		codeMailer = notify.NewLogNotifier(logger, "email")
		grantMailer = codeMailer
	} else {
		mail := notify.EmailConfig{Host: c.SMTPHost, Port: c.SMTPPort, From: c.SMTPFrom, Password: c.SMTPPassword, DevMode: c.DevMode}
		codeMailer = notify.NewEmailNotifier(mail, "Your Vasihat Nama access code", logger)
		grantMailer = notify.NewEmailNotifier(mail, "Vasihat Nama: access granted", logger)
	}

	app := &App{config: c, logger: logger, db: conn, redis: rdb}

	app.gate = services.NewAccessGate(conn, m, logger)
	app.liveness = services.NewLivenessService(conn, m, logger)
	app.users = services.NewUserService(conn, m, c, otp, sms, app.liveness, logger)
	app.score = services.NewScoreService(conn, m)
	app.nominees = services.NewNomineeService(conn, m, c, otp, codeMailer, logger)
	app.vault = services.NewVaultService(conn, m, app.gate)
	app.files = services.NewFileService(conn, m, app.gate, c)
	app.evaluator = services.NewEvaluator(conn, m, grantMailer, logger)
	app.admin = services.NewAdminService(conn, m)

	return app, nil
}

func (app *App) startGRPCServer(ctx context.Context) error {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, gs.Deps{
		Users:    app.users,
		Liveness: app.liveness,
		Score:    app.score,
		Nominees: app.nominees,
		Vault:    app.vault,
		Files:    app.files,
	}, app.config.SecretKey)

	return s.Run(ctx)
}

func (app *App) startHTTPServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           httpapi.NewRouter(app.evaluator, app.gate, app.admin, app.config.AdminSecret, app.logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Stopping HTTP server...")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the components fails.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	defer app.close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return app.startGRPCServer(gctx) })
	g.Go(func() error { return app.startHTTPServer(gctx) })
	g.Go(func() error { return app.evaluator.Run(gctx, app.config.SweepInterval) })

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

func (app *App) close() {
	if err := app.redis.Close(); err != nil {
		app.logger.Warn(context.Background(), "redis close", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "db close", "error", err)
	}
}
