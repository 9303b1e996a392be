// Package grpc exposes the client-facing API as the gRPC service
// vasihat.v1.VaultService with JSON-encoded messages.
package grpc

import (
	"context"
	"net"

	"github.com/BijjaSagar/vashihat-nama/internal/logging"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/services"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
)

type userSvc interface {
	RequestOTP(ctx context.Context, mobile, purpose string) (string, error)
	VerifyOTP(ctx context.Context, mobile, code, purpose string) (*services.VerifyResult, error)
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, name, email string) (*models.User, error)
}

type livenessSvc interface {
	CheckIn(ctx context.Context, userID int64, method string) (*models.LivenessStatus, error)
	UpdateSettings(ctx context.Context, userID int64, active bool, frequencyDays int) (*models.LivenessStatus, error)
	GetStatus(ctx context.Context, userID int64) (*models.LivenessStatus, error)
	History(ctx context.Context, userID int64, limit int) ([]*models.HeartbeatLog, error)
}

type scoreSvc interface {
	Compute(ctx context.Context, userID int64) (*models.SecurityScore, error)
}

type nomineeSvc interface {
	Add(ctx context.Context, userID int64, req services.NomineeRequest) (*models.Nominee, error)
	List(ctx context.Context, userID int64) ([]*models.Nominee, error)
	RequestNomineeCode(ctx context.Context, email string) (string, error)
	VerifyNomineeCode(ctx context.Context, email, code string) (*services.NomineeSession, error)
}

type vaultSvc interface {
	CreateItem(ctx context.Context, userID int64, req services.VaultItemRequest) (*models.VaultItem, error)
	ListItems(ctx context.Context, userID int64, filter models.VaultItemFilter) ([]*models.VaultItem, error)
	GetItem(ctx context.Context, userID, id int64) (*models.VaultItem, error)
	UpdateItem(ctx context.Context, userID, id int64, title, encryptedData string) (*models.VaultItem, error)
	DeleteItem(ctx context.Context, userID, id int64) error
	Stats(ctx context.Context, userID int64) (map[models.ItemType]int, error)
	ListForNominee(ctx context.Context, nomineeID int64, email string) ([]*models.VaultItem, error)
	CreateSmartDoc(ctx context.Context, userID int64, req services.SmartDocRequest) (*models.SmartDoc, error)
	ListSmartDocs(ctx context.Context, userID int64, upcomingOnly bool) ([]*models.SmartDoc, error)
	DeleteSmartDoc(ctx context.Context, userID, id int64) error
	CreateFolder(ctx context.Context, userID int64, name string) (*models.Folder, error)
	ListFolders(ctx context.Context, userID int64) ([]*models.Folder, error)
}

type fileSvc interface {
	CreateUpload(ctx context.Context, userID int64, req services.FileUploadRequest) (*models.FileUploadTask, error)
	List(ctx context.Context, userID int64, folderID *int64) ([]*models.File, error)
	DownloadURL(ctx context.Context, userID, fileID int64) (string, error)
	NomineeDownloadURL(ctx context.Context, nomineeID int64, email string, fileID int64) (string, error)
}

// Deps are the services the gRPC handlers delegate to.
type Deps struct {
	Users    userSvc
	Liveness livenessSvc
	Score    scoreSvc
	Nominees nomineeSvc
	Vault    vaultSvc
	Files    fileSvc
}

type GRPCServer struct {
	address   string
	users     userSvc
	liveness  livenessSvc
	score     scoreSvc
	nominees  nomineeSvc
	vault     vaultSvc
	files     fileSvc
	logger    logging.Logger
	jwtSecret []byte
	limiters  map[string]*rate.Limiter
}

func NewGRPCServer(a string, l logging.Logger, d Deps, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     d.Users,
		liveness:  d.Liveness,
		score:     d.Score,
		nominees:  d.Nominees,
		vault:     d.Vault,
		files:     d.Files,
		jwtSecret: []byte(secretKey),
		limiters:  newPublicLimiters(),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.rateLimitInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&serviceDesc, s)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
