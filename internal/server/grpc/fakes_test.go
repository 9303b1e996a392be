package grpc

import (
	"context"
	"sync"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/services"
)

// ---- fakes ----

type fakeUsers struct {
	debugOTP  string
	otpErr    error
	verify    *services.VerifyResult
	verifyErr error
	user      *models.User
	tokens    *services.TokenPair
	err       error

	mu        sync.Mutex
	gotMobile string
	gotUserID int64
}

func (f *fakeUsers) RequestOTP(_ context.Context, mobile, _ string) (string, error) {
	f.mu.Lock()
	f.gotMobile = mobile
	f.mu.Unlock()
	return f.debugOTP, f.otpErr
}
func (f *fakeUsers) VerifyOTP(context.Context, string, string, string) (*services.VerifyResult, error) {
	return f.verify, f.verifyErr
}
func (f *fakeUsers) Register(_ context.Context, req services.RegisterRequest) (*models.User, *services.TokenPair, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return &models.User{ID: 1, MobileNumber: req.MobileNumber, Name: req.Name}, f.tokens, nil
}
func (f *fakeUsers) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	return f.tokens, f.err
}
func (f *fakeUsers) GetProfile(_ context.Context, userID int64) (*models.User, error) {
	f.mu.Lock()
	f.gotUserID = userID
	f.mu.Unlock()
	return f.user, f.err
}
func (f *fakeUsers) UpdateProfile(context.Context, int64, string, string) (*models.User, error) {
	return f.user, f.err
}

type fakeLiveness struct {
	status *models.LivenessStatus
	err    error

	mu        sync.Mutex
	gotUserID int64
	gotMethod string
}

func (f *fakeLiveness) CheckIn(_ context.Context, userID int64, method string) (*models.LivenessStatus, error) {
	f.mu.Lock()
	f.gotUserID, f.gotMethod = userID, method
	f.mu.Unlock()
	return f.status, f.err
}
func (f *fakeLiveness) UpdateSettings(context.Context, int64, bool, int) (*models.LivenessStatus, error) {
	return f.status, f.err
}
func (f *fakeLiveness) GetStatus(context.Context, int64) (*models.LivenessStatus, error) {
	return f.status, f.err
}
func (f *fakeLiveness) History(context.Context, int64, int) ([]*models.HeartbeatLog, error) {
	return nil, f.err
}

type fakeScore struct{ score *models.SecurityScore }

func (f *fakeScore) Compute(context.Context, int64) (*models.SecurityScore, error) {
	return f.score, nil
}

type fakeNominees struct {
	session *services.NomineeSession
	err     error
}

func (f *fakeNominees) Add(_ context.Context, userID int64, req services.NomineeRequest) (*models.Nominee, error) {
	return &models.Nominee{ID: 5, UserID: userID, Name: req.Name, Email: req.Email}, f.err
}
func (f *fakeNominees) List(context.Context, int64) ([]*models.Nominee, error) { return nil, f.err }
func (f *fakeNominees) RequestNomineeCode(context.Context, string) (string, error) {
	return "", f.err
}
func (f *fakeNominees) VerifyNomineeCode(context.Context, string, string) (*services.NomineeSession, error) {
	return f.session, f.err
}

type fakeVault struct {
	items []*models.VaultItem
	err   error

	mu         sync.Mutex
	gotNominee int64
	gotEmail   string
}

func (f *fakeVault) CreateItem(_ context.Context, userID int64, req services.VaultItemRequest) (*models.VaultItem, error) {
	return &models.VaultItem{ID: 1, UserID: userID, ItemType: req.ItemType, Title: req.Title}, f.err
}
func (f *fakeVault) ListItems(context.Context, int64, models.VaultItemFilter) ([]*models.VaultItem, error) {
	return f.items, f.err
}
func (f *fakeVault) GetItem(context.Context, int64, int64) (*models.VaultItem, error) {
	return nil, f.err
}
func (f *fakeVault) UpdateItem(context.Context, int64, int64, string, string) (*models.VaultItem, error) {
	return nil, f.err
}
func (f *fakeVault) DeleteItem(context.Context, int64, int64) error { return f.err }
func (f *fakeVault) Stats(context.Context, int64) (map[models.ItemType]int, error) {
	return nil, f.err
}
func (f *fakeVault) ListForNominee(_ context.Context, nomineeID int64, email string) ([]*models.VaultItem, error) {
	f.mu.Lock()
	f.gotNominee, f.gotEmail = nomineeID, email
	f.mu.Unlock()
	return f.items, f.err
}
func (f *fakeVault) CreateSmartDoc(context.Context, int64, services.SmartDocRequest) (*models.SmartDoc, error) {
	return nil, f.err
}
func (f *fakeVault) ListSmartDocs(context.Context, int64, bool) ([]*models.SmartDoc, error) {
	return nil, f.err
}
func (f *fakeVault) DeleteSmartDoc(context.Context, int64, int64) error { return f.err }
func (f *fakeVault) CreateFolder(context.Context, int64, string) (*models.Folder, error) {
	return nil, f.err
}
func (f *fakeVault) ListFolders(context.Context, int64) ([]*models.Folder, error) { return nil, f.err }

type fakeFiles struct {
	url string
	err error
}

func (f *fakeFiles) CreateUpload(context.Context, int64, services.FileUploadRequest) (*models.FileUploadTask, error) {
	return nil, f.err
}
func (f *fakeFiles) List(context.Context, int64, *int64) ([]*models.File, error) { return nil, f.err }
func (f *fakeFiles) DownloadURL(context.Context, int64, int64) (string, error) {
	return f.url, f.err
}
func (f *fakeFiles) NomineeDownloadURL(context.Context, int64, string, int64) (string, error) {
	return f.url, f.err
}
