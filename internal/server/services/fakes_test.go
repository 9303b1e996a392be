package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/dbx"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/otpstore"
	filesrepo "github.com/BijjaSagar/vashihat-nama/internal/server/repositories/files"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/folders"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/heartbeats"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/nominees"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/otplogs"
	refreshtokensrepo "github.com/BijjaSagar/vashihat-nama/internal/server/repositories/refreshtokens"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/smartdocs"
	usersrepo "github.com/BijjaSagar/vashihat-nama/internal/server/repositories/users"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/vaultitems"
	_ "modernc.org/sqlite"
)

// newTxDB returns a real *sql.DB so dbx.WithTx can begin and commit; the
// fakes below never touch it.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

// memStore is an in-memory stand-in for the Postgres schema.
type memStore struct {
	mu sync.Mutex

	nextID     int64
	users      map[int64]*models.User
	heartbeats []*models.HeartbeatLog
	nominees   map[int64]*models.Nominee
	items      map[int64]*models.VaultItem
	docs       map[int64]*models.SmartDoc
	folders    map[int64]*models.Folder
	files      map[int64]*models.File
	otpLogs    []*models.OTPLog
	tokens     map[string]*models.RefreshToken

	findLapsedErr error
	heartbeatErr  error
	grantErr      map[int64]error
	countErr      error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]*models.User{},
		nominees: map[int64]*models.Nominee{},
		items:    map[int64]*models.VaultItem{},
		docs:     map[int64]*models.SmartDoc{},
		folders:  map[int64]*models.Folder{},
		files:    map[int64]*models.File{},
		tokens:   map[string]*models.RefreshToken{},
		grantErr: map[int64]error{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addUser(name string, lastCheckIn time.Time, freq int, active bool) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{
		ID:                   m.id(),
		Name:                 name,
		Email:                strings.ToLower(name) + "@example.com",
		LastCheckIn:          lastCheckIn,
		CheckInFrequencyDays: freq,
		SwitchActive:         active,
		CreatedAt:            lastCheckIn,
	}
	u.MobileNumber = fmt.Sprintf("98765%05d", u.ID)
	m.users[u.ID] = u
	return u
}

func (m *memStore) addNominee(userID int64, name, email string) *models.Nominee {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := &models.Nominee{ID: m.id(), UserID: userID, Name: name, Email: email}
	m.nominees[n.ID] = n
	return n
}

func (m *memStore) nominee(id int64) models.Nominee {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.nominees[id]
}

func (m *memStore) user(id int64) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[id]
}

// --- users ---

type fakeUsers struct{ s *memStore }

var _ usersrepo.Repository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, ex := range f.s.users {
		if ex.MobileNumber == u.MobileNumber {
			return nil, common.ErrAlreadyExists
		}
	}
	c := *u
	c.ID = f.s.id()
	c.LastCheckIn = time.Now().UTC()
	c.CreatedAt = c.LastCheckIn
	f.s.users[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByMobile(_ context.Context, mobile string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.MobileNumber == mobile {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) CheckIn(_ context.Context, id int64, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	if at.After(u.LastCheckIn) {
		u.LastCheckIn = at
	}
	return nil
}

func (f *fakeUsers) UpdateSettings(_ context.Context, id int64, active bool, freq int) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.SwitchActive = active
	u.CheckInFrequencyDays = freq
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id int64, name, email string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Name, u.Email = name, email
	return nil
}

func (f *fakeUsers) FindLapsed(_ context.Context, now time.Time) ([]models.OverdueUser, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.findLapsedErr != nil {
		return nil, f.s.findLapsedErr
	}
	var out []models.OverdueUser
	for _, u := range f.s.users {
		if u.IsLapsed(now) {
			out = append(out, models.OverdueUser{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) List(context.Context) ([]*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.User
	for _, u := range f.s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) Count(context.Context) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.countErr != nil {
		return 0, f.s.countErr
	}
	return int64(len(f.s.users)), nil
}

// --- heartbeats ---

type fakeHeartbeats struct{ s *memStore }

var _ heartbeats.Repository = (*fakeHeartbeats)(nil)

func (f *fakeHeartbeats) Create(_ context.Context, userID int64, at time.Time, method models.CheckInMethod) (*models.HeartbeatLog, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.heartbeatErr != nil {
		return nil, f.s.heartbeatErr
	}
	h := &models.HeartbeatLog{ID: f.s.id(), UserID: userID, CheckedInAt: at, Method: method}
	f.s.heartbeats = append(f.s.heartbeats, h)
	return h, nil
}

func (f *fakeHeartbeats) ListForUser(_ context.Context, userID int64, limit int) ([]*models.HeartbeatLog, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.HeartbeatLog
	for i := len(f.s.heartbeats) - 1; i >= 0 && len(out) < limit; i-- {
		if f.s.heartbeats[i].UserID == userID {
			out = append(out, f.s.heartbeats[i])
		}
	}
	return out, nil
}

// --- nominees ---

type fakeNominees struct{ s *memStore }

var _ nominees.Repository = (*fakeNominees)(nil)

func (f *fakeNominees) Create(_ context.Context, n *models.Nominee) (*models.Nominee, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c := *n
	c.ID = f.s.id()
	f.s.nominees[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeNominees) GetByID(_ context.Context, id int64) (*models.Nominee, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	n, ok := f.s.nominees[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *n
	return &c, nil
}

func (f *fakeNominees) sorted(keep func(*models.Nominee) bool) []*models.Nominee {
	var out []*models.Nominee
	for _, n := range f.s.nominees {
		if keep(n) {
			c := *n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeNominees) ListForUser(_ context.Context, userID int64) ([]*models.Nominee, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.sorted(func(n *models.Nominee) bool { return n.UserID == userID }), nil
}

func (f *fakeNominees) ListByEmail(_ context.Context, email string) ([]*models.Nominee, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.sorted(func(n *models.Nominee) bool { return strings.EqualFold(n.Email, email) }), nil
}

func (f *fakeNominees) CountForUser(_ context.Context, userID int64) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.countErr != nil {
		return 0, f.s.countErr
	}
	return len(f.sorted(func(n *models.Nominee) bool { return n.UserID == userID })), nil
}

func (f *fakeNominees) GrantAccessForUsers(_ context.Context, userIDs []int64, at time.Time) ([]*models.Nominee, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, id := range userIDs {
		if err := f.s.grantErr[id]; err != nil {
			return nil, err
		}
	}
	want := map[int64]bool{}
	for _, id := range userIDs {
		want[id] = true
	}
	granted := f.sorted(func(n *models.Nominee) bool { return want[n.UserID] && !n.AccessGranted })
	for _, g := range granted {
		ts := at
		n := f.s.nominees[g.ID]
		n.AccessGranted = true
		n.AccessGrantedAt = &ts
		g.AccessGranted = true
		g.AccessGrantedAt = &ts
	}
	return granted, nil
}

func (f *fakeNominees) Grant(_ context.Context, id int64, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	n, ok := f.s.nominees[id]
	if !ok {
		return common.ErrorNotFound
	}
	if !n.AccessGranted {
		ts := at
		n.AccessGranted = true
		n.AccessGrantedAt = &ts
	}
	return nil
}

// --- vault items ---

type fakeItems struct{ s *memStore }

var _ vaultitems.Repository = (*fakeItems)(nil)

func (f *fakeItems) Create(_ context.Context, it *models.VaultItem) (*models.VaultItem, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c := *it
	c.ID = f.s.id()
	f.s.items[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeItems) List(_ context.Context, userID int64, filter models.VaultItemFilter) ([]*models.VaultItem, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.VaultItem
	for _, it := range f.s.items {
		if it.UserID != userID {
			continue
		}
		if filter.ItemType != "" && it.ItemType != filter.ItemType {
			continue
		}
		if filter.FolderID != nil && (it.FolderID == nil || *it.FolderID != *filter.FolderID) {
			continue
		}
		c := *it
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeItems) Get(_ context.Context, id, userID int64) (*models.VaultItem, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	it, ok := f.s.items[id]
	if !ok || it.UserID != userID {
		return nil, common.ErrorNotFound
	}
	c := *it
	return &c, nil
}

func (f *fakeItems) Update(_ context.Context, id, userID int64, title, data string) (*models.VaultItem, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	it, ok := f.s.items[id]
	if !ok || it.UserID != userID {
		return nil, common.ErrorNotFound
	}
	it.Title, it.EncryptedData = title, data
	c := *it
	return &c, nil
}

func (f *fakeItems) Delete(_ context.Context, id, userID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	it, ok := f.s.items[id]
	if !ok || it.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.s.items, id)
	return nil
}

func (f *fakeItems) CountForUser(_ context.Context, userID int64) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	n := 0
	for _, it := range f.s.items {
		if it.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeItems) CountByType(_ context.Context, userID int64) (map[models.ItemType]int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[models.ItemType]int{}
	for _, t := range models.ItemTypes {
		out[t] = 0
	}
	for _, it := range f.s.items {
		if it.UserID == userID {
			out[it.ItemType]++
		}
	}
	return out, nil
}

// --- smart docs ---

type fakeDocs struct{ s *memStore }

var _ smartdocs.Repository = (*fakeDocs)(nil)

func (f *fakeDocs) Create(_ context.Context, d *models.SmartDoc) (*models.SmartDoc, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c := *d
	c.ID = f.s.id()
	f.s.docs[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeDocs) List(_ context.Context, userID int64, upcomingOnly bool, since time.Time) ([]*models.SmartDoc, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.SmartDoc
	for _, d := range f.s.docs {
		if d.UserID != userID {
			continue
		}
		if upcomingOnly && (d.ExpiryDate == nil || d.ExpiryDate.Before(since)) {
			continue
		}
		c := *d
		out = append(out, &c)
	}
	if upcomingOnly {
		sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(*out[j].ExpiryDate) })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	}
	return out, nil
}

func (f *fakeDocs) Delete(_ context.Context, id, userID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d, ok := f.s.docs[id]
	if !ok || d.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.s.docs, id)
	return nil
}

func (f *fakeDocs) CountForUser(_ context.Context, userID int64) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	n := 0
	for _, d := range f.s.docs {
		if d.UserID == userID {
			n++
		}
	}
	return n, nil
}

// --- folders ---

type fakeFolders struct{ s *memStore }

var _ folders.Repository = (*fakeFolders)(nil)

func (f *fakeFolders) Create(_ context.Context, fo *models.Folder) (*models.Folder, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c := *fo
	c.ID = f.s.id()
	f.s.folders[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeFolders) ListForUser(_ context.Context, userID int64) ([]*models.Folder, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Folder
	for _, fo := range f.s.folders {
		if fo.UserID == userID {
			c := *fo
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- files ---

type fakeFiles struct{ s *memStore }

var _ filesrepo.Repository = (*fakeFiles)(nil)

func (f *fakeFiles) Create(_ context.Context, fi *models.File) (*models.File, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c := *fi
	c.ID = f.s.id()
	f.s.files[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeFiles) GetByID(_ context.Context, id int64) (*models.File, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	fi, ok := f.s.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *fi
	return &c, nil
}

func (f *fakeFiles) ListForUser(_ context.Context, userID int64, folderID *int64) ([]*models.File, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.File
	for _, fi := range f.s.files {
		if fi.UserID != userID {
			continue
		}
		if folderID != nil && (fi.FolderID == nil || *fi.FolderID != *folderID) {
			continue
		}
		c := *fi
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFiles) Count(context.Context) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return int64(len(f.s.files)), nil
}

// --- otp logs ---

type fakeOTPLogs struct{ s *memStore }

var _ otplogs.Repository = (*fakeOTPLogs)(nil)

func (f *fakeOTPLogs) Create(_ context.Context, mobile, purpose, status string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.otpLogs = append(f.s.otpLogs, &models.OTPLog{ID: f.s.id(), Mobile: mobile, Purpose: purpose, Status: status})
	return nil
}

func (f *fakeOTPLogs) ListRecent(_ context.Context, limit int) ([]*models.OTPLog, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.OTPLog
	for i := len(f.s.otpLogs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.s.otpLogs[i])
	}
	return out, nil
}

func (f *fakeOTPLogs) Count(context.Context) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return int64(len(f.s.otpLogs)), nil
}

func (m *memStore) otpStatuses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, l := range m.otpLogs {
		out = append(out, l.Status)
	}
	return out
}

// --- refresh tokens ---

type fakeRefreshTokens struct{ s *memStore }

var _ refreshtokensrepo.Repository = (*fakeRefreshTokens)(nil)

func (f *fakeRefreshTokens) Create(_ context.Context, userID int64, token string, expires time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.tokens[token] = &models.RefreshToken{ID: f.s.id(), UserID: userID, Token: token, Expires: expires}
	return nil
}

func (f *fakeRefreshTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeRefreshTokens) Delete(_ context.Context, token string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.tokens, token)
	return nil
}

// --- manager ---

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return &fakeUsers{m.s} }
func (m *fakeRepoManager) Heartbeats(dbx.DBTX) heartbeats.Repository    { return &fakeHeartbeats{m.s} }
func (m *fakeRepoManager) Nominees(dbx.DBTX) nominees.Repository        { return &fakeNominees{m.s} }
func (m *fakeRepoManager) VaultItems(dbx.DBTX) vaultitems.Repository    { return &fakeItems{m.s} }
func (m *fakeRepoManager) SmartDocs(dbx.DBTX) smartdocs.Repository      { return &fakeDocs{m.s} }
func (m *fakeRepoManager) Folders(dbx.DBTX) folders.Repository          { return &fakeFolders{m.s} }
func (m *fakeRepoManager) Files(dbx.DBTX) filesrepo.Repository          { return &fakeFiles{m.s} }
func (m *fakeRepoManager) OTPLogs(dbx.DBTX) otplogs.Repository          { return &fakeOTPLogs{m.s} }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository {
	return &fakeRefreshTokens{m.s}
}

// --- otp store ---

type memOTPStore struct {
	mu       sync.Mutex
	items    map[string]*otpstore.Challenge
	failures map[string]int64
	getErr   error
	countErr error
}

var _ otpstore.Store = (*memOTPStore)(nil)

func newMemOTPStore() *memOTPStore {
	return &memOTPStore{items: map[string]*otpstore.Challenge{}, failures: map[string]int64{}}
}

func (s *memOTPStore) Save(_ context.Context, key string, c *otpstore.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = c
	delete(s.failures, key)
	return nil
}

func (s *memOTPStore) Get(_ context.Context, key string) (*otpstore.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	c, ok := s.items[key]
	if !ok {
		return nil, common.ErrOTPExpired
	}
	return c, nil
}

func (s *memOTPStore) RecordAttempt(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	s.failures[key]++
	return s.failures[key], nil
}

func (s *memOTPStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	delete(s.failures, key)
	return nil
}

func (s *memOTPStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[key]
	return ok
}

// --- notifier ---

type sentMessage struct{ To, Body string }

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, to, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{To: to, Body: body})
	return nil
}

func (n *fakeNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}
