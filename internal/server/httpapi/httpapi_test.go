package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/logging"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "admin-secret"

type fakeSweeper struct {
	report *models.SweepReport
	err    error
	calls  int
}

func (f *fakeSweeper) EvaluateOnce(context.Context) (*models.SweepReport, error) {
	f.calls++
	return f.report, f.err
}

type fakeGate struct {
	granted []int64
	err     error
}

func (f *fakeGate) Grant(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.granted = append(f.granted, id)
	return nil
}

type fakeAdmin struct {
	users []*models.User
	logs  []*models.OTPLog
	stats *models.AdminStats
	err   error
}

func (f *fakeAdmin) ListUsers(context.Context) ([]*models.User, error) { return f.users, f.err }
func (f *fakeAdmin) OTPLogs(context.Context) ([]*models.OTPLog, error) { return f.logs, f.err }
func (f *fakeAdmin) Stats(context.Context) (*models.AdminStats, error) { return f.stats, f.err }

func do(t *testing.T, h http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func admin() map[string]string {
	return map[string]string{common.AdminSecretHeaderName: secret}
}

func newTestRouter(s *fakeSweeper, g *fakeGate, a *fakeAdmin) http.Handler {
	return NewRouter(s, g, a, secret, logging.NopLogger{})
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&fakeSweeper{}, &fakeGate{}, &fakeAdmin{})
	rr := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetrics(t *testing.T) {
	h := newTestRouter(&fakeSweeper{}, &fakeGate{}, &fakeAdmin{})
	rr := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestAdmin_RejectsMissingOrWrongSecret(t *testing.T) {
	s := &fakeSweeper{report: &models.SweepReport{}}
	h := newTestRouter(s, &fakeGate{}, &fakeAdmin{})

	rr := do(t, h, http.MethodPost, "/api/admin/trigger_heartbeat_check", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/admin/trigger_heartbeat_check",
		map[string]string{common.AdminSecretHeaderName: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	assert.Zero(t, s.calls, "sweep must not run without the admin secret")
}

func TestAdmin_EmptyConfiguredSecretRejectsEverything(t *testing.T) {
	h := NewRouter(&fakeSweeper{}, &fakeGate{}, &fakeAdmin{}, "", logging.NopLogger{})
	rr := do(t, h, http.MethodGet, "/api/admin/stats", map[string]string{common.AdminSecretHeaderName: ""})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTriggerSweep(t *testing.T) {
	s := &fakeSweeper{report: &models.SweepReport{
		TriggeredCount: 1,
		OverdueUsers:   []models.OverdueUser{{ID: 7, Name: "Ravi", Email: "ravi@example.com"}},
		NewlyGranted:   []models.Nominee{{ID: 3}, {ID: 4}},
	}}
	h := newTestRouter(s, &fakeGate{}, &fakeAdmin{})

	rr := do(t, h, http.MethodPost, "/api/admin/trigger_heartbeat_check", admin())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body SweepResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.TriggeredCount)
	assert.Equal(t, 2, body.GrantedCount)
	assert.Zero(t, body.FailedCount)
	require.Len(t, body.OverdueUsers, 1)
	assert.Equal(t, "Ravi", body.OverdueUsers[0].Name)
	assert.NotContains(t, rr.Body.String(), "ravi@example.com")
}

func TestTriggerSweep_PartialFailureIsStillOK(t *testing.T) {
	s := &fakeSweeper{
		report: &models.SweepReport{
			TriggeredCount: 2,
			OverdueUsers:   []models.OverdueUser{{ID: 1}, {ID: 2}},
			NewlyGranted:   []models.Nominee{},
			Failures:       []models.SweepFailure{{UserID: 2, Error: "boom"}},
		},
		err: fmt.Errorf("%w: 1 of 2 users failed", common.ErrPartialSweep),
	}
	h := newTestRouter(s, &fakeGate{}, &fakeAdmin{})

	rr := do(t, h, http.MethodPost, "/api/admin/trigger_heartbeat_check", admin())
	require.Equal(t, http.StatusOK, rr.Code)

	var body SweepResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 1, body.FailedCount)
	assert.Equal(t, 2, body.TriggeredCount)
}

func TestTriggerSweep_QueryFailure(t *testing.T) {
	s := &fakeSweeper{err: errors.New("db down")}
	h := newTestRouter(s, &fakeGate{}, &fakeAdmin{})

	rr := do(t, h, http.MethodPost, "/api/admin/trigger_heartbeat_check", admin())
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "db down")
}

func TestGrant(t *testing.T) {
	g := &fakeGate{}
	h := newTestRouter(&fakeSweeper{}, g, &fakeAdmin{})

	rr := do(t, h, http.MethodPost, "/api/admin/nominees/12/grant", admin())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []int64{12}, g.granted)
}

func TestGrant_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{"bad id", "/api/admin/nominees/abc/grant", nil, http.StatusBadRequest},
		{"zero id", "/api/admin/nominees/0/grant", nil, http.StatusBadRequest},
		{"unknown nominee", "/api/admin/nominees/5/grant", common.ErrorNotFound, http.StatusNotFound},
		{"store failure", "/api/admin/nominees/5/grant", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&fakeSweeper{}, &fakeGate{err: tt.err}, &fakeAdmin{})
			rr := do(t, h, http.MethodPost, tt.path, admin())
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestListUsers_EmptyIsArray(t *testing.T) {
	h := newTestRouter(&fakeSweeper{}, &fakeGate{}, &fakeAdmin{})
	rr := do(t, h, http.MethodGet, "/api/admin/users", admin())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestOTPLogsAndStats(t *testing.T) {
	a := &fakeAdmin{
		logs:  []*models.OTPLog{{ID: 1, Mobile: "9876543210", Purpose: "login", Status: "sent"}},
		stats: &models.AdminStats{Users: 3, Files: 2, OTPs: 9},
	}
	h := newTestRouter(&fakeSweeper{}, &fakeGate{}, a)

	rr := do(t, h, http.MethodGet, "/api/admin/otp_logs", admin())
	require.Equal(t, http.StatusOK, rr.Code)
	var logs []models.OTPLog
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "sent", logs[0].Status)

	rr = do(t, h, http.MethodGet, "/api/admin/stats", admin())
	require.Equal(t, http.StatusOK, rr.Code)
	var stats models.AdminStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.Users)
}

func TestAdmin_RateLimited(t *testing.T) {
	h := newTestRouter(&fakeSweeper{}, &fakeGate{}, &fakeAdmin{stats: &models.AdminStats{}})

	var limited bool
	for i := 0; i < adminRateBurst+5; i++ {
		if rr := do(t, h, http.MethodGet, "/api/admin/stats", admin()); rr.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited)
}
