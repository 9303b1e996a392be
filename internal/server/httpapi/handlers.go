package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// SweepResponse is the body of a manual sweep trigger.
type SweepResponse struct {
	Success        bool                  `json:"success"`
	TriggeredCount int                   `json:"triggered_count"`
	OverdueUsers   []models.OverdueUser  `json:"overdue_users"`
	GrantedCount   int                   `json:"granted_count"`
	FailedCount    int                   `json:"failed_count"`
	Failures       []models.SweepFailure `json:"failures,omitempty"`
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) handleTriggerSweep(w http.ResponseWriter, req *http.Request) {
	report, err := r.sweeper.EvaluateOnce(req.Context())
	if err != nil && !errors.Is(err, common.ErrPartialSweep) {
		r.logger.Error(req.Context(), "manual sweep failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, SweepResponse{
		Success:        true,
		TriggeredCount: report.TriggeredCount,
		OverdueUsers:   report.OverdueUsers,
		GrantedCount:   len(report.NewlyGranted),
		FailedCount:    len(report.Failures),
		Failures:       report.Failures,
	})
}

func (r *Router) handleGrant(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid nominee id")
		return
	}

	if err := r.gate.Grant(req.Context(), id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "nominee not found")
			return
		}
		r.logger.Error(req.Context(), "manual grant failed", "nominee_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "nominee_id": id})
}

func (r *Router) handleListUsers(w http.ResponseWriter, req *http.Request) {
	users, err := r.admin.ListUsers(req.Context())
	if err != nil {
		r.logger.Error(req.Context(), "list users failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (r *Router) handleOTPLogs(w http.ResponseWriter, req *http.Request) {
	logs, err := r.admin.OTPLogs(req.Context())
	if err != nil {
		r.logger.Error(req.Context(), "otp logs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if logs == nil {
		logs = []*models.OTPLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) {
	stats, err := r.admin.Stats(req.Context())
	if err != nil {
		r.logger.Error(req.Context(), "stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
