package services

import (
	"context"
	"database/sql"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/repomanager"
)

const recentOTPLogs = 50

// AdminService backs the read-only admin dashboard.
type AdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager) *AdminService {
	return &AdminService{db: db, repomanager: m}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return list, nil
}

func (s *AdminService) OTPLogs(ctx context.Context) ([]*models.OTPLog, error) {
	list, err := s.repomanager.OTPLogs(s.db).ListRecent(ctx, recentOTPLogs)
	if err != nil {
		return nil, storeErr("list otp logs", err)
	}
	return list, nil
}

func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	var st models.AdminStats
	var err error
	if st.Users, err = s.repomanager.Users(s.db).Count(ctx); err != nil {
		return nil, storeErr("count users", err)
	}
	if st.Files, err = s.repomanager.Files(s.db).Count(ctx); err != nil {
		return nil, storeErr("count files", err)
	}
	if st.OTPs, err = s.repomanager.OTPLogs(s.db).Count(ctx); err != nil {
		return nil, storeErr("count otp logs", err)
	}
	return &st, nil
}
