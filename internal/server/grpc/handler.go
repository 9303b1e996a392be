package grpc

import (
	"context"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/services"
)

func (s *GRPCServer) RequestOTP(ctx context.Context, req *RequestOTPRequest) (*RequestOTPResponse, error) {
	debug, err := s.users.RequestOTP(ctx, req.Mobile, req.Purpose)
	if err != nil {
		return nil, s.fail(ctx, "request otp", err)
	}
	return &RequestOTPResponse{Success: true, Message: "OTP sent", DebugOTP: debug}, nil
}

func (s *GRPCServer) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*VerifyOTPResponse, error) {
	res, err := s.users.VerifyOTP(ctx, req.Mobile, req.OTP, req.Purpose)
	if err != nil {
		return nil, s.fail(ctx, "verify otp", err)
	}

	out := &VerifyOTPResponse{Success: true, User: res.User, NextStep: res.NextStep}
	if res.Tokens != nil {
		out.AccessToken = res.Tokens.AccessToken
		out.RefreshToken = res.Tokens.RefreshToken
	}
	return out, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *services.RegisterRequest) (*AuthResponse, error) {

	s.logger.Info(ctx, "Registration request")

	user, tokens, err := s.users.Register(ctx, *req)
	if err != nil {
		return nil, s.fail(ctx, "register", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &AuthResponse{User: user, AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *RefreshTokenRequest) (*AuthResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.fail(ctx, "refresh token", err)
	}
	return &AuthResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, _ *Empty) (*UserResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "get profile", err)
	}
	return &UserResponse{User: u}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*UserResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.UpdateProfile(ctx, userID, req.Name, req.Email)
	if err != nil {
		return nil, s.fail(ctx, "update profile", err)
	}
	return &UserResponse{User: u}, nil
}

func (s *GRPCServer) CheckIn(ctx context.Context, req *CheckInRequest) (*HeartbeatStatusResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.liveness.CheckIn(ctx, userID, req.Method)
	if err != nil {
		return nil, s.fail(ctx, "check-in", err)
	}
	return &HeartbeatStatusResponse{Status: st}, nil
}

func (s *GRPCServer) GetHeartbeatStatus(ctx context.Context, _ *Empty) (*HeartbeatStatusResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.liveness.GetStatus(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "heartbeat status", err)
	}
	return &HeartbeatStatusResponse{Status: st}, nil
}

func (s *GRPCServer) UpdateHeartbeatSettings(ctx context.Context, req *HeartbeatSettingsRequest) (*HeartbeatStatusResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.liveness.UpdateSettings(ctx, userID, req.Active, req.FrequencyDays)
	if err != nil {
		return nil, s.fail(ctx, "heartbeat settings", err)
	}
	return &HeartbeatStatusResponse{Status: st}, nil
}

func (s *GRPCServer) HeartbeatHistory(ctx context.Context, req *HeartbeatHistoryRequest) (*HeartbeatHistoryResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.liveness.History(ctx, userID, req.Limit)
	if err != nil {
		return nil, s.fail(ctx, "heartbeat history", err)
	}
	return &HeartbeatHistoryResponse{Entries: entries}, nil
}

func (s *GRPCServer) GetSecurityScore(ctx context.Context, _ *Empty) (*models.SecurityScore, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	score, err := s.score.Compute(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "security score", err)
	}
	return score, nil
}

func (s *GRPCServer) AddNominee(ctx context.Context, req *services.NomineeRequest) (*NomineeResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.nominees.Add(ctx, userID, *req)
	if err != nil {
		return nil, s.fail(ctx, "add nominee", err)
	}
	return &NomineeResponse{Nominee: n}, nil
}

func (s *GRPCServer) ListNominees(ctx context.Context, _ *Empty) (*NomineesResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.nominees.List(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "list nominees", err)
	}
	return &NomineesResponse{Nominees: list}, nil
}

func (s *GRPCServer) RequestNomineeCode(ctx context.Context, req *NomineeCodeRequest) (*NomineeCodeResponse, error) {
	debug, err := s.nominees.RequestNomineeCode(ctx, req.Email)
	if err != nil {
		return nil, s.fail(ctx, "request nominee code", err)
	}
	// the same answer is given for unknown emails
	return &NomineeCodeResponse{Success: true, DebugCode: debug}, nil
}

func (s *GRPCServer) VerifyNomineeCode(ctx context.Context, req *NomineeCodeRequest) (*services.NomineeSession, error) {
	sess, err := s.nominees.VerifyNomineeCode(ctx, req.Email, req.Code)
	if err != nil {
		return nil, s.fail(ctx, "verify nominee code", err)
	}
	return sess, nil
}

func (s *GRPCServer) CreateVaultItem(ctx context.Context, req *services.VaultItemRequest) (*VaultItemResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.vault.CreateItem(ctx, userID, *req)
	if err != nil {
		return nil, s.fail(ctx, "create vault item", err)
	}
	return &VaultItemResponse{Item: item}, nil
}

func (s *GRPCServer) ListVaultItems(ctx context.Context, req *ListVaultItemsRequest) (*VaultItemsResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.vault.ListItems(ctx, userID, models.VaultItemFilter{FolderID: req.FolderID, ItemType: req.ItemType})
	if err != nil {
		return nil, s.fail(ctx, "list vault items", err)
	}
	return &VaultItemsResponse{Items: items}, nil
}

func (s *GRPCServer) GetVaultItem(ctx context.Context, req *IDRequest) (*VaultItemResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.vault.GetItem(ctx, userID, req.ID)
	if err != nil {
		return nil, s.fail(ctx, "get vault item", err)
	}
	return &VaultItemResponse{Item: item}, nil
}

func (s *GRPCServer) UpdateVaultItem(ctx context.Context, req *UpdateVaultItemRequest) (*VaultItemResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.vault.UpdateItem(ctx, userID, req.ID, req.Title, req.EncryptedData)
	if err != nil {
		return nil, s.fail(ctx, "update vault item", err)
	}
	return &VaultItemResponse{Item: item}, nil
}

func (s *GRPCServer) DeleteVaultItem(ctx context.Context, req *IDRequest) (*SuccessResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.vault.DeleteItem(ctx, userID, req.ID); err != nil {
		return nil, s.fail(ctx, "delete vault item", err)
	}
	return &SuccessResponse{Success: true}, nil
}

func (s *GRPCServer) VaultStats(ctx context.Context, _ *Empty) (*VaultStatsResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.vault.Stats(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "vault stats", err)
	}
	return &VaultStatsResponse{Counts: counts}, nil
}

func (s *GRPCServer) CreateSmartDoc(ctx context.Context, req *services.SmartDocRequest) (*SmartDocResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := s.vault.CreateSmartDoc(ctx, userID, *req)
	if err != nil {
		return nil, s.fail(ctx, "create smart doc", err)
	}
	return &SmartDocResponse{Doc: doc}, nil
}

func (s *GRPCServer) ListSmartDocs(ctx context.Context, req *ListSmartDocsRequest) (*SmartDocsResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.vault.ListSmartDocs(ctx, userID, req.UpcomingOnly)
	if err != nil {
		return nil, s.fail(ctx, "list smart docs", err)
	}
	return &SmartDocsResponse{Docs: docs}, nil
}

func (s *GRPCServer) DeleteSmartDoc(ctx context.Context, req *IDRequest) (*SuccessResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.vault.DeleteSmartDoc(ctx, userID, req.ID); err != nil {
		return nil, s.fail(ctx, "delete smart doc", err)
	}
	return &SuccessResponse{Success: true}, nil
}

func (s *GRPCServer) CreateFolder(ctx context.Context, req *CreateFolderRequest) (*FolderResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	f, err := s.vault.CreateFolder(ctx, userID, req.Name)
	if err != nil {
		return nil, s.fail(ctx, "create folder", err)
	}
	return &FolderResponse{Folder: f}, nil
}

func (s *GRPCServer) ListFolders(ctx context.Context, _ *Empty) (*FoldersResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.vault.ListFolders(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "list folders", err)
	}
	return &FoldersResponse{Folders: list}, nil
}

func (s *GRPCServer) CreateFileUpload(ctx context.Context, req *services.FileUploadRequest) (*models.FileUploadTask, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.files.CreateUpload(ctx, userID, *req)
	if err != nil {
		return nil, s.fail(ctx, "create upload", err)
	}
	return task, nil
}

func (s *GRPCServer) ListFiles(ctx context.Context, req *ListFilesRequest) (*FilesResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.files.List(ctx, userID, req.FolderID)
	if err != nil {
		return nil, s.fail(ctx, "list files", err)
	}
	return &FilesResponse{Files: files}, nil
}

func (s *GRPCServer) GetFileURL(ctx context.Context, req *FileURLRequest) (*URLResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.files.DownloadURL(ctx, userID, req.FileID)
	if err != nil {
		return nil, s.fail(ctx, "file url", err)
	}
	return &URLResponse{URL: url}, nil
}

func (s *GRPCServer) NomineeListVaultItems(ctx context.Context, req *NomineeVaultRequest) (*VaultItemsResponse, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.vault.ListForNominee(ctx, req.NomineeID, id.Email)
	if err != nil {
		return nil, s.fail(ctx, "nominee vault", err)
	}
	return &VaultItemsResponse{Items: items}, nil
}

func (s *GRPCServer) NomineeFileURL(ctx context.Context, req *FileURLRequest) (*URLResponse, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.files.NomineeDownloadURL(ctx, req.NomineeID, id.Email, req.FileID)
	if err != nil {
		return nil, s.fail(ctx, "nominee file url", err)
	}
	return &URLResponse{URL: url}, nil
}
