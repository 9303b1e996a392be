package grpc

import "github.com/BijjaSagar/vashihat-nama/internal/server/models"

// Request and response messages of vasihat.v1.VaultService. Requests that
// match a service input one to one reuse the services types directly.

type Empty struct{}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type RequestOTPRequest struct {
	Mobile  string `json:"mobile"`
	Purpose string `json:"purpose,omitempty"`
}

type RequestOTPResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	DebugOTP string `json:"debug_otp,omitempty"`
}

type VerifyOTPRequest struct {
	Mobile  string `json:"mobile"`
	OTP     string `json:"otp"`
	Purpose string `json:"purpose,omitempty"`
}

type VerifyOTPResponse struct {
	Success      bool         `json:"success"`
	User         *models.User `json:"user,omitempty"`
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	NextStep     string       `json:"next_step,omitempty"`
}

type AuthResponse struct {
	User         *models.User `json:"user,omitempty"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserResponse struct {
	User *models.User `json:"user"`
}

type CheckInRequest struct {
	Method string `json:"method,omitempty"`
}

type HeartbeatStatusResponse struct {
	Status *models.LivenessStatus `json:"status"`
}

type HeartbeatSettingsRequest struct {
	Active        bool `json:"active"`
	FrequencyDays int  `json:"frequency_days"`
}

type HeartbeatHistoryRequest struct {
	Limit int `json:"limit,omitempty"`
}

type HeartbeatHistoryResponse struct {
	Entries []*models.HeartbeatLog `json:"entries"`
}

type NomineeResponse struct {
	Nominee *models.Nominee `json:"nominee"`
}

type NomineesResponse struct {
	Nominees []*models.Nominee `json:"nominees"`
}

type ListVaultItemsRequest struct {
	FolderID *int64          `json:"folder_id,omitempty"`
	ItemType models.ItemType `json:"item_type,omitempty"`
}

type VaultItemResponse struct {
	Item *models.VaultItem `json:"item"`
}

type VaultItemsResponse struct {
	Items []*models.VaultItem `json:"items"`
}

type IDRequest struct {
	ID int64 `json:"id"`
}

type UpdateVaultItemRequest struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	EncryptedData string `json:"encrypted_data"`
}

type VaultStatsResponse struct {
	Counts map[models.ItemType]int `json:"counts"`
}

type SmartDocResponse struct {
	Doc *models.SmartDoc `json:"doc"`
}

type ListSmartDocsRequest struct {
	UpcomingOnly bool `json:"upcoming_only"`
}

type SmartDocsResponse struct {
	Docs []*models.SmartDoc `json:"docs"`
}

type CreateFolderRequest struct {
	Name string `json:"name"`
}

type FolderResponse struct {
	Folder *models.Folder `json:"folder"`
}

type FoldersResponse struct {
	Folders []*models.Folder `json:"folders"`
}

type ListFilesRequest struct {
	FolderID *int64 `json:"folder_id,omitempty"`
}

type FilesResponse struct {
	Files []*models.File `json:"files"`
}

type FileURLRequest struct {
	NomineeID int64 `json:"nominee_id,omitempty"`
	FileID    int64 `json:"file_id"`
}

type URLResponse struct {
	URL string `json:"url"`
}

type NomineeCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code,omitempty"`
}

type NomineeCodeResponse struct {
	Success   bool   `json:"success"`
	DebugCode string `json:"debug_code,omitempty"`
}

type NomineeVaultRequest struct {
	NomineeID int64 `json:"nominee_id"`
}
