package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/repomanager"
)

// upcomingWindow is how far back an expiry date may lie and still be listed
// as upcoming.
const upcomingWindow = 30 * 24 * time.Hour

type VaultItemRequest struct {
	FolderID      *int64          `json:"folder_id,omitempty"`
	ItemType      models.ItemType `json:"item_type" validate:"required"`
	Title         string          `json:"title" validate:"required,max=255"`
	EncryptedData string          `json:"encrypted_data" validate:"required"`
}

type SmartDocRequest struct {
	FileID           *int64     `json:"file_id,omitempty"`
	DocType          string     `json:"doc_type" validate:"required,max=100"`
	DocNumber        string     `json:"doc_number" validate:"max=100"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	RenewalDate      *time.Time `json:"renewal_date,omitempty"`
	IssuingAuthority string     `json:"issuing_authority" validate:"max=255"`
	Notes            string     `json:"notes"`
}

// VaultService manages the owner's encrypted items, smart documents and
// folders. The server stores ciphertext and never decrypts it.
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gate        *AccessGate
	now         func() time.Time
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, gate *AccessGate) *VaultService {
	return &VaultService{db: db, repomanager: m, gate: gate, now: time.Now}
}

func (s *VaultService) CreateItem(ctx context.Context, userID int64, req VaultItemRequest) (*models.VaultItem, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.ItemType.Valid() {
		return nil, fmt.Errorf("%w: unknown item type %q", common.ErrInvalidArgument, req.ItemType)
	}
	item, err := s.repomanager.VaultItems(s.db).Create(ctx, &models.VaultItem{
		UserID:        userID,
		FolderID:      req.FolderID,
		ItemType:      req.ItemType,
		Title:         req.Title,
		EncryptedData: req.EncryptedData,
	})
	if err != nil {
		return nil, storeErr("create vault item", err)
	}
	return item, nil
}

func (s *VaultService) ListItems(ctx context.Context, userID int64, filter models.VaultItemFilter) ([]*models.VaultItem, error) {
	if filter.ItemType != "" && !filter.ItemType.Valid() {
		return nil, fmt.Errorf("%w: unknown item type %q", common.ErrInvalidArgument, filter.ItemType)
	}
	items, err := s.repomanager.VaultItems(s.db).List(ctx, userID, filter)
	if err != nil {
		return nil, storeErr("list vault items", err)
	}
	return items, nil
}

func (s *VaultService) GetItem(ctx context.Context, userID, id int64) (*models.VaultItem, error) {
	item, err := s.repomanager.VaultItems(s.db).Get(ctx, id, userID)
	if err != nil {
		return nil, storeErr("get vault item", err)
	}
	return item, nil
}

func (s *VaultService) UpdateItem(ctx context.Context, userID, id int64, title, encryptedData string) (*models.VaultItem, error) {
	if title == "" || encryptedData == "" {
		return nil, fmt.Errorf("%w: title and encrypted data are required", common.ErrInvalidArgument)
	}
	item, err := s.repomanager.VaultItems(s.db).Update(ctx, id, userID, title, encryptedData)
	if err != nil {
		return nil, storeErr("update vault item", err)
	}
	return item, nil
}

func (s *VaultService) DeleteItem(ctx context.Context, userID, id int64) error {
	if err := s.repomanager.VaultItems(s.db).Delete(ctx, id, userID); err != nil {
		return storeErr("delete vault item", err)
	}
	return nil
}

// Stats counts the owner's items per type; every type is present.
func (s *VaultService) Stats(ctx context.Context, userID int64) (map[models.ItemType]int, error) {
	stats, err := s.repomanager.VaultItems(s.db).CountByType(ctx, userID)
	if err != nil {
		return nil, storeErr("vault stats", err)
	}
	return stats, nil
}

// ListForNominee returns the owner's items to a signed-in nominee once the
// gate lets them through.
func (s *VaultService) ListForNominee(ctx context.Context, nomineeID int64, email string) ([]*models.VaultItem, error) {
	n, err := s.gate.AuthorizeFor(ctx, nomineeID, email)
	if err != nil {
		return nil, err
	}
	items, err := s.repomanager.VaultItems(s.db).List(ctx, n.UserID, models.VaultItemFilter{})
	if err != nil {
		return nil, storeErr("list vault items", err)
	}
	return items, nil
}

func (s *VaultService) CreateSmartDoc(ctx context.Context, userID int64, req SmartDocRequest) (*models.SmartDoc, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	doc, err := s.repomanager.SmartDocs(s.db).Create(ctx, &models.SmartDoc{
		UserID:           userID,
		FileID:           req.FileID,
		DocType:          req.DocType,
		DocNumber:        req.DocNumber,
		ExpiryDate:       req.ExpiryDate,
		RenewalDate:      req.RenewalDate,
		IssuingAuthority: req.IssuingAuthority,
		Notes:            req.Notes,
	})
	if err != nil {
		return nil, storeErr("create smart doc", err)
	}
	return doc, nil
}

// ListSmartDocs returns every document, or with upcomingOnly only those
// expiring from 30 days ago onwards, soonest first.
func (s *VaultService) ListSmartDocs(ctx context.Context, userID int64, upcomingOnly bool) ([]*models.SmartDoc, error) {
	since := s.now().UTC().Add(-upcomingWindow)
	docs, err := s.repomanager.SmartDocs(s.db).List(ctx, userID, upcomingOnly, since)
	if err != nil {
		return nil, storeErr("list smart docs", err)
	}
	return docs, nil
}

func (s *VaultService) DeleteSmartDoc(ctx context.Context, userID, id int64) error {
	if err := s.repomanager.SmartDocs(s.db).Delete(ctx, id, userID); err != nil {
		return storeErr("delete smart doc", err)
	}
	return nil
}

func (s *VaultService) CreateFolder(ctx context.Context, userID int64, name string) (*models.Folder, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: folder name is required", common.ErrInvalidArgument)
	}
	f, err := s.repomanager.Folders(s.db).Create(ctx, &models.Folder{UserID: userID, Name: name})
	if err != nil {
		return nil, storeErr("create folder", err)
	}
	return f, nil
}

func (s *VaultService) ListFolders(ctx context.Context, userID int64) ([]*models.Folder, error) {
	list, err := s.repomanager.Folders(s.db).ListForUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list folders", err)
	}
	return list, nil
}
