package models

import "time"

// ItemType enumerates the kinds of vault items.
type ItemType string

const (
	ItemNote       ItemType = "note"
	ItemPassword   ItemType = "password"
	ItemCreditCard ItemType = "credit_card"
	ItemFile       ItemType = "file"
)

// ItemTypes lists every valid ItemType in display order.
var ItemTypes = []ItemType{ItemNote, ItemPassword, ItemCreditCard, ItemFile}

func (t ItemType) Valid() bool {
	for _, v := range ItemTypes {
		if v == t {
			return true
		}
	}
	return false
}

// VaultItem holds client-side encrypted data. The server never decrypts it.
type VaultItem struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	FolderID      *int64    `json:"folder_id,omitempty"`
	ItemType      ItemType  `json:"item_type"`
	Title         string    `json:"title"`
	EncryptedData string    `json:"encrypted_data"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VaultItemFilter narrows List results. Zero values mean "any".
type VaultItemFilter struct {
	FolderID *int64
	ItemType ItemType
}

type Folder struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SmartDoc is document metadata extracted on the device (OCR), used for
// renewal reminders.
type SmartDoc struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	FileID           *int64     `json:"file_id,omitempty"`
	DocType          string     `json:"doc_type"`
	DocNumber        string     `json:"doc_number"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	RenewalDate      *time.Time `json:"renewal_date,omitempty"`
	IssuingAuthority string     `json:"issuing_authority"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `json:"created_at"`
}
