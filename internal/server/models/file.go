package models

import "time"

// File describes server-side metadata for an encrypted blob. The content
// itself lives in object storage under StorageKey.
type File struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	FolderID         *int64    `json:"folder_id,omitempty"`
	FileName         string    `json:"file_name"`
	StorageKey       string    `json:"storage_key"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	EncryptedFileKey string    `json:"encrypted_file_key"`
	CreatedAt        time.Time `json:"created_at"`
}

// FileUploadTask instructs the client to upload a file using a presigned URL.
type FileUploadTask struct {
	File *File  `json:"file"`
	URL  string `json:"url"`
}
