package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	sc "github.com/BijjaSagar/vashihat-nama/internal/server/config"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/BijjaSagar/vashihat-nama/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const defaultPresignValidity = 15 * time.Minute

type FileUploadRequest struct {
	FolderID         *int64 `json:"folder_id,omitempty"`
	FileName         string `json:"file_name" validate:"required,max=255"`
	MimeType         string `json:"mime_type" validate:"max=255"`
	FileSize         int64  `json:"file_size" validate:"gte=0"`
	EncryptedFileKey string `json:"encrypted_file_key" validate:"required"`
}

// FileService keeps file metadata in Postgres and hands out presigned S3
// URLs so encrypted blobs never pass through the server.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gate        *AccessGate
	config      *sc.Config
}

func NewFileService(db *sql.DB, repomanager repomanager.RepositoryManager, gate *AccessGate, config *sc.Config) *FileService {
	return &FileService{
		db:          db,
		repomanager: repomanager,
		gate:        gate,
		config:      config,
	}
}

func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *FileService) presignValidity() time.Duration {
	if s.config.PresignValidityDuration > 0 {
		return s.config.PresignValidityDuration
	}
	return defaultPresignValidity
}

func (s *FileService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

func (s *FileService) GetPresignedPutUrl(ctx context.Context) (string, string, error) {

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.presignValidity()))

	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

func (s *FileService) GetPresignedGetUrl(ctx context.Context, key string) (string, error) {

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	reg, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.presignValidity()))
	if err != nil {
		return "", err
	}

	return reg.URL, nil
}

// CreateUpload registers file metadata and returns the URL the client
// uploads the encrypted blob to.
func (s *FileService) CreateUpload(ctx context.Context, userID int64, req FileUploadRequest) (*models.FileUploadTask, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	key, url, err := s.GetPresignedPutUrl(ctx)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	f, err := s.repomanager.Files(s.db).Create(ctx, &models.File{
		UserID:           userID,
		FolderID:         req.FolderID,
		FileName:         req.FileName,
		StorageKey:       key,
		FileSize:         req.FileSize,
		MimeType:         req.MimeType,
		EncryptedFileKey: req.EncryptedFileKey,
	})
	if err != nil {
		return nil, storeErr("create file", err)
	}

	return &models.FileUploadTask{File: f, URL: url}, nil
}

func (s *FileService) List(ctx context.Context, userID int64, folderID *int64) ([]*models.File, error) {
	list, err := s.repomanager.Files(s.db).ListForUser(ctx, userID, folderID)
	if err != nil {
		return nil, storeErr("list files", err)
	}
	return list, nil
}

// DownloadURL presigns a GET for one of the owner's own files.
func (s *FileService) DownloadURL(ctx context.Context, userID, fileID int64) (string, error) {
	f, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		return "", storeErr("get file", err)
	}
	if f.UserID != userID {
		return "", common.ErrorNotFound
	}
	return s.GetPresignedGetUrl(ctx, f.StorageKey)
}

// NomineeDownloadURL presigns a GET for a file of the nominee's owner once
// the gate has granted access.
func (s *FileService) NomineeDownloadURL(ctx context.Context, nomineeID int64, email string, fileID int64) (string, error) {
	n, err := s.gate.AuthorizeFor(ctx, nomineeID, email)
	if err != nil {
		return "", err
	}
	return s.DownloadURL(ctx, n.UserID, fileID)
}
