package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socialchat/backend/config"
	"github.com/socialchat/backend/internal/models"
)

var ErrUploadNotFound = errors.New("upload not found")

const uploadURLExpiry = 7 * 24 * time.Hour

// UploadService stores uploaded binaries in S3 and records a FileUpload
// row per object. Everything else references uploads by id.
type UploadService struct {
	db       *gorm.DB
	s3Config *config.S3Config
}

// NewUploadService creates a new UploadService instance
func NewUploadService(db *gorm.DB, s3Config *config.S3Config) *UploadService {
	return &UploadService{
		db:       db,
		s3Config: s3Config,
	}
}

// Upload writes the file to S3 under a random key and inserts the row.
func (s *UploadService) Upload(ctx context.Context, filename, contentType string, data []byte) (*models.FileUpload, error) {
	if s.s3Config == nil {
		return nil, errors.New("upload storage is not configured")
	}

	key := fmt.Sprintf("uploads/%s%s", uuid.New().String(), filepath.Ext(filename))

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	url, err := s.s3Config.GeneratePresignedURL(ctx, key, uploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload url: %w", err)
	}

	upload := models.FileUpload{
		ObjectKey: key,
		FileName:  filename,
		URL:       url,
	}
	if err := s.db.Create(&upload).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

// Get retrieves an upload row by id.
func (s *UploadService) Get(id uint) (*models.FileUpload, error) {
	var upload models.FileUpload
	if err := s.db.First(&upload, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	return &upload, nil
}
