// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/config"
)

const productImageFolder = "products"

// AssetStore is the external image store. Asset IDs are opaque to callers.
type AssetStore interface {
	Upload(ctx context.Context, filename string, data []byte) (*UploadedAsset, error)
	Delete(ctx context.Context, assetID string) error
}

type UploadedAsset struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int    `json:"size"`
	MimeType string `json:"mime_type"`
}

// FileUpload is one file received from a client.
type FileUpload struct {
	Filename string
	Data     []byte
}

// UploadResult reports the outcome of one file in a batch upload.
type UploadResult struct {
	Filename string         `json:"filename"`
	Asset    *UploadedAsset `json:"asset,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type StorageService struct {
	s3Client *s3.S3
	config   config.AWSConfig
	maxBytes int64
	log      logrus.FieldLogger
}

func NewStorageService(cfg config.AWSConfig, maxBytes int64, log logrus.FieldLogger) (*StorageService, error) {
	s := &StorageService{config: cfg, maxBytes: maxBytes, log: log}

	// Without credentials, files go to the local upload directory.
	if cfg.AccessKeyID == "" {
		if err := os.MkdirAll(cfg.LocalUploadDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create local upload directory")
		}
		return s, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS session")
	}
	s.s3Client = s3.New(sess)
	return s, nil
}

func (s *StorageService) Upload(ctx context.Context, filename string, data []byte) (*UploadedAsset, error) {
	asset, err := s.inspect(filename, data)
	if err != nil {
		return nil, err
	}

	key := s.generateFileName(filename, productImageFolder)
	if s.s3Client != nil {
		err = s.uploadToS3(ctx, key, asset.MimeType, data)
	} else {
		err = s.uploadToLocal(key, data)
	}
	if err != nil {
		return nil, apperrors.Upstream(err, "failed to store %s", filename)
	}

	asset.ID = key
	asset.URL = s.publicURL(key)
	s.log.WithFields(logrus.Fields{"asset_id": key, "size": asset.Size}).Debug("asset uploaded")
	return asset, nil
}

// inspect rejects anything that is not a decodable image within the size limit.
func (s *StorageService) inspect(filename string, data []byte) (*UploadedAsset, error) {
	if len(data) == 0 {
		return nil, apperrors.Validation("%s is empty", filename)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, apperrors.Validation("%s exceeds the %d byte limit", filename, s.maxBytes).
			WithDetail("max_bytes", s.maxBytes)
	}
	mimeType := http.DetectContentType(data)
	if !isValidImageType(mimeType) {
		return nil, apperrors.Validation("%s is not a supported image type", filename).
			WithDetail("mime_type", mimeType)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Validation("%s could not be decoded as an image", filename)
	}
	return &UploadedAsset{Width: cfg.Width, Height: cfg.Height, Size: len(data), MimeType: mimeType}, nil
}

func (s *StorageService) uploadToS3(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	return err
}

func (s *StorageService) uploadToLocal(key string, data []byte) error {
	fullPath, err := s.localPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0o644)
}

func (s *StorageService) Delete(ctx context.Context, assetID string) error {
	if assetID == "" {
		return nil
	}
	if s.s3Client != nil {
		_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.config.S3Bucket),
			Key:    aws.String(assetID),
		})
		if err != nil {
			return apperrors.Upstream(err, "failed to delete asset %s", assetID)
		}
		return nil
	}

	fullPath, err := s.localPath(assetID)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return apperrors.Upstream(err, "failed to delete asset %s", assetID)
	}
	return nil
}

// GeneratePresignedURL returns a time-limited GET URL for a private asset.
func (s *StorageService) GeneratePresignedURL(assetID string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return s.publicURL(assetID), nil
	}
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(assetID),
	})
	url, err := req.Presign(expiration)
	if err != nil {
		return "", errors.Wrap(err, "failed to presign asset URL")
	}
	return url, nil
}

func (s *StorageService) localPath(key string) (string, error) {
	clean := path.Clean("/" + key)
	if strings.Contains(key, "..") || clean == "/" {
		return "", apperrors.Validation("invalid asset id %q", key)
	}
	return filepath.Join(s.config.LocalUploadDir, filepath.FromSlash(clean)), nil
}

func (s *StorageService) generateFileName(originalName, folder string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	timestamp := time.Now().Format("20060102")
	return fmt.Sprintf("%s/%s_%s%s", folder, timestamp, uuid.New().String()[:8], ext)
}

func (s *StorageService) publicURL(key string) string {
	if s.s3Client == nil {
		return strings.TrimRight(s.config.LocalBaseURL, "/") + "/" + key
	}
	if s.config.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.CloudFrontURL, "/"), key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.S3Bucket, s.config.Region, key)
}

func isValidImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif":
		return true
	}
	return false
}

// UploadBatch uploads files concurrently and reports each outcome in input
// order. One failed file never aborts the others.
func UploadBatch(ctx context.Context, store AssetStore, files []FileUpload) []UploadResult {
	results := make([]UploadResult, len(files))
	sem := make(chan struct{}, 4)
	var wg sync.WaitGroup

	for i, f := range files {
		results[i].Filename = f.Filename
		wg.Add(1)
		go func(i int, f FileUpload) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			asset, err := store.Upload(ctx, f.Filename, f.Data)
			if err != nil {
				results[i].Error = err.Error()
				return
			}
			results[i].Asset = asset
		}(i, f)
	}
	wg.Wait()
	return results
}
