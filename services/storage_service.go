package services

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appConfig "github.com/roadcheck/inspection-api/config"
)

// PresignedUpload tells the client where to PUT photo bytes directly.
type PresignedUpload struct {
	URL       string      `json:"url"`
	Method    string      `json:"method"`
	Headers   http.Header `json:"headers"`
	Key       string      `json:"key"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// StorageService hands out presigned object URLs; image bytes never pass
// through the API.
type StorageService interface {
	// PresignUpload returns a URL the client can PUT the object to
	PresignUpload(ctx context.Context, key, contentType string) (*PresignedUpload, error)

	// PresignDownload returns a time-limited URL for reading a private object
	PresignDownload(ctx context.Context, key string) (string, error)

	// DeleteObject removes an object from storage
	DeleteObject(ctx context.Context, key string) error
}

// S3StorageService implements StorageService on an S3 bucket
type S3StorageService struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

var storageServiceInstance StorageService

// InitStorageService builds the S3 client from configuration and installs it
func InitStorageService(ctx context.Context, cfg *appConfig.Config) (StorageService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	// Static keys are optional; without them the default chain (instance
	// role, shared profile) is used.
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	ttl := cfg.UploadURLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	storageServiceInstance = &S3StorageService{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.AWSS3Bucket,
		ttl:     ttl,
	}
	return storageServiceInstance, nil
}

// GetStorageService returns the installed storage service, nil when photo storage is disabled
func GetStorageService() StorageService {
	return storageServiceInstance
}

// SetStorageService sets the storage service instance (primarily for testing)
func SetStorageService(service StorageService) {
	storageServiceInstance = service
}

// PresignUpload generates a presigned PUT for key
func (s *S3StorageService) PresignUpload(ctx context.Context, key, contentType string) (*PresignedUpload, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignedUpload{
		URL:       req.URL,
		Method:    req.Method,
		Headers:   req.SignedHeader,
		Key:       key,
		ExpiresAt: time.Now().Add(s.ttl),
	}, nil
}

// PresignDownload generates a presigned GET for key
func (s *S3StorageService) PresignDownload(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, nil
}

// DeleteObject deletes key from the bucket
func (s *S3StorageService) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// NewObjectKey builds a unique key for a photo of an inspection.
// Format: inspections/{inspectionID}/{uuid}.{ext}
func NewObjectKey(inspectionID uint, format string) string {
	ext := strings.TrimPrefix(strings.ToLower(format), ".")
	return ObjectKeyPrefix(inspectionID) + uuid.NewString() + "." + ext
}

// ObjectKeyPrefix is the key prefix every photo of an inspection lives under.
func ObjectKeyPrefix(inspectionID uint) string {
	return path.Join("inspections", fmt.Sprint(inspectionID)) + "/"
}

// OwnsObjectKey reports whether key was issued for inspectionID.
func OwnsObjectKey(inspectionID uint, key string) bool {
	prefix := ObjectKeyPrefix(inspectionID)
	return strings.HasPrefix(key, prefix) &&
		len(key) > len(prefix) &&
		!strings.Contains(key[len(prefix):], "/") &&
		path.Clean(key) == key
}
