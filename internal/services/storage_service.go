package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"notes-marketplace-api/internal/config"
	"notes-marketplace-api/pkg/logging"
	"notes-marketplace-api/pkg/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// StoredFile is a stored object and the URL it is downloadable from
type StoredFile struct {
	FileID      string `json:"file_id"`
	FileName    string `json:"file_name"`
	DownloadURL string `json:"download_url"`
}

// FileStore stores uploaded documents
type FileStore interface {
	EnsureFolder(ctx context.Context, segments ...string) (string, error)
	Upload(ctx context.Context, folder, fileName string, content []byte, contentType string) (*StoredFile, error)
	Delete(ctx context.Context, fileID string) error
}

// objectAPI is the part of the S3 client the store uses
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// StorageService is an S3-compatible FileStore. Folders are zero-byte
// objects whose key ends in "/".
type StorageService struct {
	client    objectAPI
	bucket    string
	root      string
	publicURL string
}

// NewStorageService builds an S3 client from the application config
func NewStorageService(ctx context.Context) (*StorageService, error) {
	cfg := config.AppConfig
	if cfg.StorageBucket == "" {
		return nil, ErrStorageNotConfigured
	}

	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.StorageRegion != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.StorageRegion))
	}
	if cfg.StorageAccessKey != "" && cfg.StorageSecretKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		))
	}
	optFns = append(optFns, awsconfig.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if cfg.StorageEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		}
	})

	publicURL := cfg.StoragePublicURL
	if publicURL == "" && cfg.StorageEndpoint != "" {
		publicURL = strings.TrimRight(cfg.StorageEndpoint, "/") + "/" + cfg.StorageBucket
	}
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.StorageBucket, cfg.StorageRegion)
	}

	return newStorageService(client, cfg.StorageBucket, cfg.StorageRootFolder, publicURL), nil
}

func newStorageService(client objectAPI, bucket, root, publicURL string) *StorageService {
	return &StorageService{
		client:    client,
		bucket:    bucket,
		root:      strings.Trim(root, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// EnsureFolder walks segments from the root, creating each missing level.
// Calling it again with the same segments creates nothing.
func (s *StorageService) EnsureFolder(ctx context.Context, segments ...string) (string, error) {
	prefix := s.root
	for _, seg := range segments {
		name := cleanSegment(seg)
		if name == "" {
			return "", fmt.Errorf("%w: empty folder name", ErrInvalidFile)
		}
		prefix = path.Join(prefix, name)

		created, err := s.getOrCreateFolder(ctx, prefix+"/")
		if err != nil {
			return "", fmt.Errorf("failed to get/create folder %s: %w", prefix, err)
		}
		if created {
			logging.Infof("Created storage folder %s", prefix)
		}
	}
	return prefix, nil
}

func (s *StorageService) getOrCreateFolder(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return false, nil
	}
	if !isNotFoundError(err) {
		metrics.StorageOperations.WithLabelValues("head", "error").Inc()
		return false, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(nil),
		ContentType: aws.String("application/x-directory"),
	})
	if err != nil {
		metrics.StorageOperations.WithLabelValues("mkdir", "error").Inc()
		return false, err
	}
	metrics.StorageOperations.WithLabelValues("mkdir", "success").Inc()
	return true, nil
}

// Upload stores content under folder with a collision-free key
func (s *StorageService) Upload(ctx context.Context, folder, fileName string, content []byte, contentType string) (*StoredFile, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidFile)
	}
	if contentType == "" {
		contentType = "application/pdf"
	}

	name := cleanSegment(fileName)
	if name == "" {
		name = "document.pdf"
	}
	key := path.Join(folder, uuid.NewString()+"-"+name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(content),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", name)),
	})
	if err != nil {
		metrics.StorageOperations.WithLabelValues("put", "error").Inc()
		logging.Errorf("Failed to upload %s: %v", key, err)
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	metrics.StorageOperations.WithLabelValues("put", "success").Inc()
	logging.Infof("Uploaded %s (%d bytes)", key, len(content))

	return &StoredFile{
		FileID:      key,
		FileName:    name,
		DownloadURL: s.publicURL + "/" + key,
	}, nil
}

// Delete removes a stored object; a missing object is not an error
func (s *StorageService) Delete(ctx context.Context, fileID string) error {
	if fileID == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fileID),
	})
	if err != nil && !isNotFoundError(err) {
		metrics.StorageOperations.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("failed to delete file: %w", err)
	}
	metrics.StorageOperations.WithLabelValues("delete", "success").Inc()
	return nil
}

// cleanSegment keeps a name usable as a single key segment
func cleanSegment(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	return strings.Trim(name, ".")
}

// isNotFoundError checks if an error is a not found error
func isNotFoundError(err error) bool {
	var nsk *s3types.NoSuchKey
	var nf *s3types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}
