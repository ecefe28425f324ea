// filepath: internal/services/storage_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"adreel/internal/config"
	"adreel/internal/logging"
	"adreel/internal/models"
	"adreel/internal/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
)

// DefaultPresignExpiry bounds every presigned URL unless a caller asks otherwise.
const DefaultPresignExpiry = time.Hour

var _ ObjectStore = (*StorageService)(nil)

// StorageService is the storage gateway over an S3-compatible bucket.
// Upload and Delete never return Go errors; failures are folded into their results.
type StorageService struct {
	client       *s3.Client
	presign      *s3.PresignClient
	bucket       string
	publicDomain string
}

// NewStorageService builds the gateway. When the bucket is not configured it
// returns a gateway whose operations all fail cleanly.
func NewStorageService(ctx context.Context, cfg config.StorageConfig) (*StorageService, error) {
	svc := &StorageService{
		bucket:       cfg.Bucket,
		publicDomain: strings.TrimRight(cfg.PublicDomain, "/"),
	}
	if svc.publicDomain == "" {
		svc.publicDomain = cfg.ResolvedEndpoint()
	}
	if !cfg.Enabled() {
		logging.Log.Warn("Object storage is not configured; uploads will fail.")
		return svc, nil
	}

	client, err := storage.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc.client = client
	svc.presign = s3.NewPresignClient(client)

	logging.Log.Infof("Storage gateway initialized (bucket: %s, endpoint: %s)", cfg.Bucket, cfg.ResolvedEndpoint())
	return svc, nil
}

// Enabled reports whether a bucket client is configured.
func (s *StorageService) Enabled() bool {
	return s.client != nil
}

// Bucket returns the configured bucket name.
func (s *StorageService) Bucket() string {
	return s.bucket
}

// PublicURL returns the eventual public URL of key.
func (s *StorageService) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicDomain, s.bucket, key)
}

// mediaTypes covers extensions the platform mime tables often lack.
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
}

func contentTypeFor(name, override string) string {
	if override != "" {
		return override
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := mediaTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Upload writes body under a freshly generated key.
func (s *StorageService) Upload(ctx context.Context, body io.Reader, opts UploadOptions) UploadResult {
	if s.client == nil {
		return UploadResult{Error: "storage is not configured"}
	}

	key := storage.GenerateKey(opts.Name, opts.Folder)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentTypeFor(opts.Name, opts.ContentType)),
		Metadata: map[string]string{
			"uploaded-at":   time.Now().UTC().Format(time.RFC3339),
			"original-name": storage.SanitizeName(opts.Name),
		},
	}
	if opts.Size > 0 {
		input.ContentLength = aws.Int64(opts.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		logging.Log.Errorf("StorageService: upload of '%s' failed: %v", key, err)
		return UploadResult{Error: err.Error()}
	}

	logging.Log.Debugf("StorageService: uploaded %s (%s)", key, humanize.IBytes(uint64(max(opts.Size, 0))))
	return UploadResult{Success: true, Key: key, URL: s.PublicURL(key)}
}

// UploadBrandAsset stores a brand kit asset under projects/{id}/brand.
func (s *StorageService) UploadBrandAsset(ctx context.Context, projectID string, body io.Reader, opts UploadOptions) UploadResult {
	opts.Folder = storage.BrandFolder(projectID)
	return s.Upload(ctx, body, opts)
}

// UploadExportedVideo stores a rendered variant under projects/{id}/exports.
func (s *StorageService) UploadExportedVideo(ctx context.Context, projectID string, body io.Reader, name string, size int64) UploadResult {
	return s.Upload(ctx, body, UploadOptions{
		Name:        name,
		Folder:      storage.ExportFolder(projectID),
		ContentType: "video/mp4",
		Size:        size,
	})
}

// PresignUpload issues a one-hour PUT URL for a direct browser upload.
func (s *StorageService) PresignUpload(ctx context.Context, name, folder, contentType string) (*models.PresignedUpload, error) {
	if s.presign == nil {
		return nil, fmt.Errorf("%w: storage is not configured", ErrDependency)
	}

	key := storage.GenerateKey(name, folder)
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentTypeFor(name, contentType)),
	}, s3.WithPresignExpires(DefaultPresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &models.PresignedUpload{UploadURL: req.URL, Key: key, PublicURL: s.PublicURL(key)}, nil
}

// PresignDownload issues a GET URL for a private object. A zero expiry means one hour.
func (s *StorageService) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if s.presign == nil {
		return "", fmt.Errorf("%w: storage is not configured", ErrDependency)
	}
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, nil
}

// Delete removes an object. Failures are logged and reported as false.
func (s *StorageService) Delete(ctx context.Context, key string) bool {
	if s.client == nil {
		return false
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logging.Log.Warnf("StorageService: delete of '%s' failed: %v", key, err)
		return false
	}
	return true
}

// List pages through every object under prefix, calling fn for each.
func (s *StorageService) List(ctx context.Context, prefix string, fn func(ObjectInfo) error) error {
	if s.client == nil {
		return fmt.Errorf("%w: storage is not configured", ErrDependency)
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			info := ObjectInfo{Key: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			if err := fn(info); err != nil {
				return err
			}
		}
	}
	return nil
}
