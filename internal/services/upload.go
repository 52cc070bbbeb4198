package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventscout/internal/apiclient"
	"eventscout/internal/domain"
)

// localHandlePrefix tags upload ids that only exist as ephemeral local
// files. DeleteFile treats them as a no-op.
const localHandlePrefix = "local:"

var defaultImageTypes = []string{"image/png", "image/jpeg", "image/jpg", "image/webp"}

type uploadService struct {
	client         *apiclient.Client
	uploadDir      string
	maxImageSize   int64
	maxFileSize    int64
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewUploadService returns an UploadService that uploads through the
// primary API and falls back to ephemeral local files. Local results are
// never persisted; they vanish with the process.
func NewUploadService(client *apiclient.Client, uploadDir string, maxImageSize, maxFileSize int64, logger *slog.Logger, timeout time.Duration) domain.UploadService {
	return &uploadService{
		client:         client,
		uploadDir:      uploadDir,
		maxImageSize:   maxImageSize,
		maxFileSize:    maxFileSize,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// validate rejects oversized or disallowed content before any I/O happens.
// A validation failure is a synchronous error and never triggers fallback.
func validate(contentType string, size int64, maxSize int64, allowedTypes []string) error {
	if size > maxSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrFileTooLarge, size, maxSize)
	}
	if len(allowedTypes) == 0 {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	for _, allowed := range allowedTypes {
		if normalized == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, contentType)
}

func (s *uploadService) UploadImage(ctx context.Context, name, contentType string, size int64, content []byte, opts *domain.UploadOptions) (*domain.UploadResult, error) {
	maxSize := s.maxImageSize
	allowedTypes := defaultImageTypes
	if opts != nil {
		if opts.MaxSize > 0 {
			maxSize = opts.MaxSize
		}
		if len(opts.AllowedTypes) > 0 {
			allowedTypes = opts.AllowedTypes
		}
	}
	if err := validate(contentType, size, maxSize, allowedTypes); err != nil {
		return nil, err
	}
	return s.upload(ctx, "/upload/image", name, contentType, size, content, opts)
}

func (s *uploadService) UploadFile(ctx context.Context, name, contentType string, size int64, content []byte, opts *domain.UploadOptions) (*domain.UploadResult, error) {
	maxSize := s.maxFileSize
	var allowedTypes []string
	if opts != nil {
		if opts.MaxSize > 0 {
			maxSize = opts.MaxSize
		}
		allowedTypes = opts.AllowedTypes
	}
	if err := validate(contentType, size, maxSize, allowedTypes); err != nil {
		return nil, err
	}
	return s.upload(ctx, "/upload/file", name, contentType, size, content, opts)
}

func (s *uploadService) upload(ctx context.Context, path, name, contentType string, size int64, content []byte, opts *domain.UploadOptions) (*domain.UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	result, err := s.uploadRemote(ctx, path, name, contentType, content, opts)
	if err == nil {
		result.Size = size
		return result, nil
	}
	s.logger.Warn("remote upload failed, keeping file locally", "name", name, "error", err)
	return s.uploadLocal(name, size, content)
}

func (s *uploadService) uploadRemote(ctx context.Context, path, name, contentType string, content []byte, opts *domain.UploadOptions) (*domain.UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if opts != nil && opts.Folder != "" {
		if err := writer.WriteField("folder", opts.Folder); err != nil {
			return nil, fmt.Errorf("build multipart body: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	resp, err := s.client.Do(ctx, apiclient.RequestOptions{
		Method:      http.MethodPost,
		Path:        path,
		RawBody:     &buf,
		ContentType: writer.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		URL string `json:"url"`
		ID  string `json:"id"`
	}
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &domain.UploadResult{
		Source: domain.UploadRemote,
		URL:    out.URL,
		ID:     out.ID,
	}, nil
}

// uploadLocal writes the content to a temp file under the upload dir.
// The handle is ephemeral: nothing tracks it and nothing persists it.
func (s *uploadService) uploadLocal(name string, size int64, content []byte) (*domain.UploadResult, error) {
	ext := filepath.Ext(name)
	file, err := os.CreateTemp(s.uploadDir, "upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create local file: %w", err)
	}
	if _, err := file.Write(content); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("write local file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("close local file: %w", err)
	}
	return &domain.UploadResult{
		Source: domain.UploadLocal,
		URL:    file.Name(),
		ID:     localHandlePrefix + uuid.NewString(),
		Size:   size,
	}, nil
}

// DeleteFile removes a remote upload. Local handles were never persisted,
// so deleting them is a no-op.
func (s *uploadService) DeleteFile(ctx context.Context, id string) error {
	if strings.HasPrefix(id, localHandlePrefix) {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.client.Delete(ctx, "/upload/"+id)
}
