package domain

import "context"

// UploadSource tags where an upload result lives.
type UploadSource string

const (
	// UploadRemote means the file was stored by the primary backend.
	UploadRemote UploadSource = "remote"
	// UploadLocal means the upload fell back to an ephemeral local file.
	// Local results are never persisted and vanish with the process.
	UploadLocal UploadSource = "local"
)

// UploadResult is the outcome of an upload. Source distinguishes a
// remote URL from an ephemeral local handle.
type UploadResult struct {
	Source UploadSource `json:"source"`
	URL    string       `json:"url"`
	ID     string       `json:"id,omitempty"`
	Size   int64        `json:"size,omitempty"`
}

// UploadOptions tweaks validation and destination for a single upload.
type UploadOptions struct {
	Folder       string
	MaxSize      int64
	AllowedTypes []string
}

// UploadService validates and uploads files. Validation failures are
// synchronous and never reach the network.
type UploadService interface {
	UploadImage(ctx context.Context, name, contentType string, size int64, content []byte, opts *UploadOptions) (*UploadResult, error)
	UploadFile(ctx context.Context, name, contentType string, size int64, content []byte, opts *UploadOptions) (*UploadResult, error)
	DeleteFile(ctx context.Context, id string) error
}
