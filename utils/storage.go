package utils

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/vnkhanh/e-course-backend/config"
)

// FileStore keeps uploaded course files and hands back their public URL.
type FileStore interface {
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (string, error)
	// Delete removes the object behind a URL previously returned by Upload.
	Delete(ctx context.Context, publicURL string) error
}

func NewFileStore(ctx context.Context, s config.Settings) (FileStore, error) {
	switch s.StorageDriver {
	case "", "supabase":
		if s.SupabaseURL == "" || s.SupabaseKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_KEY must be set")
		}
		return NewSupabaseStore(s.SupabaseURL, s.SupabaseKey, s.SupabaseBucket), nil
	case "s3":
		return NewS3Store(ctx, s)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", s.StorageDriver)
	}
}

// ObjectName builds a collision free object name that keeps the original extension.
func ObjectName(original string) string {
	return uuid.NewString() + strings.ToLower(path.Ext(original))
}

// FileKey is the last path segment of a stored file URL, used as the display name.
func FileKey(fileURL string) string {
	if i := strings.IndexAny(fileURL, "?#"); i != -1 {
		fileURL = fileURL[:i]
	}
	return path.Base(strings.TrimRight(fileURL, "/"))
}
