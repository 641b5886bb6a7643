package utils

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

type SupabaseStore struct {
	client  *storage.Client
	baseURL string
	bucket  string
}

func NewSupabaseStore(supabaseURL, key, bucket string) *SupabaseStore {
	supabaseURL = strings.TrimRight(supabaseURL, "/")
	return &SupabaseStore{
		client:  storage.NewClient(supabaseURL+"/storage/v1", key, nil),
		baseURL: supabaseURL,
		bucket:  bucket,
	}
}

// Upload stores the object at <bucket>/<folder>/<filename>.
func (s *SupabaseStore) Upload(_ context.Context, folder, filename, contentType string, body io.Reader) (string, error) {
	objectPath := path.Join(folder, filename)
	options := storage.FileOptions{
		ContentType: &contentType,
	}
	if _, err := s.client.UploadFile(s.bucket, objectPath, body, options); err != nil {
		return "", fmt.Errorf("supabase upload %s: %w", objectPath, err)
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath), nil
}

func (s *SupabaseStore) Delete(_ context.Context, publicURL string) error {
	if publicURL == "" {
		return nil
	}
	bucket, object, err := parseSupabaseObjectURL(publicURL)
	if err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(bucket, []string{object}); err != nil {
		return fmt.Errorf("supabase delete %s/%s: %w", bucket, object, err)
	}
	return nil
}

// parseSupabaseObjectURL splits ".../storage/v1/object/[public/]<bucket>/<path>" into bucket and path.
func parseSupabaseObjectURL(publicURL string) (string, string, error) {
	const marker = "/storage/v1/object/"
	idx := strings.Index(publicURL, marker)
	if idx == -1 {
		return "", "", fmt.Errorf("not a supabase object url: %s", publicURL)
	}

	rest := strings.TrimPrefix(publicURL[idx+len(marker):], "public/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("cannot parse bucket/object from url: %s", publicURL)
	}
	bucket, object := parts[0], parts[1]
	if q := strings.IndexAny(object, "?#"); q != -1 {
		object = object[:q]
	}
	if u, err := url.PathUnescape(object); err == nil {
		object = u
	}
	return bucket, object, nil
}
