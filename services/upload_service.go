package services

import (
	"context"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/vnkhanh/e-course-backend/utils"
)

// UploadEndpoint describes what one upload widget of the editor accepts.
type UploadEndpoint struct {
	Folder  string
	MaxSize int64
	Accept  []string // mime type prefixes
}

var UploadEndpoints = map[string]UploadEndpoint{
	"courseImage": {
		Folder:  "images",
		MaxSize: 4 << 20,
		Accept:  []string{"image/"},
	},
	"courseAttachment": {
		Folder:  "attachments",
		MaxSize: 32 << 20,
		Accept:  []string{"text/", "image/", "video/", "audio/", "application/pdf"},
	},
	"chapterVideo": {
		Folder:  "videos",
		MaxSize: 1 << 30,
		Accept:  []string{"video/"},
	},
}

func (e UploadEndpoint) accepts(mime string) bool {
	for _, prefix := range e.Accept {
		if strings.HasPrefix(mime, prefix) {
			return true
		}
	}
	return false
}

type UploadService struct {
	Files utils.FileStore
}

// Upload checks size and sniffed content type, then stores the file.
func (s *UploadService) Upload(ctx context.Context, endpoint string, header *multipart.FileHeader) (string, error) {
	ep, ok := UploadEndpoints[endpoint]
	if !ok {
		return "", ErrNotFound
	}
	if header.Size > ep.MaxSize {
		return "", &FieldError{Field: "file", Reason: "file is too large"}
	}

	file, err := header.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer file.Close()

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", errors.Wrap(err, "detect content type")
	}
	if !ep.accepts(mt.String()) {
		return "", &FieldError{Field: "file", Reason: "file type " + mt.String() + " is not allowed"}
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", errors.Wrap(err, "rewind upload")
	}

	url, err := s.Files.Upload(ctx, ep.Folder, utils.ObjectName(header.Filename), mt.String(), file)
	if err != nil {
		return "", errors.Wrap(err, "store upload")
	}
	return url, nil
}
