package core

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jo-hoe/imagelabels/internal/backend/database"
)

const defaultEncoding = "7bit"

// Upload is a received multipart file.
type Upload struct {
	FieldName    string
	OriginalName string
	Encoding     string
	MimeType     string
	Data         []byte
}

// UploadStore keeps uploaded files on disk under a random name.
type UploadStore struct {
	directory string
}

// NewUploadStore makes sure the directory exists.
func NewUploadStore(directory string) (*UploadStore, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", directory, err)
	}
	return &UploadStore{directory: directory}, nil
}

func (s *UploadStore) Directory() string {
	return s.directory
}

// Save writes the upload and returns its metadata.
func (s *UploadStore) Save(upload Upload) (database.FileMetadata, error) {
	fileName := newFileName()
	path := filepath.Join(s.directory, fileName)

	if err := os.WriteFile(path, upload.Data, 0o644); err != nil {
		return database.FileMetadata{}, fmt.Errorf("failed to write upload %s: %w", path, err)
	}

	encoding := upload.Encoding
	if encoding == "" {
		encoding = defaultEncoding
	}

	return database.FileMetadata{
		FieldName:    upload.FieldName,
		OriginalName: upload.OriginalName,
		Encoding:     encoding,
		MimeType:     upload.MimeType,
		Destination:  s.directory,
		FileName:     fileName,
		Path:         path,
		Size:         int64(len(upload.Data)),
	}, nil
}

// Remove deletes a stored upload. A file that is already gone is not an error.
func (s *UploadStore) Remove(file database.FileMetadata) {
	if file.FileName == "" {
		return
	}
	path := filepath.Join(s.directory, filepath.Base(file.FileName))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove stored upload", "path", path, "error", err)
	}
}

func newFileName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
