package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxFileSize is 5 MiB in bytes
	MaxFileSize = 5 * 1024 * 1024
	// MaxFilesPerRequest caps how many images one ticket request may carry
	MaxFilesPerRequest = 5
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile validates the uploaded file's content type and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("arquivo %q excede o tamanho máximo de %d MB", fileHeader.Filename, MaxFileSize/(1024*1024)),
		}
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return &FileUploadError{
			Code:    "INVALID_FILE_TYPE",
			Message: fmt.Sprintf("arquivo %q não é uma imagem", fileHeader.Filename),
		}
	}

	return nil
}

// UniqueFilename generates a collision-resistant name for an uploaded file,
// keeping the original extension: unix-nano timestamp plus a random suffix.
func UniqueFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), suffix, ext)
}

// SaveUploadedFile writes the uploaded file under dir with the given name,
// creating the directory if needed.
func SaveUploadedFile(fileHeader *multipart.FileHeader, dir, filename string) (err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close source file: %w", closeErr)
		}
	}()

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	return nil
}

// PublicImagePath returns the URL path a stored filename is served under
func PublicImagePath(filename string) string {
	if filename == "" {
		return ""
	}
	return "/uploads/" + filename
}
