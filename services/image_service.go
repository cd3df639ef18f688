package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lucasperes/helpdesk-api/utils"
)

// ImageService handles attachment blob storage: upload, URL resolution and
// deletion. Two backends exist: local flat directory (default) and S3.
type ImageService interface {
	// UploadImage validates and stores an image file, returning the
	// generated storage key (a bare filename)
	UploadImage(fileHeader *multipart.FileHeader) (string, error)

	// ImageURL resolves a storage key to the URL clients fetch it from
	ImageURL(key string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(key string) error
}

// LocalImageService stores blobs in a flat directory on disk, served
// statically under /uploads.
type LocalImageService struct {
	dir string
	log zerolog.Logger
}

// NewLocalImageService creates the local-disk image backend
func NewLocalImageService(dir string, log zerolog.Logger) *LocalImageService {
	return &LocalImageService{dir: dir, log: log}
}

// UploadImage validates the file and writes it to the upload directory
// under a collision-resistant generated name
func (s *LocalImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	filename := utils.UniqueFilename(fileHeader.Filename)
	if err := utils.SaveUploadedFile(fileHeader, s.dir, filename); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return filename, nil
}

// ImageURL returns the static path the file is served under
func (s *LocalImageService) ImageURL(key string) (string, error) {
	return utils.PublicImagePath(key), nil
}

// DeleteImage removes the blob from disk. A missing file is not an error;
// the row may reference a blob that was already cleaned up.
func (s *LocalImageService) DeleteImage(key string) error {
	if key == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image %q: %w", key, err)
	}
	return nil
}
