package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"sync"

	"github.com/lucasperes/helpdesk-api/utils"
)

// MockImageService is an in-memory ImageService implementation for tests
type MockImageService struct {
	stored map[string][]byte
	// FailUploads makes every upload return an error when set
	FailUploads bool
	// FailDeletes makes every delete return an error when set, to
	// exercise the best-effort deletion path
	FailDeletes bool
	mu          sync.RWMutex
}

// NewMockImageService creates an empty mock image store
func NewMockImageService() *MockImageService {
	return &MockImageService{stored: make(map[string][]byte)}
}

// UploadImage validates and stores the file content in memory
func (m *MockImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	if m.FailUploads {
		return "", fmt.Errorf("mock upload failure")
	}
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := utils.UniqueFilename(fileHeader.Filename)
	m.mu.Lock()
	m.stored[key] = content
	m.mu.Unlock()

	return key, nil
}

// ImageURL returns the same public path the local backend would
func (m *MockImageService) ImageURL(key string) (string, error) {
	return utils.PublicImagePath(key), nil
}

// DeleteImage removes the file from the in-memory store
func (m *MockImageService) DeleteImage(key string) error {
	if m.FailDeletes {
		return fmt.Errorf("mock delete failure")
	}
	m.mu.Lock()
	delete(m.stored, key)
	m.mu.Unlock()
	return nil
}

// ImageExists checks whether a key is present (for test assertions)
func (m *MockImageService) ImageExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.stored[key]
	return ok
}

// Count returns how many images are stored
func (m *MockImageService) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stored)
}
