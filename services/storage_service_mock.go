package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// MockStorageService is an in-memory StorageService for tests
type MockStorageService struct {
	mu       sync.RWMutex
	uploads  map[string]string // key to content type
	deleted  []string
	failWith error
}

// NewMockStorageService creates a new mock storage service
func NewMockStorageService() *MockStorageService {
	return &MockStorageService{
		uploads: make(map[string]string),
	}
}

// SetAsMockForTesting installs this mock as the global storage service
func (m *MockStorageService) SetAsMockForTesting() {
	SetStorageService(m)
}

// FailWith makes every following call return err (nil clears it)
func (m *MockStorageService) FailWith(err error) {
	m.mu.Lock()
	m.failWith = err
	m.mu.Unlock()
}

// PresignUpload records the key and returns a fake URL
func (m *MockStorageService) PresignUpload(ctx context.Context, key, contentType string) (*PresignedUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}

	m.uploads[key] = contentType
	return &PresignedUpload{
		URL:       fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=put", key),
		Method:    http.MethodPut,
		Headers:   http.Header{"Content-Type": []string{contentType}},
		Key:       key,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

// PresignDownload returns a fake URL
func (m *MockStorageService) PresignDownload(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return "", m.failWith
	}
	if key == "" {
		return "", nil
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=get", key), nil
}

// DeleteObject records the deletion
func (m *MockStorageService) DeleteObject(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	delete(m.uploads, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// Uploads returns a copy of the presigned upload keys
func (m *MockStorageService) Uploads() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.uploads))
	for k, v := range m.uploads {
		out[k] = v
	}
	return out
}

// Deleted returns the keys deleted so far
func (m *MockStorageService) Deleted() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.deleted...)
}
