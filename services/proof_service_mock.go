package services

import (
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/abellano-woodworks/abellano-furniture-api/utils"
)

// MockProofService is a mock implementation of ProofService for testing
type MockProofService struct {
	uploadedProofs map[string][]byte // map of proof key to file content
	mu             sync.RWMutex
}

// NewMockProofService creates a new mock proof service
func NewMockProofService() *MockProofService {
	return &MockProofService{
		uploadedProofs: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global proof service instance for testing
func (m *MockProofService) SetAsMockForTesting() {
	SetProofService(m)
}

// UploadProof simulates storing a delivery photo
func (m *MockProofService) UploadProof(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content := make([]byte, fileHeader.Size)
	_, err = file.Read(content)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	proofKey := fmt.Sprintf("proofs/mock_%s", fileHeader.Filename)

	m.mu.Lock()
	m.uploadedProofs[proofKey] = content
	m.mu.Unlock()

	return proofKey, nil
}

// GetProofURL simulates generating a URL for a delivery photo
func (m *MockProofService) GetProofURL(proofKey string) (string, error) {
	if proofKey == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.uploadedProofs[proofKey]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("proof not found in mock storage: %s", proofKey)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", proofKey), nil
}

// DeleteProof simulates deleting a delivery photo
func (m *MockProofService) DeleteProof(proofKey string) error {
	if proofKey == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.uploadedProofs, proofKey)
	m.mu.Unlock()

	return nil
}

// ProofExists checks if a delivery photo exists in mock storage
func (m *MockProofService) ProofExists(proofKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedProofs[proofKey]
	return exists
}

// Clear removes all delivery photos from mock storage
func (m *MockProofService) Clear() {
	m.mu.Lock()
	m.uploadedProofs = make(map[string][]byte)
	m.mu.Unlock()
}
