package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/abellano-woodworks/abellano-furniture-api/utils"
)

// LocalProofService stores delivery photos on the local filesystem. Used in
// development when no S3 bucket is configured.
type LocalProofService struct {
	uploadDir string
}

// NewLocalProofService creates a proof service backed by a local directory
func NewLocalProofService(uploadDir string) *LocalProofService {
	if uploadDir == "" {
		uploadDir = utils.UploadDir
	}
	return &LocalProofService{uploadDir: uploadDir}
}

// UploadProof validates and saves a delivery photo to the local upload directory
func (s *LocalProofService) UploadProof(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	filename, err := utils.SaveUploadedFile(fileHeader, s.uploadDir)
	if err != nil {
		return "", fmt.Errorf("failed to store delivery proof: %w", err)
	}

	return filename, nil
}

// GetProofURL returns the serve path for a locally stored delivery photo
func (s *LocalProofService) GetProofURL(proofKey string) (string, error) {
	return utils.GetProofURL(proofKey), nil
}

// DeleteProof removes a locally stored delivery photo
func (s *LocalProofService) DeleteProof(proofKey string) error {
	if proofKey == "" {
		return nil
	}

	path := filepath.Join(s.uploadDir, filepath.Base(proofKey))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete delivery proof: %w", err)
	}

	return nil
}
