package services

import (
	"fmt"
	"mime/multipart"

	"github.com/abellano-woodworks/abellano-furniture-api/utils"
)

// ProofService handles delivery-proof photo storage: the photo a driver
// captures at the doorstep, required before a delivery-route order can be
// marked Delivered.
type ProofService interface {
	// UploadProof validates and stores a delivery photo, returns the storage key
	UploadProof(fileHeader *multipart.FileHeader) (string, error)

	// GetProofURL generates a URL for viewing a stored delivery photo
	GetProofURL(proofKey string) (string, error)

	// DeleteProof removes a delivery photo from storage
	DeleteProof(proofKey string) error
}

// S3ProofService implements ProofService using AWS S3 for storage
type S3ProofService struct {
	s3Service S3Interface
}

var proofServiceInstance ProofService

// InitProofService initializes the proof service with S3 backend
func InitProofService(s3Service S3Interface) ProofService {
	proofServiceInstance = &S3ProofService{
		s3Service: s3Service,
	}
	return proofServiceInstance
}

// GetProofService returns the initialized proof service instance
func GetProofService() ProofService {
	return proofServiceInstance
}

// SetProofService sets the proof service instance (primarily for testing)
func SetProofService(service ProofService) {
	proofServiceInstance = service
}

// UploadProof validates and uploads a delivery photo to S3
func (s *S3ProofService) UploadProof(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	s3Key, err := s.s3Service.UploadFile(fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload delivery proof: %w", err)
	}

	return s3Key, nil
}

// GetProofURL generates a presigned URL for viewing a delivery photo
func (s *S3ProofService) GetProofURL(proofKey string) (string, error) {
	if proofKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(proofKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate proof URL: %w", err)
	}

	return url, nil
}

// DeleteProof deletes a delivery photo from S3
func (s *S3ProofService) DeleteProof(proofKey string) error {
	if proofKey == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(proofKey); err != nil {
		return fmt.Errorf("failed to delete delivery proof: %w", err)
	}

	return nil
}
