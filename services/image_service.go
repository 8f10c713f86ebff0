package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roadcheck/inspection-api/models"
	"github.com/roadcheck/inspection-api/utils"
	"gorm.io/gorm"
)

// ImageService handles photo references attached to inspections. Clients
// upload bytes straight to storage; the API hands out upload URLs and
// records what was uploaded.
type ImageService struct {
	db       *gorm.DB
	identity *IdentityService
}

// NewImageService creates a new image service instance
func NewImageService(db *gorm.DB) *ImageService {
	return &ImageService{db: db, identity: NewIdentityService(db)}
}

// CreateUploadURL presigns a direct upload for a new photo of an inspection.
func (s *ImageService) CreateUploadURL(ctx context.Context, inspectionID uint, actingUserID, contentType string) (*PresignedUpload, error) {
	storage := GetStorageService()
	if storage == nil {
		return nil, ErrStorageDisabled
	}

	format, err := utils.FormatForContentType(contentType)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, inspectionID, actingUserID); err != nil {
		return nil, err
	}

	upload, err := storage.PresignUpload(ctx, NewObjectKey(inspectionID, format), contentType)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return upload, nil
}

// Register records an uploaded photo's reference and metadata.
func (s *ImageService) Register(ctx context.Context, inspectionID uint, actingUserID string, image *models.InspectionImage) error {
	if err := utils.ValidateImageMetadata(utils.ImageMetadata{
		URL:      image.URL,
		PublicID: image.PublicID,
		Width:    image.Width,
		Height:   image.Height,
		Format:   image.Format,
		Bytes:    image.Bytes,
	}); err != nil {
		return err
	}
	// Stored keys are signed and deleted later, so they must belong to this inspection.
	if image.PublicID != "" && !OwnsObjectKey(inspectionID, image.PublicID) {
		return &utils.ImageValidationError{
			Code:    "INVALID_PUBLIC_ID",
			Message: "public_id must be a key issued for this inspection",
		}
	}
	if _, err := s.authorize(ctx, inspectionID, actingUserID); err != nil {
		return err
	}

	image.ID = 0
	image.InspectionID = inspectionID
	image.Format = utils.NormalizeFormat(image.Format)
	if err := s.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("create inspection image: %w", err)
	}
	return nil
}

// List returns an inspection's photos. Private photos get a presigned view URL.
func (s *ImageService) List(ctx context.Context, inspectionID uint) ([]models.InspectionImage, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Inspection{}).Where("id = ?", inspectionID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check inspection: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	images := make([]models.InspectionImage, 0)
	if err := s.db.WithContext(ctx).Where("inspection_id = ?", inspectionID).Order("id ASC").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("list inspection images: %w", err)
	}

	SignPrivateImages(ctx, images)
	return images, nil
}

// SignPrivateImages fills ViewURL for private images when storage is configured.
func SignPrivateImages(ctx context.Context, images []models.InspectionImage) {
	storage := GetStorageService()
	if storage == nil {
		return
	}
	for i := range images {
		if !images[i].IsPrivate || images[i].PublicID == "" {
			continue
		}
		url, err := storage.PresignDownload(ctx, images[i].PublicID)
		if err != nil {
			slog.WarnContext(ctx, "failed to sign private photo",
				slog.Uint64("image_id", uint64(images[i].ID)),
				slog.String("error", err.Error()))
			continue
		}
		images[i].ViewURL = url
	}
}

// authorize lets the inspection's owner or any admin through.
func (s *ImageService) authorize(ctx context.Context, inspectionID uint, actingUserID string) (*models.Inspection, error) {
	var inspection models.Inspection
	err := s.db.WithContext(ctx).Select("id", "user_id").First(&inspection, inspectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load inspection: %w", err)
	}

	if actingUserID != "" && inspection.UserID == actingUserID {
		return &inspection, nil
	}
	isAdmin, err := s.identity.IsAdmin(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, ErrForbidden
	}
	return &inspection, nil
}
