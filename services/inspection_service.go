package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roadcheck/inspection-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InspectionPatch carries an admin update. A nil field keeps the stored value.
type InspectionPatch struct {
	Location              *string
	Date                  *string
	Time                  *string
	Vehicle               *string
	SpeedometerReading    *string
	DefectiveItems        *models.Checklist
	TruckTrailerItems     *models.Checklist
	TrailerNumber         *string
	Remarks               *string
	ConditionSatisfactory *bool
	DriverSignature       *string
	DefectsCorrected      *bool
	DefectsNeedCorrection *bool
	MechanicSignature     *string
}

// apply copies every present field onto current and returns the matching
// column -> value map. The mechanic signature only applies for admins.
func (p *InspectionPatch) apply(current *models.Inspection, actingIsAdmin bool) map[string]any {
	updates := make(map[string]any)

	setString := func(column string, v *string, dst *string) {
		if v != nil {
			*dst = *v
			updates[column] = *v
		}
	}
	setBool := func(column string, v *bool, dst *bool) {
		if v != nil {
			*dst = *v
			updates[column] = *v
		}
	}
	setChecklist := func(column string, v *models.Checklist, dst *models.Checklist) {
		if v != nil {
			*dst = *v
			updates[column] = *v
		}
	}

	setString("location", p.Location, &current.Location)
	setString("date", p.Date, &current.Date)
	setString("time", p.Time, &current.Time)
	setString("vehicle", p.Vehicle, &current.Vehicle)
	setString("speedometer_reading", p.SpeedometerReading, &current.SpeedometerReading)
	setChecklist("defective_items", p.DefectiveItems, &current.DefectiveItems)
	setChecklist("truck_trailer_items", p.TruckTrailerItems, &current.TruckTrailerItems)
	setString("trailer_number", p.TrailerNumber, &current.TrailerNumber)
	setString("remarks", p.Remarks, &current.Remarks)
	setBool("condition_satisfactory", p.ConditionSatisfactory, &current.ConditionSatisfactory)
	setString("driver_signature", p.DriverSignature, &current.DriverSignature)
	setBool("defects_corrected", p.DefectsCorrected, &current.DefectsCorrected)
	setBool("defects_need_correction", p.DefectsNeedCorrection, &current.DefectsNeedCorrection)
	if actingIsAdmin {
		setString("mechanic_signature", p.MechanicSignature, &current.MechanicSignature)
	}

	return updates
}

// InspectionService implements inspection CRUD
type InspectionService struct {
	db       *gorm.DB
	identity *IdentityService
}

// NewInspectionService creates a new inspection service instance
func NewInspectionService(db *gorm.DB) *InspectionService {
	return &InspectionService{db: db, identity: NewIdentityService(db)}
}

// Create stores a new inspection. The mechanic signature is dropped unless
// the submitting user is an admin right now.
func (s *InspectionService) Create(ctx context.Context, inspection *models.Inspection) error {
	if inspection.UserID == "" {
		return ErrMissingUserID
	}

	isAdmin, err := s.identity.IsAdmin(ctx, inspection.UserID)
	if err != nil {
		return err
	}
	if !isAdmin {
		inspection.MechanicSignature = ""
	}
	if inspection.DefectiveItems == nil {
		inspection.DefectiveItems = models.Checklist{}
	}
	if inspection.TruckTrailerItems == nil {
		inspection.TruckTrailerItems = models.Checklist{}
	}

	inspection.ID = 0
	if err := s.db.WithContext(ctx).Omit("Images").Create(inspection).Error; err != nil {
		return fmt.Errorf("create inspection: %w", err)
	}
	return nil
}

// ListByUser returns a user's inspections, newest first.
func (s *InspectionService) ListByUser(ctx context.Context, userID string) ([]models.Inspection, error) {
	inspections := make([]models.Inspection, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&inspections).Error
	if err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	return inspections, nil
}

// ListAll returns every inspection, newest first, with the owner's email.
func (s *InspectionService) ListAll(ctx context.Context) ([]models.Inspection, error) {
	inspections := make([]models.Inspection, 0)
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&inspections).Error; err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}

	ids := make([]string, 0, len(inspections))
	seen := make(map[string]bool)
	for _, in := range inspections {
		if !seen[in.UserID] {
			seen[in.UserID] = true
			ids = append(ids, in.UserID)
		}
	}
	if len(ids) == 0 {
		return inspections, nil
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Select("id", "email").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load inspection owners: %w", err)
	}
	emails := make(map[string]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}
	for i := range inspections {
		inspections[i].UserEmail = emails[inspections[i].UserID]
	}
	return inspections, nil
}

// Get loads one inspection with its images.
func (s *InspectionService) Get(ctx context.Context, id uint) (*models.Inspection, error) {
	var inspection models.Inspection
	err := s.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&inspection, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load inspection: %w", err)
	}
	return &inspection, nil
}

// Update merges patch into the stored inspection on behalf of actingUserID,
// who must be an admin. Only the columns present in the patch are written.
func (s *InspectionService) Update(ctx context.Context, id uint, actingUserID string, patch InspectionPatch) (*models.Inspection, error) {
	if err := s.identity.RequireAdmin(ctx, actingUserID); err != nil {
		return nil, err
	}

	var current models.Inspection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load inspection: %w", err)
		}

		updates := patch.apply(&current, true)
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&current).Updates(updates).Error; err != nil {
			return fmt.Errorf("update inspection: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes an inspection and its image rows. The owner or any admin
// may delete; requireAdmin restricts it to admins. Stored photos are removed
// from object storage afterwards on a best-effort basis.
func (s *InspectionService) Delete(ctx context.Context, id uint, actingUserID string, requireAdmin bool) error {
	isAdmin, err := s.identity.IsAdmin(ctx, actingUserID)
	if err != nil {
		return err
	}
	if requireAdmin && !isAdmin {
		return ErrForbidden
	}

	var keys []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inspection models.Inspection
		if err := lockForUpdate(tx).First(&inspection, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load inspection: %w", err)
		}
		if !isAdmin && (actingUserID == "" || inspection.UserID != actingUserID) {
			return ErrForbidden
		}

		if err := tx.Model(&models.InspectionImage{}).
			Where("inspection_id = ? AND public_id <> ''", id).
			Pluck("public_id", &keys).Error; err != nil {
			return fmt.Errorf("list inspection images: %w", err)
		}
		if err := tx.Where("inspection_id = ?", id).Delete(&models.InspectionImage{}).Error; err != nil {
			return fmt.Errorf("delete inspection images: %w", err)
		}
		if err := tx.Delete(&models.Inspection{}, id).Error; err != nil {
			return fmt.Errorf("delete inspection: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	removeObjects(ctx, keys)
	return nil
}

// lockForUpdate adds SELECT ... FOR UPDATE where the dialect supports it.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func removeObjects(ctx context.Context, keys []string) {
	storage := GetStorageService()
	if storage == nil {
		return
	}
	for _, key := range keys {
		if err := storage.DeleteObject(ctx, key); err != nil {
			slog.WarnContext(ctx, "failed to delete stored photo",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}
}
