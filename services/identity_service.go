package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roadcheck/inspection-api/metrics"
	"github.com/roadcheck/inspection-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReconcileOutcome describes what a reconciliation run did to the users table.
type ReconcileOutcome string

const (
	OutcomeCreated      ReconcileOutcome = "created"
	OutcomeMigrated     ReconcileOutcome = "migrated"
	OutcomeEmailUpdated ReconcileOutcome = "email_updated"
	OutcomeUnchanged    ReconcileOutcome = "unchanged"
)

// UserSummary is a user row with the number of inspections it owns.
type UserSummary struct {
	models.User
	InspectionCount int64 `json:"inspection_count"`
}

// IdentityService keeps users rows in step with the identity provider and
// answers role questions. Roles are always read from the store.
type IdentityService struct {
	db *gorm.DB
}

// NewIdentityService creates a new identity service instance
func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db}
}

// Reconcile guarantees a users row exists for userID.
//
// When email is a real address already stored under a different id, that
// row is re-keyed to userID and its inspections follow it, in one
// transaction. Otherwise the row is inserted as a plain user; an existing
// row only has its email replaced when the stored one is a placeholder and
// a real email was supplied. Roles are never touched.
func (s *IdentityService) Reconcile(ctx context.Context, userID, email string) (ReconcileOutcome, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return OutcomeUnchanged, ErrMissingUserID
	}

	email = strings.TrimSpace(email)
	effectiveEmail := email
	if effectiveEmail == "" {
		effectiveEmail = models.PlaceholderEmail(userID)
	}

	outcome := OutcomeUnchanged
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !models.IsPlaceholderEmail(effectiveEmail) {
			migrated, err := migrateIdentity(tx, userID, effectiveEmail)
			if err != nil {
				return err
			}
			if migrated {
				outcome = OutcomeMigrated
				return nil
			}
		}

		user := models.User{ID: userID, Email: effectiveEmail, Role: models.RoleUser}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
		if res.Error != nil {
			return fmt.Errorf("insert user: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			outcome = OutcomeCreated
			return nil
		}

		var existing models.User
		if err := tx.First(&existing, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		if email != "" && models.IsPlaceholderEmail(existing.Email) && existing.Email != email {
			if err := tx.Model(&existing).Update("email", email).Error; err != nil {
				return fmt.Errorf("update user email: %w", err)
			}
			outcome = OutcomeEmailUpdated
		}
		return nil
	})
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("reconcile user %s: %w", userID, err)
	}

	return outcome, nil
}

// migrateIdentity re-keys a row registered under another id with the same
// real email. It reports false when there is nothing to migrate, or when
// userID already has its own row (re-keying would collide).
func migrateIdentity(tx *gorm.DB, userID, email string) (bool, error) {
	var previous models.User
	err := tx.Where("email = ? AND id <> ?", email, userID).Order("created_at ASC").First(&previous).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find user by email: %w", err)
	}

	var taken int64
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&taken).Error; err != nil {
		return false, fmt.Errorf("check user id: %w", err)
	}
	if taken > 0 {
		return false, nil
	}

	if err := tx.Exec("UPDATE users SET id = ?, updated_at = ? WHERE id = ?", userID, time.Now(), previous.ID).Error; err != nil {
		return false, fmt.Errorf("re-key user: %w", err)
	}
	if err := tx.Model(&models.Inspection{}).Where("user_id = ?", previous.ID).UpdateColumn("user_id", userID).Error; err != nil {
		return false, fmt.Errorf("re-point inspections: %w", err)
	}

	slog.Info("migrated user identity",
		slog.String("from_user_id", previous.ID),
		slog.String("to_user_id", userID))
	return true, nil
}

// EnsureUser runs Reconcile as a best-effort step: failures are logged and
// the caller carries on.
func (s *IdentityService) EnsureUser(ctx context.Context, userID, email string) {
	outcome, err := s.Reconcile(ctx, userID, email)
	if err != nil {
		metrics.Reconciliations.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "identity reconciliation failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return
	}
	metrics.Reconciliations.WithLabelValues(string(outcome)).Inc()
}

// GetUser loads a user by id.
func (s *IdentityService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// IsAdmin reads the user's role fresh from the store. Unknown ids are not admins.
func (s *IdentityService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	user, err := s.GetUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

// RequireAdmin returns ErrForbidden unless userID is an admin.
func (s *IdentityService) RequireAdmin(ctx context.Context, userID string) error {
	ok, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// SetRole changes targetID's role on behalf of the admin actingID.
func (s *IdentityService) SetRole(ctx context.Context, actingID, targetID, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if err := s.RequireAdmin(ctx, actingID); err != nil {
		return nil, err
	}
	if actingID == targetID && role != models.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load user: %w", err)
		}
		if user.Role == role {
			return nil
		}
		if err := tx.Model(&user).Update("role", role).Error; err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		user.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user role changed",
		slog.String("admin_user_id", actingID),
		slog.String("target_user_id", targetID),
		slog.String("role", role))
	return &user, nil
}

// ListUsers returns every user with their inspection count, newest first.
func (s *IdentityService) ListUsers(ctx context.Context) ([]UserSummary, error) {
	summaries := make([]UserSummary, 0)
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*, COUNT(vehicle_inspections.id) AS inspection_count").
		Joins("LEFT JOIN vehicle_inspections ON vehicle_inspections.user_id = users.id").
		Group("users.id").
		Order("users.created_at DESC").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return summaries, nil
}
