package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roadcheck/inspection-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PromoteWithSecret makes userID an admin when secret matches the
// configured bcrypt hash. It is how the first admin gets created.
func (s *IdentityService) PromoteWithSecret(ctx context.Context, secretHash, userID, email, secret string) (*models.User, error) {
	if secretHash == "" {
		return nil, ErrBootstrapDisabled
	}
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidSecret
		}
		return nil, fmt.Errorf("check admin secret: %w", err)
	}

	s.EnsureUser(ctx, userID, email)

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load user: %w", err)
		}
		if user.IsAdmin() {
			return nil
		}
		if err := tx.Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
			return fmt.Errorf("promote user: %w", err)
		}
		user.Role = models.RoleAdmin
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user promoted with bootstrap secret", slog.String("user_id", userID))
	return &user, nil
}
