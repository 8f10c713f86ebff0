package services

import (
	"testing"

	"github.com/roadcheck/inspection-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testSecretHash(t *testing.T, secret string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestPromoteWithSecret(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIdentityService(db)
	hash := testSecretHash(t, "open-sesame")

	user, err := svc.PromoteWithSecret(bg, hash, "user_1", "first@example.com", "open-sesame")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "first@example.com", user.Email)

	ok, err := svc.IsAdmin(bg, "user_1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Promoting an admin again is a no-op.
	user, err = svc.PromoteWithSecret(bg, hash, "user_1", "", "open-sesame")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestPromoteWithSecretErrors(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIdentityService(db)
	hash := testSecretHash(t, "open-sesame")

	tests := []struct {
		name    string
		hash    string
		userID  string
		secret  string
		wantErr error
	}{
		{"bootstrap disabled", "", "user_1", "open-sesame", ErrBootstrapDisabled},
		{"missing user id", hash, "", "open-sesame", ErrMissingUserID},
		{"wrong secret", hash, "user_1", "guess", ErrInvalidSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PromoteWithSecret(bg, tt.hash, tt.userID, "", tt.secret)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := svc.GetUser(bg, "user_1")
	assert.ErrorIs(t, err, ErrNotFound, "a refused promotion must not create the user")
}
