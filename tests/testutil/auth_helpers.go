package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/roadcheck/inspection-api/config"
	"github.com/stretchr/testify/require"
)

// Token settings shared by auth-enabled tests.
const (
	TestSigningKey = "test-signing-key-with-enough-entropy"
	TestIssuer     = "https://clerk.test.example.com"
	TestAudience   = "inspection-api-test"
)

// WithTestAuth returns a copy of cfg that verifies HS256 tokens minted by MintToken.
func WithTestAuth(cfg config.Config) *config.Config {
	cfg.ClerkJWTKey = TestSigningKey
	cfg.ClerkIssuerURL = TestIssuer
	cfg.ClerkAudience = TestAudience
	return &cfg
}

// MintToken signs a session token for subject, valid for an hour. An empty
// email leaves the claim out.
func MintToken(t *testing.T, subject, email string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"iss": TestIssuer,
		"aud": []string{TestAudience},
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	return SignClaims(t, claims, TestSigningKey)
}

// SignClaims signs arbitrary claims with HS256.
func SignClaims(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}
