package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/roadcheck/inspection-api/config"
)

const (
	userIDKey    = "user_id"
	userEmailKey = "user_email"
)

// CustomClaims contains custom data we want from the token.
// Clerk adds the primary email through a session token template.
type CustomClaims struct {
	Email string `json:"email"`
}

// Validate does nothing, but we need it to satisfy validator.CustomClaims interface.
func (c *CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// NewTokenValidator builds the session token validator. A configured
// CLERK_JWT_KEY selects HS256 with that key; otherwise RS256 keys are fetched
// from the issuer's JWKS.
func NewTokenValidator(cfg *config.Config) (*validator.Validator, error) {
	if cfg.ClerkIssuerURL == "" {
		return nil, errors.New("token issuer is not configured")
	}
	if cfg.ClerkAudience == "" {
		return nil, errors.New("token audience is not configured")
	}

	issuerURL, err := url.Parse(cfg.ClerkIssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}

	var keyFunc func(context.Context) (interface{}, error)
	algorithm := validator.RS256
	if cfg.ClerkJWTKey != "" {
		key := []byte(cfg.ClerkJWTKey)
		keyFunc = func(ctx context.Context) (interface{}, error) {
			return key, nil
		}
		algorithm = validator.HS256
	} else {
		keyFunc = jwks.NewCachingProvider(issuerURL, 5*time.Minute).KeyFunc
	}

	jwtValidator, err := validator.New(
		keyFunc,
		algorithm,
		cfg.ClerkIssuerURL,
		[]string{cfg.ClerkAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}
	return jwtValidator, nil
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(jwtValidator *validator.Validator) gin.HandlerFunc {
	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Warn("rejected bearer token",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			slog.Error("failed to write error response", slog.String("error", writeErr.Error()))
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			passed = true
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			c.Set(userIDKey, token.RegisteredClaims.Subject)
			if custom, ok := token.CustomClaims.(*CustomClaims); ok && custom.Email != "" {
				c.Set(userEmailKey, custom.Email)
			}

			c.Request = r
			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetUserEmail returns the email claim of the verified token, if any.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

// SetAuthenticatedUser records a verified identity on the context. Tests use
// it to stand in for EnsureValidToken.
func SetAuthenticatedUser(c *gin.Context, userID, email string) {
	c.Set(userIDKey, userID)
	if email != "" {
		c.Set(userEmailKey, email)
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
