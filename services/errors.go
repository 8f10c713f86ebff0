package services

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden is returned when the acting user may not perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrSelfDemotion is returned when an admin tries to drop their own admin role.
	ErrSelfDemotion = errors.New("admins cannot remove their own admin role")

	// ErrInvalidRole is returned for roles other than "user" and "admin".
	ErrInvalidRole = errors.New("role must be 'user' or 'admin'")

	// ErrMissingUserID is returned when an operation needs a user id and got none.
	ErrMissingUserID = errors.New("user id is required")

	// ErrBootstrapDisabled is returned when no admin bootstrap secret is configured.
	ErrBootstrapDisabled = errors.New("admin bootstrap is not configured")

	// ErrInvalidSecret is returned when the admin bootstrap secret does not match.
	ErrInvalidSecret = errors.New("invalid admin secret")

	// ErrStorageDisabled is returned when photo storage is not configured.
	ErrStorageDisabled = errors.New("photo storage is not configured")
)
