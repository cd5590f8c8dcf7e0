package services

import "errors"

// Errors shared across services and mapped to HTTP statuses.
var (
	// Validation and business rules
	ErrValidationFailed    = errors.New("validation failed")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrAcademyNameRequired = errors.New("academy name is required")
	ErrPlayerNameRequired  = errors.New("player first and last name are required")
	ErrReadOnlyAttribute   = errors.New("attribute is read-only")
	ErrNoFieldsToUpdate    = errors.New("no fields provided for update")
	ErrInvalidPagination   = errors.New("invalid pagination parameters")
	ErrInvalidPhotoType    = errors.New("photo must be a JPEG, PNG or WebP image")
	ErrPhotoTooLarge       = errors.New("photo exceeds the maximum allowed size")

	// Conflicts
	ErrUserEmailConflict   = errors.New("email address is already in use")
	ErrAcademyNameConflict = errors.New("academy name is already in use")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	ErrPlayerNotFound = errors.New("player not found")

	ErrPhotoStorageUnavailable = errors.New("photo storage is not configured")
)
