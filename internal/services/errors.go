package services

import "errors"

var (
	ErrMissingFields        = errors.New("missing required fields")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidSignature     = errors.New("invalid payment signature")
	ErrNoteNotFound         = errors.New("note not found")
	ErrNoteFileMissing      = errors.New("note has no downloadable file")
	ErrPurchaseNotFound     = errors.New("purchase not found")
	ErrInvalidStatus        = errors.New("invalid purchase status")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrNotDownloadable      = errors.New("purchase is not completed")
	ErrSyllabusNotFound     = errors.New("syllabus not found")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAdminExists          = errors.New("admin already exists")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrInvalidAdminSecret   = errors.New("invalid admin secret")
	ErrInvalidSession       = errors.New("invalid session")
	ErrSessionExpired       = errors.New("session has expired")
	ErrSessionRevoked       = errors.New("session has been revoked")
	ErrInvalidFile          = errors.New("invalid file")
	ErrStorageNotConfigured = errors.New("file storage is not configured")
)
