// Package service provides business logic for the application.
package service

import "errors"

// Service errors.
var (
	ErrMissingSiteKey     = errors.New("siteKey is required")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSiteKeyNotFound    = errors.New("invalid siteKey")
	ErrOwnerNotFound      = errors.New("owner not found")
	ErrInvalidCreatedAt   = errors.New("createdAt must be an RFC 3339 timestamp, a YYYY-MM-DD date or Unix milliseconds")
	ErrNotifyFailed       = errors.New("failed to send email")
)
