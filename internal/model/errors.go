package model

import "errors"

// Common errors used across the application
var (
	// Request errors
	ErrMissingParameters = errors.New("missing parameters")
	ErrInvalidAction     = errors.New("invalid action")
	ErrUnsupportedMethod = errors.New("unsupported request method")

	// Player errors
	ErrUserNotFound     = errors.New("user not found")
	ErrUserDataNotFound = errors.New("user data not found")
	ErrUsernameExists   = errors.New("username already exists")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrInvalidID        = errors.New("invalid id")
	ErrTokenNotFound    = errors.New("token not found")

	// Match errors
	ErrInvalidScore = errors.New("invalid score")

	// Simulation errors
	ErrTooFewUsers  = errors.New("at least 2 users are required for simulation")
	ErrTooManyUsers = errors.New("too many users requested for simulation")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrDecode           = errors.New("malformed stored record")
)
