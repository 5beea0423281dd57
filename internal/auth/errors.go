package auth

import "errors"

var (
	ErrUnauthorized    = errors.New("auth: unauthorized")
	ErrInvalidPassword = errors.New("auth: invalid credentials")
	ErrUserNotFound    = errors.New("auth: user not found")
	ErrLockedOut       = errors.New("auth: too many failed attempts")
)
