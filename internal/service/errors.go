package service

import (
	"errors"

	"github.com/Skotchmaster/storefront/internal/authz"
)

var (
	ErrAuthenticationRequired = authz.ErrAuthenticationRequired // 401
	ErrPermissionDenied       = authz.ErrPermissionDenied       // 403

	ErrNotFound              = errors.New("not found")                         // 404
	ErrValidation            = errors.New("validation")                        // 400
	ErrInvalidOrExpiredToken = errors.New("reset token is invalid or expired") // 400
	ErrInvalidCredentials    = errors.New("invalid email or password")         // 401
	ErrConflict              = errors.New("conflict")                          // 409
	ErrGateway               = errors.New("payment gateway")                   // 402
	ErrPersistence           = errors.New("persistence")                       // 500
	ErrUnavailable           = errors.New("unavailable")                       // 503
)
