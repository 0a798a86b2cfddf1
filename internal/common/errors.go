package common

import "errors"

var (
	// ErrInvalidToken reports a token that cannot be parsed.
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors. Their texts travel as gRPC status messages,
	// so they must not change.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
