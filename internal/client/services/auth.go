// Package services contains application services for the gophnotes client.
// This file defines the authentication service: sign up, sign in, sign out
// and the liveness probe used by the online watcher.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/cryptox"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

var ErrEmptyCredentials = errors.New("username and password are required")

// AuthService defines authentication operations.
//
// Contract:
//   - SignUp: create a new user on the server; it does not sign in.
//   - SignIn: authenticate and hand the issued tokens to the session.
//   - SignOut: revoke the refresh token (best effort) and end the session.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
//
// Status changes are announced by the session, never returned here.
type AuthService interface {
	SignUp(ctx context.Context, username string, password []byte) error
	SignIn(ctx context.Context, username string, password []byte) error
	SignOut(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Session is the part of session.Manager the service drives.
type Session interface {
	Tokens() client.Tokens
	Establish(ctx context.Context, t client.Tokens) error
	End(ctx context.Context) error
}

type authService struct {
	client  client.Client
	session Session
	log     logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client
// and session.
func NewAuthService(c client.Client, s Session, log logging.Logger) AuthService {
	return &authService{client: c, session: s, log: log.With("module", "auth")}
}

// SignUp generates a random salt, derives the verifier from the password
// and registers both. The password is never sent.
func (a *authService) SignUp(ctx context.Context, username string, password []byte) error {
	if username == "" || len(password) == 0 {
		return ErrEmptyCredentials
	}

	salt, verifier := cryptox.NewCredentials(password)
	if err := a.client.Register(ctx, username, salt, verifier); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

// SignIn fetches the user's salt, recomputes the verifier and logs in.
func (a *authService) SignIn(ctx context.Context, username string, password []byte) error {
	if username == "" || len(password) == 0 {
		return ErrEmptyCredentials
	}

	salt, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return fmt.Errorf("get salt error: %w", err)
	}

	tokens, err := a.client.Login(ctx, username, cryptox.VerifierFor(password, salt))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.session.Establish(ctx, tokens); err != nil {
		return fmt.Errorf("session error: %w", err)
	}
	return nil
}

// SignOut ends the local session even when the server cannot be reached.
func (a *authService) SignOut(ctx context.Context) error {
	if refresh := a.session.Tokens().Refresh; refresh != "" {
		if err := a.client.Logout(ctx, refresh); err != nil {
			a.log.Warn(ctx, "logout request failed", "error", err)
		}
	}
	if err := a.session.End(ctx); err != nil {
		return fmt.Errorf("session error: %w", err)
	}
	return nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
