package client

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

// Tokens is the pair issued by the backend on login and refresh.
type Tokens struct {
	Access  string
	Refresh string
}

// Client is the remote API used by the auth service and the backend facade.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Register(ctx context.Context, username string, salt []byte, verifier []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) (Tokens, error)
	Logout(ctx context.Context, refreshToken string) error

	ListNotes(ctx context.Context) ([]models.NoteData, error)
	CreateNote(ctx context.Context, note models.NoteData) (models.NoteData, error)
	DeleteNote(ctx context.Context, id string) error
}

// TokenSource supplies the tokens attached to outgoing calls and is told
// about refreshes and about sessions the server no longer accepts.
type TokenSource interface {
	Tokens() Tokens
	Refreshed(ctx context.Context, t Tokens) error
	Expire(ctx context.Context) error
}
