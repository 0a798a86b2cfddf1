// Package backend is the single boundary between the client core and the
// remote services: the identity provider, the record API and the blob
// store. Every error leaving it is an *AuthError, *ApiError or
// *StorageError. Operations are independent of each other; composing them
// is the caller's job.
package backend

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/services"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

type Backend interface {
	// FetchInitialAuthStatus reports the status implied by the cached session.
	FetchInitialAuthStatus(ctx context.Context) (models.AuthStatus, error)

	// AuthEvents streams status changes until ctx is done, then closes.
	// Each call starts a fresh subscription that sees only later events.
	AuthEvents(ctx context.Context) <-chan models.AuthStatus

	SignUp(ctx context.Context, username string, password []byte) error
	SignIn(ctx context.Context, username string, password []byte) error
	SignOut(ctx context.Context) error

	// ListNotes returns the principal's notes in no particular order.
	// Zero notes is an empty slice, not an error.
	ListNotes(ctx context.Context) ([]models.Note, error)

	// CreateNote is not idempotent: retrying after a timeout may duplicate.
	CreateNote(ctx context.Context, note models.Note) error

	// DeleteNote of an unknown id succeeds.
	DeleteNote(ctx context.Context, id string) error

	UploadBlob(ctx context.Context, key string, data []byte) error
	DownloadBlob(ctx context.Context, key string) ([]byte, error)
	ResolveBlobURL(ctx context.Context, key string) (string, error)
	DeleteBlob(ctx context.Context, key string) error
}

// Session is what the facade needs from session.Manager.
type Session interface {
	Restore(ctx context.Context) (models.AuthStatus, error)
	Subscribe(ctx context.Context) <-chan models.AuthStatus
	Principal() (string, error)
}

// BlobStore is implemented by storage.S3Store.
type BlobStore interface {
	Upload(ctx context.Context, principal, key string, data []byte, contentType string) error
	Download(ctx context.Context, principal, key string) ([]byte, error)
	Delete(ctx context.Context, principal, key string) error
	ResolveURL(ctx context.Context, principal, key string) (string, error)
}

type Remote struct {
	api     client.Client
	auth    services.AuthService
	session Session
	blobs   BlobStore
	log     logging.Logger
	now     func() time.Time
}

var _ Backend = (*Remote)(nil)

type Option func(*Remote)

func WithClock(now func() time.Time) Option {
	return func(r *Remote) { r.now = now }
}

func NewRemote(api client.Client, auth services.AuthService, sess Session, blobs BlobStore, log logging.Logger, opts ...Option) *Remote {
	r := &Remote{
		api:     api,
		auth:    auth,
		session: sess,
		blobs:   blobs,
		log:     log.With("module", "backend"),
		now:     time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Remote) FetchInitialAuthStatus(ctx context.Context) (models.AuthStatus, error) {
	st, err := r.session.Restore(ctx)
	if err != nil {
		return models.AuthSignedOut, &AuthError{Op: "fetch status", Err: err}
	}
	return st, nil
}

func (r *Remote) AuthEvents(ctx context.Context) <-chan models.AuthStatus {
	return r.session.Subscribe(ctx)
}

func (r *Remote) SignUp(ctx context.Context, username string, password []byte) error {
	if err := r.auth.SignUp(ctx, username, password); err != nil {
		return &AuthError{Op: "sign up", Err: err}
	}
	return nil
}

func (r *Remote) SignIn(ctx context.Context, username string, password []byte) error {
	if err := r.auth.SignIn(ctx, username, password); err != nil {
		return &AuthError{Op: "sign in", Err: err}
	}
	return nil
}

func (r *Remote) SignOut(ctx context.Context) error {
	if err := r.auth.SignOut(ctx); err != nil {
		return &AuthError{Op: "sign out", Err: err}
	}
	return nil
}

func (r *Remote) ListNotes(ctx context.Context) ([]models.Note, error) {
	records, err := r.api.ListNotes(ctx)
	if err != nil {
		return nil, &ApiError{Op: "list notes", Err: err}
	}

	notes := make([]models.Note, 0, len(records))
	for _, rec := range records {
		notes = append(notes, models.FromTransport(rec))
	}
	return notes, nil
}

func (r *Remote) CreateNote(ctx context.Context, note models.Note) error {
	if _, err := r.api.CreateNote(ctx, note.ToTransport(r.now())); err != nil {
		return &ApiError{Op: "create note", Err: err}
	}
	return nil
}

func (r *Remote) DeleteNote(ctx context.Context, id string) error {
	err := r.api.DeleteNote(ctx, id)
	if err == nil || errors.Is(err, client.ErrNotFound) {
		return nil
	}
	return &ApiError{Op: "delete note", Err: err}
}

func (r *Remote) UploadBlob(ctx context.Context, key string, data []byte) error {
	principal, err := r.session.Principal()
	if err != nil {
		return &StorageError{Op: "upload", Key: key, Err: err}
	}
	if err := r.blobs.Upload(ctx, principal, key, data, http.DetectContentType(data)); err != nil {
		return &StorageError{Op: "upload", Key: key, Err: err}
	}
	return nil
}

func (r *Remote) DownloadBlob(ctx context.Context, key string) ([]byte, error) {
	principal, err := r.session.Principal()
	if err != nil {
		return nil, &StorageError{Op: "download", Key: key, Err: err}
	}
	data, err := r.blobs.Download(ctx, principal, key)
	if err != nil {
		return nil, &StorageError{Op: "download", Key: key, Err: err}
	}
	return data, nil
}

func (r *Remote) ResolveBlobURL(ctx context.Context, key string) (string, error) {
	principal, err := r.session.Principal()
	if err != nil {
		return "", &StorageError{Op: "resolve url", Key: key, Err: err}
	}
	u, err := r.blobs.ResolveURL(ctx, principal, key)
	if err != nil {
		return "", &StorageError{Op: "resolve url", Key: key, Err: err}
	}
	return u, nil
}

func (r *Remote) DeleteBlob(ctx context.Context, key string) error {
	principal, err := r.session.Principal()
	if err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	if err := r.blobs.Delete(ctx, principal, key); err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}
