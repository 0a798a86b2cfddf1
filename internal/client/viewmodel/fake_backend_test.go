package viewmodel

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/client/backend"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/session"
)

// fakeBackend records every call. A non-nil gate blocks the matching call
// until the gate is closed.
type fakeBackend struct {
	mu sync.Mutex

	initial    models.AuthStatus
	initialErr error
	hub        *session.Hub

	notes     []models.Note
	listErr   error
	listGate  chan struct{}
	listCalls int

	createErr error
	created   []models.Note

	deleteErr error
	deleted   []string

	uploadErr   error
	uploadGate  chan struct{}
	uploads     map[string][]byte
	resolveGate chan struct{}
	blobDeletes []string
	// blobOps records uploads and deletes in completion order.
	blobOps []string
}

var _ backend.Backend = (*fakeBackend)(nil)

func newFakeBackend(notes ...models.Note) *fakeBackend {
	return &fakeBackend{
		hub:     session.NewHub(),
		notes:   notes,
		uploads: map[string][]byte{},
	}
}

func (f *fakeBackend) FetchInitialAuthStatus(context.Context) (models.AuthStatus, error) {
	return f.initial, f.initialErr
}

func (f *fakeBackend) AuthEvents(ctx context.Context) <-chan models.AuthStatus {
	return f.hub.Subscribe(ctx)
}

func (f *fakeBackend) SignUp(context.Context, string, []byte) error { return nil }
func (f *fakeBackend) SignIn(context.Context, string, []byte) error {
	f.hub.Publish(models.AuthSignedIn)
	return nil
}
func (f *fakeBackend) SignOut(context.Context) error {
	f.hub.Publish(models.AuthSignedOut)
	return nil
}

func (f *fakeBackend) ListNotes(context.Context) ([]models.Note, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Note{}, f.notes...), nil
}

func (f *fakeBackend) CreateNote(_ context.Context, n models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, n)
	return f.createErr
}

func (f *fakeBackend) DeleteNote(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeBackend) UploadBlob(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	gate := f.uploadGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads[key] = data
	f.blobOps = append(f.blobOps, "put "+key)
	return nil
}

func (f *fakeBackend) DownloadBlob(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads[key], nil
}

func (f *fakeBackend) ResolveBlobURL(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	gate := f.resolveGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return "https://blobs.example/" + key, nil
}

func (f *fakeBackend) DeleteBlob(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobDeletes = append(f.blobDeletes, key)
	f.blobOps = append(f.blobOps, "delete "+key)
	return nil
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeBackend) createdNotes() []models.Note {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Note(nil), f.created...)
}

func (f *fakeBackend) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeBackend) deletedBlobs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.blobDeletes...)
}

func (f *fakeBackend) upload(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.uploads[key]
	return b, ok
}

func (f *fakeBackend) blobHistory() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.blobOps...)
}
