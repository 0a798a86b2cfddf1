package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/viewmodel"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeBackend is a synchronous in-memory backend.Backend.
type fakeBackend struct {
	mu sync.Mutex

	signUpUser string
	signUpPass []byte
	signInUser string
	signInPass []byte
	signedOut  bool
	authErr    error

	notes   []models.Note
	listErr error
	created []models.Note
	deleted []string
	blobs   map[string][]byte
}

func newFakeBackend(notes ...models.Note) *fakeBackend {
	return &fakeBackend{notes: notes, blobs: map[string][]byte{}}
}

func (f *fakeBackend) FetchInitialAuthStatus(context.Context) (models.AuthStatus, error) {
	return models.AuthSignedOut, nil
}

func (f *fakeBackend) AuthEvents(ctx context.Context) <-chan models.AuthStatus {
	ch := make(chan models.AuthStatus)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func (f *fakeBackend) SignUp(_ context.Context, u string, p []byte) error {
	f.signUpUser, f.signUpPass = u, append([]byte(nil), p...)
	return f.authErr
}

func (f *fakeBackend) SignIn(_ context.Context, u string, p []byte) error {
	f.signInUser, f.signInPass = u, append([]byte(nil), p...)
	return f.authErr
}

func (f *fakeBackend) SignOut(context.Context) error {
	f.signedOut = true
	return f.authErr
}

func (f *fakeBackend) ListNotes(context.Context) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Note{}, f.notes...), f.listErr
}

func (f *fakeBackend) CreateNote(_ context.Context, n models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, n)
	return nil
}

func (f *fakeBackend) DeleteNote(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) UploadBlob(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = data
	return nil
}

func (f *fakeBackend) DownloadBlob(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blobs[key], nil
}

func (f *fakeBackend) ResolveBlobURL(_ context.Context, key string) (string, error) {
	return "https://img/" + key, nil
}

func (f *fakeBackend) DeleteBlob(context.Context, string) error { return nil }

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

// newTestApp returns an App over fb with output captured in the returned
// buffer. With signedIn the view model is already in dataAvailable.
func newTestApp(t *testing.T, fb *fakeBackend, signedIn bool, input *bufio.Reader, opts ...viewmodel.Option) (*App, *bytes.Buffer) {
	t.Helper()
	vm := viewmodel.New(fb, opts...)
	if signedIn {
		vm.ApplyAuthStatus(context.Background(), models.AuthSignedIn)
		require.Eventually(t, func() bool { return vm.State().Kind == models.StateDataAvailable },
			time.Second, 5*time.Millisecond)
		vm.Wait()
	}
	if input == nil {
		input = bufio.NewReader(strings.NewReader(""))
	}
	var out bytes.Buffer
	return &App{
		backend: fb,
		vm:      vm,
		log:     logging.Discard(),
		reader:  input,
		out:     &out,
	}, &out
}

func stubInputs(t *testing.T, username string, password []byte) {
	t.Helper()
	origLine, origSecret := askLine, askSecret
	askLine = func(_ *bufio.Reader, _ io.Writer, _ string) (string, error) { return username, nil }
	askSecret = func(_ io.Writer, _ string) ([]byte, error) { return append([]byte(nil), password...), nil }
	t.Cleanup(func() {
		askLine = origLine
		askSecret = origSecret
	})
}
