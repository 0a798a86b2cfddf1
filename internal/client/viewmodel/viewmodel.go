// Package viewmodel holds the state the view renders: whether a user is
// signed in, whether notes are loading, the notes themselves, or the error
// that stopped the initial load.
//
// The ViewModel is the only writer of that state. Remote calls run on their
// own goroutines and re-enter through short critical sections, so a slow
// backend never blocks an intent. Add and delete are optimistic: the local
// list changes first and a failed remote call is reported, not undone.
package viewmodel

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/backend"
	"github.com/dmitrijs2005/gophnotes/internal/client/imagex"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type ViewModel struct {
	backend backend.Backend
	log     logging.Logger
	now     func() time.Time
	newID   func() string
	resize  Resizer
	timeout time.Duration
	policy  ErrorPolicy
	hook    func(MutationError)

	loads singleflight.Group
	tasks sync.WaitGroup

	mu     sync.Mutex
	kind   models.StateKind
	err    error
	notes  []models.Note
	loaded bool
	// session is bumped on every sign-out; results of calls started in an
	// older session are dropped.
	session uint64
	subs    map[chan models.AppState]struct{}
	// uploads holds a channel per note whose blob upload is in flight,
	// closed when the upload returns.
	uploads map[string]chan struct{}
}

func New(b backend.Backend, opts ...Option) *ViewModel {
	vm := &ViewModel{
		backend: b,
		log:     logging.Discard(),
		now:     time.Now,
		newID:   uuid.NewString,
		timeout: DefaultMutationTimeout,
		kind:    models.StateSignedOut,
		subs:    make(map[chan models.AppState]struct{}),
		uploads: make(map[string]chan struct{}),
	}
	vm.resize = func(data []byte) ([]byte, error) {
		return imagex.Downscale(data, DefaultImageScale)
	}
	for _, o := range opts {
		o(vm)
	}
	vm.log = vm.log.With("module", "viewmodel")
	return vm
}

/*************
 * Observation
 *************/

// State returns a snapshot the caller owns.
func (vm *ViewModel) State() models.AppState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snapshotLocked()
}

// Subscribe delivers the current state and then every change until ctx is
// done. A slow reader only misses intermediate states, never the latest.
func (vm *ViewModel) Subscribe(ctx context.Context) <-chan models.AppState {
	ch := make(chan models.AppState, 1)

	vm.mu.Lock()
	ch <- vm.snapshotLocked()
	vm.subs[ch] = struct{}{}
	vm.mu.Unlock()

	go func() {
		<-ctx.Done()
		vm.mu.Lock()
		defer vm.mu.Unlock()
		delete(vm.subs, ch)
		close(ch)
	}()
	return ch
}

func (vm *ViewModel) snapshotLocked() models.AppState {
	switch vm.kind {
	case models.StateLoading:
		return models.LoadingState()
	case models.StateDataAvailable:
		notes := slices.Clone(vm.notes)
		if notes == nil {
			notes = []models.Note{}
		}
		return models.DataAvailableState(notes)
	case models.StateError:
		return models.ErrorState(vm.err)
	default:
		return models.SignedOutState()
	}
}

func (vm *ViewModel) publishLocked() {
	s := vm.snapshotLocked()
	for ch := range vm.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

/*************
 * Auth
 *************/

// Run wires the view model to the backend: it subscribes to auth events,
// applies the initial status and then follows the stream until ctx is done
// or the stream closes. Loads triggered by a sign-in run in the background.
func (vm *ViewModel) Run(ctx context.Context) {
	events := vm.backend.AuthEvents(ctx)

	if err := vm.InitialAuthStatus(ctx); err != nil {
		vm.log.Error(ctx, "initial auth status", "error", err)
	}
	vm.ListenAuthUpdates(ctx, events)
}

// InitialAuthStatus applies the one-shot status fetched at startup. On error
// the state stays signedOut.
func (vm *ViewModel) InitialAuthStatus(ctx context.Context) error {
	status, err := vm.backend.FetchInitialAuthStatus(ctx)
	if err != nil {
		return err
	}
	vm.ApplyAuthStatus(ctx, status)
	return nil
}

// ListenAuthUpdates applies every status from events until it closes or ctx
// is done.
func (vm *ViewModel) ListenAuthUpdates(ctx context.Context, events <-chan models.AuthStatus) {
	for {
		select {
		case <-ctx.Done():
			return
		case status, ok := <-events:
			if !ok {
				return
			}
			vm.ApplyAuthStatus(ctx, status)
		}
	}
}

// ApplyAuthStatus performs the auth transitions. signedIn moves signedOut
// to loading and starts a background load; signedOut and sessionExpired
// clear the notes from any state.
func (vm *ViewModel) ApplyAuthStatus(ctx context.Context, status models.AuthStatus) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.log.Debug(ctx, "auth status", "status", status.String(), "state", vm.kind.String())

	switch status {
	case models.AuthSignedIn:
		if vm.kind != models.StateSignedOut {
			return
		}
		vm.kind = models.StateLoading
		vm.publishLocked()
		vm.goLocked(func() { _ = vm.LoadNotes(ctx) })

	default:
		vm.session++
		vm.kind = models.StateSignedOut
		vm.err = nil
		vm.notes = nil
		vm.loaded = false
		vm.publishLocked()
	}
}

/*************
 * Loading
 *************/

// LoadNotes fetches the notes once per session. After the first successful
// fetch it returns without a remote call; concurrent callers share one
// fetch. In the error state it returns the stored cause; use Retry.
func (vm *ViewModel) LoadNotes(ctx context.Context) error {
	vm.mu.Lock()
	switch {
	case vm.kind == models.StateSignedOut:
		vm.mu.Unlock()
		return ErrSignedOut
	case vm.kind == models.StateError:
		err := vm.err
		vm.mu.Unlock()
		return err
	case vm.loaded:
		vm.mu.Unlock()
		return nil
	}
	session := vm.session
	vm.mu.Unlock()

	return vm.fetch(ctx, session)
}

// Retry leaves the error state by loading again. Outside the error state it
// does nothing.
func (vm *ViewModel) Retry(ctx context.Context) error {
	vm.mu.Lock()
	if vm.kind != models.StateError {
		vm.mu.Unlock()
		return nil
	}
	vm.kind = models.StateLoading
	vm.err = nil
	vm.publishLocked()
	session := vm.session
	vm.mu.Unlock()

	return vm.fetch(ctx, session)
}

func (vm *ViewModel) fetch(ctx context.Context, session uint64) error {
	_, err, _ := vm.loads.Do(strconv.FormatUint(session, 10), func() (any, error) {
		// a caller may arrive just after a previous flight finished
		vm.mu.Lock()
		stale := session != vm.session || vm.loaded
		vm.mu.Unlock()
		if stale {
			return nil, nil
		}

		notes, err := vm.backend.ListNotes(ctx)

		vm.mu.Lock()
		defer vm.mu.Unlock()

		if session != vm.session {
			vm.log.Debug(ctx, "dropping notes of an ended session")
			return nil, nil
		}
		if vm.loaded {
			return nil, nil
		}
		if err != nil {
			vm.log.Error(ctx, "load notes", "error", err)
			vm.kind = models.StateError
			vm.err = err
			vm.publishLocked()
			return nil, err
		}

		models.SortByCreatedAtDesc(notes)
		vm.notes = notes
		vm.loaded = true
		vm.kind = models.StateDataAvailable
		vm.publishLocked()
		vm.log.Info(ctx, "notes loaded", "count", len(notes))

		for _, n := range notes {
			if n.HasImage() {
				vm.resolveImageLocked(ctx, session, n.ID, n.ImageName)
			}
		}
		return nil, nil
	})
	return err
}

/*************
 * Mutations
 *************/

// AddNote appends a note and returns it. The remote create and, when image
// is not empty, the upload of its downscaled copy start concurrently; the
// image URL is attached once the upload is done.
func (vm *ViewModel) AddNote(ctx context.Context, name, description string, image []byte) (models.Note, error) {
	if strings.TrimSpace(name) == "" {
		return models.Note{}, ErrEmptyName
	}
	if err := vm.requireData(); err != nil {
		return models.Note{}, err
	}

	var blob []byte
	if len(image) > 0 {
		var err error
		if blob, err = vm.resize(image); err != nil {
			return models.Note{}, err
		}
	}

	createdAt := vm.now()
	note := models.Note{
		ID:          vm.newID(),
		Name:        name,
		Description: description,
		CreatedAt:   &createdAt,
	}
	if blob != nil {
		note.ImageName = note.ID + ".png"
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.kind != models.StateDataAvailable {
		return models.Note{}, ErrNotLoaded
	}
	session := vm.session

	vm.notes = append(vm.notes, note)
	vm.publishLocked()

	vm.goLocked(func() {
		mctx, cancel := vm.mutationContext(ctx)
		defer cancel()
		if err := vm.backend.CreateNote(mctx, note); err != nil {
			vm.reportMutation(ctx, "create", note.ID, err)
		}
	})

	if blob != nil {
		done := make(chan struct{})
		vm.uploads[note.ID] = done
		vm.goLocked(func() {
			mctx, cancel := vm.mutationContext(ctx)
			defer cancel()
			err := vm.backend.UploadBlob(mctx, note.ImageName, blob)

			vm.mu.Lock()
			delete(vm.uploads, note.ID)
			vm.mu.Unlock()
			close(done)

			if err != nil {
				vm.reportMutation(ctx, "upload image", note.ID, err)
				return
			}
			vm.attachURL(mctx, session, note.ID, note.ImageName)
		})
	}
	return note, nil
}

// DeleteNote removes the note at index and returns it. The remote record
// delete and, if an image is attached, the blob delete are not awaited. A
// blob delete waits for an upload of the same note still in flight so the
// upload cannot recreate the object afterwards.
func (vm *ViewModel) DeleteNote(ctx context.Context, index int) (models.Note, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.kind != models.StateDataAvailable {
		return models.Note{}, ErrNotLoaded
	}
	if index < 0 || index >= len(vm.notes) {
		return models.Note{}, ErrIndexOutOfRange
	}

	note := vm.notes[index]
	vm.notes = slices.Delete(vm.notes, index, index+1)
	vm.publishLocked()

	vm.goLocked(func() {
		mctx, cancel := vm.mutationContext(ctx)
		defer cancel()
		if err := vm.backend.DeleteNote(mctx, note.ID); err != nil {
			vm.reportMutation(ctx, "delete", note.ID, err)
		}
	})

	if note.HasImage() {
		pending := vm.uploads[note.ID]
		vm.goLocked(func() {
			if pending != nil {
				<-pending
			}
			mctx, cancel := vm.mutationContext(ctx)
			defer cancel()
			if err := vm.backend.DeleteBlob(mctx, note.ImageName); err != nil {
				vm.reportMutation(ctx, "delete image", note.ID, err)
			}
		})
	}
	return note, nil
}

// Wait blocks until every background task started so far has finished.
func (vm *ViewModel) Wait() {
	vm.tasks.Wait()
}

func (vm *ViewModel) requireData() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.kind != models.StateDataAvailable {
		return ErrNotLoaded
	}
	return nil
}

/*************
 * Background tasks
 *************/

// goLocked starts fn as a tracked task. Callers hold vm.mu, which keeps
// Add ordered before any Wait that observes the state change.
func (vm *ViewModel) goLocked(fn func()) {
	vm.tasks.Add(1)
	go func() {
		defer vm.tasks.Done()
		fn()
	}()
}

// mutationContext detaches a remote mutation from the caller: it runs to
// completion or failure even after the intent's context is gone.
func (vm *ViewModel) mutationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if vm.timeout > 0 {
		return context.WithTimeout(ctx, vm.timeout)
	}
	return context.WithCancel(ctx)
}

func (vm *ViewModel) resolveImageLocked(ctx context.Context, session uint64, id, key string) {
	vm.goLocked(func() {
		mctx, cancel := vm.mutationContext(ctx)
		defer cancel()
		vm.attachURL(mctx, session, id, key)
	})
}

// attachURL resolves key and stores the URL on the note with id. A note
// deleted in the meantime stays deleted.
func (vm *ViewModel) attachURL(ctx context.Context, session uint64, id, key string) {
	url, err := vm.backend.ResolveBlobURL(ctx, key)
	if err != nil {
		vm.log.Warn(ctx, "resolve image url", "note_id", id, "error", err)
		return
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if session != vm.session {
		return
	}
	i := slices.IndexFunc(vm.notes, func(n models.Note) bool { return n.ID == id })
	if i < 0 {
		return
	}
	vm.notes[i].ImageURL = url
	vm.publishLocked()
}

func (vm *ViewModel) reportMutation(ctx context.Context, op, id string, err error) {
	if vm.policy == PolicyLog {
		vm.log.Warn(ctx, "remote mutation failed", "op", op, "note_id", id, "error", err)
	}
	if vm.hook != nil {
		vm.hook(MutationError{Op: op, NoteID: id, Err: err})
	}
}
