package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/backend"
	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/config"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/services"
	"github.com/dmitrijs2005/gophnotes/internal/client/session"
	"github.com/dmitrijs2005/gophnotes/internal/client/storage"
	"github.com/dmitrijs2005/gophnotes/internal/client/viewmodel"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// Pinger probes server liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config  *config.Config
	backend backend.Backend
	vm      *viewmodel.ViewModel
	pinger  Pinger
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	closers []func() error

	mu   sync.Mutex
	mode Mode
}

// NewApp wires the local session database, the gRPC client, the blob store
// and the view model described by c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	policy, err := viewmodel.ParseErrorPolicy(c.MutationErrorPolicy)
	if err != nil {
		return nil, err
	}

	repos, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	sess := session.NewManager(repos.DB, session.WithLogger(log))

	api, err := client.NewGRPCClient(c.ServerEndpointAddr, sess)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	store, err := storage.NewS3Store(ctx, storage.Config{
		Region:       c.S3Region,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		URLExpiry:    c.ImageURLExpiry,
	})
	if err != nil {
		_ = api.Close()
		_ = repos.Close()
		return nil, err
	}

	auth := services.NewAuthService(api, sess, log)
	be := backend.NewRemote(api, auth, sess, store, log)
	vm := viewmodel.New(be,
		viewmodel.WithLogger(log),
		viewmodel.WithImageScale(c.ImageScale),
		viewmodel.WithMutationTimeout(c.MutationTimeout),
		viewmodel.WithMutationErrorPolicy(policy),
	)

	return &App{
		config:  c,
		backend: be,
		vm:      vm,
		pinger:  auth,
		log:     log.With("module", "cli"),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closers: []func() error{
			func() error { sess.Close(); return nil },
			api.Close,
			repos.Close,
		},
	}, nil
}

// Run starts the view model and the online watcher, then blocks in the
// REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer a.close()
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to gophnotes (type 'help' for commands)")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.vm.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()
	a.vm.Wait()
}

func (a *App) close() {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn(context.Background(), "shutdown", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.vm.State().Kind != models.StateSignedOut
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) getStatus() string {
	s := a.vm.State().Kind.String()
	if m := a.currentMode(); m != "" {
		s = string(m) + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

// StartOnlineStatusWatcher pings the server every interval and records
// whether it answered.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := a.pinger.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
