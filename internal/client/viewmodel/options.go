package viewmodel

import (
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/imagex"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

const (
	DefaultImageScale      = 0.10
	DefaultMutationTimeout = 30 * time.Second
)

// Resizer turns the user's image into the bytes that get uploaded.
type Resizer func(data []byte) ([]byte, error)

type Option func(*ViewModel)

func WithLogger(l logging.Logger) Option {
	return func(vm *ViewModel) { vm.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(vm *ViewModel) { vm.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(vm *ViewModel) { vm.newID = newID }
}

func WithResizer(r Resizer) Option {
	return func(vm *ViewModel) { vm.resize = r }
}

// WithImageScale downscales uploads by factor instead of DefaultImageScale.
func WithImageScale(factor float64) Option {
	return WithResizer(func(data []byte) ([]byte, error) {
		return imagex.Downscale(data, factor)
	})
}

// WithMutationTimeout bounds each remote create, delete and blob call.
// Zero means no bound.
func WithMutationTimeout(d time.Duration) Option {
	return func(vm *ViewModel) { vm.timeout = d }
}

func WithMutationErrorPolicy(p ErrorPolicy) Option {
	return func(vm *ViewModel) { vm.policy = p }
}

// WithMutationErrorHook registers fn to receive every failed mutation,
// regardless of the policy. fn runs on the goroutine of the failed task.
func WithMutationErrorHook(fn func(MutationError)) Option {
	return func(vm *ViewModel) { vm.hook = fn }
}
