package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error {
	f.record("register", nil)
	return nil
}
func (f *fakeExec) Login(context.Context) error {
	f.record("login", nil)
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(context.Context) error {
	f.record("logout", nil)
	f.loggedIn = false
	return nil
}
func (f *fakeExec) List(context.Context) error    { f.record("list", nil); return nil }
func (f *fakeExec) AddNote(context.Context) error { f.record("add", nil); return nil }
func (f *fakeExec) Delete(_ context.Context, args []string) error {
	f.record("delete", args)
	return nil
}
func (f *fakeExec) Image(_ context.Context, args []string) error {
	f.record("image", args)
	return nil
}
func (f *fakeExec) Retry(context.Context) error { f.record("retry", nil); return nil }

func capturePrint(t *testing.T) *strings.Builder {
	t.Helper()
	var sb strings.Builder
	orig := printFn
	printFn = func(a ...any) (int, error) {
		for _, v := range a {
			sb.WriteString(v.(string))
		}
		return 0, nil
	}
	t.Cleanup(func() { printFn = orig })
	return &sb
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := capturePrint(t)
	exec := &fakeExec{}

	input := readerFromLines(
		"help",
		"login",
		"help",
		"",
		"l",
		"add",
		"delete 2",
		"image 1 out.png",
		"retry",
		"list",
		"logout",
		"foobar",
		"exit",
		"list",
	)
	runREPL(context.Background(), exec, func() string { return "(status)" }, input)

	assert.Equal(t,
		[]string{"login", "list", "add", "delete", "image", "retry", "list", "logout"},
		exec.calls)
	assert.Equal(t, []string{"2"}, exec.args[3])
	assert.Equal(t, []string{"1", "out.png"}, exec.args[4])

	s := out.String()
	assert.Contains(t, s, "notes (status)> ")
	assert.Contains(t, s, "Available commands: register, login, exit")
	assert.Contains(t, s, "Available commands: (l)ist")
	assert.Contains(t, s, "Unknown command: foobar")
	assert.Contains(t, s, "Bye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	capturePrint(t)
	exec := &fakeExec{}

	runREPL(context.Background(), exec, func() string { return "" }, readerFromLines("register"))

	assert.Equal(t, []string{"register"}, exec.calls)
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrint(t)
	exec := &fakeExec{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runREPL(ctx, exec, func() string { return "" }, readerFromLines("list", "list"))

	assert.Empty(t, exec.calls)
}
