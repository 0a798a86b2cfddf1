package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printFn is a test seam for user-facing output. In tests, replace it with a stub.
var printFn = fmt.Print

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	AddNote(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
	Image(ctx context.Context, args []string) error
	Retry(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF, when ctx is done, or
// when the user types "exit" or "quit".
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           show available commands
//	  - register       create an account
//	  - login          sign in
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - help           show available commands
//	  - (l)ist         list notes, newest first
//	  - add            add a note, optionally with an image
//	  - delete <n>     delete the n-th note
//	  - image <n> [f]  print the image URL of note n, or save it to file f
//	  - retry          reload after a failed load
//	  - logout         sign out
//	  - exit | quit    leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printFn(fmt.Sprintf("notes %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			printFn("\n")
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printFn("Available commands: (l)ist, add, delete <n>, image <n> [file], retry, logout, exit\n")
			} else {
				printFn("Available commands: register, login, exit\n")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "add":
			_ = a.AddNote(ctx)

		case "delete":
			_ = a.Delete(ctx, args)

		case "image":
			_ = a.Image(ctx, args)

		case "retry":
			_ = a.Retry(ctx)

		case "exit", "quit":
			printFn("Bye!\n")
			return

		default:
			printFn(fmt.Sprintf("Unknown command: %s\n", cmd))
		}
	}
}
