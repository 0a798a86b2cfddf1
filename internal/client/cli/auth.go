package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// askLine and askSecret are swapped in tests.
var (
	askLine   = promptLine
	askSecret = promptSecret
)

// Register prompts for a username and password and creates an account.
// It does not sign in.
func (a *App) Register(ctx context.Context) error {
	userName, err := askLine(a.reader, a.out, "Username")
	if err != nil {
		return err
	}

	password, err := askSecret(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.backend.SignUp(ctx, userName, password); err != nil {
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Success! You can now log in.")
	return nil
}

// Login prompts for credentials and signs in. The state change reaches the
// view model through the auth event stream, which also starts loading notes.
func (a *App) Login(ctx context.Context) error {
	userName, err := askLine(a.reader, a.out, "Username")
	if err != nil {
		return err
	}

	password, err := askSecret(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.backend.SignIn(ctx, userName, password); err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %v\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout ends the session. Local notes are dropped once the signedOut event
// arrives.
func (a *App) Logout(ctx context.Context) error {
	if err := a.backend.SignOut(ctx); err != nil {
		fmt.Fprintf(a.out, "Logout failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
