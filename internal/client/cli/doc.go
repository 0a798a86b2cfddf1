// Package cli is the interactive gophnotes client: a thin view over the
// view model. It renders the current state and forwards user intents (sign
// up, sign in, sign out, add, delete, retry) without keeping state of its
// own.
//
// App.Run starts the view model's auth loop and a background connectivity
// watcher, then blocks in the REPL until the user exits.
package cli
