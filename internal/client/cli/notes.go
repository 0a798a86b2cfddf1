package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

// readFile and writeFile are test seams for image import and export.
var (
	readFile  = os.ReadFile
	writeFile = os.WriteFile
)

var errUsage = errors.New("usage")

// List loads the notes if needed and prints them.
func (a *App) List(ctx context.Context) error {
	if err := a.vm.LoadNotes(ctx); err != nil {
		a.renderState(a.vm.State())
		return err
	}
	a.renderState(a.vm.State())
	return nil
}

// AddNote prompts for the fields of a new note. An empty image path means
// no image.
func (a *App) AddNote(ctx context.Context) error {
	name, err := askLine(a.reader, a.out, "Name")
	if err != nil {
		return err
	}
	description, err := promptText(a.reader, a.out, "Description")
	if err != nil {
		return err
	}
	imagePath, err := askLine(a.reader, a.out, "Image file (empty for none)")
	if err != nil {
		return err
	}

	var image []byte
	if imagePath != "" {
		if image, err = readFile(imagePath); err != nil {
			fmt.Fprintf(a.out, "Cannot read image: %v\n", err)
			return err
		}
	}

	note, err := a.vm.AddNote(ctx, name, description, image)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot add note: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Added %q\n", note.Name)
	return nil
}

// Delete removes the note at a 1-based position as shown by list.
func (a *App) Delete(ctx context.Context, args []string) error {
	index, err := parsePosition(args)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: delete <number>")
		return err
	}

	note, err := a.vm.DeleteNote(ctx, index)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot delete: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Deleted %q\n", note.Name)
	return nil
}

// Image prints the URL of a note's image, or saves the image to a file when
// a path is given.
func (a *App) Image(ctx context.Context, args []string) error {
	index, err := parsePosition(args)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: image <number> [file]")
		return err
	}

	st := a.vm.State()
	if st.Kind != models.StateDataAvailable || index < 0 || index >= len(st.Notes) {
		fmt.Fprintln(a.out, "No such note")
		return errUsage
	}
	note := st.Notes[index]
	if !note.HasImage() {
		fmt.Fprintln(a.out, "Note has no image")
		return nil
	}

	if len(args) < 2 {
		if note.ImageURL == "" {
			fmt.Fprintln(a.out, "Image URL is not resolved yet")
			return nil
		}
		fmt.Fprintln(a.out, note.ImageURL)
		return nil
	}

	data, err := a.backend.DownloadBlob(ctx, note.ImageName)
	if err != nil {
		fmt.Fprintf(a.out, "Download failed: %v\n", err)
		return err
	}
	if err := writeFile(args[1], data, 0o600); err != nil {
		fmt.Fprintf(a.out, "Cannot save image: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", len(data), args[1])
	return nil
}

// Retry reloads the notes after a failed initial load.
func (a *App) Retry(ctx context.Context) error {
	err := a.vm.Retry(ctx)
	a.renderState(a.vm.State())
	return err
}

func parsePosition(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errUsage, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: positions start at 1", errUsage)
	}
	return n - 1, nil
}

func (a *App) renderState(st models.AppState) {
	switch st.Kind {
	case models.StateSignedOut:
		fmt.Fprintln(a.out, "Not logged in. Use 'login' or 'register'.")
	case models.StateLoading:
		fmt.Fprintln(a.out, "Loading notes...")
	case models.StateError:
		fmt.Fprintln(a.out, "Could not load notes. Type 'retry' to try again.")
	default:
		renderNotes(a.out, st.Notes)
	}
}

func renderNotes(w io.Writer, notes []models.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes yet. Use 'add' to create one.")
		return
	}
	for i, n := range notes {
		line := fmt.Sprintf("%d. %s", i+1, n.Name)
		if d := n.DisplayDate(); d != "" {
			line += "  " + d
		}
		if n.HasImage() {
			line += "  [image]"
		}
		fmt.Fprintln(w, line)
		if n.Description != "" {
			for _, l := range strings.Split(n.Description, "\n") {
				fmt.Fprintln(w, "   "+l)
			}
		}
	}
}
