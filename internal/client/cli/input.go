package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword and stdinFd are seams for the terminal.
var (
	readPassword = term.ReadPassword
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

// promptLine writes "label: " to w and returns the next line of r with
// surrounding spaces trimmed. A last line without a newline still counts.
func promptLine(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a line from the terminal without echo. The caller
// wipes the result.
func promptSecret(w io.Writer, label string) ([]byte, error) {
	fmt.Fprintf(w, "%s: ", label)
	pw, err := readPassword(stdinFd())
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}

// promptText collects lines until an empty one and joins them with '\n'.
// Input that ends before any line was entered is an error.
func promptText(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s (finish with an empty line):\n", label)

	var lines []string
	for {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			lines = append(lines, line)
		} else if err == nil {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(lines) > 0 {
				break
			}
			return "", err
		}
	}
	return strings.Join(lines, "\n"), nil
}
