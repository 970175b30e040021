package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// WriteMarkdown renders markdown when w is a terminal and writes it raw otherwise.
func WriteMarkdown(w io.Writer, markdown string) error {
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		rendered, err := NewRenderer()(markdown)
		if err == nil {
			markdown = rendered
		}
	}
	_, err := io.WriteString(w, markdown)
	return err
}
