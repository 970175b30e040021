package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the mpvbuild banner.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{"                       _           _ _     _ ", "#818cf8"},
		{"  _ __ ___  _ ____   _| |__  _   _(_) | __| |", "#a78bfa"},
		{" | '_ ` _ \\| '_ \\ \\ / / '_ \\| | | | | |/ _` |", "#c084fc"},
		{" | | | | | | |_) \\ V /| |_) | |_| | | | (_| |", "#e879f9"},
		{" |_| |_| |_| .__/ \\_/ |_.__/ \\__,_|_|_|\\__,_|", "#f472b6"},
		{"           |_|                               ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
