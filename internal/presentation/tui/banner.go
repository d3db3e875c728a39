package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the wayfinder banner followed by the version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	// Using a subtle gradient-like color scheme (Teal/Cyan)
	lines := []struct {
		text  string
		color string
	}{
		{" __      __              __ _         _", "#2dd4bf"},
		{" \\ \\    / /_ _ _  _ ___ / _(_)_ _  __| |___ _ _", "#22d3ee"},
		{"  \\ \\/\\/ / _` | || |___|  _| | ' \\/ _` / -_) '_|", "#38bdf8"},
		{"   \\_/\\_/\\__,_|\\_, |   |_| |_|_||_\\__,_\\___|_|", "#60a5fa"},
		{"               |__/", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
