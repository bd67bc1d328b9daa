// Package output provides notifications and text helpers for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Variant is the kind of a notice.
type Variant int

const (
	VariantSuccess Variant = iota
	VariantError
)

// Notice is a transient notification shown after a mutation or query.
type Notice struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier receives notices.
type Notifier interface {
	Notify(n Notice)
}

// Success builds a success notice.
func Success(description string) Notice {
	return Notice{Title: "Success", Description: description, Variant: VariantSuccess}
}

// Error builds an error notice.
func Error(description string) Notice {
	return Notice{Title: "Error", Description: description, Variant: VariantError}
}

// Toaster writes notices as single lines, successes to out and errors to errOut.
// Format: "{TITLE}: {DESCRIPTION}\n"
type Toaster struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
	color  bool
}

// NewToaster creates a Toaster. Quiet suppresses success notices; color
// enables ANSI styling.
func NewToaster(out, errOut io.Writer, quiet, color bool) *Toaster {
	return &Toaster{out: out, errOut: errOut, quiet: quiet, color: color}
}

// Notify implements Notifier.
func (t *Toaster) Notify(n Notice) {
	if t.quiet && n.Variant == VariantSuccess {
		return
	}
	w := t.out
	if n.Variant == VariantError {
		w = t.errOut
	}
	title := n.Title
	if t.color {
		switch n.Variant {
		case VariantSuccess:
			title = text.Colors{text.FgHiGreen, text.Bold}.Sprint(title)
		case VariantError:
			title = text.Colors{text.FgHiRed, text.Bold}.Sprint(title)
		}
	}
	fmt.Fprintf(w, "%s: %s\n", title, n.Description)
}

// NormalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func NormalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// ErrorMessage returns err's message, or fallback when err has none.
func ErrorMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
