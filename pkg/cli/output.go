package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/storage"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
)

// ParseFormat returns the format named s.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text or json)", s)
	}
}

// Formatter formats command output.
type Formatter interface {
	// FormatResults writes the results of each evaluation of a program.
	FormatResults(w io.Writer, results [][]atom.Atom) error
	// FormatSnapshots writes a snapshot listing.
	FormatSnapshots(w io.Writer, snapshots []storage.Snapshot) error
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	if format == FormatJSON {
		return &JSONFormatter{Indent: true}
	}
	return &TextFormatter{}
}

// FormatResult renders the results of one evaluation as "[r1, r2]".
func FormatResult(results []atom.Atom) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, a := range results {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(']')
	return b.String()
}

// TextFormatter formats output as plain text.
type TextFormatter struct{}

// FormatResults writes one line per evaluation.
func (f *TextFormatter) FormatResults(w io.Writer, results [][]atom.Atom) error {
	for _, out := range results {
		if _, err := fmt.Fprintln(w, FormatResult(out)); err != nil {
			return err
		}
	}
	return nil
}

// FormatSnapshots writes an aligned table of snapshots.
func (f *TextFormatter) FormatSnapshots(w io.Writer, snapshots []storage.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tATOMS\tCREATED")
	for _, s := range snapshots {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Name, s.ID, s.Atoms, s.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatResults writes the results as an array of arrays of atom texts.
func (f *JSONFormatter) FormatResults(w io.Writer, results [][]atom.Atom) error {
	texts := make([][]string, len(results))
	for i, out := range results {
		texts[i] = make([]string, len(out))
		for j, a := range out {
			texts[i][j] = a.String()
		}
	}
	return f.encode(w, texts)
}

// FormatSnapshots writes the snapshots as a JSON array.
func (f *JSONFormatter) FormatSnapshots(w io.Writer, snapshots []storage.Snapshot) error {
	if snapshots == nil {
		snapshots = []storage.Snapshot{}
	}
	return f.encode(w, snapshots)
}

func (f *JSONFormatter) encode(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}
