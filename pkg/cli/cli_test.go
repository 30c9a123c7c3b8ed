package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/storage"
)

func sampleResults() [][]atom.Atom {
	return [][]atom.Atom{
		{atom.Int(42)},
		{atom.Sym("red"), atom.Sym("green")},
		{},
		{atom.Expr(atom.Sym("foo"), atom.Var("x"))},
	}
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name string
		in   []atom.Atom
		want string
	}{
		{"empty", nil, "[]"},
		{"single", []atom.Atom{atom.Int(1)}, "[1]"},
		{"several", []atom.Atom{atom.Sym("a"), atom.Expr(atom.Sym("b"), atom.Sym("c"))}, "[a, (b c)]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatResult(tt.in); got != tt.want {
				t.Errorf("FormatResult() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextFormatter_Results(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatText).FormatResults(&buf, sampleResults()); err != nil {
		t.Fatal(err)
	}
	want := "[42]\n[red, green]\n[]\n[(foo $x)]\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestJSONFormatter_Results(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).FormatResults(&buf, sampleResults()); err != nil {
		t.Fatal(err)
	}
	var got [][]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if len(got) != 4 || got[1][1] != "green" || len(got[2]) != 0 || got[3][0] != "(foo $x)" {
		t.Errorf("results = %v", got)
	}
}

func TestFormatSnapshots(t *testing.T) {
	created := time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)
	snaps := []storage.Snapshot{{ID: "id-1", Name: "kb", Atoms: 3, CreatedAt: created}}

	var text bytes.Buffer
	if err := NewFormatter(FormatText).FormatSnapshots(&text, snaps); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(text.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "NAME") {
		t.Fatalf("text output = %q", text.String())
	}
	for _, field := range []string{"kb", "id-1", "3", "2026-10-15T10:30:00Z"} {
		if !strings.Contains(lines[1], field) {
			t.Errorf("row %q lacks %q", lines[1], field)
		}
	}

	var js bytes.Buffer
	if err := NewFormatter(FormatJSON).FormatSnapshots(&js, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(js.String()) != "[]" {
		t.Errorf("empty listing = %q, want []", js.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestExitCode(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", base, ExitError},
		{"command", NewCommandError("run", base), ExitError},
		{"usage", NewUsageError("run", base), ExitUsage},
		{"wrapped usage", fmt.Errorf("outer: %w", NewUsageError("serve", base)), ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	base := errors.New("file not found")
	err := NewCommandError("run", base)
	if err.Error() != "command run failed: file not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("CommandError does not unwrap to its cause")
	}
}

func TestSetupSignalHandler(t *testing.T) {
	ctx, stop := SetupSignalHandler()
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before any signal")
	default:
	}

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}
}
