package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/sexpr"
	"github.com/amebel/hyperon-experimental/pkg/space"
)

type testParser struct {
	p *sexpr.Parser
}

func (tp testParser) Parse(program string) ([]atom.Atom, error) {
	return tp.p.ParseAll(program)
}

func newTestParser() Parser {
	return testParser{p: sexpr.NewParser(nil)}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func spaceTexts(sp space.Space) []string {
	var out []string
	for _, a := range sp.Atoms() {
		out = append(out, a.String())
	}
	slices.Sort(out)
	return out
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.DebounceInterval != 100*time.Millisecond {
		t.Errorf("DebounceInterval = %v, want 100ms", config.DebounceInterval)
	}
	if !slices.Equal(config.Extensions, []string{".metta"}) {
		t.Errorf("Extensions = %v", config.Extensions)
	}
	if !config.SkipHidden {
		t.Error("SkipHidden = false, want true")
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 5; i++ {
		d.Trigger(func() {
			calls.Add(1)
			last.Store(int32(i))
		})
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(120 * time.Millisecond)

	if calls.Load() != 1 {
		t.Errorf("callback ran %d times, want 1", calls.Load())
	}
	if last.Load() != 5 {
		t.Errorf("ran callback %d, want the latest (5)", last.Load())
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("callback ran %d times after Stop, want 0", calls.Load())
	}
}

func TestReloader(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a := filepath.Join(dir, "a.metta")
	b := filepath.Join(dir, "b.metta")
	writeFile(t, a, "(fact 1) (fact 2) !(ignored)")
	writeFile(t, b, "(fact 2) (other)")

	sp := space.NewGroundingSpace(nil)
	sp.Add(atom.Sym("unrelated"))
	rl := NewReloader(sp, newTestParser(), nil)

	if err := rl.Load(ctx, []string{a, b}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"(fact 1)", "(fact 2)", "(fact 2)", "(other)", "unrelated"}
	if got := spaceTexts(sp); !slices.Equal(got, want) {
		t.Fatalf("space = %v, want %v", got, want)
	}

	writeFile(t, a, "(fact 3)")
	if err := rl.Reload(ctx, []string{a}); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	want = []string{"(fact 2)", "(fact 3)", "(other)", "unrelated"}
	if got := spaceTexts(sp); !slices.Equal(got, want) {
		t.Fatalf("space after reload = %v, want %v", got, want)
	}

	if err := os.Remove(b); err != nil {
		t.Fatal(err)
	}
	if err := rl.Reload(ctx, []string{b}); err != nil {
		t.Fatalf("Reload() of removed file error = %v", err)
	}
	want = []string{"(fact 3)", "unrelated"}
	if got := spaceTexts(sp); !slices.Equal(got, want) {
		t.Fatalf("space after removal = %v, want %v", got, want)
	}
	if files := rl.Files(); !slices.Equal(files, []string{a}) {
		t.Errorf("Files() = %v", files)
	}

	if n := rl.Unload(a); n != 1 {
		t.Errorf("Unload() removed %d atoms, want 1", n)
	}
	if sp.Len() != 1 {
		t.Errorf("space has %d atoms after Unload(), want 1", sp.Len())
	}
}

func TestReloaderKeepsContentOnParseError(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kb.metta")
	writeFile(t, path, "(good)")

	sp := space.NewGroundingSpace(nil)
	rl := NewReloader(sp, newTestParser(), nil)
	if err := rl.Load(ctx, []string{path}); err != nil {
		t.Fatal(err)
	}

	writeFile(t, path, "(broken")
	if err := rl.Reload(ctx, []string{path}); err == nil {
		t.Fatal("Reload() expected a parse error")
	}
	if got := spaceTexts(sp); !slices.Equal(got, []string{"(good)"}) {
		t.Errorf("space = %v, want the previous content", got)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.metta"), "")
	writeFile(t, filepath.Join(dir, "sub", "b.METTA"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")
	writeFile(t, filepath.Join(dir, ".hidden", "c.metta"), "")
	writeFile(t, filepath.Join(dir, ".d.metta"), "")

	w, err := New(&Config{Paths: []string{dir}, SkipHidden: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	files, err := w.Files()
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.metta"), filepath.Join(dir, "sub", "b.METTA")}
	if !slices.Equal(files, want) {
		t.Errorf("Files() = %v, want %v", files, want)
	}
}

func TestWatchReportsChanges(t *testing.T) {
	dir := t.TempDir()
	kb := filepath.Join(dir, "kb.metta")
	writeFile(t, kb, "(v 1)")

	w, err := New(&Config{
		Paths:            []string{dir},
		DebounceInterval: 50 * time.Millisecond,
		Extensions:       []string{".metta"},
		SkipHidden:       true,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	changes := make(chan []string, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = w.Watch(ctx, func(_ context.Context, paths []string) error {
			changes <- paths
			return nil
		})
	}()
	time.Sleep(100 * time.Millisecond)

	writeFile(t, kb, "(v 2)")
	writeFile(t, filepath.Join(dir, "ignored.txt"), "x")

	select {
	case paths := <-changes:
		if !slices.Equal(paths, []string{kb}) {
			t.Errorf("changed paths = %v, want [%s]", paths, kb)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatchAlreadyRunning(t *testing.T) {
	dir := t.TempDir()
	w, err := New(&Config{Paths: []string{dir}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx, func(context.Context, []string) error { return nil }) }()
	time.Sleep(50 * time.Millisecond)

	if err := w.Watch(ctx, nil); err == nil {
		t.Error("second Watch() expected error")
	}
}

func TestWatchMissingPath(t *testing.T) {
	w, err := New(&Config{Paths: []string{filepath.Join(t.TempDir(), "missing")}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Watch(context.Background(), nil); err == nil {
		t.Error("Watch() expected error for a missing path")
	}
}
