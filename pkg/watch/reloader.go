package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/space"
)

// Parser parses a program into atoms. *runner.Runner implements it.
type Parser interface {
	Parse(program string) ([]atom.Atom, error)
}

// Reloader keeps a space in sync with knowledge-base files. Each file's
// plain atoms are added to the space; reloading a file replaces the atoms it
// added before. Atoms following "!" are not evaluated and are skipped.
type Reloader struct {
	space  space.Space
	parser Parser
	logger *slog.Logger

	mu     sync.Mutex
	loaded map[string][]atom.Atom
}

// NewReloader creates a Reloader adding atoms to sp.
func NewReloader(sp space.Space, parser Parser, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader{
		space:  sp,
		parser: parser,
		logger: logger.With("component", "watch.reloader"),
		loaded: make(map[string][]atom.Atom),
	}
}

// Load loads every file, replacing what was loaded from it before.
func (r *Reloader) Load(ctx context.Context, paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.reload(filepath.Clean(p)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reload is a ChangeFunc: it reloads changed files and unloads removed
// ones.
func (r *Reloader) Reload(ctx context.Context, paths []string) error {
	return r.Load(ctx, paths)
}

// Files returns the files currently loaded, sorted.
func (r *Reloader) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	files := make([]string, 0, len(r.loaded))
	for f := range r.loaded {
		files = append(files, f)
	}
	slices.Sort(files)
	return files
}

// Unload removes the atoms loaded from path.
func (r *Reloader) Unload(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unloadLocked(filepath.Clean(path))
}

func (r *Reloader) reload(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.mu.Lock()
		removed := r.unloadLocked(path)
		r.mu.Unlock()
		r.logger.Info("file unloaded", "path", path, "removed", removed)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	parsed, err := r.parser.Parse(string(data))
	if err != nil {
		// The previous content stays loaded.
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	atoms := knowledge(parsed)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := r.unloadLocked(path)
	for _, a := range atoms {
		r.space.Add(a)
	}
	r.loaded[path] = atoms

	r.logger.Info("file loaded", "path", path, "added", len(atoms), "removed", removed)
	return nil
}

func (r *Reloader) unloadLocked(path string) int {
	removed := 0
	for _, a := range r.loaded[path] {
		if r.space.Remove(a) {
			removed++
		}
	}
	delete(r.loaded, path)
	return removed
}

// knowledge drops "!" and the atom following it.
func knowledge(atoms []atom.Atom) []atom.Atom {
	out := make([]atom.Atom, 0, len(atoms))
	for i := 0; i < len(atoms); i++ {
		if atom.IsSymbol(atoms[i], "!") {
			i++
			continue
		}
		out = append(out, atoms[i])
	}
	return out
}
