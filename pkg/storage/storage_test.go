package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/sexpr"
	"github.com/amebel/hyperon-experimental/pkg/space"
	"github.com/amebel/hyperon-experimental/pkg/stdlib"
)

// stores returns one store per backend, each closed at test cleanup.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	out := map[string]Store{"memory": NewMemoryStore()}
	for _, driver := range []string{DriverModernc, DriverCgo} {
		s, err := NewSQLiteStore(&SQLiteConfig{
			Driver:  driver,
			Path:    filepath.Join(t.TempDir(), driver+".db"),
			WALMode: true,
		}, nil, nil)
		if err != nil {
			t.Fatalf("NewSQLiteStore(%s) error = %v", driver, err)
		}
		out[driver] = s
	}
	t.Cleanup(func() {
		for _, s := range out {
			s.Close()
		}
	})
	return out
}

func sampleAtoms() []atom.Atom {
	return []atom.Atom{
		atom.Expr(atom.Sym("="), atom.Expr(atom.Sym("f"), atom.Var("x")), atom.Var("x")),
		atom.Expr(atom.Sym("age"), atom.Sym("Sam"), atom.Int(42)),
		atom.Expr(atom.Sym("pi"), atom.Float(3.14)),
		atom.Expr(atom.Sym("name"), atom.Text("Sam \"the\" man")),
		atom.Boolean(true),
		atom.Expr(),
		atom.Expr(atom.Sym("age"), atom.Sym("Sam"), atom.Int(42)),
	}
}

func assertSameAtoms(t *testing.T, got, want []atom.Atom) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d atoms %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if !atom.Equal(got[i], want[i]) {
			t.Errorf("atom %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	for backend, store := range stores(t) {
		t.Run(backend, func(t *testing.T) {
			atoms := sampleAtoms()
			snap, err := store.Save(ctx, "kb", atoms)
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if snap.ID == "" || snap.Name != "kb" || snap.Atoms != len(atoms) {
				t.Errorf("Save() = %+v", snap)
			}

			got, err := store.Load(ctx, "kb")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			assertSameAtoms(t, got, atoms)

			byID, err := store.LoadID(ctx, snap.ID)
			if err != nil {
				t.Fatalf("LoadID() error = %v", err)
			}
			assertSameAtoms(t, byID, atoms)
		})
	}
}

func TestLoadLatest(t *testing.T) {
	ctx := context.Background()
	for backend, store := range stores(t) {
		t.Run(backend, func(t *testing.T) {
			first := []atom.Atom{atom.Sym("v1")}
			second := []atom.Atom{atom.Sym("v2"), atom.Sym("extra")}
			if _, err := store.Save(ctx, "kb", first); err != nil {
				t.Fatal(err)
			}
			if _, err := store.Save(ctx, "other", first); err != nil {
				t.Fatal(err)
			}
			if _, err := store.Save(ctx, "kb", second); err != nil {
				t.Fatal(err)
			}

			got, err := store.Load(ctx, "kb")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			assertSameAtoms(t, got, second)

			list, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(list) != 3 {
				t.Fatalf("List() returned %d snapshots, want 3", len(list))
			}
			if list[0].Name != "kb" || list[0].Atoms != 2 || list[2].Atoms != 1 {
				t.Errorf("List() not newest first: %+v", list)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	for backend, store := range stores(t) {
		t.Run(backend, func(t *testing.T) {
			if _, err := store.Load(ctx, "missing"); !errors.Is(err, ErrSnapshotNotFound) {
				t.Errorf("Load() error = %v, want ErrSnapshotNotFound", err)
			}
			if _, err := store.LoadID(ctx, "missing"); !errors.Is(err, ErrSnapshotNotFound) {
				t.Errorf("LoadID() error = %v, want ErrSnapshotNotFound", err)
			}
			if err := store.Delete(ctx, "missing"); !errors.Is(err, ErrSnapshotNotFound) {
				t.Errorf("Delete() error = %v, want ErrSnapshotNotFound", err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	for backend, store := range stores(t) {
		t.Run(backend, func(t *testing.T) {
			store.Save(ctx, "kb", []atom.Atom{atom.Sym("a")})
			store.Save(ctx, "kb", []atom.Atom{atom.Sym("b")})
			store.Save(ctx, "keep", []atom.Atom{atom.Sym("c")})

			if err := store.Delete(ctx, "kb"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := store.Load(ctx, "kb"); !errors.Is(err, ErrSnapshotNotFound) {
				t.Errorf("Load() after Delete() error = %v", err)
			}
			list, _ := store.List(ctx)
			if len(list) != 1 || list[0].Name != "keep" {
				t.Errorf("List() after Delete() = %+v", list)
			}
		})
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	for backend, store := range stores(t) {
		t.Run(backend, func(t *testing.T) {
			for _, name := range []string{"v1", "v2", "v3", "v4"} {
				if _, err := store.Save(ctx, "kb", []atom.Atom{atom.Sym(name)}); err != nil {
					t.Fatal(err)
				}
			}
			store.Save(ctx, "other", []atom.Atom{atom.Sym("x")})

			removed, err := store.Prune(ctx, "kb", 2)
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if removed != 2 {
				t.Errorf("Prune() removed %d, want 2", removed)
			}

			got, _ := store.Load(ctx, "kb")
			assertSameAtoms(t, got, []atom.Atom{atom.Sym("v4")})
			list, _ := store.List(ctx)
			if len(list) != 3 {
				t.Errorf("List() after Prune() = %+v", list)
			}

			if removed, _ := store.Prune(ctx, "kb", 5); removed != 0 {
				t.Errorf("second Prune() removed %d, want 0", removed)
			}
		})
	}
}

func TestCaptureAndRestore(t *testing.T) {
	ctx := context.Background()
	for backend, store := range stores(t) {
		t.Run(backend, func(t *testing.T) {
			src := space.FromAtoms(nil, sampleAtoms()...)
			snap, err := Capture(ctx, store, "kb", src)
			if err != nil {
				t.Fatalf("Capture() error = %v", err)
			}
			if snap.Atoms != src.Len() {
				t.Errorf("Capture() saved %d atoms, want %d", snap.Atoms, src.Len())
			}

			dst := space.NewGroundingSpace(nil)
			n, err := Restore(ctx, store, "kb", dst)
			if err != nil {
				t.Fatalf("Restore() error = %v", err)
			}
			if n != src.Len() || dst.Len() != src.Len() {
				t.Errorf("Restore() added %d atoms, space has %d, want %d", n, dst.Len(), src.Len())
			}
			assertSameAtoms(t, dst.Atoms(), src.Atoms())

			if _, err := Restore(ctx, store, "missing", dst); !errors.Is(err, ErrSnapshotNotFound) {
				t.Errorf("Restore() error = %v, want ErrSnapshotNotFound", err)
			}
		})
	}
}

func TestDecoderRestoresGroundedAtoms(t *testing.T) {
	ctx := context.Background()
	sp := space.NewGroundingSpace(nil)
	lib := stdlib.New(nil, sp)
	plus, _ := lib.Operation("+")

	tok := sexpr.NewTokenizer()
	lib.Register(tok)
	s, err := NewSQLiteStore(&SQLiteConfig{Path: filepath.Join(t.TempDir(), "kb.db")}, sexpr.NewParser(tok), nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()

	rule := atom.Expr(atom.Sym("="), atom.Expr(atom.Sym("inc"), atom.Var("x")), atom.Expr(plus, atom.Var("x"), atom.Int(1)))
	if _, err := s.Save(ctx, "kb", []atom.Atom{rule}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, "kb")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSameAtoms(t, got, []atom.Atom{rule})
}

func TestNewSQLiteStoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		config *SQLiteConfig
	}{
		{name: "empty path", config: &SQLiteConfig{Driver: DriverModernc}},
		{name: "unknown driver", config: &SQLiteConfig{Driver: "postgres", Path: "x.db"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSQLiteStore(tt.config, nil, nil); err == nil {
				t.Error("NewSQLiteStore() expected error")
			}
		})
	}
}
