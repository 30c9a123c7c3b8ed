package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // "sqlite3" driver (cgo)
	_ "modernc.org/sqlite"          // "sqlite" driver (pure Go)

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/sexpr"
	"github.com/amebel/hyperon-experimental/pkg/stdlib"
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite snapshot store.
type SQLiteConfig struct {
	// Driver selects the database/sql driver: "sqlite" (modernc.org/sqlite)
	// or "sqlite3" (github.com/mattn/go-sqlite3).
	// Default: "sqlite"
	Driver string

	// Path is the database file path.
	Path string

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Driver:      DriverModernc,
		Path:        "data/snapshots.db",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStore implements Store on SQLite. Atoms are kept in their text form,
// one row per atom, and parsed back with a Decoder.
type SQLiteStore struct {
	db      *sql.DB
	config  *SQLiteConfig
	decoder Decoder
	logger  *slog.Logger

	mu        sync.Mutex
	closeOnce sync.Once
}

// NewSQLiteStore opens the database and creates the schema. A nil decoder
// parses number, string and boolean literals; pass a parser with the
// runner's tokenizer to restore grounded operations and spaces as well.
func NewSQLiteStore(config *SQLiteConfig, decoder Decoder, logger *slog.Logger) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, errors.New("db path cannot be empty")
	}
	if config.Driver == "" {
		config.Driver = DriverModernc
	}
	if config.Driver != DriverModernc && config.Driver != DriverCgo {
		return nil, fmt.Errorf("unsupported sqlite driver %q", config.Driver)
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}
	if decoder == nil {
		decoder = defaultDecoder()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "storage.sqlite", "driver", config.Driver)

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, NewStorageError(config.Driver, "open", err)
	}
	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:      db,
		config:  config,
		decoder: decoder,
		logger:  logger,
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite snapshot store initialized", "path", config.Path, "wal_mode", config.WALMode)
	return s, nil
}

func defaultDecoder() Decoder {
	tok := sexpr.NewTokenizer()
	stdlib.RegisterLiterals(tok)
	return sexpr.NewParser(tok)
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError(s.config.Driver, "enable_wal", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return NewStorageError(s.config.Driver, "set_busy_timeout", err)
	}
	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError(s.config.Driver, "create_schema", err)
	}
	return nil
}

// Save stores atoms as a new snapshot under name.
func (s *SQLiteStore) Save(ctx context.Context, name string, atoms []atom.Atom) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		ID:        uuid.NewString(),
		Name:      name,
		Atoms:     len(atoms),
		CreatedAt: time.Now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "save", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, atom_count, created_at) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.Name, snap.Atoms, snap.CreatedAt.UnixNano(),
	); err != nil {
		return nil, NewStorageError(s.config.Driver, "save", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_atoms (snapshot_id, ordinal, atom) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "save", err)
	}
	defer stmt.Close()

	for i, a := range atoms {
		if _, err := stmt.ExecContext(ctx, snap.ID, i, a.String()); err != nil {
			return nil, NewStorageError(s.config.Driver, "save", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, NewStorageError(s.config.Driver, "save", err)
	}

	s.logger.Debug("snapshot saved", "id", snap.ID, "name", name, "atoms", snap.Atoms)
	return snap, nil
}

// Load returns the atoms of the latest snapshot saved under name.
func (s *SQLiteStore) Load(ctx context.Context, name string) ([]atom.Atom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM snapshots WHERE name = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "load", err)
	}
	return s.loadAtoms(ctx, id)
}

// LoadID returns the atoms of the snapshot with the given ID.
func (s *SQLiteStore) LoadID(ctx context.Context, id string) ([]atom.Atom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM snapshots WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "load", err)
	}
	return s.loadAtoms(ctx, id)
}

func (s *SQLiteStore) loadAtoms(ctx context.Context, id string) ([]atom.Atom, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ordinal, atom FROM snapshot_atoms WHERE snapshot_id = ? ORDER BY ordinal`, id)
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "load", err)
	}
	defer rows.Close()

	var atoms []atom.Atom
	for rows.Next() {
		var (
			ordinal int
			text    string
		)
		if err := rows.Scan(&ordinal, &text); err != nil {
			return nil, NewStorageError(s.config.Driver, "load", err)
		}
		a, err := s.decoder.ParseOne(text)
		if err != nil {
			return nil, fmt.Errorf("failed to decode atom %d of snapshot %s: %w", ordinal, id, err)
		}
		atoms = append(atoms, a)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(s.config.Driver, "load", err)
	}
	return atoms, nil
}

// List returns all snapshots, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, atom_count, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "list", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			snap    Snapshot
			created int64
		)
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.Atoms, &created); err != nil {
			return nil, NewStorageError(s.config.Driver, "list", err)
		}
		snap.CreatedAt = time.Unix(0, created)
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(s.config.Driver, "list", err)
	}
	return out, nil
}

// Delete removes every snapshot saved under name.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.deleteWhere(ctx, `SELECT id FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	s.logger.Debug("snapshots deleted", "name", name, "count", n)
	return nil
}

// Prune removes all but the newest keep snapshots of name.
func (s *SQLiteStore) Prune(ctx context.Context, name string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.deleteWhere(ctx,
		`SELECT id FROM snapshots WHERE name = ? ORDER BY created_at DESC, rowid DESC LIMIT -1 OFFSET ?`,
		name, keep)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("snapshots pruned", "name", name, "removed", n, "kept", keep)
	}
	return n, nil
}

// deleteWhere removes the snapshots whose ids the selection returns,
// together with their atoms.
func (s *SQLiteStore) deleteWhere(ctx context.Context, selection string, args ...any) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, NewStorageError(s.config.Driver, "delete", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, selection, args...)
	if err != nil {
		return 0, NewStorageError(s.config.Driver, "delete", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, NewStorageError(s.config.Driver, "delete", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, NewStorageError(s.config.Driver, "delete", err)
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_atoms WHERE snapshot_id = ?`, id); err != nil {
			return 0, NewStorageError(s.config.Driver, "delete", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id); err != nil {
			return 0, NewStorageError(s.config.Driver, "delete", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, NewStorageError(s.config.Driver, "delete", err)
	}
	return len(ids), nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.db.Close()
	})
	return err
}
