// Package storage persists snapshots of a space's atoms.
//
// # Overview
//
// A snapshot is the ordered list of atoms of a space at one point in time,
// saved under a name. Several snapshots may share a name; Load returns the
// newest one. Two implementations are provided:
//
//   - SQLiteStore: file-based persistence using either the pure Go
//     modernc.org/sqlite driver ("sqlite") or github.com/mattn/go-sqlite3
//     ("sqlite3")
//   - MemoryStore: in-memory storage for tests
//
// # Usage
//
//	store, err := storage.NewSQLiteStore(&storage.SQLiteConfig{
//	    Driver: storage.DriverModernc,
//	    Path:   "kb.db",
//	}, sexpr.NewParser(r.Tokenizer()), logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	snap, err := storage.Capture(ctx, store, "kb", r.Space())
//	n, err := storage.Restore(ctx, store, "kb", r.Space())
//
// # Encoding
//
// Atoms are stored in their printed form and parsed back with a Decoder.
// Grounded atoms survive the round trip only when the decoder's tokenizer
// knows their printed form, so pass a parser built on the runner's tokenizer
// when the space holds grounded operations or spaces.
package storage
