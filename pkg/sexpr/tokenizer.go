package sexpr

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/amebel/hyperon-experimental/pkg/atom"
)

// TokenFunc builds the atom a matched token stands for.
type TokenFunc func(token string) (atom.Atom, error)

type tokenEntry struct {
	re *regexp.Regexp
	fn TokenFunc
}

// Tokenizer maps words of the source text to atoms. Each entry is a regular
// expression that must match the whole word; when several entries match, the
// one registered last wins. Words no entry matches become symbols.
//
// A Tokenizer is safe for concurrent use.
type Tokenizer struct {
	mu      sync.RWMutex
	entries []tokenEntry
}

// NewTokenizer creates a tokenizer without entries.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Register adds an entry for words matching pattern.
func (t *Tokenizer) Register(pattern string, fn TokenFunc) error {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return fmt.Errorf("invalid token pattern %q: %w", pattern, err)
	}
	t.mu.Lock()
	t.entries = append(t.entries, tokenEntry{re: re, fn: fn})
	t.mu.Unlock()
	return nil
}

// MustRegister is like Register but panics on an invalid pattern.
func (t *Tokenizer) MustRegister(pattern string, fn TokenFunc) {
	if err := t.Register(pattern, fn); err != nil {
		panic(err)
	}
}

// RegisterAtom makes the word name stand for a.
func (t *Tokenizer) RegisterAtom(name string, a atom.Atom) {
	t.MustRegister(regexp.QuoteMeta(name), func(string) (atom.Atom, error) {
		return a, nil
	})
}

// Lookup returns the constructor registered last for word.
func (t *Tokenizer) Lookup(word string) (TokenFunc, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].re.MatchString(word) {
			return t.entries[i].fn, true
		}
	}
	return nil, false
}

// Len returns the number of registered entries.
func (t *Tokenizer) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Clone returns an independent copy of the tokenizer.
func (t *Tokenizer) Clone() *Tokenizer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &Tokenizer{entries: append([]tokenEntry(nil), t.entries...)}
}
