package matcher

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/amebel/hyperon-experimental/pkg/atom"
)

var freshCounter atomic.Uint64

// FreshVariable returns a variable derived from v whose name is unique within
// the process.
func FreshVariable(v atom.Variable) atom.Variable {
	base := v.Name()
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	return atom.Var(base + "#" + strconv.FormatUint(freshCounter.Add(1), 10))
}

// isFresh reports whether v was created by FreshVariable.
func isFresh(v atom.Variable) bool {
	return strings.IndexByte(v.Name(), '#') >= 0
}

// MakeVariablesUnique renames every variable of a to a fresh one. Occurrences
// of the same variable are renamed consistently. Rules stored in a space are
// renamed this way before they are matched against a query so that their
// variables never alias the query's variables.
func MakeVariablesUnique(a atom.Atom) atom.Atom {
	renamed := make(map[atom.Variable]atom.Variable)
	return atom.Transform(a, func(x atom.Atom) atom.Atom {
		v, ok := x.(atom.Variable)
		if !ok {
			return x
		}
		nv, seen := renamed[v]
		if !seen {
			nv = FreshVariable(v)
			renamed[v] = nv
		}
		return nv
	})
}
