package atom

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hash returns a structural hash of a. Equal atoms hash equally; grounded
// values without a Hasher are hashed by their text form.
func Hash(a Atom) uint64 {
	d := xxhash.New()
	writeHash(d, a)
	return d.Sum64()
}

func writeHash(d *xxhash.Digest, a Atom) {
	var buf [9]byte
	buf[0] = byte(a.Kind())
	switch x := a.(type) {
	case Symbol:
		d.Write(buf[:1])
		d.WriteString(x.name)
	case Variable:
		d.Write(buf[:1])
		d.WriteString(x.name)
	case *Expression:
		binary.LittleEndian.PutUint64(buf[1:], uint64(len(x.children)))
		d.Write(buf[:])
		for _, c := range x.children {
			writeHash(d, c)
		}
	case *Grounded:
		if h, ok := x.value.(Hasher); ok {
			binary.LittleEndian.PutUint64(buf[1:], h.Hash())
			d.Write(buf[:])
			return
		}
		d.Write(buf[:1])
		d.WriteString(x.value.String())
	}
	// Terminates variable-length names so ("ab" "c") and ("a" "bc") differ.
	d.Write([]byte{0})
}
