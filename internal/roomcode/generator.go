// Package roomcode produces the short human-shareable codes used to join
// rooms. The generator only draws candidates; uniqueness is enforced by
// the rooms table's unique index at insert time.
package roomcode

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
	"sync"
)

const (
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Length   = 6
)

type Generator struct {
	mu  sync.Mutex
	rnd *mathrand.Rand
}

// New returns a generator seeded from the OS entropy source.
func New() *Generator {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("roomcode: cannot seed generator: " + err.Error())
	}
	return NewSeeded(int64(binary.LittleEndian.Uint64(b[:])))
}

// NewSeeded returns a generator with a fixed seed, for deterministic tests.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: mathrand.New(mathrand.NewSource(seed))}
}

// Generate draws one candidate code. Safe for concurrent use.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	buf := make([]byte, Length)
	for i := range buf {
		buf[i] = Alphabet[g.rnd.Intn(len(Alphabet))]
	}
	return string(buf)
}
