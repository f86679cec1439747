package world

import "github.com/cognicore/zrank/pkg/zrank/logic"

// Bits exposes a World's raw bitset for a caller that persists world
// sets (pkg/zrank/store) — the slice is a defensive copy, never the
// World's own backing array.
func (w *World) Bits() []uint64 {
	cp := make([]uint64, len(w.bits))
	copy(cp, w.bits)
	return cp
}

// Restore rebuilds a Set from a previously persisted interpretable order
// and per-world bitsets, skipping the iterative-doubling enumeration of
// Build. The caller (pkg/zrank/store) is responsible for pairing a
// world-set record with the knowledge base it was built from — interp and
// bits must agree in length and bit width, or Restore panics, since a
// mismatch here means the cache key collided with a different knowledge
// base and continuing would silently rank the wrong worlds.
func Restore(interp []logic.RelationalAtom, domain []logic.Constant, bits [][]uint64) *Set {
	n := len(interp)
	want := (n + 63) / 64
	worlds := make([]*World, len(bits))
	for i, b := range bits {
		if len(b) != want {
			panic("world: Restore given a bitset of the wrong width for its interpretable count")
		}
		cp := make([]uint64, want)
		copy(cp, b)
		worlds[i] = &World{bits: cp, n: n}
	}

	idx := make(map[string]int, n)
	for i, a := range interp {
		idx[a.Key()] = i
	}

	return &Set{Interpretables: interp, Domain: domain, Worlds: worlds, index: idx}
}
