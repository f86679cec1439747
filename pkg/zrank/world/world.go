// Package world implements the possible-world generator (spec component
// C3): enumeration of every truth assignment to a knowledge base's ground
// atoms, stored as a compact bitset per world (spec.md §5) behind a
// shared, immutable, order-preserving interpretable sequence.
package world

import (
	"fmt"

	"github.com/cognicore/zrank/pkg/zrank/internalerr"
	"github.com/cognicore/zrank/pkg/zrank/logic"
)

// World is a total boolean assignment to a Set's interpretables, stored
// as a compact bitset indexed by interpretable position.
type World struct {
	bits []uint64
	n    int
}

func newWorld(n int) *World {
	return &World{bits: make([]uint64, (n+63)/64), n: n}
}

// Get reports the truth value of the interpretable at position i.
func (w *World) Get(i int) bool {
	return (w.bits[i/64]>>(uint(i%64)))&1 == 1
}

func (w *World) set(i int, v bool) {
	if v {
		w.bits[i/64] |= 1 << uint(i%64)
	} else {
		w.bits[i/64] &^= 1 << uint(i%64)
	}
}

func (w *World) clone() *World {
	cp := &World{bits: make([]uint64, len(w.bits)), n: w.n}
	copy(cp.bits, w.bits)
	return cp
}

// String renders the world as a bitstring, interpretable 0 first.
func (w *World) String() string {
	b := make([]byte, w.n)
	for i := 0; i < w.n; i++ {
		if w.Get(i) {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// Set is the shared, immutable interpretable order together with the
// exhaustive array of worlds over it; this is the canonical order used
// by every other component (ranking, CSV export, ...).
type Set struct {
	Interpretables []logic.RelationalAtom
	Domain         []logic.Constant
	Worlds         []*World
	index          map[string]int
}

// ID identifies a world by its position in Set.Worlds — the canonical
// insertion order of spec.md §5.
type ID int

// Limits bounds how large a world set buildWorlds is willing to
// allocate, guarding the CapacityError path of spec.md §7.
type Limits struct {
	// MaxInterpretables caps the number of ground atoms; the world set
	// has 2^MaxInterpretables entries, so this is the real memory knob.
	MaxInterpretables int
}

// DefaultLimits matches the teacher's conservative-default posture: large
// enough for every worked example in spec.md §8, small enough that a
// runaway KB fails fast instead of exhausting memory.
var DefaultLimits = Limits{MaxInterpretables: 24}

// Build enumerates every world for kb's interpretables by iterative
// doubling (spec.md §4.3): starting from one empty world, each
// interpretable doubles the current list by crossing it with {false,
// true}, preserving order. Fails with internalerr.ErrCapacity before
// allocating anything if the interpretable count exceeds limit.
func Build(kb logic.KnowledgeBase, limit Limits) (*Set, error) {
	interp := kb.Interpretables()
	n := len(interp)
	if n > limit.MaxInterpretables {
		return nil, fmt.Errorf("%w: %d interpretables exceeds limit %d (2^%d worlds)",
			internalerr.ErrCapacity, n, limit.MaxInterpretables, n)
	}

	worlds := []*World{newWorld(n)}
	for i := 0; i < n; i++ {
		next := make([]*World, 0, len(worlds)*2)
		for _, w := range worlds {
			w0 := w.clone()
			w1 := w.clone()
			w1.set(i, true)
			next = append(next, w0, w1)
		}
		worlds = next
	}

	idx := make(map[string]int, n)
	for i, a := range interp {
		idx[a.Key()] = i
	}

	return &Set{Interpretables: interp, Domain: kb.Domain, Worlds: worlds, index: idx}, nil
}

// At returns the world with the given ID.
func (s *Set) At(id ID) *World { return s.Worlds[id] }

// Len returns the number of worlds, always 2^len(Interpretables).
func (s *Set) Len() int { return len(s.Worlds) }

// position returns the bit index of atom a, or -1 if a is not an
// interpretable of this set (never true for atoms drawn from the same
// KB this set was built from).
func (s *Set) position(a logic.RelationalAtom) int {
	if i, ok := s.index[a.Key()]; ok {
		return i
	}
	return -1
}

// valuation adapts a single World, plus its owning Set, to
// logic.Valuation.
type valuation struct {
	set *Set
	w   *World
}

func (v valuation) Value(a logic.RelationalAtom) bool {
	i := v.set.position(a)
	if i < 0 {
		// An atom outside the interpretable set is never asserted true;
		// this can only arise from a formula built against the wrong
		// Set, which Satisfies's caller is responsible for not doing.
		return false
	}
	return v.w.Get(i)
}

// Satisfies decides w ⊨ F for a world identified within this set,
// quantifying ∃/∀ over the set's domain.
func (s *Set) Satisfies(id ID, f logic.Formula) bool {
	return logic.Satisfies(f, valuation{set: s, w: s.At(id)}, s.Domain)
}
