// Package tolerance implements the tolerance-pair validator (spec
// component C6) and the two search strategies over bipartitions of
// conditionals and constants (component C7).
package tolerance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/zrank/pkg/zrank/logic"
)

// Subset is one (Rᵢ, Dᵢ) tuple: indices into the knowledge base's
// conditional slice and domain slice. Constants is left empty for a
// propositional knowledge base, where a single dummy constant stands in
// for it internally (spec.md §3, §4.7.1).
type Subset struct {
	Conditionals []int
	Constants    []int
}

func (s Subset) sortedKey() string {
	c := append([]int(nil), s.Conditionals...)
	d := append([]int(nil), s.Constants...)
	sort.Ints(c)
	sort.Ints(d)
	return fmt.Sprintf("R%v/D%v", c, d)
}

func (s Subset) empty() bool { return len(s.Conditionals) == 0 && len(s.Constants) == 0 }

// Pair is an ordered tolerance pair (R₀,D₀),…,(R_m,D_m). Once appended to
// a search result it is treated as immutable; a partial pair under
// construction by the backtracking search mutates only its own trailing
// subset.
type Pair struct {
	Subsets []Subset
}

// Clone deep-copies the pair so a search branch can extend it without
// mutating a sibling branch's state.
func (p Pair) Clone() Pair {
	subs := make([]Subset, len(p.Subsets))
	for i, s := range p.Subsets {
		subs[i] = Subset{
			Conditionals: append([]int(nil), s.Conditionals...),
			Constants:    append([]int(nil), s.Constants...),
		}
	}
	return Pair{Subsets: subs}
}

// CanonicalKey returns a stable string identifying the pair's structure,
// used both for the visited-set deduplication of spec.md §9 and as a map
// key generally — two pairs with the same multiset of subsets (in the
// same order) produce the same key.
func (p Pair) CanonicalKey() string {
	parts := make([]string, len(p.Subsets))
	for i, s := range p.Subsets {
		parts[i] = s.sortedKey()
	}
	return strings.Join(parts, "|")
}

// Complete reports whether every conditional and (for a non-propositional
// KB) every constant index has been placed into some subset.
func (p Pair) Complete(kb logic.KnowledgeBase) bool {
	seenC := map[int]bool{}
	seenD := map[int]bool{}
	for _, s := range p.Subsets {
		for _, ci := range s.Conditionals {
			seenC[ci] = true
		}
		for _, di := range s.Constants {
			seenD[di] = true
		}
	}
	if len(seenC) != len(kb.Conditionals) {
		return false
	}
	if !kb.Propositional() && len(seenD) != len(kb.Domain) {
		return false
	}
	return true
}

// TrimTrailingEmpty drops a trailing subset if it is empty — Complete
// pairs recorded as search results never carry the empty-trailing-subset
// bookkeeping tuple used mid-search (spec.md §3: "each subset is
// non-empty in a fully built pair").
func (p Pair) TrimTrailingEmpty() Pair {
	if len(p.Subsets) == 0 {
		return p
	}
	last := p.Subsets[len(p.Subsets)-1]
	if last.empty() {
		return Pair{Subsets: append([]Subset(nil), p.Subsets[:len(p.Subsets)-1]...)}
	}
	return p
}

// Less implements the total order of spec.md §4.7.4: fewer subsets is
// smaller; tied on subset count, the pair whose earliest differing
// subset has a larger |Rᵢ| (and, still tied, a larger |Dᵢ|) is smaller.
func Less(a, b Pair) bool {
	if len(a.Subsets) != len(b.Subsets) {
		return len(a.Subsets) < len(b.Subsets)
	}
	for i := range a.Subsets {
		ra, rb := len(a.Subsets[i].Conditionals), len(b.Subsets[i].Conditionals)
		if ra != rb {
			return ra > rb
		}
		da, db := len(a.Subsets[i].Constants), len(b.Subsets[i].Constants)
		if da != db {
			return da > db
		}
	}
	return false
}

// ComparePartial implements compareToPartial (spec.md §4.7.4): the same
// order as Less, but ignoring each pair's trailing subset — used to
// prune a partial search node against the current best.
func ComparePartial(a, b Pair) bool {
	at, bt := dropTrailing(a), dropTrailing(b)
	return Less(at, bt)
}

func dropTrailing(p Pair) Pair {
	if len(p.Subsets) == 0 {
		return p
	}
	return Pair{Subsets: p.Subsets[:len(p.Subsets)-1]}
}

// SortPairs orders a slice of pairs per spec.md §4.7.4, ascending.
func SortPairs(pairs []Pair) {
	sort.SliceStable(pairs, func(i, j int) bool { return Less(pairs[i], pairs[j]) })
}
