package tolerance

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

// witnessEntropy stamps each Witness (spec.md §4.6) with a monotonic
// ULID, the same role ULIDs play for pkg/zrank/explain.Tree's nodes —
// a stable, sortable identity for a witness list that survives
// serialization (e.g. when a CLI prints the search result for later
// reference).
var witnessEntropy = ulid.Monotonic(rand.Reader, 0)

func newWitnessID() string {
	return ulid.MustNew(ulid.Timestamp(time.Unix(0, 0)), witnessEntropy).String()
}

// Witness records, for one verified conditional, the subset it belongs
// to, the constant (or -1, meaning "dummy"/"not needed") it was grounded
// with, and the world that verifies it without falsifying anything it
// must not falsify.
type Witness struct {
	ID               string
	SubsetIndex      int
	ConditionalIndex int
	ConstantIndex    int
	World            world.ID
}

// GroundConditional grounds kb.Conditionals[condIdx] with kb.Domain[constIdx],
// or returns it unchanged if it has no free variable or constIdx is the
// -1 "dummy" sentinel (propositional edge case, spec.md §3/§4.6). Shared
// with pkg/zrank/systemz, which grounds by the same per-subset constant
// candidates when computing λ(i,w).
func GroundConditional(kb logic.KnowledgeBase, condIdx, constIdx int) logic.Conditional {
	cond := kb.Conditionals[condIdx]
	v, ok := cond.FreeVariable()
	if !ok || constIdx < 0 {
		return cond
	}
	return cond.Ground(v, kb.Domain[constIdx])
}

// ConstantCandidates returns the indices a conditional of subset s may be
// grounded by: s.Constants itself, or the single -1 "dummy" sentinel for
// a propositional knowledge base or an as-yet-unpopulated subset.
func ConstantCandidates(kb logic.KnowledgeBase, s Subset) []int {
	if kb.Propositional() || len(s.Constants) == 0 {
		return []int{-1}
	}
	return s.Constants
}

func factSatisfyingWorlds(kb logic.KnowledgeBase, ws *world.Set) []world.ID {
	var out []world.ID
	for i := 0; i < ws.Len(); i++ {
		id := world.ID(i)
		ok := true
		for _, f := range kb.Facts {
			if !ws.Satisfies(id, f) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, id)
		}
	}
	return out
}

// Validate decides whether pair is a tolerance pair for kb (spec.md
// §4.6): every conditional of every subset Rᵢ is tolerated by the
// subsets at or after its own index, witnessed over worlds satisfying
// every fact. On success it also returns the witness list.
func Validate(kb logic.KnowledgeBase, ws *world.Set, pair Pair) (bool, []Witness) {
	factWorlds := factSatisfyingWorlds(kb, ws)
	var witnesses []Witness
	for i := range pair.Subsets {
		ok, w := validateSubsetIndex(kb, ws, pair, i, factWorlds)
		if !ok {
			return false, nil
		}
		witnesses = append(witnesses, w...)
	}
	return true, witnesses
}

// ValidateIncremental performs the cheaper check of spec.md §4.7.2: only
// the trailing subset's own conditionals are checked for tolerance,
// using plain world satisfaction of verification/falsification formulas
// (equivalent to using the all-zero ranking κ₀, since "verifies" and
// "falsifies" do not involve any rank comparison — only whether some
// world satisfies the verification/falsification formula). Used by the
// backtracking search to prune a branch before it is fully built.
func ValidateIncremental(kb logic.KnowledgeBase, ws *world.Set, pair Pair) bool {
	if len(pair.Subsets) == 0 {
		return true
	}
	factWorlds := factSatisfyingWorlds(kb, ws)
	i := len(pair.Subsets) - 1
	ok, _ := validateSubsetIndex(kb, ws, pair, i, factWorlds)
	return ok
}

// validateSubsetIndex checks tolerance for subset i only, scanning j from
// i to the last subset currently present in pair (during a partial
// search, i is always the last subset, so this degenerates to
// self-tolerance within the trailing subset, as intended).
func validateSubsetIndex(kb logic.KnowledgeBase, ws *world.Set, pair Pair, i int, factWorlds []world.ID) (bool, []Witness) {
	subset := pair.Subsets[i]
	aCandidates := ConstantCandidates(kb, subset)

	var witnesses []Witness
	for _, condIdx := range subset.Conditionals {
		verified := false
		var witness Witness

	searchConstant:
		for _, constIdx := range aCandidates {
			gc := GroundConditional(kb, condIdx, constIdx)
			verForm := gc.Verification()

			for _, w := range factWorlds {
				if !ws.Satisfies(w, verForm) {
					continue
				}
				if falsifiesSomethingAtOrAfter(kb, ws, pair, i, aCandidates, w) {
					continue
				}
				verified = true
				witness = Witness{ID: newWitnessID(), SubsetIndex: i, ConditionalIndex: condIdx, ConstantIndex: constIdx, World: w}
				break searchConstant
			}
		}
		if !verified {
			return false, nil
		}
		witnesses = append(witnesses, witness)
	}
	return true, witnesses
}

// StrictPaperReading toggles the non-falsification constant's universe
// in falsifiesSomethingAtOrAfter between the source's reading (false,
// the default: a' ranges over Dᵢ, the verifying subset's own domain
// slice) and a stricter reading of the published tolerance condition
// (true: a' ranges over Dⱼ, the falsifying conditional's own subset).
// spec.md §9 "Open questions" requires this be reproduced verbatim by
// default and flagged rather than silently changed; every documented
// end-to-end scenario and test in this package runs with the default
// false. Flip only for experimentation — no default code path does.
const StrictPaperReading = false

// falsifiesSomethingAtOrAfter reports whether world w falsifies some
// conditional c' ∈ Rⱼ for some j ≥ i, grounded by some constant a' ∈ Dᵢ
// (spec.md §4.6's documented asymmetry: a' ranges over Dᵢ, not Dⱼ, unless
// StrictPaperReading is set).
func falsifiesSomethingAtOrAfter(kb logic.KnowledgeBase, ws *world.Set, pair Pair, i int, aPrimeCandidates []int, w world.ID) bool {
	for j := i; j < len(pair.Subsets); j++ {
		candidates := aPrimeCandidates
		if StrictPaperReading {
			candidates = ConstantCandidates(kb, pair.Subsets[j])
		}
		for _, condIdx := range pair.Subsets[j].Conditionals {
			for _, constIdx := range candidates {
				gc := GroundConditional(kb, condIdx, constIdx)
				if ws.Satisfies(w, gc.Falsification()) {
					return true
				}
			}
		}
	}
	return false
}
