// Package systemz implements the System-Z ranking constructor (spec
// component C8): turning a validated tolerance pair into a concrete
// pkg/zrank/rank.Ranking by the paper's κ(w) = Σᵢ (m+2)ⁱ·λ(i,w)
// positional construction, normalized so the smallest finite rank is 0.
package systemz

import (
	"fmt"

	"github.com/cognicore/zrank/pkg/zrank/internalerr"
	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/rank"
	"github.com/cognicore/zrank/pkg/zrank/tolerance"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

// Build constructs the System-Z ranking for kb under the given tolerance
// pair. pair must be non-empty and, in the caller's responsibility, a
// pair that Validate accepted — Build does not re-validate it, since
// re-validation at this cost would double the work every search
// strategy already did to produce pair in the first place.
func Build(kb logic.KnowledgeBase, ws *world.Set, pair tolerance.Pair) (*rank.Ranking, error) {
	m := len(pair.Subsets) - 1
	if m < 0 {
		return nil, fmt.Errorf("%w: systemz.Build called with an empty tolerance pair", internalerr.ErrInternalInvariant)
	}
	base := uint64(m + 2)

	values := make(map[world.ID]uint64, ws.Len())
	kappa0 := rank.Infinity

	for i := 0; i < ws.Len(); i++ {
		id := world.ID(i)
		if worldFalsifiesAFact(kb, ws, id) {
			values[id] = rank.Infinity
			continue
		}
		k := kappaRaw(kb, ws, pair, id, base, m)
		values[id] = k
		if k < kappa0 {
			kappa0 = k
		}
	}

	if kappa0 == rank.Infinity {
		kappa0 = 0
	}
	for id, k := range values {
		if k == rank.Infinity {
			continue
		}
		values[id] = k - kappa0
	}

	return &rank.Ranking{Set: ws, Values: values}, nil
}

func worldFalsifiesAFact(kb logic.KnowledgeBase, ws *world.Set, id world.ID) bool {
	for _, f := range kb.Facts {
		if !ws.Satisfies(id, f) {
			return true
		}
	}
	return false
}

// kappaRaw sums the base-(m+2) positional digits λ(0,w)…λ(m,w) before
// normalization.
func kappaRaw(kb logic.KnowledgeBase, ws *world.Set, pair tolerance.Pair, id world.ID, base uint64, m int) uint64 {
	var total uint64
	power := uint64(1)
	for i := 0; i <= m; i++ {
		lam := lambda(kb, ws, pair, id, i, m)
		total += power * uint64(lam)
		power *= base
	}
	return total
}

// lambda computes λ(i,w) (spec.md §4.8): j+1 for the largest subset index
// j such that some conditional of Rⱼ, grounded by some constant of Dᵢ (the
// i-th subset's own domain slice, or the dummy sentinel for a
// propositional knowledge base), is falsified by w; 0 if no such j exists. Scanning j
// from m down to 0 and returning on the first hit computes the maximum
// directly, without a second pass.
func lambda(kb logic.KnowledgeBase, ws *world.Set, pair tolerance.Pair, id world.ID, i, m int) int {
	aCandidates := tolerance.ConstantCandidates(kb, pair.Subsets[i])

	for j := m; j >= 0; j-- {
		for _, condIdx := range pair.Subsets[j].Conditionals {
			for _, constIdx := range aCandidates {
				gc := tolerance.GroundConditional(kb, condIdx, constIdx)
				if ws.Satisfies(id, gc.Falsification()) {
					return j + 1
				}
			}
		}
	}
	return 0
}
