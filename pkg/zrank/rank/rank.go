// Package rank implements the ranking function and its derived
// quantities (spec component C5): rank of a world, rank of a formula or
// conditional, representatives, and formula/conditional/KB acceptance.
package rank

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/zrank/pkg/zrank/explain"
	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

// Infinity is the sentinel rank for an impossible world or formula.
const Infinity uint64 = math.MaxUint64

// satisfactionCacheSize bounds the per-ranking memoization of w ⊨ F
// lookups. A ranking's representative/acceptance computations (C5)
// re-evaluate the same (world, formula) pair many times — once per
// weak-representative candidate, once per Acc-1/Acc-2 branch, once per
// KB-acceptance pass over every conditional — so caching pays for itself
// well before the bound is reached; the bound itself exists so a pass
// over a very large world set can't grow the cache without limit.
const satisfactionCacheSize = 8192

// satCacheEntry pairs a cached verdict with the formula's canonical key,
// so a collision in the fixed-size hash used as the cache's lookup key
// (logic.Hash is documented as not collision-free, see
// pkg/zrank/logic/formula.go) is caught on read rather than silently
// returning another formula's answer.
type satCacheEntry struct {
	key string
	val bool
}

// Ranking maps every world of a Set to a rank in ℕ ∪ {∞}. The domain of
// Values equals Set.Worlds exactly (spec.md §3 invariant) — it is built
// once, by pkg/zrank/systemz, and treated as read-only afterward.
type Ranking struct {
	Set    *world.Set
	Values map[world.ID]uint64

	satCache *lru.Cache[uint64, satCacheEntry]
}

// Rank returns κ(w) for a world identified within this ranking's set.
func (r *Ranking) Rank(id world.ID) uint64 { return r.Values[id] }

// satisfies memoizes r.Set.Satisfies(id, f), keyed by a mix of the
// world id and the formula's structural hash.
func (r *Ranking) satisfies(id world.ID, f logic.Formula) bool {
	if r.satCache == nil {
		r.satCache, _ = lru.New[uint64, satCacheEntry](satisfactionCacheSize)
	}
	key := logic.Key(f)
	cacheKey := logic.Hash(f)*31 + uint64(id)
	if e, ok := r.satCache.Get(cacheKey); ok && e.key == key {
		return e.val
	}
	val := r.Set.Satisfies(id, f)
	r.satCache.Add(cacheKey, satCacheEntry{key: key, val: val})
	return val
}

// RankClosed computes κ(F) = min{κ(w) : w ⊨ F} for a ground formula F;
// Infinity if no world satisfies F.
func RankClosed(r *Ranking, f logic.Formula, tree *explain.Tree) uint64 {
	tree.Enter(fmt.Sprintf("κ(%s)", f))
	defer tree.Leave()

	best := Infinity
	for i := 0; i < r.Set.Len(); i++ {
		id := world.ID(i)
		k := r.Values[id]
		if k == Infinity {
			continue
		}
		if r.satisfies(id, f) && k < best {
			best = k
		}
	}
	tree.Note(fmt.Sprintf("min over satisfying worlds = %s", rankString(best)))
	return best
}

// RankFormula computes κ(F) for F ground or open (single free variable):
// open formulas take the minimum over every grounding by dom (spec.md
// §4.5). A ground formula with an empty dom is handled the same way,
// since logic.GroundAll returns {F} unchanged when F has no free
// variable.
func RankFormula(r *Ranking, f logic.Formula, dom []logic.Constant, tree *explain.Tree) uint64 {
	groundings := logic.GroundAll(f, dom)
	if len(groundings) == 1 && logic.Equal(groundings[0], f) {
		return RankClosed(r, f, tree)
	}
	tree.Enter(fmt.Sprintf("κ_open(%s)", f))
	defer tree.Leave()
	best := Infinity
	for _, g := range groundings {
		if k := RankClosed(r, g, tree); k < best {
			best = k
		}
	}
	tree.Note(fmt.Sprintf("min over groundings = %s", rankString(best)))
	return best
}

// RankGroundConditional computes κ(B|A) for a ground conditional: ∞ if
// κ(A∧B) = ∞, else κ(A∧B) − κ(A).
func RankGroundConditional(r *Ranking, c logic.Conditional, tree *explain.Tree) uint64 {
	tree.Enter(fmt.Sprintf("κ(%s)", c))
	defer tree.Leave()

	kVer := RankClosed(r, c.Verification(), tree)
	if kVer == Infinity {
		tree.Note("verification unsatisfiable under κ: rank is ∞")
		return Infinity
	}
	kAnte := RankClosed(r, c.Antecedent, tree)
	result := kVer - kAnte
	tree.Note(fmt.Sprintf("κ(A∧B) − κ(A) = %d − %d = %d", kVer, kAnte, result))
	return result
}

// RankConditional computes κ(B|A) for a ground or open conditional: the
// minimum over all groundings (spec.md §4.5), where grounding a
// conditional substitutes the shared free variable jointly into
// antecedent and consequent (spec.md §4.2).
func RankConditional(r *Ranking, c logic.Conditional, dom []logic.Constant, tree *explain.Tree) uint64 {
	groundings := c.GroundAll(dom)
	if len(groundings) == 1 && groundings[0].Equal(c) {
		return RankGroundConditional(r, c, tree)
	}
	tree.Enter(fmt.Sprintf("κ_open(%s)", c))
	defer tree.Leave()
	best := Infinity
	for _, gc := range groundings {
		if k := RankGroundConditional(r, gc, tree); k < best {
			best = k
		}
	}
	return best
}

// AcceptsFormula decides κ ⊨ F for a ground formula F: every rank-0
// world must satisfy F.
func AcceptsFormula(r *Ranking, f logic.Formula, tree *explain.Tree) bool {
	tree.Enter(fmt.Sprintf("κ ⊨ %s ?", f))
	defer tree.Leave()
	for i := 0; i < r.Set.Len(); i++ {
		id := world.ID(i)
		if r.Values[id] == 0 && !r.satisfies(id, f) {
			tree.Note(fmt.Sprintf("rank-0 world %d falsifies F: rejected", i))
			return false
		}
	}
	tree.Note("every rank-0 world satisfies F: accepted")
	return true
}

// AcceptsGroundConditional decides acceptance of a ground conditional:
// κ(A∧B) < κ(A∧¬B).
func AcceptsGroundConditional(r *Ranking, c logic.Conditional, tree *explain.Tree) bool {
	tree.Enter(fmt.Sprintf("accept ground %s ?", c))
	defer tree.Leave()
	verRank := RankClosed(r, c.Verification(), tree)
	falsRank := RankClosed(r, c.Falsification(), tree)
	ok := verRank < falsRank
	tree.Note(fmt.Sprintf("κ(A∧B)=%s < κ(A∧¬B)=%s: %v", rankString(verRank), rankString(falsRank), ok))
	return ok
}

func rankString(k uint64) string {
	if k == Infinity {
		return "∞"
	}
	return fmt.Sprintf("%d", k)
}
