package tolerance

import (
	"testing"

	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

// birdsKB builds the textbook bird/penguin/flies knowledge base (spec.md
// §8's worked example) over two domain constants, so the conditionals
// can be split across two subsets, each with its own constant. It is
// built directly from logic values so the test does not depend on kbtext.
func birdsKB(t *testing.T) logic.KnowledgeBase {
	t.Helper()
	bird := logic.Predicate{Name: "Bird", Arity: 1}
	penguin := logic.Predicate{Name: "Penguin", Arity: 1}
	flies := logic.Predicate{Name: "Flies", Arity: 1}
	v := logic.Variable{Name: "X"}

	birdX := logic.Atom(logic.NewAtom(bird, v))
	penguinX := logic.Atom(logic.NewAtom(penguin, v))
	fliesX := logic.Atom(logic.NewAtom(flies, v))

	c1 := logic.NewConditional(fliesX, birdX)                 // birds typically fly
	c2 := logic.NewConditional(logic.Not(fliesX), penguinX)    // penguins typically don't fly
	c3 := logic.NewConditional(birdX, penguinX)                // penguins are typically birds

	return logic.KnowledgeBase{
		Predicates:   []logic.Predicate{bird, penguin, flies},
		Domain:       []logic.Constant{{Name: "tweety"}, {Name: "pluto"}},
		Conditionals: []logic.Conditional{c1, c2, c3},
	}
}

func buildWorlds(t *testing.T, kb logic.KnowledgeBase) *world.Set {
	t.Helper()
	ws, err := world.Build(kb, world.DefaultLimits)
	if err != nil {
		t.Fatalf("world.Build: %v", err)
	}
	return ws
}

func TestValidateRejectsNonTolerantPair(t *testing.T) {
	kb := birdsKB(t)
	ws := buildWorlds(t, kb)

	// All three conditionals crammed into one subset: verifying c2 needs
	// a penguin that does not fly, which then falsifies c1 if it is a
	// bird and c3 if it is not, so this single-subset pair is not a
	// tolerance pair.
	pair := Pair{Subsets: []Subset{{Conditionals: []int{0, 1, 2}, Constants: []int{0}}}}
	if ok, _ := Validate(kb, ws, pair); ok {
		t.Fatalf("expected the single crammed subset to fail tolerance validation")
	}
}

func TestSearchBruteForceFindsTheCanonicalPartition(t *testing.T) {
	kb := birdsKB(t)
	ws := buildWorlds(t, kb)

	results, err := SearchBruteForce(kb, ws, nil)
	if err != nil {
		t.Fatalf("SearchBruteForce: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one valid tolerance pair")
	}
	for _, r := range results {
		if !r.Pair.Complete(kb) {
			t.Errorf("result pair %v is not complete", r.Pair)
		}
		if ok, _ := Validate(kb, ws, r.Pair); !ok {
			t.Errorf("result pair %v did not re-validate", r.Pair)
		}
	}
	for i := 1; i < len(results); i++ {
		if Less(results[i].Pair, results[i-1].Pair) {
			t.Errorf("results not sorted ascending at index %d", i)
		}
	}
}

func TestSearchBacktrackAllAgreesWithBruteForce(t *testing.T) {
	kb := birdsKB(t)
	ws := buildWorlds(t, kb)

	brute, err := SearchBruteForce(kb, ws, nil)
	if err != nil {
		t.Fatalf("SearchBruteForce: %v", err)
	}
	back, err := Search(kb, ws, StrategyBacktrackAll, nil)
	if err != nil {
		t.Fatalf("Search(backtrack all): %v", err)
	}

	bruteKeys := map[string]bool{}
	for _, r := range brute {
		bruteKeys[r.Pair.CanonicalKey()] = true
	}
	backKeys := map[string]bool{}
	for _, r := range back {
		backKeys[r.Pair.CanonicalKey()] = true
	}
	if len(bruteKeys) != len(backKeys) {
		t.Fatalf("brute force found %d distinct pairs, backtracking found %d", len(bruteKeys), len(backKeys))
	}
	for k := range bruteKeys {
		if !backKeys[k] {
			t.Errorf("backtracking missed pair %s found by brute force", k)
		}
	}
}

func TestSearchBacktrackMinimalIsAPrefixUnderLess(t *testing.T) {
	kb := birdsKB(t)
	ws := buildWorlds(t, kb)

	all, err := Search(kb, ws, StrategyBacktrackAll, nil)
	if err != nil {
		t.Fatalf("Search(backtrack all): %v", err)
	}
	minimal, err := Search(kb, ws, StrategyBacktrackMinimal, nil)
	if err != nil {
		t.Fatalf("Search(backtrack minimal): %v", err)
	}
	if len(all) == 0 || len(minimal) == 0 {
		t.Fatalf("expected both strategies to find at least one pair")
	}
	for _, m := range minimal {
		if Less(all[0].Pair, m.Pair) {
			t.Errorf("minimal-strategy pair %v is not minimal: %v is smaller", m.Pair, all[0].Pair)
		}
	}
}

// TestComparePartialIgnoresTrailingSubset checks compareToPartial
// (spec.md §4.7.4): it agrees with Less on the closed subsets but, unlike
// Less, does not look at either pair's trailing subset.
func TestComparePartialIgnoresTrailingSubset(t *testing.T) {
	a := Pair{Subsets: []Subset{
		{Conditionals: []int{0, 1}, Constants: []int{0}},
		{Conditionals: []int{2}},
	}}
	b := Pair{Subsets: []Subset{
		{Conditionals: []int{0}, Constants: []int{0}},
		{Conditionals: []int{1, 2, 3}},
	}}
	// Under Less, a's first subset (|R|=2) beats b's first subset
	// (|R|=1), so a < b regardless of the trailing subsets.
	if !Less(a, b) {
		t.Fatalf("expected Less(a, b): a's closed subset has the larger |R|")
	}
	if !ComparePartial(a, b) {
		t.Errorf("expected ComparePartial(a, b): same closed-subset comparison as Less")
	}

	// Grow b's trailing subset so it would flip Less if Less looked at
	// it, then confirm ComparePartial still only sees the closed subsets.
	bGrown := b.Clone()
	bGrown.Subsets[1].Conditionals = append(bGrown.Subsets[1].Conditionals, 4, 5, 6, 7)
	if !Less(a, bGrown) {
		t.Fatalf("expected Less(a, bGrown) unchanged: the decision is made at the first subset")
	}
	if !ComparePartial(a, bGrown) {
		t.Errorf("expected ComparePartial(a, bGrown) unchanged: it drops the trailing subset before comparing")
	}

	// Equal pairs (including both empty) never compare strictly less.
	if ComparePartial(a, a) {
		t.Errorf("ComparePartial(a, a) must be false: a pair never precedes itself")
	}
}

// TestSearchBacktrackMinimalPrunesOnPartialTieBreak exercises the
// search_backtrack.go pruning branch added for the |Rᵢ|/|Dᵢ| tie-break:
// StrategyBacktrackMinimal must still return only pairs that are minimal
// under Less even though a same-subset-count branch can now be pruned
// before it completes, on the strength of ComparePartial alone.
func TestSearchBacktrackMinimalPrunesOnPartialTieBreak(t *testing.T) {
	kb := birdsKB(t)
	ws := buildWorlds(t, kb)

	minimal, err := Search(kb, ws, StrategyBacktrackMinimal, nil)
	if err != nil {
		t.Fatalf("Search(backtrack minimal): %v", err)
	}
	if len(minimal) == 0 {
		t.Fatalf("expected at least one minimal pair")
	}
	for i, m := range minimal {
		for j, n := range minimal {
			if i == j {
				continue
			}
			if Less(m.Pair, n.Pair) {
				t.Errorf("pair %v is strictly less than returned-minimal pair %v", m.Pair, n.Pair)
			}
		}
	}
}

func TestCanonicalKeyIgnoresSubsetMemberOrder(t *testing.T) {
	a := Pair{Subsets: []Subset{{Conditionals: []int{2, 0, 1}, Constants: []int{0}}}}
	b := Pair{Subsets: []Subset{{Conditionals: []int{0, 1, 2}, Constants: []int{0}}}}
	if a.CanonicalKey() != b.CanonicalKey() {
		t.Errorf("expected reordered subset members to share a canonical key: %q vs %q", a.CanonicalKey(), b.CanonicalKey())
	}
}
