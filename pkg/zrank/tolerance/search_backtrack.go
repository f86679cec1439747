package tolerance

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/zrank/pkg/zrank/internalerr"
	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

// visitedSetSize bounds the backtracking search's visited-set (spec.md
// §9 "Search state"). Without deduplication the tree revisits the same
// partial pair through every order its subsets were grown in, which is
// the explosive case §9 warns about; a plain unbounded map fixes that at
// the cost of unbounded memory for a long-running search, so the
// dedup structure is itself a bounded LRU — a node evicted from it may
// be re-explored, which only costs time, never correctness.
const visitedSetSize = 1 << 16

// Strategy selects which tolerance-pair search algorithm to run.
type Strategy int

const (
	// StrategyBruteForce enumerates every partition (SearchBruteForce).
	StrategyBruteForce Strategy = iota
	// StrategyBacktrackAll returns every valid tolerance pair, found by
	// incrementally growing a trailing subset and pruning branches whose
	// trailing subset already fails tolerance.
	StrategyBacktrackAll
	// StrategyBacktrackMinimal returns only the pairs that are minimal
	// under Less, pruning any branch that cannot beat the current best.
	StrategyBacktrackMinimal
)

// Progress reports backtracking search progress to a caller-supplied
// sink; returning false from the sink cancels the search.
type Progress struct {
	VisitedNodes int
	Found        int
}

// ProgressSink is invoked periodically during a backtracking search.
// Returning false aborts the search cooperatively.
type ProgressSink func(Progress) bool

// Search runs the requested strategy and returns the valid tolerance
// pairs, sorted ascending by Less.
func Search(kb logic.KnowledgeBase, ws *world.Set, strategy Strategy, sink ProgressSink) ([]Result, error) {
	switch strategy {
	case StrategyBruteForce:
		return SearchBruteForce(kb, ws, nil)
	case StrategyBacktrackAll:
		return searchBacktrack(kb, ws, sink, false)
	case StrategyBacktrackMinimal:
		return searchBacktrack(kb, ws, sink, true)
	default:
		return nil, internalerr.ErrInput
	}
}

type backtrackState struct {
	kb          logic.KnowledgeBase
	ws          *world.Set
	sink        ProgressSink
	minimalOnly bool
	visited     *lru.Cache[string, struct{}]
	visitedN    int
	results     []Result
	best        *Pair
}

func searchBacktrack(kb logic.KnowledgeBase, ws *world.Set, sink ProgressSink, minimalOnly bool) ([]Result, error) {
	if len(kb.Conditionals) == 0 {
		return nil, nil
	}
	visited, _ := lru.New[string, struct{}](visitedSetSize)
	st := &backtrackState{
		kb:          kb,
		ws:          ws,
		sink:        sink,
		minimalOnly: minimalOnly,
		visited:     visited,
	}

	cancelled, err := st.step(Pair{})
	if err != nil {
		return nil, err
	}
	if cancelled {
		return nil, internalerr.ErrCancelled
	}

	sort.SliceStable(st.results, func(i, j int) bool { return Less(st.results[i].Pair, st.results[j].Pair) })
	return st.results, nil
}

// step explores one node of the backtracking tree rooted at pair,
// returning true if the search was cancelled by the progress sink.
func (st *backtrackState) step(pair Pair) (bool, error) {
	st.visitedN++
	if st.sink != nil && !st.sink(Progress{VisitedNodes: st.visitedN, Found: len(st.results)}) {
		return true, nil
	}

	key := pair.CanonicalKey()
	if _, seen := st.visited.Get(key); seen {
		return false, nil
	}
	st.visited.Add(key, struct{}{})

	if st.minimalOnly && st.best != nil {
		switch {
		case len(pair.Subsets) > len(st.best.Subsets):
			return false, nil
		case len(pair.Subsets) == len(st.best.Subsets) && ComparePartial(*st.best, pair):
			// Same subset count, but pair's already-closed subsets are
			// strictly worse than best's under the |Rᵢ|/|Dᵢ| tie-break
			// (spec.md §4.7.3/§4.7.4): growing pair's trailing subset
			// further cannot recover, since ComparePartial ignores it.
			return false, nil
		}
	}

	placedC, placedD := placedIndices(pair)
	remC := remaining(len(st.kb.Conditionals), placedC)
	propositional := st.kb.Propositional()
	var remD []int
	if !propositional {
		remD = remaining(len(st.kb.Domain), placedD)
	}

	if len(remC) == 0 && (propositional || len(remD) == 0) {
		return st.considerComplete(pair)
	}

	trailingEmpty := len(pair.Subsets) == 0 || pair.Subsets[len(pair.Subsets)-1].empty()
	if trailingEmpty {
		return st.branchNewSubset(pair, remC, remD, propositional)
	}
	return st.branchGrowSubset(pair, remC, remD, propositional)
}

func (st *backtrackState) considerComplete(pair Pair) (bool, error) {
	trimmed := pair.TrimTrailingEmpty()
	ok, witnesses := Validate(st.kb, st.ws, trimmed)
	if !ok {
		return false, nil
	}
	if st.minimalOnly {
		st.recordMinimal(trimmed, witnesses)
		return false, nil
	}
	st.results = append(st.results, Result{Pair: trimmed, Witnesses: witnesses})
	return false, nil
}

func (st *backtrackState) recordMinimal(pair Pair, witnesses []Witness) {
	if st.best == nil {
		p := pair
		st.best = &p
		st.results = []Result{{Pair: pair, Witnesses: witnesses}}
		return
	}
	switch {
	case Less(pair, *st.best):
		p := pair
		st.best = &p
		st.results = []Result{{Pair: pair, Witnesses: witnesses}}
	case Less(*st.best, pair):
		// strictly worse than the current best: discard
	default:
		st.results = append(st.results, Result{Pair: pair, Witnesses: witnesses})
	}
}

func (st *backtrackState) branchNewSubset(pair Pair, remC, remD []int, propositional bool) (bool, error) {
	base := pair.Subsets
	if len(base) > 0 && base[len(base)-1].empty() {
		base = base[:len(base)-1]
	}
	if propositional {
		for _, ci := range remC {
			next := Pair{Subsets: append(append([]Subset(nil), base...), Subset{Conditionals: []int{ci}})}
			cancelled, err := st.step(next)
			if cancelled || err != nil {
				return cancelled, err
			}
		}
		return false, nil
	}
	for _, ci := range remC {
		for _, di := range remD {
			next := Pair{Subsets: append(append([]Subset(nil), base...), Subset{Conditionals: []int{ci}, Constants: []int{di}})}
			if !ValidateIncremental(st.kb, st.ws, next) {
				continue
			}
			cancelled, err := st.step(next)
			if cancelled || err != nil {
				return cancelled, err
			}
		}
	}
	return false, nil
}

func (st *backtrackState) branchGrowSubset(pair Pair, remC, remD []int, propositional bool) (bool, error) {
	last := len(pair.Subsets) - 1

	for _, ci := range remC {
		next := pair.Clone()
		next.Subsets[last].Conditionals = append(next.Subsets[last].Conditionals, ci)
		if !ValidateIncremental(st.kb, st.ws, next) {
			continue
		}
		cancelled, err := st.step(next)
		if cancelled || err != nil {
			return cancelled, err
		}
	}

	if !propositional {
		for _, di := range remD {
			next := pair.Clone()
			next.Subsets[last].Constants = append(next.Subsets[last].Constants, di)
			if !ValidateIncremental(st.kb, st.ws, next) {
				continue
			}
			cancelled, err := st.step(next)
			if cancelled || err != nil {
				return cancelled, err
			}
		}
	}

	closed := pair.Clone()
	closed.Subsets = append(closed.Subsets, Subset{})
	cancelled, err := st.step(closed)
	if cancelled || err != nil {
		return cancelled, err
	}
	return false, nil
}

func placedIndices(pair Pair) (cond map[int]bool, dom map[int]bool) {
	cond, dom = map[int]bool{}, map[int]bool{}
	for _, s := range pair.Subsets {
		for _, ci := range s.Conditionals {
			cond[ci] = true
		}
		for _, di := range s.Constants {
			dom[di] = true
		}
	}
	return
}

func remaining(n int, placed map[int]bool) []int {
	var out []int
	for i := 0; i < n; i++ {
		if !placed[i] {
			out = append(out, i)
		}
	}
	return out
}
