package tolerance

import (
	"sort"

	"github.com/cognicore/zrank/pkg/zrank/internalerr"
	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

// Result is a validated tolerance pair together with the witnesses that
// justify it, sorted ascending by Less.
type Result struct {
	Pair      Pair
	Witnesses []Witness
}

// SearchBruteForce enumerates every ordered partition of the knowledge
// base's conditionals into k non-empty blocks, paired with every ordered
// partition of the domain into k non-empty blocks (k ranging from 1 up
// to the smaller of the two sizes; the domain partition is skipped for a
// propositional knowledge base, where every subset's Constants is empty),
// validates each candidate pair, and returns the valid ones sorted. This
// is deliberately exhaustive and its cost grows with the Stirling numbers
// of both partitioned sets — it exists as a small-input reference
// against which the backtracking search can be checked for agreement.
func SearchBruteForce(kb logic.KnowledgeBase, ws *world.Set, cancel <-chan struct{}) ([]Result, error) {
	nR := len(kb.Conditionals)
	if nR == 0 {
		return nil, nil
	}
	nD := len(kb.Domain)
	propositional := kb.Propositional()

	maxK := nR
	if !propositional && nD < maxK {
		maxK = nD
	}

	var results []Result
	for k := 1; k <= maxK; k++ {
		select {
		case <-cancel:
			return results, internalerr.ErrCancelled
		default:
		}

		condAssignments := surjections(nR, k)
		var domAssignments [][]int
		if propositional {
			domAssignments = [][]int{nil}
		} else {
			domAssignments = surjections(nD, k)
		}

		for _, ca := range condAssignments {
			for _, da := range domAssignments {
				select {
				case <-cancel:
					return results, internalerr.ErrCancelled
				default:
				}
				pair := buildPairFromAssignments(k, ca, da)
				ok, witnesses := Validate(kb, ws, pair)
				if ok {
					results = append(results, Result{Pair: pair, Witnesses: witnesses})
				}
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return Less(results[i].Pair, results[j].Pair) })
	return results, nil
}

func buildPairFromAssignments(k int, condAssign, domAssign []int) Pair {
	subs := make([]Subset, k)
	for ci, block := range condAssign {
		subs[block].Conditionals = append(subs[block].Conditionals, ci)
	}
	for di, block := range domAssign {
		subs[block].Constants = append(subs[block].Constants, di)
	}
	return Pair{Subsets: subs}
}

// surjections returns every assignment of {0,...,n-1} onto {0,...,k-1}
// that uses every block at least once, as a slice of length n holding
// each element's block index.
func surjections(n, k int) [][]int {
	if k > n {
		return nil
	}
	var out [][]int
	assign := make([]int, n)
	var rec func(pos int)
	rec = func(pos int) {
		if pos == n {
			used := make([]bool, k)
			count := 0
			for _, b := range assign {
				if !used[b] {
					used[b] = true
					count++
				}
			}
			if count == k {
				out = append(out, append([]int(nil), assign...))
			}
			return
		}
		for b := 0; b < k; b++ {
			assign[pos] = b
			rec(pos + 1)
		}
	}
	rec(0)
	return out
}

