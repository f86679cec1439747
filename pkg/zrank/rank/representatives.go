package rank

import (
	"fmt"

	"github.com/cognicore/zrank/pkg/zrank/explain"
	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

// WeakRepresentatives computes WRep(c) (spec.md §4.5.1): constants a such
// that κ_open(A∧B) = κ(ground(A∧B,a)) and ground(c,a) is accepted as a
// ground conditional. c must carry exactly one free variable.
func WeakRepresentatives(r *Ranking, c logic.Conditional, dom []logic.Constant, tree *explain.Tree) []logic.Constant {
	v, ok := c.FreeVariable()
	if !ok {
		return nil
	}
	openVer := RankFormula(r, c.Verification(), dom, tree)

	var out []logic.Constant
	for _, a := range dom {
		gc := c.Ground(v, a)
		if RankClosed(r, gc.Verification(), tree) == openVer && AcceptsGroundConditional(r, gc, tree) {
			out = append(out, a)
		}
	}
	return out
}

// Representatives computes Rep(c) (spec.md §4.5.1): WRep(c) itself when
// it has at most one element, otherwise the subset of WRep(c) whose
// grounded falsification rank is minimal.
func Representatives(r *Ranking, c logic.Conditional, dom []logic.Constant, tree *explain.Tree) []logic.Constant {
	tree.Enter(fmt.Sprintf("Rep(%s)", c))
	defer tree.Leave()

	wrep := WeakRepresentatives(r, c, dom, tree)
	if len(wrep) <= 1 {
		tree.Note(fmt.Sprintf("|WRep|=%d: Rep = WRep", len(wrep)))
		return wrep
	}

	v, _ := c.FreeVariable()
	falsRanks := make([]uint64, len(wrep))
	best := Infinity
	for i, a := range wrep {
		gc := c.Ground(v, a)
		falsRanks[i] = RankClosed(r, gc.Falsification(), tree)
		if falsRanks[i] < best {
			best = falsRanks[i]
		}
	}
	var out []logic.Constant
	for i, a := range wrep {
		if falsRanks[i] == best {
			out = append(out, a)
		}
	}
	tree.Note(fmt.Sprintf("|WRep|=%d, minimal falsification rank=%s: |Rep|=%d", len(wrep), rankString(best), len(out)))
	return out
}

// AcceptsOpenConditional decides first-order acceptance of an open
// conditional (spec.md §4.5, Acc-1/Acc-2). c must carry exactly one free
// variable.
func AcceptsOpenConditional(r *Ranking, c logic.Conditional, dom []logic.Constant, tree *explain.Tree) bool {
	tree.Enter(fmt.Sprintf("accept open %s ?", c))
	defer tree.Leave()

	v, ok := c.FreeVariable()
	if !ok {
		tree.Note("conditional has no free variable: not an open conditional")
		return false
	}

	rep := Representatives(r, c, dom, tree)
	if len(rep) == 0 {
		tree.Note("Rep(c) is empty: rejected")
		return false
	}

	cBar := c.Negated()
	openVer := RankFormula(r, c.Verification(), dom, tree)
	openFals := RankFormula(r, c.Falsification(), dom, tree)

	if openVer < openFals {
		tree.Note(fmt.Sprintf("Acc-1: κ_open(A∧B)=%s < κ_open(A∧¬B)=%s: accepted", rankString(openVer), rankString(openFals)))
		return true
	}
	if openVer != openFals {
		tree.Note(fmt.Sprintf("κ_open(A∧B)=%s > κ_open(A∧¬B)=%s: rejected", rankString(openVer), rankString(openFals)))
		return false
	}

	repBar := Representatives(r, cBar, dom, tree)
	for _, c1 := range rep {
		lhs := RankClosed(r, cBar.Ground(v, c1).Verification(), tree)
		for _, c2 := range repBar {
			rhs := RankClosed(r, c.Ground(v, c2).Verification(), tree)
			if !(lhs < rhs) {
				tree.Note(fmt.Sprintf("Acc-2 fails for c1=%s,c2=%s: %s not < %s", c1, c2, rankString(lhs), rankString(rhs)))
				return false
			}
		}
	}
	tree.Note("Acc-2: every Rep(c)/Rep(c̄) pair ordered correctly: accepted")
	return true
}

// AcceptsKB decides spec.md §4.5 KB acceptance: every world that
// falsifies some fact has rank ∞, and every conditional (ground or open)
// is accepted.
func AcceptsKB(r *Ranking, kb logic.KnowledgeBase, tree *explain.Tree) bool {
	tree.Enter("KB acceptance")
	defer tree.Leave()

	for i := 0; i < r.Set.Len(); i++ {
		id := world.ID(i)
		for _, f := range kb.Facts {
			if !r.satisfies(id, f) && r.Values[id] != Infinity {
				tree.Note(fmt.Sprintf("world %d falsifies a fact but has finite rank: rejected", i))
				return false
			}
		}
	}

	for _, c := range kb.Conditionals {
		if _, ok := c.FreeVariable(); ok {
			if !AcceptsOpenConditional(r, c, kb.Domain, tree) {
				return false
			}
			continue
		}
		if !AcceptsGroundConditional(r, c, tree) {
			return false
		}
	}
	return true
}
