package logic

import "fmt"

// KnowledgeBase is an unordered set of conditionals plus an unordered set
// of closed facts, over a finite domain of constants and a fixed set of
// predicates. Domain order is preserved: it becomes the canonical order
// later used to derive the interpretable (ground atom) sequence, so CSV
// export and world printing are stable (spec.md §3).
type KnowledgeBase struct {
	Predicates   []Predicate
	Domain       []Constant
	Conditionals []Conditional
	Facts        []Formula
}

// Validate enforces the signature restrictions of spec.md §6: at most one
// sort (implicit — there is only ever one Constant type), every predicate
// arity in {0,1}, at most one free variable per conditional, and every
// fact closed. Only the first violation found is reported; the caller
// (typically pkg/zrank/kbtext) wraps it with internalerr.ErrInput.
func (kb KnowledgeBase) Validate() error {
	for _, p := range kb.Predicates {
		if p.Arity != 0 && p.Arity != 1 {
			return fmt.Errorf("predicate %s: arity %d not in {0,1}", p.Name, p.Arity)
		}
	}
	for i, c := range kb.Conditionals {
		va := Variables(c.Antecedent)
		vc := Variables(c.Consequent)
		if len(va) > 1 || len(vc) > 1 {
			return fmt.Errorf("conditional %d (%s): more than one free variable", i, c)
		}
		if len(va) == 1 && len(vc) == 1 && va[0].Name != vc[0].Name {
			return fmt.Errorf("conditional %d (%s): antecedent and consequent do not share their free variable", i, c)
		}
	}
	for i, f := range kb.Facts {
		if !IsGround(f) {
			return fmt.Errorf("fact %d (%s): not closed", i, f)
		}
	}
	return nil
}

// Interpretables returns the canonical, stably ordered sequence of ground
// atoms (the "interpretables") over which worlds are defined: every
// distinct ground atom reachable from a conditional, a fact, or a
// predicate applied to each domain constant, in first-seen order.
func (kb KnowledgeBase) Interpretables() []RelationalAtom {
	seen := map[string]bool{}
	var out []RelationalAtom
	add := func(a RelationalAtom) {
		if a.Ground() && !seen[a.key()] {
			seen[a.key()] = true
			out = append(out, a)
		}
	}
	for _, p := range kb.Predicates {
		if p.Arity == 0 {
			add(RelationalAtom{Pred: p})
			continue
		}
		for _, c := range kb.Domain {
			add(NewAtom(p, c))
		}
	}
	for _, c := range kb.Conditionals {
		for _, a := range Atoms(c.Antecedent) {
			if a.Ground() {
				add(a)
			}
		}
		for _, a := range Atoms(c.Consequent) {
			if a.Ground() {
				add(a)
			}
		}
	}
	for _, f := range kb.Facts {
		for _, a := range Atoms(f) {
			add(a)
		}
	}
	return out
}

// Propositional reports whether the knowledge base has an empty domain —
// the edge case of spec.md §4.6/§8 where a dummy constant stands in for
// the (empty) set of real constants. Only the domain is checked; the
// predicates' arities are not looked at.
func (kb KnowledgeBase) Propositional() bool { return len(kb.Domain) == 0 }
