package logic

import (
	"hash/fnv"
	"sort"
	"strings"
)

// Formula is the closed sum type of spec.md §3: Atom, Literal,
// ElementaryConjunction, Negation, Conjunction, Disjunction, Implication,
// Tautology, Contradiction, ExistentialQuantification,
// UniversalQuantification. Formulas are immutable and hold no state
// beyond their own structure; the unexported method closes the interface
// to this package so callers cannot add non-conforming variants (a tagged
// sum, never inheritance-based dispatch, per spec.md §9).
type Formula interface {
	isFormula()
	// key is the canonical structural representation used for equality
	// and hashing; two formulas are structurally equal iff their keys
	// are equal.
	key() string
	String() string
}

// Key returns the canonical structural string of f, suitable as a map key.
func Key(f Formula) string { return f.key() }

// Equal reports structural equality between two formulas.
func Equal(a, b Formula) bool { return a.key() == b.key() }

// Hash returns a stable 64-bit hash of f's canonical structure. Key is
// authoritative for equality; Hash exists for fixed-size cache keys
// (e.g. an LRU) where collisions, while astronomically unlikely, are
// acceptable to the cache's correctness only if paired with a Key
// re-check — callers needing strict correctness should use Key.
func Hash(f Formula) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(f.key()))
	return h.Sum64()
}

// ---- concrete formula variants ----

type atomFormula struct{ A RelationalAtom }

func (atomFormula) isFormula()        {}
func (f atomFormula) key() string     { return f.A.key() }
func (f atomFormula) String() string  { return f.A.String() }

type literalFormula struct{ L Literal }

func (literalFormula) isFormula()       {}
func (f literalFormula) key() string    { return f.L.key() }
func (f literalFormula) String() string { return f.L.String() }

// elementaryConjunctionFormula holds its own copy of the literal slice —
// constructing one never aliases another's backing array (spec.md §9:
// the conditional-to-formula aliasing pitfall).
type elementaryConjunctionFormula struct{ Lits []Literal }

func (elementaryConjunctionFormula) isFormula() {}
func (f elementaryConjunctionFormula) key() string {
	parts := make([]string, len(f.Lits))
	for i, l := range f.Lits {
		parts[i] = l.key()
	}
	sort.Strings(parts)
	return "EC[" + strings.Join(parts, "&") + "]"
}
func (f elementaryConjunctionFormula) String() string {
	parts := make([]string, len(f.Lits))
	for i, l := range f.Lits {
		parts[i] = l.String()
	}
	return strings.Join(parts, " ∧ ")
}

type negationFormula struct{ F Formula }

func (negationFormula) isFormula()        {}
func (f negationFormula) key() string     { return "~(" + f.F.key() + ")" }
func (f negationFormula) String() string  { return "¬(" + f.F.String() + ")" }

type conjunctionFormula struct{ L, R Formula }

func (conjunctionFormula) isFormula()       {}
func (f conjunctionFormula) key() string    { return "(" + f.L.key() + "&" + f.R.key() + ")" }
func (f conjunctionFormula) String() string { return "(" + f.L.String() + " ∧ " + f.R.String() + ")" }

type disjunctionFormula struct{ L, R Formula }

func (disjunctionFormula) isFormula()       {}
func (f disjunctionFormula) key() string    { return "(" + f.L.key() + "|" + f.R.key() + ")" }
func (f disjunctionFormula) String() string { return "(" + f.L.String() + " ∨ " + f.R.String() + ")" }

type implicationFormula struct{ Ante, Cons Formula }

func (implicationFormula) isFormula() {}
func (f implicationFormula) key() string {
	return "(" + f.Ante.key() + "=>" + f.Cons.key() + ")"
}
func (f implicationFormula) String() string {
	return "(" + f.Ante.String() + " → " + f.Cons.String() + ")"
}

type tautologyFormula struct{}

func (tautologyFormula) isFormula()       {}
func (tautologyFormula) key() string      { return "TOP" }
func (tautologyFormula) String() string   { return "⊤" }

type contradictionFormula struct{}

func (contradictionFormula) isFormula()      {}
func (contradictionFormula) key() string     { return "BOT" }
func (contradictionFormula) String() string  { return "⊥" }

type existentialFormula struct {
	V    Variable
	Body Formula
}

func (existentialFormula) isFormula() {}
func (f existentialFormula) key() string {
	return "E" + f.V.key() + "." + f.Body.key()
}
func (f existentialFormula) String() string {
	return "∃" + f.V.Name + "." + f.Body.String()
}

type universalFormula struct {
	V    Variable
	Body Formula
}

func (universalFormula) isFormula() {}
func (f universalFormula) key() string {
	return "A" + f.V.key() + "." + f.Body.key()
}
func (f universalFormula) String() string {
	return "∀" + f.V.Name + "." + f.Body.String()
}

// ---- constructors ----

// Atom wraps a ground or open relational atom as a formula.
func Atom(a RelationalAtom) Formula { return atomFormula{A: a} }

// Lit wraps a literal as a formula.
func Lit(l Literal) Formula { return literalFormula{L: l} }

// ElementaryConjunction builds a conjunction of literals, copying the
// input slice (spec.md §9 aliasing invariant).
func ElementaryConjunction(lits []Literal) Formula {
	cp := make([]Literal, len(lits))
	copy(cp, lits)
	return elementaryConjunctionFormula{Lits: cp}
}

// Not negates f.
func Not(f Formula) Formula { return negationFormula{F: f} }

// And conjoins a and b. When both operands are elementary conjunctions
// the result flattens into a single elementary conjunction with a freshly
// allocated literal slice — the exact point spec.md §9 warns about: the
// merge must copy both inputs' literals rather than appending in place,
// or the result would alias (and later, when a falsification formula is
// derived from one of the operands, silently mutate) the antecedent's
// storage.
func And(a, b Formula) Formula {
	ae, aok := a.(elementaryConjunctionFormula)
	be, bok := b.(elementaryConjunctionFormula)
	if aok && bok {
		merged := make([]Literal, 0, len(ae.Lits)+len(be.Lits))
		merged = append(merged, ae.Lits...)
		merged = append(merged, be.Lits...)
		return ElementaryConjunction(merged)
	}
	return conjunctionFormula{L: a, R: b}
}

// Or disjoins a and b.
func Or(a, b Formula) Formula { return disjunctionFormula{L: a, R: b} }

// Implies builds a → b.
func Implies(ante, cons Formula) Formula { return implicationFormula{Ante: ante, Cons: cons} }

// Tautology is the always-true formula ⊤.
func Tautology() Formula { return tautologyFormula{} }

// Contradiction is the always-false formula ⊥.
func Contradiction() Formula { return contradictionFormula{} }

// Exists builds ∃v. body.
func Exists(v Variable, body Formula) Formula { return existentialFormula{V: v, Body: body} }

// ForAll builds ∀v. body.
func ForAll(v Variable, body Formula) Formula { return universalFormula{V: v, Body: body} }

// ---- queries over formulas ----

// Atoms returns every distinct atom appearing in f, in first-seen order.
func Atoms(f Formula) []RelationalAtom {
	seen := map[string]bool{}
	var out []RelationalAtom
	var visit func(Formula)
	visit = func(fm Formula) {
		switch t := fm.(type) {
		case atomFormula:
			if !seen[t.A.key()] {
				seen[t.A.key()] = true
				out = append(out, t.A)
			}
		case literalFormula:
			if !seen[t.L.Atom.key()] {
				seen[t.L.Atom.key()] = true
				out = append(out, t.L.Atom)
			}
		case elementaryConjunctionFormula:
			for _, l := range t.Lits {
				if !seen[l.Atom.key()] {
					seen[l.Atom.key()] = true
					out = append(out, l.Atom)
				}
			}
		case negationFormula:
			visit(t.F)
		case conjunctionFormula:
			visit(t.L)
			visit(t.R)
		case disjunctionFormula:
			visit(t.L)
			visit(t.R)
		case implicationFormula:
			visit(t.Ante)
			visit(t.Cons)
		case existentialFormula:
			visit(t.Body)
		case universalFormula:
			visit(t.Body)
		case tautologyFormula, contradictionFormula:
			// no atoms
		}
	}
	visit(f)
	return out
}

// Variables returns the set of free variables of f: quantifiers bind
// their own variable within their body.
func Variables(f Formula) []Variable {
	seen := map[string]bool{}
	var out []Variable
	add := func(v Variable) {
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v)
		}
	}
	var visit func(Formula, map[string]bool)
	visit = func(fm Formula, bound map[string]bool) {
		switch t := fm.(type) {
		case atomFormula:
			if v, ok := t.A.FreeVariable(); ok && !bound[v.Name] {
				add(v)
			}
		case literalFormula:
			if v, ok := t.L.Atom.FreeVariable(); ok && !bound[v.Name] {
				add(v)
			}
		case elementaryConjunctionFormula:
			for _, l := range t.Lits {
				if v, ok := l.Atom.FreeVariable(); ok && !bound[v.Name] {
					add(v)
				}
			}
		case negationFormula:
			visit(t.F, bound)
		case conjunctionFormula:
			visit(t.L, bound)
			visit(t.R, bound)
		case disjunctionFormula:
			visit(t.L, bound)
			visit(t.R, bound)
		case implicationFormula:
			visit(t.Ante, bound)
			visit(t.Cons, bound)
		case existentialFormula:
			nb := copyBound(bound)
			nb[t.V.Name] = true
			visit(t.Body, nb)
		case universalFormula:
			nb := copyBound(bound)
			nb[t.V.Name] = true
			visit(t.Body, nb)
		}
	}
	visit(f, map[string]bool{})
	return out
}

func copyBound(b map[string]bool) map[string]bool {
	nb := make(map[string]bool, len(b)+1)
	for k, v := range b {
		nb[k] = v
	}
	return nb
}

// IsGround reports whether f has no free variable.
func IsGround(f Formula) bool { return len(Variables(f)) == 0 }
