package logic

// Valuation is anything that can answer "is ground atom a true?" — the
// only thing satisfaction needs from a possible world. Accepting this
// interface instead of a concrete world type keeps the satisfaction
// recursion (spec component C4) decoupled from the world-set
// representation (component C3, package pkg/zrank/world).
type Valuation interface {
	Value(a RelationalAtom) bool
}

// Satisfies decides w ⊨ F by structural recursion (spec.md §4.4). dom is
// the domain used to interpret ∃/∀ over F's single free variable; it may
// be empty, in which case ∃ is vacuously false and ∀ is vacuously true.
func Satisfies(f Formula, val Valuation, dom []Constant) bool {
	switch t := f.(type) {
	case atomFormula:
		return val.Value(t.A)
	case literalFormula:
		v := val.Value(t.L.Atom)
		if t.L.Negated {
			return !v
		}
		return v
	case elementaryConjunctionFormula:
		for _, l := range t.Lits {
			v := val.Value(l.Atom)
			if l.Negated {
				v = !v
			}
			if !v {
				return false
			}
		}
		return true
	case negationFormula:
		return !Satisfies(t.F, val, dom)
	case conjunctionFormula:
		return Satisfies(t.L, val, dom) && Satisfies(t.R, val, dom)
	case disjunctionFormula:
		return Satisfies(t.L, val, dom) || Satisfies(t.R, val, dom)
	case implicationFormula:
		return !Satisfies(t.Ante, val, dom) || Satisfies(t.Cons, val, dom)
	case tautologyFormula:
		return true
	case contradictionFormula:
		return false
	case existentialFormula:
		for _, c := range dom {
			if Satisfies(Ground(t.Body, t.V, c), val, dom) {
				return true
			}
		}
		return false
	case universalFormula:
		for _, c := range dom {
			if !Satisfies(Ground(t.Body, t.V, c), val, dom) {
				return false
			}
		}
		return true
	default:
		// Unreachable for any formula built through this package's
		// constructors; reaching it indicates a new variant was added
		// to the sum type without a matching case here.
		panic("logic: unsupported formula variant in Satisfies")
	}
}
