package logic

// Ground substitutes constant c for every free occurrence of variable v in
// f, returning a new formula. If f does not contain v, f is returned
// unchanged (per spec.md §4.2: "if F is already ground, return F
// unchanged" generalizes to "if v does not occur, return F unchanged").
func Ground(f Formula, v Variable, c Constant) Formula {
	switch t := f.(type) {
	case atomFormula:
		return Atom(t.A.GroundWith(v, c))
	case literalFormula:
		return Lit(t.L.GroundWith(v, c))
	case elementaryConjunctionFormula:
		lits := make([]Literal, len(t.Lits))
		for i, l := range t.Lits {
			lits[i] = l.GroundWith(v, c)
		}
		return ElementaryConjunction(lits)
	case negationFormula:
		return Not(Ground(t.F, v, c))
	case conjunctionFormula:
		return And(Ground(t.L, v, c), Ground(t.R, v, c))
	case disjunctionFormula:
		return Or(Ground(t.L, v, c), Ground(t.R, v, c))
	case implicationFormula:
		return Implies(Ground(t.Ante, v, c), Ground(t.Cons, v, c))
	case existentialFormula:
		if t.V.Name == v.Name {
			return f // v is rebound inside; outer substitution stops here
		}
		return Exists(t.V, Ground(t.Body, v, c))
	case universalFormula:
		if t.V.Name == v.Name {
			return f
		}
		return ForAll(t.V, Ground(t.Body, v, c))
	case tautologyFormula, contradictionFormula:
		return f
	default:
		return f
	}
}

// GroundAll returns one grounding of f per constant of dom, substituted
// for f's unique free variable. If f has no free variable, it returns a
// single-element slice containing f unchanged.
func GroundAll(f Formula, dom []Constant) []Formula {
	vs := Variables(f)
	if len(vs) == 0 {
		return []Formula{f}
	}
	v := vs[0]
	out := make([]Formula, 0, len(dom))
	for _, c := range dom {
		out = append(out, Ground(f, v, c))
	}
	return out
}

// Conditional is "if Antecedent then typically Consequent". Both halves
// range over the same atom alphabet and share at most one free variable.
type Conditional struct {
	Antecedent Formula
	Consequent Formula
}

// NewConditional builds a conditional (B|A).
func NewConditional(consequent, antecedent Formula) Conditional {
	return Conditional{Antecedent: antecedent, Consequent: consequent}
}

// FreeVariable returns the conditional's shared free variable, if any.
func (c Conditional) FreeVariable() (Variable, bool) {
	va := Variables(c.Antecedent)
	vc := Variables(c.Consequent)
	switch {
	case len(va) == 0 && len(vc) == 0:
		return Variable{}, false
	case len(va) > 0:
		return va[0], true
	default:
		return vc[0], true
	}
}

// IsGround reports whether the conditional is closed.
func (c Conditional) IsGround() bool {
	_, ok := c.FreeVariable()
	return !ok
}

// Ground grounds antecedent and consequent jointly with the same
// substitution v -> a.
func (c Conditional) Ground(v Variable, a Constant) Conditional {
	return Conditional{Antecedent: Ground(c.Antecedent, v, a), Consequent: Ground(c.Consequent, v, a)}
}

// GroundAll returns one grounding of c per constant in dom. If c is
// already ground, it returns a single-element slice.
func (c Conditional) GroundAll(dom []Constant) []Conditional {
	v, ok := c.FreeVariable()
	if !ok {
		return []Conditional{c}
	}
	out := make([]Conditional, 0, len(dom))
	for _, a := range dom {
		out = append(out, c.Ground(v, a))
	}
	return out
}

// Verification returns A ∧ B, the formula satisfied exactly by the worlds
// that verify the conditional.
func (c Conditional) Verification() Formula { return And(c.Antecedent, c.Consequent) }

// Falsification returns A ∧ ¬B, the formula satisfied exactly by the
// worlds that falsify the conditional.
func (c Conditional) Falsification() Formula { return And(c.Antecedent, Not(c.Consequent)) }

// Negated returns (¬B|A), the conditional whose consequent is negated —
// used when computing representatives (spec.md §4.5.1).
func (c Conditional) Negated() Conditional {
	return Conditional{Antecedent: c.Antecedent, Consequent: Not(c.Consequent)}
}

func (c Conditional) key() string {
	return "(" + c.Consequent.key() + "|" + c.Antecedent.key() + ")"
}

func (c Conditional) String() string {
	return "(" + c.Consequent.String() + "|" + c.Antecedent.String() + ")"
}

// Equal reports structural equality between two conditionals.
func (c Conditional) Equal(o Conditional) bool { return c.key() == o.key() }
