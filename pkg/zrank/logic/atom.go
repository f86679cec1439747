package logic

import "strings"

// RelationalAtom is a predicate applied to an argument list whose length
// equals the predicate's arity; each argument is a Constant or the single
// free Variable. An atom with no Variable argument is ground.
type RelationalAtom struct {
	Pred Predicate
	Args []Term
}

// NewAtom builds a RelationalAtom, copying the argument slice so later
// mutation of the caller's slice cannot retroactively change the atom.
func NewAtom(pred Predicate, args ...Term) RelationalAtom {
	cp := make([]Term, len(args))
	copy(cp, args)
	return RelationalAtom{Pred: pred, Args: cp}
}

// Ground reports whether the atom carries no free variable.
func (a RelationalAtom) Ground() bool {
	for _, t := range a.Args {
		if _, ok := t.(Variable); ok {
			return false
		}
	}
	return true
}

// FreeVariable returns the atom's variable argument, if any.
func (a RelationalAtom) FreeVariable() (Variable, bool) {
	for _, t := range a.Args {
		if v, ok := t.(Variable); ok {
			return v, true
		}
	}
	return Variable{}, false
}

// GroundWith substitutes c for v in every argument equal to v, returning a
// new atom. If v does not occur, the receiver is returned unchanged.
func (a RelationalAtom) GroundWith(v Variable, c Constant) RelationalAtom {
	if _, ok := a.FreeVariable(); !ok {
		return a
	}
	args := make([]Term, len(a.Args))
	changed := false
	for i, t := range a.Args {
		if vt, ok := t.(Variable); ok && vt.Name == v.Name {
			args[i] = c
			changed = true
		} else {
			args[i] = t
		}
	}
	if !changed {
		return a
	}
	return RelationalAtom{Pred: a.Pred, Args: args}
}

func (a RelationalAtom) key() string {
	var b strings.Builder
	b.WriteString(a.Pred.Name)
	b.WriteByte('(')
	for i, t := range a.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.key())
	}
	b.WriteByte(')')
	return b.String()
}

func (a RelationalAtom) String() string {
	var b strings.Builder
	b.WriteString(a.Pred.Name)
	if len(a.Args) > 0 {
		b.WriteByte('(')
		for i, t := range a.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(t.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// Key returns the atom's canonical structural string, suitable as a map
// key for callers outside this package (e.g. the world-set index).
func (a RelationalAtom) Key() string { return a.key() }

// Equal reports structural equality between two atoms.
func (a RelationalAtom) Equal(b RelationalAtom) bool { return a.key() == b.key() }

// Literal is an atom or its negation.
type Literal struct {
	Atom    RelationalAtom
	Negated bool
}

func (l Literal) key() string {
	if l.Negated {
		return "~" + l.Atom.key()
	}
	return l.Atom.key()
}

func (l Literal) String() string { return l.key() }

// Equal reports structural equality between two literals.
func (l Literal) Equal(o Literal) bool { return l.key() == o.key() }

// Negate returns the complementary literal.
func (l Literal) Negate() Literal { return Literal{Atom: l.Atom, Negated: !l.Negated} }

// GroundWith substitutes c for v throughout the literal.
func (l Literal) GroundWith(v Variable, c Constant) Literal {
	return Literal{Atom: l.Atom.GroundWith(v, c), Negated: l.Negated}
}
