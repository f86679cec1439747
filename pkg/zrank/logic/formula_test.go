package logic

import "testing"

func bp(name string, arity int) Predicate { return Predicate{Name: name, Arity: arity} }

func TestAndDoesNotAliasElementaryConjunction(t *testing.T) {
	p := bp("P", 1)
	x := Variable{Name: "X"}
	litA := Literal{Atom: NewAtom(p, x)}
	ante := ElementaryConjunction([]Literal{litA})

	q := bp("Q", 1)
	litB := Literal{Atom: NewAtom(q, x)}
	consAsEC := ElementaryConjunction([]Literal{litB})

	verification := And(ante, consAsEC)

	// Mutate the literal storage held inside `ante` itself;
	// `verification` must not share that storage, so its first literal
	// must still be litA.
	anteEC := ante.(elementaryConjunctionFormula)
	anteEC.Lits[0] = Literal{Atom: NewAtom(bp("R", 1), x), Negated: true}

	verEC := verification.(elementaryConjunctionFormula)
	if verEC.Lits[0].Equal(anteEC.Lits[0]) {
		t.Fatalf("verification formula aliases antecedent's literal storage")
	}
	if !verEC.Lits[0].Equal(litA) {
		t.Fatalf("verification formula's first literal changed: got %v want %v", verEC.Lits[0], litA)
	}
}

func TestStructuralEqualityAndHash(t *testing.T) {
	p := bp("P", 1)
	a := Constant{Name: "a"}
	f1 := And(Atom(NewAtom(p, a)), Not(Atom(NewAtom(p, a))))
	f2 := And(Atom(NewAtom(p, a)), Not(Atom(NewAtom(p, a))))

	if !Equal(f1, f2) {
		t.Fatalf("expected structurally identical formulas to be Equal")
	}
	if Hash(f1) != Hash(f2) {
		t.Fatalf("expected equal formulas to hash identically")
	}

	f3 := Or(Atom(NewAtom(p, a)), Not(Atom(NewAtom(p, a))))
	if Equal(f1, f3) {
		t.Fatalf("expected And and Or formulas to differ")
	}
}

func TestDoubleNegationIsNotSimplified(t *testing.T) {
	p := bp("P", 0)
	f := Not(Not(Atom(RelationalAtom{Pred: p})))
	if Equal(f, Atom(RelationalAtom{Pred: p})) {
		t.Fatalf("Formula equality must be structural, not semantic: ¬¬F must differ from F")
	}
}

func TestVariablesStopsAtQuantifierBoundary(t *testing.T) {
	p := bp("P", 1)
	x := Variable{Name: "X"}
	body := Atom(NewAtom(p, x))
	quantified := Exists(x, body)

	if vs := Variables(quantified); len(vs) != 0 {
		t.Fatalf("expected no free variables under ∃X, got %v", vs)
	}
	if vs := Variables(body); len(vs) != 1 || vs[0].Name != "X" {
		t.Fatalf("expected X free in the unquantified body, got %v", vs)
	}
}

func TestGroundSubstitutesUniqueFreeVariable(t *testing.T) {
	p := bp("P", 1)
	x := Variable{Name: "X"}
	a := Constant{Name: "a"}
	f := Atom(NewAtom(p, x))

	g := Ground(f, x, a)
	if !IsGround(g) {
		t.Fatalf("expected grounded formula to be ground")
	}
	want := Atom(NewAtom(p, a))
	if !Equal(g, want) {
		t.Fatalf("Ground(%v, X, a) = %v, want %v", f, g, want)
	}

	// Already-ground formulas are returned unchanged by value.
	g2 := Ground(want, x, Constant{Name: "b"})
	if !Equal(g2, want) {
		t.Fatalf("grounding an already-ground formula must be a no-op")
	}
}

func TestConditionalVerificationFalsification(t *testing.T) {
	b := bp("B", 1)
	fpred := bp("F", 1)
	x := Variable{Name: "X"}
	cond := NewConditional(Atom(NewAtom(fpred, x)), Atom(NewAtom(b, x)))

	ver := cond.Verification()
	fals := cond.Falsification()

	wantVer := And(Atom(NewAtom(b, x)), Atom(NewAtom(fpred, x)))
	wantFals := And(Atom(NewAtom(b, x)), Not(Atom(NewAtom(fpred, x))))

	if !Equal(ver, wantVer) {
		t.Fatalf("Verification = %v, want %v", ver, wantVer)
	}
	if !Equal(fals, wantFals) {
		t.Fatalf("Falsification = %v, want %v", fals, wantFals)
	}
}

func TestKnowledgeBaseValidateRejectsMultiArityAndOpenFacts(t *testing.T) {
	x := Variable{Name: "X"}
	tern := Predicate{Name: "T", Arity: 2}
	kb := KnowledgeBase{Predicates: []Predicate{tern}}
	if err := kb.Validate(); err == nil {
		t.Fatalf("expected arity-2 predicate to be rejected")
	}

	p := bp("P", 1)
	kb2 := KnowledgeBase{
		Predicates: []Predicate{p},
		Domain:     []Constant{{Name: "a"}},
		Facts:      []Formula{Atom(NewAtom(p, x))},
	}
	if err := kb2.Validate(); err == nil {
		t.Fatalf("expected open fact to be rejected")
	}
}

func TestKnowledgeBaseValidateRejectsMismatchedSharedVariable(t *testing.T) {
	p := bp("P", 1)
	q := bp("Q", 1)
	x := Variable{Name: "X"}
	y := Variable{Name: "Y"}
	kb := KnowledgeBase{
		Predicates: []Predicate{p, q},
		Domain:     []Constant{{Name: "a"}},
		Conditionals: []Conditional{
			NewConditional(Atom(NewAtom(q, y)), Atom(NewAtom(p, x))),
		},
	}
	if err := kb.Validate(); err == nil {
		t.Fatalf("expected mismatched antecedent/consequent variables to be rejected")
	}
}
