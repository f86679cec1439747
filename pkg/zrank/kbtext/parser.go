package kbtext

import (
	"fmt"
	"strings"

	"github.com/cognicore/zrank/pkg/zrank/internalerr"
	"github.com/cognicore/zrank/pkg/zrank/logic"
)

// ParseKB parses the textual knowledge-base grammar of spec.md §6:
// a signature block declaring the domain and predicates, then
// Conditionals{} and Facts{} blocks. Violations of the signature
// restrictions (arity, shared-variable, closed-fact) are wrapped in
// internalerr.ErrInput, same as a malformed line.
func ParseKB(text string) (logic.KnowledgeBase, error) {
	var kb logic.KnowledgeBase
	constants := map[string]bool{}

	const (
		sectionTop = iota
		sectionConditionals
		sectionFacts
	)
	section := sectionTop

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}
		switch line {
		case "signature", "conditionals":
			continue
		case "Conditionals{":
			section = sectionConditionals
			continue
		case "Facts{":
			section = sectionFacts
			continue
		case "}":
			section = sectionTop
			continue
		}

		switch section {
		case sectionTop:
			if err := parseSignatureLine(line, &kb, constants); err != nil {
				return logic.KnowledgeBase{}, inputErr(lineNo, line, err)
			}
		case sectionConditionals:
			c, err := parseConditionalLine(line, constants)
			if err != nil {
				return logic.KnowledgeBase{}, inputErr(lineNo, line, err)
			}
			kb.Conditionals = append(kb.Conditionals, c)
		case sectionFacts:
			f, err := parseFormulaText(line, constants)
			if err != nil {
				return logic.KnowledgeBase{}, inputErr(lineNo, line, err)
			}
			kb.Facts = append(kb.Facts, f)
		}
	}

	if err := kb.Validate(); err != nil {
		return logic.KnowledgeBase{}, fmt.Errorf("%w: %v", internalerr.ErrInput, err)
	}
	return kb, nil
}

func inputErr(lineNo int, line string, err error) error {
	return fmt.Errorf("%w: line %d (%q): %v", internalerr.ErrInput, lineNo+1, line, err)
}

func parseSignatureLine(line string, kb *logic.KnowledgeBase, constants map[string]bool) error {
	if strings.HasPrefix(line, "D=") {
		names, err := parseBraceList(line[len("D="):])
		if err != nil {
			return err
		}
		for _, n := range names {
			constants[n] = true
			kb.Domain = append(kb.Domain, logic.Constant{Name: n})
		}
		return nil
	}
	if name, ok := strings.CutSuffix(line, "(D)"); ok {
		if !isIdent(name) {
			return fmt.Errorf("invalid predicate declaration %q", line)
		}
		kb.Predicates = append(kb.Predicates, logic.Predicate{Name: name, Arity: 1})
		return nil
	}
	if isIdent(line) {
		kb.Predicates = append(kb.Predicates, logic.Predicate{Name: line, Arity: 0})
		return nil
	}
	return fmt.Errorf("unrecognized signature line %q", line)
}

func parseBraceList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("expected a brace-delimited list, got %q", s)
	}
	inner := s[1 : len(s)-1]
	if strings.TrimSpace(inner) == "" {
		return nil, nil
	}
	parts := strings.Split(inner, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
		if !isIdent(out[i]) {
			return nil, fmt.Errorf("invalid identifier %q in list", out[i])
		}
	}
	return out, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter {
			return false
		}
		if !isLetter && !isDigit {
			return false
		}
	}
	return true
}

// parseConditionalLine parses "(Consequent | Antecedent)": the whole
// line must be one parenthesized pair containing a single top-level '|'.
func parseConditionalLine(line string, constants map[string]bool) (logic.Conditional, error) {
	inner, ok := stripWholeParens(line)
	if !ok {
		return logic.Conditional{}, fmt.Errorf("conditional must be parenthesized: %q", line)
	}
	idx, ok := topLevelPipeIndex(inner)
	if !ok {
		return logic.Conditional{}, fmt.Errorf("conditional missing a top-level '|': %q", line)
	}
	consequent, err := parseFormulaText(inner[:idx], constants)
	if err != nil {
		return logic.Conditional{}, err
	}
	antecedent, err := parseFormulaText(inner[idx+1:], constants)
	if err != nil {
		return logic.Conditional{}, err
	}
	return logic.NewConditional(consequent, antecedent), nil
}

func parseFormulaText(text string, constants map[string]bool) (logic.Formula, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, constants: constants}
	f, err := p.parseFormula()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("unexpected trailing input %q", p.peek().text)
	}
	return f, nil
}

// stripWholeParens reports whether s, once trimmed, is a single
// parenthesized group spanning its entire length, and returns the
// content between the parens.
func stripWholeParens(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' {
		return "", false
	}
	close, err := matchingClose(s, 0)
	if err != nil || close != len(s)-1 {
		return "", false
	}
	return s[1 : len(s)-1], true
}

func matchingClose(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unbalanced parentheses in %q", s)
}

func topLevelPipeIndex(s string) (int, bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '|':
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// ---- token-level formula parser ----

type parser struct {
	toks      []token
	pos       int
	constants map[string]bool
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.peek().kind != kind {
		return token{}, fmt.Errorf("expected %s, got %q", what, p.peek().text)
	}
	return p.next(), nil
}

func (p *parser) parseFormula() (logic.Formula, error) { return p.parseImplication() }

func (p *parser) parseImplication() (logic.Formula, error) {
	left, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokArrow {
		p.next()
		right, err := p.parseImplication()
		if err != nil {
			return nil, err
		}
		return logic.Implies(left, right), nil
	}
	return left, nil
}

func (p *parser) parseDisjunction() (logic.Formula, error) {
	left, err := p.parseConjunction()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseConjunction()
		if err != nil {
			return nil, err
		}
		left = logic.Or(left, right)
	}
	return left, nil
}

func (p *parser) parseConjunction() (logic.Formula, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = logic.And(left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (logic.Formula, error) {
	if p.peek().kind == tokNot {
		p.next()
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return logic.Not(f), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (logic.Formula, error) {
	switch p.peek().kind {
	case tokTop:
		p.next()
		return logic.Tautology(), nil
	case tokBot:
		p.next()
		return logic.Contradiction(), nil
	case tokLParen:
		p.next()
		f, err := p.parseFormula()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return f, nil
	case tokForall, tokExists:
		universal := p.peek().kind == tokForall
		p.next()
		vTok, err := p.expect(tokIdent, "a variable name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokColon, ":"); err != nil {
			return nil, err
		}
		body, err := p.parseFormula()
		if err != nil {
			return nil, err
		}
		v := logic.Variable{Name: vTok.text}
		if universal {
			return logic.ForAll(v, body), nil
		}
		return logic.Exists(v, body), nil
	case tokIdent:
		name := p.next().text
		if p.peek().kind == tokLParen {
			p.next()
			argTok, err := p.expect(tokIdent, "an argument")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRParen, ")"); err != nil {
				return nil, err
			}
			pred := logic.Predicate{Name: name, Arity: 1}
			arg := p.resolveTerm(argTok.text)
			return logic.Atom(logic.NewAtom(pred, arg)), nil
		}
		pred := logic.Predicate{Name: name, Arity: 0}
		return logic.Atom(logic.NewAtom(pred)), nil
	default:
		return nil, fmt.Errorf("unexpected token %q", p.peek().text)
	}
}

func (p *parser) resolveTerm(name string) logic.Term {
	if p.constants[name] {
		return logic.Constant{Name: name}
	}
	return logic.Variable{Name: name}
}

// ParseQuery parses spec.md §6's query syntax: a bare formula, or a
// conditional "(B | A)". domain supplies the constant names used to
// distinguish a constant argument from a variable one.
func ParseQuery(text string, domain []logic.Constant) (logic.Query, error) {
	constants := make(map[string]bool, len(domain))
	for _, c := range domain {
		constants[c.Name] = true
	}

	trimmed := strings.TrimSpace(stripComment(text))
	if inner, ok := stripWholeParens(trimmed); ok {
		if idx, ok := topLevelPipeIndex(inner); ok {
			consequent, err := parseFormulaText(inner[:idx], constants)
			if err != nil {
				return logic.Query{}, fmt.Errorf("%w: %v", internalerr.ErrInput, err)
			}
			antecedent, err := parseFormulaText(inner[idx+1:], constants)
			if err != nil {
				return logic.Query{}, fmt.Errorf("%w: %v", internalerr.ErrInput, err)
			}
			return logic.ConditionalQuery(logic.NewConditional(consequent, antecedent)), nil
		}
	}

	f, err := parseFormulaText(trimmed, constants)
	if err != nil {
		return logic.Query{}, fmt.Errorf("%w: %v", internalerr.ErrInput, err)
	}
	return logic.FormulaQuery(f), nil
}
