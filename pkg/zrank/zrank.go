// Package zrank is the facade tying together every core component: text
// parsing (kbtext), world generation (world), tolerance-pair search
// (tolerance), the System-Z constructor (systemz) and acceptance
// queries (rank), mirroring the shape of the teacher's pkg/korel.Korel
// facade — a thin, dependency-injected entry point rather than a
// reimplementation of any of the packages it wires together.
package zrank

import (
	"fmt"

	"github.com/cognicore/zrank/pkg/zrank/explain"
	"github.com/cognicore/zrank/pkg/zrank/internalerr"
	"github.com/cognicore/zrank/pkg/zrank/kbtext"
	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/rank"
	"github.com/cognicore/zrank/pkg/zrank/systemz"
	"github.com/cognicore/zrank/pkg/zrank/tolerance"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

// LoadKB parses text in the spec.md §6 grammar into a knowledge base.
func LoadKB(text string) (*logic.KnowledgeBase, error) {
	kb, err := kbtext.ParseKB(text)
	if err != nil {
		return nil, err
	}
	return &kb, nil
}

// ParseQuery parses a query (a bare formula or a parenthesized
// conditional) against kb's domain, for use with Accepts.
func ParseQuery(text string, kb *logic.KnowledgeBase) (logic.Query, error) {
	return kbtext.ParseQuery(text, kb.Domain)
}

// BuildWorlds enumerates kb's possible worlds, bounded by limit.
func BuildWorlds(kb *logic.KnowledgeBase, limit world.Limits) (*world.Set, error) {
	return world.Build(*kb, limit)
}

// SearchTolerancePairs runs the requested search strategy over kb's
// conditionals and domain. An empty result (a nil slice, with a nil
// error) means kb is inconsistent — spec.md §7.3 treats that as a valid
// outcome, not a failure.
func SearchTolerancePairs(kb *logic.KnowledgeBase, ws *world.Set, strategy tolerance.Strategy, sink tolerance.ProgressSink) ([]tolerance.Result, error) {
	return tolerance.Search(*kb, ws, strategy, sink)
}

// BuildRanking constructs the System-Z ranking from a validated
// tolerance pair. Calling it with an empty pair (the inconsistent-KB
// outcome of SearchTolerancePairs) or with a pair that fails tolerance
// validation is a caller error, reported as
// internalerr.ErrNoValidTolerancePair rather than attempted.
func BuildRanking(kb *logic.KnowledgeBase, ws *world.Set, tp tolerance.Pair) (*rank.Ranking, error) {
	if len(tp.Subsets) == 0 {
		return nil, fmt.Errorf("%w: cannot rank from an empty tolerance pair", internalerr.ErrNoValidTolerancePair)
	}
	if ok, _ := tolerance.Validate(*kb, ws, tp); !ok {
		return nil, fmt.Errorf("%w: tolerance pair fails validation", internalerr.ErrNoValidTolerancePair)
	}
	return systemz.Build(*kb, ws, tp)
}

// Rank computes κ of a formula or conditional query against a built
// ranking (spec.md §4.5), optionally recording the derivation in tree.
// A conditional's rank is Infinity when its verification A∧B is
// unsatisfiable under κ — see rank.RankGroundConditional.
func Rank(rk *rank.Ranking, kb *logic.KnowledgeBase, q logic.Query, tree *explain.Tree) uint64 {
	if !q.IsConditional() {
		return rank.RankFormula(rk, q.Formula, kb.Domain, tree)
	}
	return rank.RankConditional(rk, q.Conditional, kb.Domain, tree)
}

// Accepts decides acceptance of a formula or conditional query against a
// built ranking, optionally recording the decision in tree.
func Accepts(rk *rank.Ranking, kb *logic.KnowledgeBase, q logic.Query, tree *explain.Tree) bool {
	if !q.IsConditional() {
		return rank.AcceptsFormula(rk, q.Formula, tree)
	}
	c := q.Conditional
	if _, ok := c.FreeVariable(); ok {
		return rank.AcceptsOpenConditional(rk, c, kb.Domain, tree)
	}
	return rank.AcceptsGroundConditional(rk, c, tree)
}
