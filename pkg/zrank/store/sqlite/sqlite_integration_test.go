package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/rank"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

func sampleKB() logic.KnowledgeBase {
	p := logic.Predicate{Name: "P", Arity: 1}
	return logic.KnowledgeBase{
		Predicates: []logic.Predicate{p},
		Domain:     []logic.Constant{{Name: "a"}, {Name: "b"}},
	}
}

func TestSQLiteWorldAndRankingRoundTrip(t *testing.T) {
	ctx := context.Background()
	kb := sampleKB()
	ws, err := world.Build(kb, world.DefaultLimits)
	if err != nil {
		t.Fatalf("world.Build: %v", err)
	}

	path := filepath.Join(t.TempDir(), "zrank.db")
	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.SaveWorldSet(ctx, "k1", ws); err != nil {
		t.Fatalf("SaveWorldSet: %v", err)
	}
	restored, ok, err := s.LoadWorldSet(ctx, "k1", kb)
	if err != nil || !ok {
		t.Fatalf("LoadWorldSet: ok=%v err=%v", ok, err)
	}
	if restored.Len() != ws.Len() {
		t.Fatalf("expected %d worlds, got %d", ws.Len(), restored.Len())
	}

	values := map[world.ID]uint64{0: rank.Infinity, 1: 3, 2: 0}
	r := &rank.Ranking{Set: ws, Values: values}
	if err := s.SaveRanking(ctx, "r1", r); err != nil {
		t.Fatalf("SaveRanking: %v", err)
	}
	rr, ok, err := s.LoadRanking(ctx, "r1", ws)
	if err != nil || !ok {
		t.Fatalf("LoadRanking: ok=%v err=%v", ok, err)
	}
	for id, want := range values {
		if got := rr.Rank(id); got != want {
			t.Errorf("world %d: got %v want %v", id, got, want)
		}
	}
}
