package memstore

import (
	"context"
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

func TestWorldSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	kb := sampleKB()
	ws, err := world.Build(kb, world.DefaultLimits)
	if err != nil {
		t.Fatalf("world.Build: %v", err)
	}

	s := New()
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
	for i := 0; i < ws.Len(); i++ {
		if restored.At(world.ID(i)).String() != ws.At(world.ID(i)).String() {
			t.Errorf("world %d did not round-trip: got %s want %s", i, restored.At(world.ID(i)), ws.At(world.ID(i)))
		}
	}

	if _, ok, err := s.LoadWorldSet(ctx, "missing", kb); err != nil || ok {
		t.Errorf("expected a miss for an unknown key")
	}
}

func TestRankingRoundTripPreservesInfinity(t *testing.T) {
	ctx := context.Background()
	kb := sampleKB()
	ws, err := world.Build(kb, world.DefaultLimits)
	if err != nil {
		t.Fatalf("world.Build: %v", err)
	}

	values := make(map[world.ID]uint64, ws.Len())
	for i := 0; i < ws.Len(); i++ {
		if i%2 == 0 {
			values[world.ID(i)] = rank.Infinity
		} else {
			values[world.ID(i)] = uint64(i)
		}
	}
	r := &rank.Ranking{Set: ws, Values: values}

	s := New()
	if err := s.SaveRanking(ctx, "r1", r); err != nil {
		t.Fatalf("SaveRanking: %v", err)
	}
	restored, ok, err := s.LoadRanking(ctx, "r1", ws)
	if err != nil || !ok {
		t.Fatalf("LoadRanking: ok=%v err=%v", ok, err)
	}
	for id, want := range values {
		if got := restored.Rank(id); got != want {
			t.Errorf("world %d: got rank %v want %v", id, got, want)
		}
	}
}
