// Package memstore is the default, in-memory store.Store implementation:
// a mutex-guarded pair of maps, adequate for a single CLI invocation and
// for tests. It is the teacher's pkg/korel/store/memstore pattern applied
// to world sets and rankings instead of documents and PMI counts.
package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/rank"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

type worldRecord struct {
	bits [][]uint64
}

type rankRecord struct {
	values map[int]uint64
}

// Store is an in-memory store.Store.
type Store struct {
	mu       sync.RWMutex
	worlds   map[string]worldRecord
	rankings map[string]rankRecord
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		worlds:   make(map[string]worldRecord),
		rankings: make(map[string]rankRecord),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveWorldSet implements store.Store.
func (s *Store) SaveWorldSet(ctx context.Context, key string, ws *world.Set) error {
	bits := make([][]uint64, ws.Len())
	for i := 0; i < ws.Len(); i++ {
		bits[i] = ws.At(world.ID(i)).Bits()
	}
	s.mu.Lock()
	s.worlds[key] = worldRecord{bits: bits}
	s.mu.Unlock()
	return nil
}

// LoadWorldSet implements store.Store.
func (s *Store) LoadWorldSet(ctx context.Context, key string, kb logic.KnowledgeBase) (*world.Set, bool, error) {
	s.mu.RLock()
	rec, ok := s.worlds[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return world.Restore(kb.Interpretables(), kb.Domain, rec.bits), true, nil
}

// SaveRanking implements store.Store.
func (s *Store) SaveRanking(ctx context.Context, key string, r *rank.Ranking) error {
	values := make(map[int]uint64, len(r.Values))
	for id, k := range r.Values {
		values[int(id)] = k
	}
	s.mu.Lock()
	s.rankings[key] = rankRecord{values: values}
	s.mu.Unlock()
	return nil
}

// LoadRanking implements store.Store.
func (s *Store) LoadRanking(ctx context.Context, key string, ws *world.Set) (*rank.Ranking, bool, error) {
	s.mu.RLock()
	rec, ok := s.rankings[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	values := make(map[world.ID]uint64, len(rec.values))
	for id, k := range rec.values {
		values[world.ID(id)] = k
	}
	return &rank.Ranking{Set: ws, Values: values}, true, nil
}
