// Package store defines the persistence boundary the core reasoning
// packages never depend on directly: caching a built world set and a
// computed ranking across process invocations, keyed by a caller-chosen
// cache key (cmd/zrank uses the search strategy name plus a hash of the
// knowledge base text). This mirrors the teacher's store.Store contract
// (pkg/korel/store) with a default in-memory implementation
// (pkg/zrank/store/memstore) and an opt-in SQLite-backed one
// (pkg/zrank/store/sqlite).
package store

import (
	"context"

	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/rank"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

// Store persists world sets and rankings across invocations of a CLI or
// long-running host process. Close releases any underlying resource
// (a no-op for the in-memory implementation).
type Store interface {
	Close() error

	// SaveWorldSet persists ws under key, as raw per-world bitsets —
	// interpretables themselves are never persisted, since they are
	// cheap to recompute from the knowledge base that produced key and
	// persisting them would require serializing the formula AST.
	SaveWorldSet(ctx context.Context, key string, ws *world.Set) error

	// LoadWorldSet restores a previously saved world set for kb, whose
	// Interpretables() must match the order the set was saved with —
	// the caller is responsible for choosing a key that changes
	// whenever the knowledge base does.
	LoadWorldSet(ctx context.Context, key string, kb logic.KnowledgeBase) (*world.Set, bool, error)

	// SaveRanking persists a computed ranking's world id -> rank map.
	SaveRanking(ctx context.Context, key string, r *rank.Ranking) error

	// LoadRanking restores a previously saved ranking against ws, which
	// must be the same world set (by identity of worlds, not pointer)
	// the ranking was computed over.
	LoadRanking(ctx context.Context, key string, ws *world.Set) (*rank.Ranking, bool, error)
}
