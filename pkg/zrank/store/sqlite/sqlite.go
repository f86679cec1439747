// Package sqlite is the opt-in, disk-backed store.Store implementation,
// used when a world set is too large to recompute on every CLI
// invocation. It follows the teacher's pkg/korel/store/sqlite shape: WAL
// mode, foreign keys on, schema created on open, modernc.org/sqlite as
// the pure-Go driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/rank"
	"github.com/cognicore/zrank/pkg/zrank/store"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and
// ensures its schema exists.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS worlds (
	cache_key TEXT NOT NULL,
	world_index INTEGER NOT NULL,
	bits BLOB NOT NULL,
	PRIMARY KEY(cache_key, world_index)
);

CREATE TABLE IF NOT EXISTS rankings (
	cache_key TEXT NOT NULL,
	world_index INTEGER NOT NULL,
	rank INTEGER,
	PRIMARY KEY(cache_key, world_index)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func encodeBits(bits []uint64) []byte {
	buf := make([]byte, 8*len(bits))
	for i, w := range bits {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return buf
}

func decodeBits(buf []byte) []uint64 {
	out := make([]uint64, len(buf)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
	return out
}

func (s *sqliteStore) SaveWorldSet(ctx context.Context, key string, ws *world.Set) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM worlds WHERE cache_key = ?`, key); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO worlds(cache_key, world_index, bits) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < ws.Len(); i++ {
		w := ws.At(world.ID(i))
		if _, err := stmt.ExecContext(ctx, key, i, encodeBits(w.Bits())); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) LoadWorldSet(ctx context.Context, key string, kb logic.KnowledgeBase) (*world.Set, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT world_index, bits FROM worlds WHERE cache_key = ? ORDER BY world_index`, key)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var bits [][]uint64
	for rows.Next() {
		var idx int
		var blob []byte
		if err := rows.Scan(&idx, &blob); err != nil {
			return nil, false, err
		}
		if idx != len(bits) {
			return nil, false, fmt.Errorf("store/sqlite: world index gap at %d for key %q", idx, key)
		}
		bits = append(bits, decodeBits(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(bits) == 0 {
		return nil, false, nil
	}
	return world.Restore(kb.Interpretables(), kb.Domain, bits), true, nil
}

func (s *sqliteStore) SaveRanking(ctx context.Context, key string, r *rank.Ranking) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rankings WHERE cache_key = ?`, key); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rankings(cache_key, world_index, rank) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for id, k := range r.Values {
		var rk any
		if k != rank.Infinity {
			rk = int64(k)
		}
		if _, err := stmt.ExecContext(ctx, key, int(id), rk); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) LoadRanking(ctx context.Context, key string, ws *world.Set) (*rank.Ranking, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT world_index, rank FROM rankings WHERE cache_key = ?`, key)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	values := make(map[world.ID]uint64)
	for rows.Next() {
		var idx int
		var rk sql.NullInt64
		if err := rows.Scan(&idx, &rk); err != nil {
			return nil, false, err
		}
		if rk.Valid {
			values[world.ID(idx)] = uint64(rk.Int64)
		} else {
			values[world.ID(idx)] = rank.Infinity
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(values) == 0 {
		return nil, false, nil
	}
	return &rank.Ranking{Set: ws, Values: values}, true, nil
}
