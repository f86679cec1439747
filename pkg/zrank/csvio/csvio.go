// Package csvio implements the CSV export/import format of spec.md §6:
// one column per interpretable (in canonical order) plus a final "k"
// column, with a configurable sentinel for an infinite rank. No example
// repo in the retrieval pack imports a third-party CSV library, and the
// format here is exactly what encoding/csv already models (one record
// per row, a fixed header); there is nothing an external library would
// add.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cognicore/zrank/pkg/zrank/rank"
	"github.com/cognicore/zrank/pkg/zrank/world"
)

const rankColumn = "k"

// Export writes one row per world of r.Set, ordered by world.ID, columns
// being each interpretable's canonical string followed by the rank
// column. infSentinel is written in place of an infinite rank.
func Export(w io.Writer, r *rank.Ranking, infSentinel string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := make([]string, 0, len(r.Set.Interpretables)+1)
	for _, a := range r.Set.Interpretables {
		header = append(header, a.String())
	}
	header = append(header, rankColumn)
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := 0; i < r.Set.Len(); i++ {
		id := world.ID(i)
		wd := r.Set.At(id)
		row := make([]string, 0, len(header))
		for pos := range r.Set.Interpretables {
			if wd.Get(pos) {
				row = append(row, "1")
			} else {
				row = append(row, "0")
			}
		}
		k := r.Rank(id)
		if k == rank.Infinity {
			row = append(row, infSentinel)
		} else {
			row = append(row, strconv.FormatUint(k, 10))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// Import reads back rows produced by Export against an already-built
// world set ws (the interpretable order and count must match what
// produced the file — Import does not reconstruct a world set from the
// header alone). It returns the rank of each world in ws's order.
func Import(r io.Reader, ws *world.Set, infSentinel string) (*rank.Ranking, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csvio: reading header: %w", err)
	}
	if len(header) != len(ws.Interpretables)+1 {
		return nil, fmt.Errorf("csvio: header has %d columns, expected %d", len(header), len(ws.Interpretables)+1)
	}
	if header[len(header)-1] != rankColumn {
		return nil, fmt.Errorf("csvio: expected final column %q, got %q", rankColumn, header[len(header)-1])
	}

	values := make(map[world.ID]uint64, ws.Len())
	rowNum := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvio: reading row %d: %w", rowNum, err)
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("csvio: row %d has %d columns, expected %d", rowNum, len(rec), len(header))
		}

		bits := rec[:len(rec)-1]
		id, ok := matchWorld(ws, bits)
		if !ok {
			return nil, fmt.Errorf("csvio: row %d does not match any world of the given set", rowNum)
		}

		rankField := rec[len(rec)-1]
		if rankField == infSentinel {
			values[id] = rank.Infinity
		} else {
			k, err := strconv.ParseUint(rankField, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("csvio: row %d: invalid rank %q: %w", rowNum, rankField, err)
			}
			values[id] = k
		}
		rowNum++
	}
	return &rank.Ranking{Set: ws, Values: values}, nil
}

func matchWorld(ws *world.Set, bits []string) (world.ID, bool) {
	for i := 0; i < ws.Len(); i++ {
		id := world.ID(i)
		wd := ws.At(id)
		match := true
		for pos, b := range bits {
			want := b == "1"
			if wd.Get(pos) != want {
				match = false
				break
			}
		}
		if match {
			return id, true
		}
	}
	return 0, false
}
