package redis

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/travellive/tourquery/internal/db"
)

// scoreField is the alias the KNN clause writes the cosine distance to.
const scoreField = "__score"

// jsonRootField carries the whole document when the index is ON JSON.
const jsonRootField = "$"

type collection struct {
	store  *Store
	prefix string
}

// ListSearchIndexes returns every FT index on the server. FT indexes are server-wide,
// so the list is not narrowed to the collection.
func (c *collection) ListSearchIndexes(ctx context.Context) ([]db.IndexInfo, error) {
	cmd := c.store.b().Arbitrary("FT._LIST").Build()
	names, err := c.store.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpListIndexes, Err: err}
	}

	out := make([]db.IndexInfo, 0, len(names))
	for _, n := range names {
		out = append(out, db.IndexInfo{Name: n, Type: "vectorSearch", Status: "READY", Queryable: true})
	}
	return out, nil
}

// SearchKNN runs a KNN vector similarity search via FT.SEARCH, nearest first.
func (c *collection) SearchKNN(ctx context.Context, q *db.KNNQuery) ([]db.Hit, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	queryStr := fmt.Sprintf("*=>[KNN %d @%s $BLOB AS %s]", q.K, q.Path, scoreField)
	args := []string{
		q.IndexName, queryStr,
		"SORTBY", scoreField,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	}

	cmd := c.store.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := c.store.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw, c.prefix)
}

// --- Result parsing ---

func parseKNNResult(raw []rueidis.RedisMessage, prefix string) ([]db.Hit, error) {
	if len(raw) == 0 {
		return []db.Hit{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return []db.Hit{}, nil
	}

	hits := make([]db.Hit, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		pairs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		fields, err := decodeFields(parseFieldPairs(pairs))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}

		hit := db.Hit{ID: strings.TrimPrefix(key, prefix), Fields: fields}
		if scoreStr, ok := fields[scoreField].(string); ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				hit.Score = max(0, 1.0-d) // cosine distance → similarity, clamped to [0,1]
			}
			delete(fields, scoreField)
		}

		hits = append(hits, hit)
	}

	return hits, nil
}

// decodeFields expands the JSON root document, when present, into the field map.
// Explicitly returned attributes win over document keys of the same name.
func decodeFields(pairs map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	if doc, ok := pairs[jsonRootField]; ok {
		dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
		dec.UseNumber()
		if err := dec.Decode(&out); err != nil {
			return nil, fmt.Errorf("json document: %w", err)
		}
	}
	for k, v := range pairs {
		if k != jsonRootField {
			out[k] = v
		}
	}
	return out, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		if !fields[j+1].IsString() {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
