package atlas

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/travellive/tourquery/internal/db"
)

const (
	// scoreField receives $meta vectorSearchScore; stripped from hits.
	scoreField = "__score"
	idField    = "_id"

	defaultCandidatesFactor = 10
)

type collection struct {
	coll *mongo.Collection
}

// ListSearchIndexes runs $listSearchIndexes on the collection.
func (c *collection) ListSearchIndexes(ctx context.Context) ([]db.IndexInfo, error) {
	cur, err := c.coll.SearchIndexes().List(ctx, options.SearchIndexes())
	if err != nil {
		return nil, &db.Error{Op: db.OpListSearchIndexes, Err: err}
	}

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpListSearchIndexes, Err: err}
	}

	out := make([]db.IndexInfo, 0, len(docs))
	for _, d := range docs {
		out = append(out, indexInfo(d))
	}
	return out, nil
}

// SearchKNN runs an approximate $vectorSearch aggregation, best match first.
func (c *collection) SearchKNN(ctx context.Context, q *db.KNNQuery) ([]db.Hit, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	cur, err := c.coll.Aggregate(ctx, vectorSearchPipeline(q))
	if err != nil {
		return nil, &db.Error{Op: db.OpVectorSearch, Err: err}
	}

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpVectorSearch, Err: err}
	}

	hits := make([]db.Hit, 0, len(docs))
	for _, d := range docs {
		hits = append(hits, toHit(d))
	}
	return hits, nil
}

func vectorSearchPipeline(q *db.KNNQuery) mongo.Pipeline {
	candidates := q.NumCandidates
	if candidates < q.K {
		candidates = q.K * defaultCandidatesFactor
	}

	return mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: q.IndexName},
			{Key: "path", Value: q.Path},
			{Key: "queryVector", Value: q.Vector},
			{Key: "numCandidates", Value: candidates},
			{Key: "limit", Value: q.K},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: scoreField, Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
		{{Key: "$project", Value: bson.D{{Key: q.Path, Value: 0}}}},
	}
}

func toHit(d bson.M) db.Hit {
	fields := normalizeMap(d)

	hit := db.Hit{Fields: fields}
	if id, ok := fields[idField]; ok {
		hit.ID = fmt.Sprint(id)
		delete(fields, idField)
	}
	if s, ok := fields[scoreField].(float64); ok {
		hit.Score = s
	}
	delete(fields, scoreField)
	return hit
}

func indexInfo(d bson.M) db.IndexInfo {
	info := db.IndexInfo{}
	info.Name, _ = d["name"].(string)
	info.Type, _ = d["type"].(string)
	info.Status, _ = d["status"].(string)
	info.Queryable, _ = d["queryable"].(bool)
	return info
}
