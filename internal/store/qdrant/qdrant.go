// Package qdrant implements the vector index adapter. The adapter's point
// identifiers are internal (derived from the payload id, never exposed);
// every lookup and delete keys on the payload id field instead, so the
// adapter stays correct even if the point id scheme changes. All operations
// here are best-effort from the engine's point of view: failures become
// result warnings, never aborted archive transactions.
package qdrant

import (
	"context"
	"fmt"
	"hash/fnv"

	qd "github.com/qdrant/go-client/qdrant"
)

// PayloadID is the payload field carrying the ticket or note id.
const PayloadID = "ref_id"

// PayloadKind is the payload field distinguishing tickets from notes.
const PayloadKind = "kind"

// Hit is one search result. The id comes from the point payload, not from
// the store's internal identifier.
type Hit struct {
	RefID string
	Kind  string
	Title string
	Score float32
}

// Index is the vector index adapter.
type Index struct {
	client     *qd.Client
	collection string
}

// New connects to the vector service and ensures the collection exists with
// the given embedding dimension.
func New(ctx context.Context, host string, port int, collection string, dims uint64) (*Index, error) {
	client, err := qd.NewClient(&qd.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("connect vector index: %w", err)
	}

	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("check collection %s: %w", collection, err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qd.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qd.NewVectorsConfig(&qd.VectorParams{
				Size:     dims,
				Distance: qd.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("create collection %s: %w", collection, err)
		}
	}

	return &Index{client: client, collection: collection}, nil
}

// pointID derives the internal point identifier from the payload id. The
// derivation is stable so repeated upserts for the same id overwrite one
// point instead of accumulating duplicates.
func pointID(refID string) *qd.PointId {
	h := fnv.New64a()
	h.Write([]byte(refID))
	return qd.NewIDNum(h.Sum64())
}

// Upsert writes the embedding plus payload for refID.
func (i *Index) Upsert(ctx context.Context, refID, kind, title string, vector []float32) error {
	_, err := i.client.Upsert(ctx, &qd.UpsertPoints{
		CollectionName: i.collection,
		Wait:           qd.PtrOf(true),
		Points: []*qd.PointStruct{{
			Id:      pointID(refID),
			Vectors: qd.NewVectors(vector...),
			Payload: qd.NewValueMap(map[string]any{
				PayloadID:   refID,
				PayloadKind: kind,
				"title":     title,
			}),
		}},
	})
	if err != nil {
		return fmt.Errorf("vector upsert %s: %w", refID, err)
	}
	return nil
}

// Delete removes every point whose payload id matches refID.
func (i *Index) Delete(ctx context.Context, refID string) error {
	_, err := i.client.Delete(ctx, &qd.DeletePoints{
		CollectionName: i.collection,
		Wait:           qd.PtrOf(true),
		Points: qd.NewPointsSelectorFilter(&qd.Filter{
			Must: []*qd.Condition{qd.NewMatch(PayloadID, refID)},
		}),
	})
	if err != nil {
		return fmt.Errorf("vector delete %s: %w", refID, err)
	}
	return nil
}

// Search returns the closest points to the query vector, optionally
// restricted to one payload kind. Result ids come from the payload.
func (i *Index) Search(ctx context.Context, vector []float32, limit int, kind string) ([]Hit, error) {
	req := &qd.QueryPoints{
		CollectionName: i.collection,
		Query:          qd.NewQuery(vector...),
		Limit:          qd.PtrOf(uint64(limit)),
		WithPayload:    qd.NewWithPayload(true),
	}
	if kind != "" {
		req.Filter = &qd.Filter{
			Must: []*qd.Condition{qd.NewMatch(PayloadKind, kind)},
		}
	}

	points, err := i.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		refID := payload[PayloadID].GetStringValue()
		if refID == "" {
			// A point without a payload id is unreachable by the rest of
			// the system; skip it rather than invent an identifier.
			continue
		}
		hits = append(hits, Hit{
			RefID: refID,
			Kind:  payload[PayloadKind].GetStringValue(),
			Title: payload["title"].GetStringValue(),
			Score: p.GetScore(),
		})
	}
	return hits, nil
}

// Close releases the client connection.
func (i *Index) Close() error {
	return i.client.Close()
}
