package engine

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stackline/tickd/internal/index"
	"github.com/stackline/tickd/internal/model"
	"github.com/stackline/tickd/internal/store/qdrant"
	redisstore "github.com/stackline/tickd/internal/store/redis"
)

// SearchResult is one semantic-search match, hydrated from the fast store
// (with archive fallback for tickets that expired from the fast tier).
type SearchResult struct {
	Hit    qdrant.Hit    `json:"hit"`
	Ticket *model.Ticket `json:"ticket,omitempty"`
	Note   *model.Note   `json:"note,omitempty"`
}

// SearchSimilar embeds the query text and returns the closest tickets and
// notes. kind restricts results to "ticket" or "note" when non-empty.
// Unlike the saga's best-effort upsert, a failure here is the whole
// operation failing, so it surfaces as an external-service error.
func (e *Engine) SearchSimilar(ctx context.Context, text string, limit int, kind string) ([]SearchResult, error) {
	const op = "engine.SearchSimilar"

	if e.vector == nil || e.embedder == nil {
		return nil, model.E(model.CodeOperation, op, "", "vector tier not configured", nil)
	}
	if limit <= 0 {
		limit = 10
	}

	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, model.E(model.CodeExternal, op, "", "embed query", err)
	}
	hits, err := e.vector.Search(ctx, vec, limit, kind)
	if err != nil {
		return nil, model.E(model.CodeExternal, op, "", "vector search", err)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		res := SearchResult{Hit: hit}
		switch hit.Kind {
		case "note":
			fields, err := e.fast.ReadFields(ctx, index.NoteKey(hit.RefID))
			if err != nil {
				return nil, model.E(model.CodeConnection, op, "", "hydrate note", err)
			}
			if fields != nil {
				if res.Note, err = redisstore.ParseNote(fields); err != nil {
					return nil, model.E(model.CodeOperation, op, hit.RefID, "decode note", err)
				}
			}
		default:
			t, err := e.readFast(ctx, hit.RefID)
			if err != nil {
				return nil, model.E(model.CodeOperation, op, hit.RefID, "hydrate ticket", err)
			}
			if t == nil {
				t, err = e.archive.GetTicket(ctx, hit.RefID)
				if errors.Is(err, sql.ErrNoRows) {
					// Vector point outlived both stores; return the bare hit.
					t = nil
				} else if err != nil {
					return nil, model.E(model.CodeOperation, op, hit.RefID, "hydrate from archive", err)
				}
			}
			res.Ticket = t
		}
		results = append(results, res)
	}
	return results, nil
}
