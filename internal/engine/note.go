package engine

import (
	"context"

	"github.com/stackline/tickd/internal/events"
	"github.com/stackline/tickd/internal/idgen"
	"github.com/stackline/tickd/internal/index"
	"github.com/stackline/tickd/internal/model"
	redisstore "github.com/stackline/tickd/internal/store/redis"
)

// CreateNote holds the caller-supplied fields for a new note. Mode and tags
// arrive pre-computed from the external content analyzers.
type CreateNote struct {
	Content  string         `json:"content"`
	Mode     model.NoteMode `json:"mode,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	TicketID string         `json:"ticket_id,omitempty"`
}

// CreateNote stores a note in the fast store and upserts its embedding
// best-effort. Notes have no lifecycle: no archive row, no TTL.
func (e *Engine) CreateNote(ctx context.Context, in CreateNote) (*model.Note, []Warning, error) {
	const op = "engine.CreateNote"

	now := e.now().UTC()
	id, err := idgen.Note(now)
	if err != nil {
		return nil, nil, model.E(model.CodeOperation, op, "", "generate id", err)
	}

	n := &model.Note{
		ID:        id,
		Content:   in.Content,
		Mode:      in.Mode,
		Tags:      append([]string(nil), in.Tags...),
		TicketID:  in.TicketID,
		CreatedAt: now,
	}
	if err := model.ValidateNote(n); err != nil {
		return nil, nil, err
	}

	fields, err := redisstore.NoteFields(n)
	if err != nil {
		return nil, nil, model.E(model.CodeOperation, op, id, "encode note", err)
	}

	var batch redisstore.Batch
	batch.HSet(index.NoteKey(id), fields)
	batch.ZAdd(index.NotesByCreated, float64(now.UnixMilli()), id)
	for _, tag := range n.Tags {
		batch.SAdd(index.NoteTagKey(tag), id)
	}
	if err := e.fast.Apply(ctx, &batch); err != nil {
		return nil, nil, model.E(model.CodeConnection, op, id, "write fast store", err)
	}

	res := &Result{}
	e.upsertVector(ctx, res, id, "note", in.Content, in.Content)

	e.publish(ctx, events.TopicNoteCreated, id, events.NoteCreated{Note: n})
	return n, res.Warnings, nil
}

// ListNotes returns notes newest first.
func (e *Engine) ListNotes(ctx context.Context, limit, offset int) ([]*model.Note, error) {
	const op = "engine.ListNotes"

	ids, err := e.fast.Range(ctx, index.NotesByCreated, true)
	if err != nil {
		return nil, model.E(model.CodeConnection, op, "", "scan notes", err)
	}
	if offset > 0 {
		if offset >= len(ids) {
			return nil, nil
		}
		ids = ids[offset:]
	}
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = index.NoteKey(id)
	}
	records, err := e.fast.ReadManyFields(ctx, keys)
	if err != nil {
		return nil, model.E(model.CodeConnection, op, "", "fetch notes", err)
	}

	notes := make([]*model.Note, 0, len(records))
	for i, fields := range records {
		if fields == nil {
			continue
		}
		n, err := redisstore.ParseNote(fields)
		if err != nil {
			return nil, model.E(model.CodeOperation, op, ids[i], "decode note", err)
		}
		notes = append(notes, n)
	}
	return notes, nil
}
