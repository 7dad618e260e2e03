// Package engine owns the ticket state machine and coordinates every
// operation across the three storage tiers: the fast index store, the
// durable archive, and the vector index. The closure saga and its
// documented hazard window live here.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/stackline/tickd/internal/events"
	"github.com/stackline/tickd/internal/model"
	"github.com/stackline/tickd/internal/store/postgres"
	"github.com/stackline/tickd/internal/store/qdrant"
	redisstore "github.com/stackline/tickd/internal/store/redis"
)

// DefaultRetention is how long a terminal ticket stays readable in the
// fast store before its record expires.
const DefaultRetention = 720 * time.Hour

// FastStore is the fast index store consumed by the engine. Implemented by
// *redisstore.Store.
type FastStore interface {
	Apply(ctx context.Context, b *redisstore.Batch) error
	ReadFields(ctx context.Context, key string) (map[string]string, error)
	ReadManyFields(ctx context.Context, keys []string) ([]map[string]string, error)
	Members(ctx context.Context, key string) ([]string, error)
	Intersect(ctx context.Context, keys ...string) ([]string, error)
	Range(ctx context.Context, key string, rev bool) ([]string, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Archive is the durable archive consumed by the engine. Implemented by
// *postgres.Store.
type Archive interface {
	Begin(ctx context.Context) (*postgres.Txn, error)
	InsertTicket(ctx context.Context, t *model.Ticket, txn *postgres.Txn) error
	Commit(txn *postgres.Txn) error
	Rollback(txn *postgres.Txn) error
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	HasTicket(ctx context.Context, id string) (bool, error)
}

// VectorIndex is the similarity-search service consumed by the engine.
// Implemented by *qdrant.Index. Every call through it is best-effort.
type VectorIndex interface {
	Upsert(ctx context.Context, refID, kind, title string, vector []float32) error
	Delete(ctx context.Context, refID string) error
	Search(ctx context.Context, vector []float32, limit int, kind string) ([]qdrant.Hit, error)
}

// Embedder turns text into an embedding vector. It is an external
// collaborator; errors from it are caught and logged, never retried
// synchronously inside the saga.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Engine is the ticket lifecycle manager. Adapters are injected explicitly;
// there is no global shared state.
type Engine struct {
	fast      FastStore
	archive   Archive
	vector    VectorIndex // nil disables the vector tier
	embedder  Embedder    // nil disables embedding generation
	publisher events.Publisher
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// Options configures optional engine collaborators.
type Options struct {
	Vector    VectorIndex
	Embedder  Embedder
	Publisher events.Publisher
	Retention time.Duration
	Logger    *slog.Logger

	// Now overrides the clock. Used by tests.
	Now func() time.Time
}

// New constructs an engine over the given adapters.
func New(fast FastStore, archive Archive, opts Options) *Engine {
	e := &Engine{
		fast:      fast,
		archive:   archive,
		vector:    opts.Vector,
		embedder:  opts.Embedder,
		publisher: opts.Publisher,
		retention: opts.Retention,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if e.publisher == nil {
		e.publisher = &events.NoopPublisher{}
	}
	if e.retention <= 0 {
		e.retention = DefaultRetention
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Warning is a non-fatal failure attached to an otherwise successful
// result. Vector-tier errors always surface this way.
type Warning struct {
	Code    model.Code `json:"code"`
	Message string     `json:"message"`
}

// Result is the outcome of a mutating operation.
type Result struct {
	Ticket *model.Ticket `json:"ticket"`

	// Warnings carries non-fatal failures (vector upserts, event publishes).
	Warnings []Warning `json:"warnings,omitempty"`

	// ReconcileRequired is set when the archive write committed but the
	// fast-store batch did not apply. The durable write stands; the
	// reconciliation sweep owns the repair.
	ReconcileRequired bool `json:"reconcile_required,omitempty"`
}

func (r *Result) warn(code model.Code, msg string) {
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: msg})
}

// publish emits an event, logging failures instead of surfacing them.
func (e *Engine) publish(ctx context.Context, topic, ticketID string, event any) {
	if err := e.publisher.Publish(ctx, topic, event); err != nil {
		e.logger.Warn("failed to publish event", "topic", topic, "ticket_id", ticketID, "error", err)
	}
}
