// Package postgres implements the durable archive adapter backed by
// PostgreSQL. Archived snapshots are insert-only; the adapter tracks every
// open transaction in a registry so that an unresolved handle can never be
// left dangling past shutdown.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	nanoid "github.com/matoous/go-nanoid/v2"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements the durable archive adapter.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	mu   sync.Mutex
	open map[string]*Txn
}

// Txn is a live archive transaction handle. It is created by Begin and
// released by exactly one of Commit or Rollback.
type Txn struct {
	id      string
	tx      *sql.Tx
	started time.Time
}

// ID returns the handle's registry key.
func (t *Txn) ID() string {
	return t.id
}

// New opens a connection to the archive database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping archive database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, logger: logger, open: make(map[string]*Txn)}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// newStore wraps an existing database handle. Used by tests.
func newStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger, open: make(map[string]*Txn)}
}

// Begin opens an archive transaction and registers the handle.
func (s *Store) Begin(ctx context.Context) (*Txn, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin archive transaction: %w", err)
	}

	id, err := nanoid.New()
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("generate transaction id: %w", err)
	}

	txn := &Txn{id: id, tx: tx, started: time.Now()}
	s.mu.Lock()
	s.open[id] = txn
	s.mu.Unlock()
	return txn, nil
}

// Commit commits the transaction. The handle is removed from the registry
// and the underlying connection released even when the commit fails.
func (s *Store) Commit(txn *Txn) error {
	s.release(txn)
	if err := txn.tx.Commit(); err != nil {
		return fmt.Errorf("commit archive transaction %s: %w", txn.id, err)
	}
	return nil
}

// Rollback rolls the transaction back. The handle is removed from the
// registry even when the rollback fails; sql.ErrTxDone is not an error here
// since the transaction is already resolved.
func (s *Store) Rollback(txn *Txn) error {
	s.release(txn)
	if err := txn.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("rollback archive transaction %s: %w", txn.id, err)
	}
	return nil
}

func (s *Store) release(txn *Txn) {
	s.mu.Lock()
	delete(s.open, txn.id)
	s.mu.Unlock()
}

// OpenTransactions reports the number of live handles in the registry.
func (s *Store) OpenTransactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

// Close force-rolls-back any still-open transaction, logging each as an
// anomaly, then closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	leftover := make([]*Txn, 0, len(s.open))
	for _, txn := range s.open {
		leftover = append(leftover, txn)
	}
	s.open = make(map[string]*Txn)
	s.mu.Unlock()

	for _, txn := range leftover {
		s.logger.Warn("rolling back dangling archive transaction",
			"txn_id", txn.id, "open_for", time.Since(txn.started))
		if err := txn.tx.Rollback(); err != nil && err != sql.ErrTxDone {
			s.logger.Warn("forced rollback failed", "txn_id", txn.id, "error", err)
		}
	}

	return s.db.Close()
}
