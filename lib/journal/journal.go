// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/armada/lib/clock"
	"github.com/bureau-foundation/armada/lib/codec"
	"github.com/bureau-foundation/armada/lib/protocol"
	"github.com/bureau-foundation/armada/lib/ursula"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL,
	started_at TEXT NOT NULL,
	ended_at   TEXT,
	outcome    TEXT
);
CREATE TABLE IF NOT EXISTS events (
	run_id      TEXT    NOT NULL,
	sequence    INTEGER NOT NULL,
	recorded_at TEXT    NOT NULL,
	pid         INTEGER NOT NULL,
	type        TEXT    NOT NULL,
	x           INTEGER,
	y           INTEGER,
	food        INTEGER,
	gold        INTEGER,
	PRIMARY KEY (run_id, sequence)
);
CREATE TABLE IF NOT EXISTS combats (
	run_id   TEXT    NOT NULL,
	sequence INTEGER NOT NULL,
	x        INTEGER NOT NULL,
	y        INTEGER NOT NULL,
	winner   INTEGER NOT NULL,
	pool     INTEGER NOT NULL,
	subsidy  INTEGER NOT NULL,
	bankrupt INTEGER NOT NULL,
	detail   BLOB    NOT NULL,
	PRIMARY KEY (run_id, sequence)
);
`

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA temp_store=MEMORY",
}

// Config describes a journal database.
type Config struct {
	// Path is the database file; it is created if missing. The parent
	// directory must exist.
	Path string

	// Clock stamps rows. Nil means the real clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Journal is an open journal database. It is safe for concurrent use.
type Journal struct {
	pool   *sqlitex.Pool
	path   string
	clock  clock.Clock
	logger *slog.Logger
}

// Open opens or creates the journal at config.Path and ensures the
// schema exists.
func Open(ctx context.Context, config Config) (*Journal, error) {
	if config.Path == "" {
		return nil, errors.New("journal: path is required")
	}

	pool, err := sqlitex.NewPool(config.Path, sqlitex.PoolOptions{
		PoolSize: 2,
		PrepareConn: func(conn *sqlite.Conn) error {
			for _, pragma := range pragmas {
				if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
					return fmt.Errorf("%s: %w", pragma, err)
				}
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("journal: opening %s: %w", config.Path, err)
	}

	j := &Journal{pool: pool, path: config.Path, clock: config.Clock, logger: config.Logger}
	if j.clock == nil {
		j.clock = clock.Real()
	}
	if j.logger == nil {
		j.logger = slog.New(slog.DiscardHandler)
	}

	if err := j.with(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.ExecuteScript(conn, schema, nil)
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("journal: creating schema in %s: %w", config.Path, err)
	}

	j.logger.Info("journal opened", "path", config.Path)
	return j, nil
}

// with runs fn on a pooled connection.
func (j *Journal) with(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	conn, err := j.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("journal: take connection: %w", err)
	}
	defer j.pool.Put(conn)
	return fn(conn)
}

func (j *Journal) now() string {
	return j.clock.Now().UTC().Format(time.RFC3339Nano)
}

// Close releases every connection.
func (j *Journal) Close() error {
	if err := j.pool.Close(); err != nil {
		return fmt.Errorf("journal: closing %s: %w", j.path, err)
	}
	return nil
}

// Run is one arbiter session. It is used from a single goroutine.
type Run struct {
	journal *Journal
	id      string
	events  int
	combats int
}

// Begin starts a new run.
func (j *Journal) Begin(ctx context.Context, label string) (*Run, error) {
	id := uuid.NewString()
	err := j.with(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"INSERT INTO runs (id, label, started_at) VALUES (?, ?, ?)",
			&sqlitex.ExecOptions{Args: []any{id, label, j.now()}})
	})
	if err != nil {
		return nil, fmt.Errorf("journal: beginning run: %w", err)
	}
	j.logger.Info("journal run started", "run_id", id, "label", label)
	return &Run{journal: j, id: id}, nil
}

// ID returns the run's UUID.
func (r *Run) ID() string { return r.id }

// RecordEvent appends one bus event.
func (r *Run) RecordEvent(ctx context.Context, event protocol.Event) error {
	r.events++
	sequence := r.events
	return r.journal.with(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			`INSERT INTO events (run_id, sequence, recorded_at, pid, type, x, y, food, gold)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				r.id, sequence, r.journal.now(),
				event.PID, string(event.Type),
				event.X, event.Y, event.Food, event.Gold,
			}})
		if err != nil {
			return fmt.Errorf("journal: recording event %d: %w", sequence, err)
		}
		return nil
	})
}

// RecordCombat appends one settled (or bankrupting) combat.
func (r *Run) RecordCombat(ctx context.Context, outcome ursula.CombatOutcome) error {
	detail, err := codec.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("journal: encoding combat: %w", err)
	}
	r.combats++
	sequence := r.combats
	return r.journal.with(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			`INSERT INTO combats (run_id, sequence, x, y, winner, pool, subsidy, bankrupt, detail)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				r.id, sequence, outcome.X, outcome.Y,
				outcome.Winner, outcome.Pool, outcome.Subsidy, boolInt(outcome.Bankrupt),
				detail,
			}})
		if err != nil {
			return fmt.Errorf("journal: recording combat %d: %w", sequence, err)
		}
		return nil
	})
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// End stamps the run with its outcome.
func (r *Run) End(ctx context.Context, outcome string) error {
	return r.journal.with(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			"UPDATE runs SET ended_at = ?, outcome = ? WHERE id = ?",
			&sqlitex.ExecOptions{Args: []any{r.journal.now(), outcome, r.id}})
		if err != nil {
			return fmt.Errorf("journal: ending run %s: %w", r.id, err)
		}
		return nil
	})
}

// Summary is the row count of one run.
type Summary struct {
	ID        string
	Label     string
	StartedAt string
	Outcome   string
	Events    int
	Combats   int
}

const summaryQuery = `SELECT id, label, started_at, COALESCE(outcome, ''),
	        (SELECT COUNT(*) FROM events WHERE run_id = runs.id),
	        (SELECT COUNT(*) FROM combats WHERE run_id = runs.id)
	 FROM runs`

func scanSummary(stmt *sqlite.Stmt) Summary {
	return Summary{
		ID:        stmt.ColumnText(0),
		Label:     stmt.ColumnText(1),
		StartedAt: stmt.ColumnText(2),
		Outcome:   stmt.ColumnText(3),
		Events:    stmt.ColumnInt(4),
		Combats:   stmt.ColumnInt(5),
	}
}

// Summarize reads back the totals for runID. The arbiter never calls
// it; it exists for operators and tests.
func (j *Journal) Summarize(ctx context.Context, runID string) (Summary, error) {
	var summary Summary
	found := false
	err := j.with(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, summaryQuery+" WHERE id = ?", &sqlitex.ExecOptions{
			Args: []any{runID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				summary = scanSummary(stmt)
				return nil
			},
		})
	})
	if err != nil {
		return Summary{}, fmt.Errorf("journal: summarizing %s: %w", runID, err)
	}
	if !found {
		return Summary{}, fmt.Errorf("journal: no run %s", runID)
	}
	return summary, nil
}

// Runs summarizes every run, oldest first.
func (j *Journal) Runs(ctx context.Context) ([]Summary, error) {
	var summaries []Summary
	err := j.with(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, summaryQuery+" ORDER BY started_at, id", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				summaries = append(summaries, scanSummary(stmt))
				return nil
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("journal: listing runs: %w", err)
	}
	return summaries, nil
}
