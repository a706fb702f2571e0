package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/simulation"
)

// ErrEncounterNotFound is returned when a journal lookup yields no results.
var ErrEncounterNotFound = errors.New("encounter not found")

// Entry is a journaled encounter as stored.
type Entry struct {
	ID         uuid.UUID
	Name       string
	Outcome    string
	Winner     string
	Rounds     int
	Survivors  []string
	StartedAt  time.Time
	FinishedAt time.Time
	RecordedAt time.Time
}

// JournalRepository stores encounter summaries and their log lines.
type JournalRepository struct {
	db *pgxpool.Pool
}

// NewJournalRepository creates a JournalRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewJournalRepository(db *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{db: db}
}

// Record inserts s and every log line in one transaction.
//
// Precondition: s must not be nil.
// Postcondition: either the encounter and all lines are stored, or nothing is.
func (r *JournalRepository) Record(ctx context.Context, s *simulation.Summary) error {
	survivors := s.Survivors
	if survivors == nil {
		survivors = []string{}
	}
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO encounters (id, name, outcome, winner, rounds, survivors, started_at, finished_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.ID, s.Name, string(s.Outcome), s.Winner, s.Rounds, survivors, s.StartedAt, s.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting encounter %s: %w", s.ID, err)
		}
		if len(s.Log) == 0 {
			return nil
		}
		rows := make([][]any, len(s.Log))
		for i, line := range s.Log {
			rows[i] = []any{s.ID, i, line}
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"encounter_log"},
			[]string{"encounter_id", "seq", "line"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("inserting log for encounter %s: %w", s.ID, err)
		}
		return nil
	})
}

// Get returns the stored encounter with id.
//
// Postcondition: Returns ErrEncounterNotFound when no row matches.
func (r *JournalRepository) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	var e Entry
	err := r.db.QueryRow(ctx,
		`SELECT id, name, outcome, winner, rounds, survivors, started_at, finished_at, recorded_at
		 FROM encounters WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Name, &e.Outcome, &e.Winner, &e.Rounds, &e.Survivors, &e.StartedAt, &e.FinishedAt, &e.RecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrEncounterNotFound
		}
		return Entry{}, fmt.Errorf("querying encounter %s: %w", id, err)
	}
	return e, nil
}

// Log returns the stored log lines of encounter id in order.
func (r *JournalRepository) Log(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT line FROM encounter_log WHERE encounter_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("querying log for encounter %s: %w", id, err)
	}
	lines, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning log for encounter %s: %w", id, err)
	}
	return lines, nil
}

// Recent returns up to limit encounters, newest first.
func (r *JournalRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, outcome, winner, rounds, survivors, started_at, finished_at, recorded_at
		 FROM encounters ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent encounters: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Outcome, &e.Winner, &e.Rounds, &e.Survivors, &e.StartedAt, &e.FinishedAt, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning encounter: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ simulation.Recorder = (*JournalRepository)(nil)
