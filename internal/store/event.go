package store

import (
	"database/sql"
	"errors"
	"time"
)

// EventStatus is the dispatch state of a stored event.
type EventStatus string

const (
	StatusPending    EventStatus = "pending"
	StatusDispatched EventStatus = "dispatched"
	StatusFailed     EventStatus = "failed"
	StatusDropped    EventStatus = "dropped"
)

// Event is a confirmed gesture and what became of it.
type Event struct {
	ID           string      `json:"id"`
	Label        string      `json:"label"`
	Action       string      `json:"action,omitempty"`
	Status       EventStatus `json:"status"`
	Error        string      `json:"error,omitempty"`
	DetectedAt   time.Time   `json:"detected_at"`
	DispatchedAt *time.Time  `json:"dispatched_at,omitempty"`
	DurationMs   int64       `json:"duration_ms"`
}

// Outcome is the result of dispatching a stored event.
type Outcome struct {
	Action   string
	Err      error
	Duration time.Duration
	At       time.Time
}

// EventRepository reads and writes gesture events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

const eventColumns = `id, label, action, status, error, detected_at, dispatched_at, duration_ms`

// Create inserts e. An empty status is stored as pending.
func (r *EventRepository) Create(e *Event) error {
	if e.Status == "" {
		e.Status = StatusPending
	}

	_, err := r.db.Exec(
		`INSERT INTO gesture_events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Label, e.Action, string(e.Status), e.Error, e.DetectedAt.UTC(), nullTime(e.DispatchedAt), e.DurationMs,
	)
	return err
}

// RecordOutcome stores the dispatch result of event id.
func (r *EventRepository) RecordOutcome(id string, o Outcome) error {
	status, msg := StatusDispatched, ""
	if o.Err != nil {
		status, msg = StatusFailed, o.Err.Error()
	}
	at := o.At
	if at.IsZero() {
		at = time.Now()
	}

	result, err := r.db.Exec(
		`UPDATE gesture_events SET action = ?, status = ?, error = ?, dispatched_at = ?, duration_ms = ?
		 WHERE id = ?`,
		o.Action, string(status), msg, at.UTC(), o.Duration.Milliseconds(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// MarkDropped records that event id never reached a dispatcher.
func (r *EventRepository) MarkDropped(id string) error {
	result, err := r.db.Exec(
		`UPDATE gesture_events SET status = ? WHERE id = ?`, string(StatusDropped), id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// GetByID returns the event with the given id.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	row := r.db.QueryRow(`SELECT `+eventColumns+` FROM gesture_events WHERE id = ?`, id)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// List returns up to limit events, newest first. A limit <= 0 returns all.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT `+eventColumns+` FROM gesture_events ORDER BY detected_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByLabel returns how many events each label produced.
func (r *EventRepository) CountByLabel() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT label, COUNT(*) FROM gesture_events GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

// Prune deletes events detected before cutoff and returns how many were removed.
func (r *EventRepository) Prune(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM gesture_events WHERE detected_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	e := &Event{}
	var status string
	var dispatched sql.NullTime

	err := row.Scan(&e.ID, &e.Label, &e.Action, &status, &e.Error, &e.DetectedAt, &dispatched, &e.DurationMs)
	if err != nil {
		return nil, err
	}

	e.Status = EventStatus(status)
	if dispatched.Valid {
		t := dispatched.Time
		e.DispatchedAt = &t
	}
	return e, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
