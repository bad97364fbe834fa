package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// EventKind classifies a pipeline event.
type EventKind string

const (
	// EventKindDirective is a navigation directive change (stop, warn, clear).
	EventKindDirective EventKind = "directive"
	// EventKindDetection is an announced object or currency detection.
	EventKindDetection EventKind = "detection"
	// EventKindText is a recognized text snippet.
	EventKindText EventKind = "text"
	// EventKindMode is an operating mode change.
	EventKindMode EventKind = "mode"
)

// Event is one recorded pipeline outcome.
type Event struct {
	ID         string    `json:"id"`
	Generation uint64    `json:"generation"`
	Kind       EventKind `json:"kind"`
	Label      string    `json:"label"`
	Score      float64   `json:"score"`
	DistanceMM int       `json:"distance_mm"`
	Directive  string    `json:"directive"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventRepository provides access to recorded events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts a new event. A missing ID is filled with a fresh UUID.
func (r *EventRepository) Create(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO events (id, generation, kind, label, score, distance_mm, directive, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Generation, string(e.Kind), e.Label, e.Score, e.DistanceMM, e.Directive, e.CreatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	e := &Event{}
	var kind string

	err := r.db.QueryRow(
		`SELECT id, generation, kind, label, score, distance_mm, directive, created_at
		 FROM events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Generation, &kind, &e.Label, &e.Score, &e.DistanceMM, &e.Directive, &e.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	e.Kind = EventKind(kind)
	return e, nil
}

// List retrieves the most recent events, newest first, up to limit.
// A limit of zero or below returns all events.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	query := `SELECT id, generation, kind, label, score, distance_mm, directive, created_at
		 FROM events ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var kind string

		err := rows.Scan(&e.ID, &e.Generation, &kind, &e.Label, &e.Score, &e.DistanceMM, &e.Directive, &e.CreatedAt)
		if err != nil {
			return nil, err
		}

		e.Kind = EventKind(kind)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Prune deletes events older than the cutoff and returns how many were
// removed.
func (r *EventRepository) Prune(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
