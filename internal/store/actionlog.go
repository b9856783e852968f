package store

import (
	"database/sql"
	"time"
)

// Action sources.
const (
	SourceGesture = "gesture"
	SourceManual  = "manual"
)

// ActionEntry is one dispatched action.
type ActionEntry struct {
	ID      int64     `json:"id"`
	Action  string    `json:"action"`
	Label   string    `json:"label,omitempty"`
	Source  string    `json:"source"`
	Message string    `json:"message,omitempty"`
	FiredAt time.Time `json:"fired_at"`
}

// ActionLogRepository appends to and reads the action log.
type ActionLogRepository struct {
	db *sql.DB
}

// ActionLog returns the action log repository for this store.
func (s *Store) ActionLog() *ActionLogRepository {
	return &ActionLogRepository{db: s.db}
}

// Append records e and fills in its ID.
func (r *ActionLogRepository) Append(e *ActionEntry) error {
	if e.Source == "" {
		e.Source = SourceGesture
	}
	if e.FiredAt.IsZero() {
		e.FiredAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO action_log (action, label, source, message, fired_at) VALUES (?, ?, ?, ?, ?)`,
		e.Action, e.Label, e.Source, e.Message, e.FiredAt,
	)
	if err != nil {
		return err
	}

	e.ID, err = result.LastInsertId()
	return err
}

// Recent returns up to limit entries, newest first.
func (r *ActionLogRepository) Recent(limit int) ([]ActionEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, action, label, source, message, fired_at
		 FROM action_log ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ActionEntry
	for rows.Next() {
		var e ActionEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Label, &e.Source, &e.Message, &e.FiredAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Counts returns how many times each action was dispatched.
func (r *ActionLogRepository) Counts() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT action, COUNT(*) FROM action_log GROUP BY action`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		out[action] = n
	}
	return out, rows.Err()
}
