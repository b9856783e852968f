package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// MediaKind distinguishes stills from recordings.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// Photo is one gallery item. Data holds the encoded still; recordings live on disk
// at Path.
type Photo struct {
	ID        string    `json:"id"`
	Kind      MediaKind `json:"kind"`
	Filter    string    `json:"filter"`
	MIME      string    `json:"mime"`
	Data      []byte    `json:"-"`
	Path      string    `json:"path,omitempty"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// PhotoRepository provides CRUD operations for gallery items.
type PhotoRepository struct {
	db *sql.DB
}

// Photos returns the gallery repository for this store.
func (s *Store) Photos() *PhotoRepository {
	return &PhotoRepository{db: s.db}
}

// Create inserts p. CreatedAt is set when zero and Size defaults to len(Data).
func (r *PhotoRepository) Create(p *Photo) error {
	if p.ID == "" {
		return errors.New("photo id is required")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.Size == 0 {
		p.Size = int64(len(p.Data))
	}

	_, err := r.db.Exec(
		`INSERT INTO photos (id, kind, filter, mime, data, path, size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.Kind), p.Filter, p.MIME, p.Data, p.Path, p.Size, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert photo %s: %w", p.ID, err)
	}
	return nil
}

// Get retrieves a gallery item including its data.
func (r *PhotoRepository) Get(id string) (*Photo, error) {
	p := &Photo{}
	var kind string

	err := r.db.QueryRow(
		`SELECT id, kind, filter, mime, data, path, size, created_at
		 FROM photos WHERE id = ?`,
		id,
	).Scan(&p.ID, &kind, &p.Filter, &p.MIME, &p.Data, &p.Path, &p.Size, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.Kind = MediaKind(kind)
	return p, nil
}

// List returns every gallery item, newest first, without data.
func (r *PhotoRepository) List() ([]*Photo, error) {
	rows, err := r.db.Query(
		`SELECT id, kind, filter, mime, path, size, created_at
		 FROM photos ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		p := &Photo{}
		var kind string
		if err := rows.Scan(&p.ID, &kind, &p.Filter, &p.MIME, &p.Path, &p.Size, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Kind = MediaKind(kind)
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return photos, nil
}

// Latest returns the most recent gallery item including its data.
func (r *PhotoRepository) Latest() (*Photo, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM photos ORDER BY created_at DESC, rowid DESC LIMIT 1`).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.Get(id)
}

// Count returns the number of gallery items.
func (r *PhotoRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM photos`).Scan(&n)
	return n, err
}

// Delete removes a gallery item by its ID.
func (r *PhotoRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
