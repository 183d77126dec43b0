package knowledge

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("knowledge entry not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(orgID, title, content string) (*Entry, error) {
	now := time.Now().Unix()
	entry := &Entry{
		ID:             "kb_" + uuid.NewString(),
		OrganizationID: orgID,
		Title:          title,
		Content:        content,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	_, err := r.db.Exec(`
		INSERT INTO knowledge_base (id, organization_id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.OrganizationID, entry.Title, entry.Content, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *Repository) GetByID(orgID, id string) (*Entry, error) {
	e := &Entry{}
	err := r.db.QueryRow(`
		SELECT id, organization_id, title, content, created_at, updated_at
		FROM knowledge_base WHERE organization_id = ? AND id = ?
	`, orgID, id).Scan(&e.ID, &e.OrganizationID, &e.Title, &e.Content, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *Repository) List(orgID string) ([]*Entry, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, title, content, created_at, updated_at
		FROM knowledge_base WHERE organization_id = ?
		ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Title, &e.Content, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) Update(orgID, id, title, content string) (*Entry, error) {
	res, err := r.db.Exec(`
		UPDATE knowledge_base SET title = ?, content = ?, updated_at = ?
		WHERE organization_id = ? AND id = ?
	`, title, content, time.Now().Unix(), orgID, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(orgID, id)
}

func (r *Repository) Delete(orgID, id string) error {
	res, err := r.db.Exec(`DELETE FROM knowledge_base WHERE organization_id = ? AND id = ?`, orgID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
