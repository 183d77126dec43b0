package scripts

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("script not found")
	ErrInvalidType = errors.New("invalid script type")
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(orgID string) ([]*Script, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, script_type, content, is_active, created_at, updated_at
		FROM ai_scripts WHERE organization_id = ?
		ORDER BY script_type
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Script
	for rows.Next() {
		s := &Script{}
		if err := rows.Scan(&s.ID, &s.OrganizationID, &s.Type, &s.Content, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) GetByType(orgID, scriptType string) (*Script, error) {
	s := &Script{}
	err := r.db.QueryRow(`
		SELECT id, organization_id, script_type, content, is_active, created_at, updated_at
		FROM ai_scripts WHERE organization_id = ? AND script_type = ?
	`, orgID, scriptType).Scan(&s.ID, &s.OrganizationID, &s.Type, &s.Content, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// Upsert writes the single script slot an organization has per type.
func (r *Repository) Upsert(orgID, scriptType, content string) (*Script, error) {
	if !ValidType(scriptType) {
		return nil, ErrInvalidType
	}

	now := time.Now().Unix()
	_, err := r.db.Exec(`
		INSERT INTO ai_scripts (id, organization_id, script_type, content, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (organization_id, script_type)
		DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at
	`, "scr_"+uuid.NewString(), orgID, scriptType, content, now, now)
	if err != nil {
		return nil, err
	}
	return r.GetByType(orgID, scriptType)
}

func (r *Repository) SetActive(orgID, scriptType string, active bool) (*Script, error) {
	if !ValidType(scriptType) {
		return nil, ErrInvalidType
	}

	res, err := r.db.Exec(`
		UPDATE ai_scripts SET is_active = ?, updated_at = ?
		WHERE organization_id = ? AND script_type = ?
	`, active, time.Now().Unix(), orgID, scriptType)
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
	return r.GetByType(orgID, scriptType)
}
