package contacts

import (
	"database/sql"
	"time"
)

const columns = `id, organization_id, phone_number, name, email, opted_out, opted_out_at, notes, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(contact *Contact) error {
	_, err := r.db.Exec(`
		INSERT INTO contacts (id, organization_id, phone_number, name, email, opted_out, opted_out_at, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, contact.ID, contact.OrganizationID, contact.PhoneNumber, contact.Name, contact.Email,
		contact.OptedOut, contact.OptedOutAt, contact.Notes, contact.CreatedAt, contact.UpdatedAt)
	return err
}

func scanContact(row interface{ Scan(...interface{}) error }) (*Contact, error) {
	c := &Contact{}
	err := row.Scan(&c.ID, &c.OrganizationID, &c.PhoneNumber, &c.Name, &c.Email,
		&c.OptedOut, &c.OptedOutAt, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) GetByID(orgID, id string) (*Contact, error) {
	row := r.db.QueryRow(`SELECT `+columns+` FROM contacts WHERE organization_id = ? AND id = ?`, orgID, id)
	contact, err := scanContact(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return contact, nil
}

func (r *Repository) GetByPhone(orgID, phone string) (*Contact, error) {
	row := r.db.QueryRow(`SELECT `+columns+` FROM contacts WHERE organization_id = ? AND phone_number = ?`, orgID, phone)
	contact, err := scanContact(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return contact, nil
}

func (r *Repository) List(orgID string, limit, offset int) ([]*Contact, error) {
	rows, err := r.db.Query(`
		SELECT `+columns+` FROM contacts
		WHERE organization_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) Update(contact *Contact) error {
	contact.UpdatedAt = time.Now().Unix()
	_, err := r.db.Exec(`
		UPDATE contacts
		SET phone_number = ?, name = ?, email = ?, notes = ?, updated_at = ?
		WHERE organization_id = ? AND id = ?
	`, contact.PhoneNumber, contact.Name, contact.Email, contact.Notes, contact.UpdatedAt,
		contact.OrganizationID, contact.ID)
	return err
}

func (r *Repository) SetOptOut(orgID, id string, optedOut bool) error {
	now := time.Now().Unix()
	var optedOutAt *int64
	if optedOut {
		optedOutAt = &now
	}
	_, err := r.db.Exec(`
		UPDATE contacts SET opted_out = ?, opted_out_at = ?, updated_at = ?
		WHERE organization_id = ? AND id = ?
	`, optedOut, optedOutAt, now, orgID, id)
	return err
}

func (r *Repository) Delete(orgID, id string) error {
	_, err := r.db.Exec(`DELETE FROM contacts WHERE organization_id = ? AND id = ?`, orgID, id)
	return err
}
