package conversations

import (
	"database/sql"
	"time"
)

const columns = `id, organization_id, contact_id, conversation_type, status, direction,
	started_at, ended_at, duration_seconds, summary, sentiment, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(conv *Conversation) error {
	_, err := r.db.Exec(`
		INSERT INTO conversations (id, organization_id, contact_id, conversation_type, status, direction,
			started_at, ended_at, duration_seconds, summary, sentiment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, conv.ID, conv.OrganizationID, conv.ContactID, conv.Type, conv.Status, conv.Direction,
		conv.StartedAt, conv.EndedAt, conv.DurationSeconds, conv.Summary, conv.Sentiment,
		conv.CreatedAt, conv.UpdatedAt)
	return err
}

func scanConversation(row interface{ Scan(...interface{}) error }) (*Conversation, error) {
	c := &Conversation{}
	err := row.Scan(&c.ID, &c.OrganizationID, &c.ContactID, &c.Type, &c.Status, &c.Direction,
		&c.StartedAt, &c.EndedAt, &c.DurationSeconds, &c.Summary, &c.Sentiment,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) GetByID(orgID, id string) (*Conversation, error) {
	row := r.db.QueryRow(`SELECT `+columns+` FROM conversations WHERE organization_id = ? AND id = ?`, orgID, id)
	conv, err := scanConversation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return conv, nil
}

type ListFilter struct {
	Type   string
	Status string
	Limit  int
	Offset int
}

func (r *Repository) List(orgID string, filter ListFilter) ([]*Conversation, error) {
	query := `SELECT ` + columns + ` FROM conversations WHERE organization_id = ?`
	args := []interface{}{orgID}

	if filter.Type != "" {
		query += ` AND conversation_type = ?`
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY started_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) Close(orgID, id string, endedAt, duration int64, summary, sentiment *string) error {
	_, err := r.db.Exec(`
		UPDATE conversations
		SET status = ?, ended_at = ?, duration_seconds = ?, summary = ?, sentiment = ?, updated_at = ?
		WHERE organization_id = ? AND id = ?
	`, StatusClosed, endedAt, duration, summary, sentiment, time.Now().Unix(), orgID, id)
	return err
}

func (r *Repository) SetStatus(orgID, id, status string) error {
	_, err := r.db.Exec(`
		UPDATE conversations SET status = ?, updated_at = ? WHERE organization_id = ? AND id = ?
	`, status, time.Now().Unix(), orgID, id)
	return err
}

func (r *Repository) AppendMessage(msg *Message) error {
	_, err := r.db.Exec(`
		INSERT INTO messages (id, conversation_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.CreatedAt)
	return err
}

// Messages returns the transcript in insertion order. created_at has second
// precision, so rowid is the tiebreaker for turns appended within one second.
func (r *Repository) Messages(conversationID string) ([]*Message, error) {
	rows, err := r.db.Query(`
		SELECT id, conversation_id, role, content, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY rowid ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
