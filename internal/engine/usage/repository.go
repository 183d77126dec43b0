package usage

import (
	"database/sql"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertTx(tx *sql.Tx, event *Event) error {
	_, err := tx.Exec(`
		INSERT INTO usage_events (id, organization_id, usage_type, quantity, cost_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.ID, event.OrganizationID, event.Type, event.Quantity, event.CostCents, event.CreatedAt)
	return err
}

func (r *Repository) List(orgID string, since int64, limit int) ([]*Event, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, usage_type, quantity, cost_cents, created_at
		FROM usage_events
		WHERE organization_id = ? AND created_at >= ?
		ORDER BY created_at DESC
		LIMIT ?
	`, orgID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Type, &e.Quantity, &e.CostCents, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) Summarize(orgID string, since int64) (*Summary, error) {
	rows, err := r.db.Query(`
		SELECT usage_type, SUM(quantity), SUM(cost_cents)
		FROM usage_events
		WHERE organization_id = ? AND created_at >= ?
		GROUP BY usage_type
	`, orgID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &Summary{Totals: make(map[string]TypeTotal)}
	for rows.Next() {
		var usageType string
		var total TypeTotal
		if err := rows.Scan(&usageType, &total.Quantity, &total.CostCents); err != nil {
			return nil, err
		}
		summary.Totals[usageType] = total
		summary.TotalCostCents += total.CostCents
	}
	return summary, rows.Err()
}
