package contacts

type Contact struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	PhoneNumber    string  `json:"phone_number"`
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	OptedOut       bool    `json:"opted_out"`
	OptedOutAt     *int64  `json:"opted_out_at,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	CreatedAt      int64   `json:"created_at"`
	UpdatedAt      int64   `json:"updated_at"`
}

// ImportReport summarizes a bulk contact import.
type ImportReport struct {
	Created  int        `json:"created"`
	Skipped  int        `json:"skipped"`
	Invalid  []string   `json:"invalid,omitempty"`
	Contacts []*Contact `json:"contacts"`
}
