package usage

// Billable unit types.
const (
	TypeCallMinute = "call_minute"
	TypeSMS        = "sms"
	TypeAIEdit     = "ai_edit"
	TypeAIRegen    = "ai_regen"
)

// Per-unit rates in cents.
var rates = map[string]int64{
	TypeCallMinute: 15,
	TypeSMS:        2,
	TypeAIEdit:     100,
	TypeAIRegen:    50,
}

type Event struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Type           string `json:"type"`
	Quantity       int64  `json:"quantity"`
	CostCents      int64  `json:"cost_cents"`
	CreatedAt      int64  `json:"created_at"`
}

// Summary aggregates the ledger per type over a period.
type Summary struct {
	Totals         map[string]TypeTotal `json:"totals"`
	TotalCostCents int64                `json:"total_cost_cents"`
}

type TypeTotal struct {
	Quantity  int64 `json:"quantity"`
	CostCents int64 `json:"cost_cents"`
}
