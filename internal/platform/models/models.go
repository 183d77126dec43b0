package models

// Plan tiers.
const (
	PlanTrial   = "trial"
	PlanTextAI  = "text_ai"
	PlanVoiceAI = "voice_ai"
	PlanFullAI  = "full_ai"
)

// Plan statuses.
const (
	PlanStatusTrialing = "trialing"
	PlanStatusActive   = "active"
	PlanStatusPastDue  = "past_due"
	PlanStatusCanceled = "canceled"
)

// User roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Organization struct {
	ID                       string  `json:"id"`
	Name                     string  `json:"name"`
	OwnerExternalID          string  `json:"owner_external_id"`
	PhoneNumber              *string `json:"phone_number"`
	Plan                     string  `json:"plan"`
	PlanStatus               string  `json:"plan_status"`
	TrialEndsAt              *int64  `json:"trial_ends_at"`
	StripeCustomerID         *string `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID     *string `json:"stripe_subscription_id,omitempty"`
	BalanceCents             int64   `json:"balance_cents"`
	AutoReloadEnabled        bool    `json:"auto_reload_enabled"`
	AutoReloadThresholdCents int64   `json:"auto_reload_threshold_cents"`
	AutoReloadAmountCents    int64   `json:"auto_reload_amount_cents"`
	FreeEditsRemaining       int     `json:"free_edits_remaining"`
	FreeRegensRemaining      int     `json:"free_regens_remaining"`
	CreatedAt                int64   `json:"created_at"`
	UpdatedAt                int64   `json:"updated_at"`
}

type User struct {
	ID             string  `json:"id"`
	ExternalID     string  `json:"external_id"`
	OrganizationID *string `json:"organization_id"`
	Email          string  `json:"email"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Role           string  `json:"role"`
	CreatedAt      int64   `json:"created_at"`
	UpdatedAt      int64   `json:"updated_at"`
}
