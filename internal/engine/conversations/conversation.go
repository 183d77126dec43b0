package conversations

// Conversation types.
const (
	TypeCall = "call"
	TypeText = "text"
)

// Conversation statuses.
const (
	StatusActive   = "active"
	StatusClosed   = "closed"
	StatusArchived = "archived"
)

// Directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Sentiments.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type Conversation struct {
	ID              string  `json:"id"`
	OrganizationID  string  `json:"organization_id"`
	ContactID       *string `json:"contact_id,omitempty"`
	Type            string  `json:"type"`
	Status          string  `json:"status"`
	Direction       *string `json:"direction,omitempty"`
	StartedAt       int64   `json:"started_at"`
	EndedAt         *int64  `json:"ended_at,omitempty"`
	DurationSeconds *int64  `json:"duration_seconds,omitempty"`
	Summary         *string `json:"summary,omitempty"`
	Sentiment       *string `json:"sentiment,omitempty"`
	CreatedAt       int64   `json:"created_at"`
	UpdatedAt       int64   `json:"updated_at"`
}

// Message is one turn in a conversation. Messages are append-only.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	CreatedAt      int64  `json:"created_at"`
}
