package scripts

// Script types, one slot of each per organization.
const (
	TypeGreeting  = "greeting"
	TypeVoicemail = "voicemail"
	TypeHold      = "hold"
	TypeTransfer  = "transfer"
	TypeClosing   = "closing"
)

type Script struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Type           string `json:"type"`
	Content        string `json:"content"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

// Starter content applied when a script is regenerated. Placeholders are
// filled in client-side with the organization's details.
var defaults = map[string]string{
	TypeGreeting:  "Thanks for calling {business_name}! How can I help you today?",
	TypeVoicemail: "You've reached {business_name}. We can't take your call right now, but leave your name and number and we'll get right back to you.",
	TypeHold:      "One moment please while I look that up for you.",
	TypeTransfer:  "Let me connect you with someone who can help with that.",
	TypeClosing:   "Thanks for reaching out to {business_name}. Have a great day!",
}

func DefaultContent(t string) (string, bool) {
	content, ok := defaults[t]
	return content, ok
}

func ValidType(t string) bool {
	switch t {
	case TypeGreeting, TypeVoicemail, TypeHold, TypeTransfer, TypeClosing:
		return true
	}
	return false
}
