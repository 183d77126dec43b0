package conversations

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("conversation not found")
	ErrNotActive    = errors.New("conversation is not active")
	ErrInvalidType  = errors.New("invalid conversation type")
	ErrInvalidRole  = errors.New("invalid message role")
	ErrInvalidState = errors.New("invalid conversation state transition")
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

type OpenInput struct {
	ContactID *string `json:"contact_id"`
	Type      string  `json:"type"`
	Direction *string `json:"direction"`
}

// Open starts a conversation when a call or text session begins.
func (s *Service) Open(orgID string, in OpenInput) (*Conversation, error) {
	if in.Type != TypeCall && in.Type != TypeText {
		return nil, ErrInvalidType
	}
	if in.Direction != nil && *in.Direction != DirectionInbound && *in.Direction != DirectionOutbound {
		return nil, ErrInvalidState
	}

	now := time.Now().Unix()
	conv := &Conversation{
		ID:             "cnv_" + uuid.NewString(),
		OrganizationID: orgID,
		ContactID:      in.ContactID,
		Type:           in.Type,
		Status:         StatusActive,
		Direction:      in.Direction,
		StartedAt:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *Service) Get(orgID, id string) (*Conversation, error) {
	conv, err := s.repo.GetByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrNotFound
	}
	return conv, nil
}

func (s *Service) List(orgID string, filter ListFilter) ([]*Conversation, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(orgID, filter)
}

// Append adds one turn to an active conversation.
func (s *Service) Append(orgID, conversationID, role, content string) (*Message, error) {
	if role != RoleUser && role != RoleAssistant && role != RoleSystem {
		return nil, ErrInvalidRole
	}

	conv, err := s.Get(orgID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Status != StatusActive {
		return nil, ErrNotActive
	}

	msg := &Message{
		ID:             "msg_" + uuid.NewString(),
		ConversationID: conv.ID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().Unix(),
	}
	if err := s.repo.AppendMessage(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) Messages(orgID, conversationID string) ([]*Message, error) {
	if _, err := s.Get(orgID, conversationID); err != nil {
		return nil, err
	}
	return s.repo.Messages(conversationID)
}

type CloseInput struct {
	Summary   *string `json:"summary"`
	Sentiment *string `json:"sentiment"`
}

// Close ends an active conversation and records its duration.
func (s *Service) Close(orgID, id string, in CloseInput) (*Conversation, error) {
	conv, err := s.Get(orgID, id)
	if err != nil {
		return nil, err
	}
	if conv.Status != StatusActive {
		return nil, ErrNotActive
	}
	if in.Sentiment != nil {
		switch *in.Sentiment {
		case SentimentPositive, SentimentNeutral, SentimentNegative:
		default:
			return nil, ErrInvalidState
		}
	}

	endedAt := time.Now().Unix()
	duration := endedAt - conv.StartedAt
	if duration < 0 {
		duration = 0
	}

	if err := s.repo.Close(orgID, id, endedAt, duration, in.Summary, in.Sentiment); err != nil {
		return nil, err
	}
	return s.Get(orgID, id)
}

func (s *Service) Archive(orgID, id string) (*Conversation, error) {
	conv, err := s.Get(orgID, id)
	if err != nil {
		return nil, err
	}
	if conv.Status == StatusArchived {
		return nil, ErrInvalidState
	}
	if err := s.repo.SetStatus(orgID, id, StatusArchived); err != nil {
		return nil, err
	}
	return s.Get(orgID, id)
}
