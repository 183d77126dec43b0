package usage

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"frontdesk/internal/platform/repositories"
)

var (
	ErrInvalidType     = errors.New("invalid usage type")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

type Service struct {
	repo    *Repository
	orgRepo *repositories.OrganizationRepository
}

func NewService(repo *Repository, orgRepo *repositories.OrganizationRepository) *Service {
	return &Service{repo: repo, orgRepo: orgRepo}
}

// Record appends one ledger event and debits the organization balance in the
// same transaction. AI edits and regenerations consume free-tier counters
// first and cost nothing while any remain. The debit floors at zero; the
// ledger row always carries the full cost so shortfalls stay reconcilable.
func (s *Service) Record(orgID, usageType string, quantity int64) (*Event, error) {
	rate, ok := rates[usageType]
	if !ok {
		return nil, ErrInvalidType
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	// Edits and regenerations are single actions; a larger quantity would let
	// one free counter cover the whole batch.
	if (usageType == TypeAIEdit || usageType == TypeAIRegen) && quantity != 1 {
		return nil, ErrInvalidQuantity
	}

	tx, err := s.orgRepo.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	cost := rate * quantity

	switch usageType {
	case TypeAIEdit:
		free, err := s.orgRepo.ConsumeFreeEdit(tx, orgID)
		if err != nil {
			return nil, err
		}
		if free {
			cost = 0
		}
	case TypeAIRegen:
		free, err := s.orgRepo.ConsumeFreeRegen(tx, orgID)
		if err != nil {
			return nil, err
		}
		if free {
			cost = 0
		}
	}

	event := &Event{
		ID:             "use_" + uuid.NewString(),
		OrganizationID: orgID,
		Type:           usageType,
		Quantity:       quantity,
		CostCents:      cost,
		CreatedAt:      time.Now().Unix(),
	}

	if err := s.repo.InsertTx(tx, event); err != nil {
		return nil, err
	}
	if cost > 0 {
		if err := s.orgRepo.DebitBalanceFloor(tx, orgID, cost); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return event, nil
}

func (s *Service) Summary(orgID string, since int64) (*Summary, error) {
	return s.repo.Summarize(orgID, since)
}

func (s *Service) Events(orgID string, since int64, limit int) ([]*Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.List(orgID, since, limit)
}

// Rate exposes the per-unit price for a usage type, in cents.
func Rate(usageType string) (int64, bool) {
	rate, ok := rates[usageType]
	return rate, ok
}
