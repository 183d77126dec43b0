package contacts

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"frontdesk/internal/pkg/validator"
)

var (
	ErrNotFound       = errors.New("contact not found")
	ErrDuplicatePhone = errors.New("a contact with this phone number already exists")
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	PhoneNumber string  `json:"phone_number"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Notes       *string `json:"notes"`
}

func (s *Service) Create(orgID string, in CreateInput) (*Contact, error) {
	phone, err := validator.NormalizePhone(in.PhoneNumber)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByPhone(orgID, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicatePhone
	}

	now := time.Now().Unix()
	contact := &Contact{
		ID:             "cnt_" + uuid.NewString(),
		OrganizationID: orgID,
		PhoneNumber:    phone,
		Name:           in.Name,
		Email:          in.Email,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Ensure returns the contact with this phone number, creating a bare record
// when the caller is unknown. Used by the telephony pipeline to link every
// conversation to a contact.
func (s *Service) Ensure(orgID, rawPhone string) (*Contact, error) {
	phone, err := validator.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByPhone(orgID, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	contact, err := s.Create(orgID, CreateInput{PhoneNumber: phone})
	if errors.Is(err, ErrDuplicatePhone) {
		// Lost a race with a concurrent webhook for the same caller.
		return s.repo.GetByPhone(orgID, phone)
	}
	return contact, err
}

// Import bulk-creates contacts, skipping duplicates and collecting invalid
// numbers instead of failing the batch.
func (s *Service) Import(orgID string, inputs []CreateInput) (*ImportReport, error) {
	report := &ImportReport{}

	for _, in := range inputs {
		contact, err := s.Create(orgID, in)
		switch {
		case err == nil:
			report.Created++
			report.Contacts = append(report.Contacts, contact)
		case errors.Is(err, ErrDuplicatePhone):
			report.Skipped++
		case errors.Is(err, validator.ErrInvalidPhone):
			report.Invalid = append(report.Invalid, in.PhoneNumber)
		default:
			return nil, err
		}
	}

	return report, nil
}

func (s *Service) Get(orgID, id string) (*Contact, error) {
	contact, err := s.repo.GetByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrNotFound
	}
	return contact, nil
}

func (s *Service) List(orgID string, limit, offset int) ([]*Contact, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(orgID, limit, offset)
}

type UpdateInput struct {
	PhoneNumber *string `json:"phone_number"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Notes       *string `json:"notes"`
}

func (s *Service) Update(orgID, id string, in UpdateInput) (*Contact, error) {
	contact, err := s.Get(orgID, id)
	if err != nil {
		return nil, err
	}

	if in.PhoneNumber != nil {
		phone, err := validator.NormalizePhone(*in.PhoneNumber)
		if err != nil {
			return nil, err
		}
		if phone != contact.PhoneNumber {
			dup, err := s.repo.GetByPhone(orgID, phone)
			if err != nil {
				return nil, err
			}
			if dup != nil {
				return nil, ErrDuplicatePhone
			}
			contact.PhoneNumber = phone
		}
	}
	if in.Name != nil {
		contact.Name = in.Name
	}
	if in.Email != nil {
		contact.Email = in.Email
	}
	if in.Notes != nil {
		contact.Notes = in.Notes
	}

	if err := s.repo.Update(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// OptOut flags a contact so the messaging pipeline suppresses outbound
// automation for it.
func (s *Service) OptOut(orgID, id string) (*Contact, error) {
	if _, err := s.Get(orgID, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetOptOut(orgID, id, true); err != nil {
		return nil, err
	}
	return s.Get(orgID, id)
}

func (s *Service) OptIn(orgID, id string) (*Contact, error) {
	if _, err := s.Get(orgID, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetOptOut(orgID, id, false); err != nil {
		return nil, err
	}
	return s.Get(orgID, id)
}

func (s *Service) Delete(orgID, id string) error {
	if _, err := s.Get(orgID, id); err != nil {
		return err
	}
	return s.repo.Delete(orgID, id)
}
