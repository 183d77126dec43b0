package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"frontdesk/internal/platform/config"
	"frontdesk/internal/platform/identity"
	"frontdesk/internal/platform/models"
	"frontdesk/internal/platform/repositories"
)

var (
	// ErrOrphanedUser means a user row points at an organization that does
	// not exist. This is corrupted state, never "new user".
	ErrOrphanedUser = errors.New("user record references a missing organization")

	ErrCreateOrganization = errors.New("failed to create organization")
	ErrCreateUser         = errors.New("failed to create user")
)

// Result is the outcome of a sync: the caller's user and organization rows,
// and whether this call provisioned them.
type Result struct {
	User         *models.User         `json:"user"`
	Organization *models.Organization `json:"organization"`
	IsNew        bool                 `json:"isNew"`
}

// Service guarantees a local User and Organization exist for an external
// identity. It is a pure function of (identity, profile, datastore): all
// ambient auth state is resolved by the caller.
type Service struct {
	orgRepo  *repositories.OrganizationRepository
	userRepo *repositories.UserRepository
	billing  config.BillingConfig
}

func NewService(orgRepo *repositories.OrganizationRepository, userRepo *repositories.UserRepository, billing config.BillingConfig) *Service {
	return &Service{
		orgRepo:  orgRepo,
		userRepo: userRepo,
		billing:  billing,
	}
}

// Sync is idempotent per external id. First sight creates one organization
// and one owner user inside a single transaction; every later call returns
// the same rows. Two concurrent first calls are resolved by the UNIQUE
// constraint on users.external_id: the loser reloads the winner's rows.
func (s *Service) Sync(ctx context.Context, ident identity.Identity, profile identity.Profile) (*Result, error) {
	existing, err := s.userRepo.GetByExternalID(ident.ExternalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.load(existing)
	}

	result, err := s.provision(ident, profile)
	if err == nil {
		return result, nil
	}

	if isUniqueViolation(err) {
		winner, lookupErr := s.userRepo.GetByExternalID(ident.ExternalID)
		if lookupErr == nil && winner != nil {
			return s.load(winner)
		}
		return nil, err
	}

	return nil, err
}

func (s *Service) load(user *models.User) (*Result, error) {
	if user.OrganizationID == nil {
		return nil, fmt.Errorf("%w: user %s has no organization", ErrOrphanedUser, user.ID)
	}
	org, err := s.orgRepo.GetByID(*user.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, fmt.Errorf("%w: user %s -> organization %s", ErrOrphanedUser, user.ID, *user.OrganizationID)
	}
	return &Result{User: user, Organization: org, IsNew: false}, nil
}

func (s *Service) provision(ident identity.Identity, profile identity.Profile) (*Result, error) {
	now := time.Now().Unix()
	trialEndsAt := now + int64(s.billing.TrialDays)*24*3600

	ownerName := "My"
	if profile.FirstName != nil && *profile.FirstName != "" {
		ownerName = *profile.FirstName
	}

	org := &models.Organization{
		ID:                       "org_" + uuid.NewString(),
		Name:                     fmt.Sprintf("%s's Business", ownerName),
		OwnerExternalID:          ident.ExternalID,
		Plan:                     models.PlanTrial,
		PlanStatus:               models.PlanStatusTrialing,
		TrialEndsAt:              &trialEndsAt,
		AutoReloadThresholdCents: s.billing.AutoReloadThresholdCents,
		AutoReloadAmountCents:    s.billing.AutoReloadAmountCents,
		FreeEditsRemaining:       s.billing.FreeEdits,
		FreeRegensRemaining:      s.billing.FreeRegens,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	user := &models.User{
		ID:             "usr_" + uuid.NewString(),
		ExternalID:     ident.ExternalID,
		OrganizationID: &org.ID,
		Email:          profile.Email,
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		Role:           models.RoleOwner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx, err := s.orgRepo.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.orgRepo.CreateTx(tx, org); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateOrganization, err)
	}
	if err := s.userRepo.CreateTx(tx, user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateUser, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateUser, err)
	}

	return &Result{User: user, Organization: org, IsNew: true}, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
