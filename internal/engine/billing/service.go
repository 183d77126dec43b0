package billing

import (
	"errors"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/customer"
	"github.com/stripe/stripe-go/v72/paymentintent"

	"frontdesk/internal/platform/config"
	"frontdesk/internal/platform/models"
	"frontdesk/internal/platform/repositories"
)

var (
	ErrNoCustomer     = errors.New("organization has no billing customer")
	ErrAmountTooSmall = errors.New("reload amount must be at least 100 cents")
)

type Service struct {
	orgRepo  *repositories.OrganizationRepository
	userRepo *repositories.UserRepository
}

func NewService(cfg config.StripeConfig, orgRepo *repositories.OrganizationRepository, userRepo *repositories.UserRepository) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{orgRepo: orgRepo, userRepo: userRepo}
}

func (s *Service) ensureCustomer(org *models.Organization) (string, error) {
	if org.StripeCustomerID != nil && *org.StripeCustomerID != "" {
		return *org.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Name: stripe.String(org.Name),
	}
	if owner, err := s.userRepo.GetOwner(org.ID); err == nil && owner != nil && owner.Email != "" {
		params.Email = stripe.String(owner.Email)
	}
	params.AddMetadata("organization_id", org.ID)

	c, err := customer.New(params)
	if err != nil {
		return "", err
	}
	if err := s.orgRepo.SetStripeCustomerID(org.ID, c.ID); err != nil {
		return "", err
	}
	return c.ID, nil
}

// StartReload creates a PaymentIntent for a dashboard-initiated balance
// top-up. The client confirms it; the balance is credited by the webhook once
// the payment settles.
func (s *Service) StartReload(org *models.Organization, amountCents int64) (*stripe.PaymentIntent, error) {
	if amountCents < 100 {
		return nil, ErrAmountTooSmall
	}

	customerID, err := s.ensureCustomer(org)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:                  stripe.Int64(amountCents),
		Currency:                stripe.String(string(stripe.CurrencyUSD)),
		Customer:                stripe.String(customerID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{Enabled: stripe.Bool(true)},
	}
	params.AddMetadata("organization_id", org.ID)
	params.AddMetadata("purpose", "balance_reload")

	return paymentintent.New(params)
}

// ChargeAutoReload performs an off-session charge for the configured reload
// amount against the customer's saved payment method.
func (s *Service) ChargeAutoReload(org *models.Organization) (*stripe.PaymentIntent, error) {
	if org.StripeCustomerID == nil || *org.StripeCustomerID == "" {
		return nil, ErrNoCustomer
	}
	if org.AutoReloadAmountCents < 100 {
		return nil, ErrAmountTooSmall
	}

	params := &stripe.PaymentIntentParams{
		Amount:     stripe.Int64(org.AutoReloadAmountCents),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
		Customer:   stripe.String(*org.StripeCustomerID),
		OffSession: stripe.Bool(true),
		Confirm:    stripe.Bool(true),
	}
	params.AddMetadata("organization_id", org.ID)
	params.AddMetadata("purpose", "auto_reload")

	return paymentintent.New(params)
}

// CreditBalance applies a settled payment to the prepaid balance.
func (s *Service) CreditBalance(orgID string, cents int64) error {
	return s.orgRepo.CreditBalance(orgID, cents)
}
