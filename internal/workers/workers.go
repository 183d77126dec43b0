package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v72"

	"frontdesk/internal/notify"
	"frontdesk/internal/platform/models"
	"frontdesk/internal/platform/repositories"
)

// Charger performs off-session balance top-ups.
type Charger interface {
	ChargeAutoReload(org *models.Organization) (*stripe.PaymentIntent, error)
}

// Workers holds the periodic maintenance jobs: trial expiry, auto-reload
// charges and low-balance notices.
type Workers struct {
	orgs    *repositories.OrganizationRepository
	users   *repositories.UserRepository
	charger Charger
	mailer  notify.Sender

	mu       sync.Mutex
	notified map[string]int64
}

func New(orgs *repositories.OrganizationRepository, users *repositories.UserRepository, charger Charger, mailer notify.Sender) *Workers {
	return &Workers{
		orgs:     orgs,
		users:    users,
		charger:  charger,
		mailer:   mailer,
		notified: make(map[string]int64),
	}
}

// ExpireTrials moves organizations whose trial window has passed to past_due
// and tells the owner.
func (w *Workers) ExpireTrials(ctx context.Context) {
	orgs, err := w.orgs.ListTrialExpired(time.Now().Unix())
	if err != nil {
		log.Error().Err(err).Msg("failed to list expired trials")
		return
	}

	for _, org := range orgs {
		if err := w.orgs.SetPlanStatus(org.ID, models.PlanStatusPastDue); err != nil {
			log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to expire trial")
			continue
		}
		log.Info().Str("organization_id", org.ID).Msg("trial expired")

		w.emailOwner(ctx, org, "Your trial has ended",
			fmt.Sprintf("The trial for %s has ended. Add a payment method to keep your AI receptionist answering.", org.Name))
	}
}

// RunAutoReload charges organizations that opted in and fell below their
// threshold. The balance is credited by the payment webhook, not here, so a
// charge that later fails never leaves phantom credit.
func (w *Workers) RunAutoReload(ctx context.Context) {
	orgs, err := w.orgs.ListAutoReloadDue()
	if err != nil {
		log.Error().Err(err).Msg("failed to list auto-reload candidates")
		return
	}

	for _, org := range orgs {
		intent, err := w.charger.ChargeAutoReload(org)
		if err != nil {
			log.Error().Err(err).Str("organization_id", org.ID).Msg("auto-reload charge failed")
			w.emailOwner(ctx, org, "Automatic top-up failed",
				fmt.Sprintf("We could not charge your card to top up the balance for %s. Please update your payment method.", org.Name))
			continue
		}
		log.Info().Str("organization_id", org.ID).Str("payment_intent", intent.ID).
			Int64("amount_cents", org.AutoReloadAmountCents).Msg("auto-reload charge started")
	}
}

// SendLowBalanceNotices emails owners of organizations below threshold that
// have auto-reload off, at most once per day.
func (w *Workers) SendLowBalanceNotices(ctx context.Context) {
	orgs, err := w.orgs.ListLowBalance()
	if err != nil {
		log.Error().Err(err).Msg("failed to list low-balance organizations")
		return
	}

	now := time.Now().Unix()
	for _, org := range orgs {
		if !w.shouldNotify(org.ID, now) {
			continue
		}
		w.emailOwner(ctx, org, "Your balance is running low",
			fmt.Sprintf("The prepaid balance for %s is down to $%.2f. Top up to keep calls and texts flowing.",
				org.Name, float64(org.BalanceCents)/100))
	}
}

func (w *Workers) shouldNotify(orgID string, now int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.notified[orgID]; ok && now-last < 86400 {
		return false
	}
	w.notified[orgID] = now
	return true
}

func (w *Workers) emailOwner(ctx context.Context, org *models.Organization, subject, body string) {
	owner, err := w.users.GetOwner(org.ID)
	if err != nil || owner == nil || owner.Email == "" {
		return
	}
	if err := w.mailer.Send(ctx, owner.Email, subject, body); err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to send email")
	}
}
