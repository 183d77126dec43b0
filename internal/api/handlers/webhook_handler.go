package handlers

import (
	"crypto/subtle"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/webhook"

	"frontdesk/internal/engine/billing"
	"frontdesk/internal/engine/contacts"
	"frontdesk/internal/engine/conversations"
	"frontdesk/internal/engine/usage"
	"frontdesk/internal/pkg/errors"
	"frontdesk/internal/pkg/validator"
	"frontdesk/internal/platform/config"
)

const maxWebhookBody = 1 << 16

// WebhookHandler receives callbacks from Stripe and from the telephony
// platform that runs the actual calls and texts.
type WebhookHandler struct {
	stripeSecret    string
	telephonySecret string

	billing       *billing.Service
	contacts      *contacts.Service
	conversations *conversations.Service
	meter         *usage.Service
}

func NewWebhookHandler(
	stripeCfg config.StripeConfig,
	telephonyCfg config.TelephonyConfig,
	billingSvc *billing.Service,
	contactSvc *contacts.Service,
	conversationSvc *conversations.Service,
	meter *usage.Service,
) *WebhookHandler {
	return &WebhookHandler{
		stripeSecret:    stripeCfg.WebhookSecret,
		telephonySecret: telephonyCfg.WebhookSecret,
		billing:         billingSvc,
		contacts:        contactSvc,
		conversations:   conversationSvc,
		meter:           meter,
	}
}

// Stripe handles POST /api/webhooks/stripe. Settled payment intents tagged
// with an organization credit the prepaid balance.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Failed to read body")
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.stripeSecret)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid signature")
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Malformed event payload")
			return
		}

		orgID := intent.Metadata["organization_id"]
		purpose := intent.Metadata["purpose"]
		if orgID == "" || (purpose != "balance_reload" && purpose != "auto_reload") {
			break
		}

		if err := h.billing.CreditBalance(orgID, intent.AmountReceived); err != nil {
			log.Error().Err(err).Str("organization_id", orgID).Str("payment_intent", intent.ID).
				Msg("failed to credit balance")
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
			return
		}
		log.Info().Str("organization_id", orgID).Int64("amount_cents", intent.AmountReceived).
			Str("purpose", purpose).Msg("credited balance")

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err == nil {
			log.Warn().Str("organization_id", intent.Metadata["organization_id"]).
				Str("payment_intent", intent.ID).Msg("payment failed")
		}
	}

	w.WriteHeader(http.StatusOK)
}

type telephonyEvent struct {
	Type           string  `json:"type"`
	OrganizationID string  `json:"organization_id"`
	ConversationID string  `json:"conversation_id"`
	ContactPhone   string  `json:"contact_phone"`
	Channel        string  `json:"channel"`
	Direction      *string `json:"direction"`
	Role           string  `json:"role"`
	Content        string  `json:"content"`
	Summary        *string `json:"summary"`
	Sentiment      *string `json:"sentiment"`
}

// Telephony handles POST /api/webhooks/telephony: conversation lifecycle
// events from the voice/SMS platform. Calls are metered per started minute on
// conversation.ended; texts per assistant message.
func (h *WebhookHandler) Telephony(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.telephonySecret)) != 1 {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid webhook secret")
		return
	}

	var event telephonyEvent
	if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBody)).Decode(&event); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body")
		return
	}
	if event.OrganizationID == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "organization_id is required")
		return
	}

	switch event.Type {
	case "conversation.started":
		h.conversationStarted(w, event)
	case "message.created":
		h.messageCreated(w, event)
	case "conversation.ended":
		h.conversationEnded(w, event)
	default:
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown event type")
	}
}

func (h *WebhookHandler) conversationStarted(w http.ResponseWriter, event telephonyEvent) {
	// Every caller gets a contact record: known numbers link, unknown ones
	// create a bare contact to link. Unparseable numbers leave it unlinked.
	var contactID *string
	if event.ContactPhone != "" {
		contact, err := h.contacts.Ensure(event.OrganizationID, event.ContactPhone)
		switch {
		case err == nil:
			contactID = &contact.ID
		case stderrors.Is(err, validator.ErrInvalidPhone):
			log.Warn().Str("organization_id", event.OrganizationID).Msg("unparseable caller phone number")
		default:
			log.Error().Err(err).Str("organization_id", event.OrganizationID).Msg("contact lookup failed")
		}
	}

	conv, err := h.conversations.Open(event.OrganizationID, conversations.OpenInput{
		ContactID: contactID,
		Type:      event.Channel,
		Direction: event.Direction,
	})
	if err != nil {
		h.writeTelephonyError(w, event, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"conversation_id": conv.ID})
}

func (h *WebhookHandler) messageCreated(w http.ResponseWriter, event telephonyEvent) {
	msg, err := h.conversations.Append(event.OrganizationID, event.ConversationID, event.Role, event.Content)
	if err != nil {
		h.writeTelephonyError(w, event, err)
		return
	}

	// Outbound texts are the billable unit for the SMS channel.
	if event.Role == conversations.RoleAssistant {
		if conv, err := h.conversations.Get(event.OrganizationID, event.ConversationID); err == nil && conv.Type == conversations.TypeText {
			if _, err := h.meter.Record(event.OrganizationID, usage.TypeSMS, 1); err != nil {
				log.Error().Err(err).Str("organization_id", event.OrganizationID).Msg("failed to meter sms")
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message_id": msg.ID})
}

func (h *WebhookHandler) conversationEnded(w http.ResponseWriter, event telephonyEvent) {
	conv, err := h.conversations.Close(event.OrganizationID, event.ConversationID, conversations.CloseInput{
		Summary:   event.Summary,
		Sentiment: event.Sentiment,
	})
	if err != nil {
		h.writeTelephonyError(w, event, err)
		return
	}

	if conv.Type == conversations.TypeCall && conv.DurationSeconds != nil {
		minutes := (*conv.DurationSeconds + 59) / 60
		if minutes < 1 {
			minutes = 1
		}
		if _, err := h.meter.Record(event.OrganizationID, usage.TypeCallMinute, minutes); err != nil {
			log.Error().Err(err).Str("organization_id", event.OrganizationID).Msg("failed to meter call minutes")
		}
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *WebhookHandler) writeTelephonyError(w http.ResponseWriter, event telephonyEvent, err error) {
	switch err {
	case conversations.ErrNotFound:
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Conversation not found")
	case conversations.ErrNotActive, conversations.ErrInvalidState:
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Conversation is not in a valid state for this event")
	case conversations.ErrInvalidType, conversations.ErrInvalidRole:
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error())
	default:
		log.Error().Err(err).Str("organization_id", event.OrganizationID).Str("event", event.Type).
			Msg("telephony event failed")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
	}
}
