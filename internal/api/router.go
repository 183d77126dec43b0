package api

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"frontdesk/internal/api/handlers"
	"frontdesk/internal/api/middleware"
	"frontdesk/internal/engine/billing"
	"frontdesk/internal/engine/contacts"
	"frontdesk/internal/engine/conversations"
	"frontdesk/internal/engine/knowledge"
	"frontdesk/internal/engine/provision"
	"frontdesk/internal/engine/scripts"
	"frontdesk/internal/engine/usage"
	"frontdesk/internal/pkg/errors"
	"frontdesk/internal/platform/config"
	"frontdesk/internal/platform/identity"
	"frontdesk/internal/platform/repositories"
)

// Deps carries everything the router needs wired up.
type Deps struct {
	Config *config.Config
	DB     *sql.DB

	OrgRepo  *repositories.OrganizationRepository
	UserRepo *repositories.UserRepository

	Provisioner   *provision.Service
	Profiles      identity.ProfileAPI
	Contacts      *contacts.Service
	Conversations *conversations.Service
	Scripts       *scripts.Repository
	Knowledge     *knowledge.Repository
	Usage         *usage.Service
	Billing       *billing.Service
}

// New builds the full route table. The identity gate wraps the returned
// handler in main, so every handler here can rely on public/protected
// classification having already happened.
func New(deps Deps) http.Handler {
	router := httprouter.New()

	limiter := middleware.NewRateLimiter(deps.Config.RateLimit)
	orgLoader := middleware.NewOrgLoader(deps.UserRepo, deps.OrgRepo)

	read := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireIdentity(orgLoader.Handle(limiter.Read(h)))
	}
	write := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireIdentity(orgLoader.Handle(limiter.Write(h)))
	}

	health := handlers.NewHealthHandler(deps.DB)
	router.HandlerFunc(http.MethodGet, "/health", health.Health)

	// Public marketing pages. The product frontend owns the real ones; these
	// keep the paths routable when the API serves directly.
	for path, title := range map[string]string{
		"/":        "FrontDesk",
		"/pricing": "Pricing",
		"/terms":   "Terms of Service",
		"/privacy": "Privacy Policy",
	} {
		router.HandlerFunc(http.MethodGet, path, marketingPage(title))
	}

	sync := handlers.NewSyncHandler(deps.Provisioner, deps.Profiles)
	router.HandlerFunc(http.MethodPost, "/api/user/sync", middleware.RequireIdentity(limiter.Write(sync.Sync)))

	contactHandler := handlers.NewContactHandler(deps.Contacts)
	router.HandlerFunc(http.MethodGet, "/api/v1/contacts", read(contactHandler.List))
	router.HandlerFunc(http.MethodPost, "/api/v1/contacts", write(contactHandler.Create))
	// Lives outside /contacts/ because httprouter cannot mix a static segment
	// with the :id wildcard.
	router.HandlerFunc(http.MethodPost, "/api/v1/import/contacts", write(contactHandler.Import))
	router.HandlerFunc(http.MethodGet, "/api/v1/contacts/:id", read(contactHandler.Get))
	router.HandlerFunc(http.MethodPatch, "/api/v1/contacts/:id", write(contactHandler.Update))
	router.HandlerFunc(http.MethodDelete, "/api/v1/contacts/:id", write(contactHandler.Delete))
	router.HandlerFunc(http.MethodPost, "/api/v1/contacts/:id/opt-out", write(contactHandler.OptOut))
	router.HandlerFunc(http.MethodPost, "/api/v1/contacts/:id/opt-in", write(contactHandler.OptIn))

	conversationHandler := handlers.NewConversationHandler(deps.Conversations)
	router.HandlerFunc(http.MethodGet, "/api/v1/conversations", read(conversationHandler.List))
	router.HandlerFunc(http.MethodPost, "/api/v1/conversations", write(conversationHandler.Open))
	router.HandlerFunc(http.MethodGet, "/api/v1/conversations/:id", read(conversationHandler.Get))
	router.HandlerFunc(http.MethodGet, "/api/v1/conversations/:id/messages", read(conversationHandler.Messages))
	router.HandlerFunc(http.MethodPost, "/api/v1/conversations/:id/messages", write(conversationHandler.Append))
	router.HandlerFunc(http.MethodPost, "/api/v1/conversations/:id/close", write(conversationHandler.Close))
	router.HandlerFunc(http.MethodPost, "/api/v1/conversations/:id/archive", write(conversationHandler.Archive))

	scriptHandler := handlers.NewScriptHandler(deps.Scripts, deps.Usage)
	router.HandlerFunc(http.MethodGet, "/api/v1/scripts", read(scriptHandler.List))
	router.HandlerFunc(http.MethodGet, "/api/v1/scripts/:type", read(scriptHandler.Get))
	router.HandlerFunc(http.MethodPut, "/api/v1/scripts/:type", write(scriptHandler.Put))
	router.HandlerFunc(http.MethodPost, "/api/v1/scripts/:type/regenerate", write(scriptHandler.Regenerate))
	router.HandlerFunc(http.MethodPatch, "/api/v1/scripts/:type/active", write(scriptHandler.SetActive))

	knowledgeHandler := handlers.NewKnowledgeHandler(deps.Knowledge)
	router.HandlerFunc(http.MethodGet, "/api/v1/knowledge", read(knowledgeHandler.List))
	router.HandlerFunc(http.MethodPost, "/api/v1/knowledge", write(knowledgeHandler.Create))
	router.HandlerFunc(http.MethodGet, "/api/v1/knowledge/:id", read(knowledgeHandler.Get))
	router.HandlerFunc(http.MethodPut, "/api/v1/knowledge/:id", write(knowledgeHandler.Update))
	router.HandlerFunc(http.MethodDelete, "/api/v1/knowledge/:id", write(knowledgeHandler.Delete))

	usageHandler := handlers.NewUsageHandler(deps.Usage)
	router.HandlerFunc(http.MethodGet, "/api/v1/usage", read(usageHandler.Summary))
	router.HandlerFunc(http.MethodGet, "/api/v1/usage/events", read(usageHandler.Events))

	orgHandler := handlers.NewOrgHandler(deps.OrgRepo)
	router.HandlerFunc(http.MethodGet, "/api/v1/organizations/current", read(orgHandler.Get))
	router.HandlerFunc(http.MethodPatch, "/api/v1/organizations/current", write(orgHandler.Update))

	billingHandler := handlers.NewBillingHandler(deps.Billing)
	router.HandlerFunc(http.MethodPost, "/api/v1/billing/reload", write(billingHandler.Reload))

	webhookHandler := handlers.NewWebhookHandler(
		deps.Config.Stripe, deps.Config.Telephony,
		deps.Billing, deps.Contacts, deps.Conversations, deps.Usage,
	)
	router.HandlerFunc(http.MethodPost, "/api/webhooks/stripe", limiter.Webhook(webhookHandler.Stripe))
	router.HandlerFunc(http.MethodPost, "/api/webhooks/telephony", limiter.Webhook(webhookHandler.Telephony))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Not found")
	})

	return router
}

func marketingPage(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body><h1>%s</h1></body></html>", title, title)
	}
}
