package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"doorlist/internal/delivery/http/controllers"
	"doorlist/internal/delivery/http/middleware"
	"doorlist/internal/domain"
)

// RouterControllers bundles the controllers the router wires up.
type RouterControllers struct {
	Auth    *controllers.AuthController
	Event   *controllers.EventController
	Tier    *controllers.TierController
	Contact *controllers.ContactController
	Invite  *controllers.InviteController
	Ticket  *controllers.TicketController
	Public  *controllers.PublicController
	Webhook *controllers.WebhookController
}

// NewRouter initializes the HTTP router with all application routes.
// Public and webhook routes are unauthenticated; webhooks are gated by
// signature verification instead.
func NewRouter(c RouterControllers, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /me", auth(c.Auth.Me))

	// Events
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events", auth(c.Event.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Event.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Event.UpdateEvent))
	mux.HandleFunc("POST /events/{eventID}/publish", auth(c.Event.PublishEvent))
	mux.HandleFunc("POST /events/{eventID}/cancel", auth(c.Event.CancelEvent))
	mux.HandleFunc("POST /events/{eventID}/archive", auth(c.Event.ArchiveEvent))
	mux.HandleFunc("POST /events/{eventID}/unarchive", auth(c.Event.UnarchiveEvent))
	mux.HandleFunc("PATCH /events/{eventID}/link", auth(c.Event.SetLinkActive))

	// Team
	mux.HandleFunc("POST /events/{eventID}/team", auth(c.Event.AddTeamMember))
	mux.HandleFunc("GET /events/{eventID}/team", auth(c.Event.ListTeamMembers))
	mux.HandleFunc("DELETE /events/{eventID}/team/{userID}", auth(c.Event.RemoveTeamMember))

	// Tiers
	mux.HandleFunc("POST /events/{eventID}/tiers", auth(c.Tier.CreateTier))
	mux.HandleFunc("GET /events/{eventID}/tiers", auth(c.Tier.ListTiers))
	mux.HandleFunc("PATCH /events/{eventID}/tiers/{tierID}", auth(c.Tier.UpdateTier))
	mux.HandleFunc("DELETE /events/{eventID}/tiers/{tierID}", auth(c.Tier.DeleteTier))

	// Contacts
	mux.HandleFunc("POST /events/{eventID}/contacts", auth(c.Contact.AddContact))
	mux.HandleFunc("POST /events/{eventID}/contacts/import", auth(c.Contact.ImportContacts))
	mux.HandleFunc("GET /events/{eventID}/contacts", auth(c.Contact.ListContacts))
	mux.HandleFunc("DELETE /events/{eventID}/contacts/{contactID}", auth(c.Contact.DeleteContact))

	// Invitations and message log
	mux.HandleFunc("POST /events/{eventID}/invitations", auth(c.Invite.SendInvitations))
	mux.HandleFunc("POST /events/{eventID}/thank-you", auth(c.Invite.SendThankYou))
	mux.HandleFunc("GET /events/{eventID}/messages", auth(c.Invite.ListMessageLog))

	// Tickets (staff side)
	mux.HandleFunc("POST /events/{eventID}/tickets/walk-in", auth(c.Ticket.IssueWalkIn))
	mux.HandleFunc("GET /events/{eventID}/tickets", auth(c.Ticket.ListTickets))
	mux.HandleFunc("GET /events/{eventID}/tickets/stale-pending", auth(c.Ticket.ListStalePending))
	mux.HandleFunc("POST /events/{eventID}/tickets/{code}/check-in", auth(c.Ticket.CheckIn))
	mux.HandleFunc("POST /events/{eventID}/tickets/{code}/undo-check-in", auth(c.Ticket.UndoCheckIn))
	mux.HandleFunc("POST /events/{eventID}/tickets/{code}/cancel", auth(c.Ticket.Cancel))

	// Public reservation surface
	mux.HandleFunc("GET /public/events/{eventID}", c.Public.GetEvent)
	mux.HandleFunc("POST /public/events/{eventID}/checkout", c.Public.Checkout)
	mux.HandleFunc("POST /public/events/{eventID}/rsvp", c.Public.RSVP)
	mux.HandleFunc("GET /public/tickets/{code}", c.Public.GetTicket)

	// Provider webhooks
	mux.HandleFunc("POST /webhooks/payments", c.Webhook.PaymentWebhook)
	mux.HandleFunc("POST /webhooks/messaging", c.Webhook.MessagingWebhook)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
