package main

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	"doorlist/config"
	authadapter "doorlist/internal/adapters/auth"
	"doorlist/internal/adapters/email"
	"doorlist/internal/adapters/payment"
	"doorlist/internal/adapters/sms"
	httpdelivery "doorlist/internal/delivery/http"
	"doorlist/internal/delivery/http/controllers"
	"doorlist/internal/delivery/http/middleware"
	"doorlist/internal/repository/postgres"
	"doorlist/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title Doorlist API
// @version 1.0
// @description Event ticketing and guest management: tiers, checkout, RSVP, door check-in, invitations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	teamRepo := postgres.NewEventTeamMemberRepository(db)
	tierRepo := postgres.NewTierRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	contactRepo := postgres.NewContactRepository(db)
	logRepo := postgres.NewInvitationLogRepository(db)

	// Adapters
	hasher := authadapter.NewBcryptHasher(12)
	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mailer.Provider,
		FromAddress: cfg.Mailer.FromAddress,
		FromName:    cfg.Mailer.FromName,
		SES: email.SESConfig{
			Region:          cfg.Mailer.SESRegion,
			AccessKeyID:     cfg.Mailer.SESAccessKeyID,
			SecretAccessKey: cfg.Mailer.SESSecretAccessKey,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()
	smsSender := sms.NewHTTPSender(sms.Config{
		BaseURL:    cfg.SMS.BaseURL,
		APIKey:     cfg.SMS.APIKey,
		FromNumber: cfg.SMS.FromNumber,
	}, nil, logger)
	paymentProvider := payment.NewHTTPProvider(payment.Config{
		BaseURL: cfg.Payment.BaseURL,
		APIKey:  cfg.Payment.APIKey,
	}, nil)
	paymentVerifier := payment.NewWebhookVerifier(cfg.Payment.WebhookSecret)

	// Services
	messageSvc := services.NewMessageService(mailer, smsSender, renderer)
	authSvc := services.NewAuthService(userRepo, hasher, issuer, messageSvc, logger, cfg.JWTExpiry)
	eventSvc := services.NewEventService(eventRepo, teamRepo, userRepo, serviceTimeout)
	tierSvc := services.NewTierService(eventRepo, tierRepo, teamRepo, serviceTimeout)
	contactSvc := services.NewContactService(eventRepo, contactRepo, teamRepo, serviceTimeout)
	inviteSvc := services.NewInviteService(eventRepo, contactRepo, teamRepo, userRepo, logRepo, messageSvc, logger, serviceTimeout)
	bookingSvc := services.NewBookingService(eventRepo, tierRepo, ticketRepo, contactRepo, teamRepo, paymentProvider, messageSvc, logger, cfg.PublicBaseURL, serviceTimeout)
	publicSvc := services.NewPublicService(eventRepo, tierRepo, serviceTimeout)
	webhookSvc := services.NewPaymentWebhookService(ticketRepo, tierRepo, logger)

	// Controllers and router
	mux := httpdelivery.NewRouter(httpdelivery.RouterControllers{
		Auth:    controllers.NewAuthController(logger, authSvc),
		Event:   controllers.NewEventController(logger, eventSvc),
		Tier:    controllers.NewTierController(logger, tierSvc),
		Contact: controllers.NewContactController(logger, contactSvc),
		Invite:  controllers.NewInviteController(logger, inviteSvc),
		Ticket:  controllers.NewTicketController(logger, bookingSvc),
		Public:  controllers.NewPublicController(logger, publicSvc, bookingSvc),
		Webhook: controllers.NewWebhookController(logger, paymentVerifier, webhookSvc, inviteSvc, cfg.SMS.WebhookSecret),
	}, verifier)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
