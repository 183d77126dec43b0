package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"frontdesk/internal/api"
	"frontdesk/internal/api/middleware"
	"frontdesk/internal/engine/billing"
	"frontdesk/internal/engine/contacts"
	"frontdesk/internal/engine/conversations"
	"frontdesk/internal/engine/knowledge"
	"frontdesk/internal/engine/provision"
	"frontdesk/internal/engine/scripts"
	"frontdesk/internal/engine/usage"
	"frontdesk/internal/pkg/logger"
	"frontdesk/internal/platform/config"
	"frontdesk/internal/platform/database"
	"frontdesk/internal/platform/identity"
	"frontdesk/internal/platform/repositories"
)

func main() {
	godotenv.Load()

	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	orgRepo := repositories.NewOrganizationRepository(db)
	userRepo := repositories.NewUserRepository(db)

	contactRepo := contacts.NewRepository(db)
	conversationRepo := conversations.NewRepository(db)
	usageRepo := usage.NewRepository(db)

	usageSvc := usage.NewService(usageRepo, orgRepo)
	billingSvc := billing.NewService(cfg.Stripe, orgRepo, userRepo)

	handler := api.New(api.Deps{
		Config:        cfg,
		DB:            db,
		OrgRepo:       orgRepo,
		UserRepo:      userRepo,
		Provisioner:   provision.NewService(orgRepo, userRepo, cfg.Billing),
		Profiles:      identity.NewClient(cfg.Identity),
		Contacts:      contacts.NewService(contactRepo),
		Conversations: conversations.NewService(conversationRepo),
		Scripts:       scripts.NewRepository(db),
		Knowledge:     knowledge.NewRepository(db),
		Usage:         usageSvc,
		Billing:       billingSvc,
	})

	gate := middleware.NewGate(cfg.Routes, identity.NewVerifier(cfg.Identity))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      gate.Handle(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
