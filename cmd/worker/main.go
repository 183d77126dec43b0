package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"frontdesk/internal/engine/billing"
	"frontdesk/internal/notify"
	"frontdesk/internal/pkg/logger"
	"frontdesk/internal/platform/config"
	"frontdesk/internal/platform/database"
	"frontdesk/internal/platform/repositories"
	"frontdesk/internal/workers"
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
	billingSvc := billing.NewService(cfg.Stripe, orgRepo, userRepo)

	jobs := workers.New(orgRepo, userRepo, billingSvc, notify.NewMailer(cfg.Email))

	ctx := context.Background()
	scheduler := cron.New()
	scheduler.AddFunc("@every 10m", func() { jobs.ExpireTrials(ctx) })
	scheduler.AddFunc("@every 5m", func() { jobs.RunAutoReload(ctx) })
	scheduler.AddFunc("@hourly", func() { jobs.SendLowBalanceNotices(ctx) })
	scheduler.Start()

	log.Info().Msg("worker started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("worker stopping")
	<-scheduler.Stop().Done()
}
