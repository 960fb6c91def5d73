package main

import (
	"context"
	"log"
	"time"

	"CSW/Catalog"
	"CSW/CronJobs"
	"CSW/FiberConfig"
	"CSW/Models"
	"CSW/Otp"
	"CSW/Slack"
	"CSW/Wizard"
	"CSW/config"
)

func main() {
	cfg := config.Load()

	Models.Connect(cfg.DatabasePath)
	Models.SeedAdminUser(cfg.AdminEmail, cfg.AdminPassword)

	store := Catalog.NewStore(Catalog.NewClient(cfg.BackendURL))
	manager := Wizard.NewManager(store, time.Duration(cfg.WizardTTLMinutes)*time.Minute)

	// Warm the catalog so the first visitor does not pay for the fetch. A
	// failure here is fine, the wizard retries on demand.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := store.Ensure(ctx); err != nil {
			log.Printf("Initial catalog load failed: %v", err)
		}
	}()

	refresher := CronJobs.NewCatalogRefresher(store, manager, cfg.CatalogRefreshSpec)
	if err := refresher.Start(); err != nil {
		log.Printf("Failed to start catalog refresher: %v", err)
	}

	FiberConfig.FiberConfig(cfg.Port, FiberConfig.Deps{
		DB:         Models.DB,
		Store:      store,
		Manager:    manager,
		OTP:        Otp.MockProvider{},
		Notifier:   Slack.NewSlackClient(cfg.SlackToken, cfg.SlackLeadsChannel),
		SessionTTL: time.Duration(cfg.SessionTTLHours) * time.Hour,
	})
}
