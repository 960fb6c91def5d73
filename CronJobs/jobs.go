package CronJobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"CSW/Catalog"
	"CSW/Wizard"
)

// CatalogRefresher keeps the cached vehicle and service catalogs in step
// with the control panel and sweeps abandoned wizards.
type CatalogRefresher struct {
	cronScheduler *cron.Cron
	store         *Catalog.Store
	manager       *Wizard.Manager
	refreshSpec   string
	refreshJobID  cron.EntryID
	sweepJobID    cron.EntryID
}

// NewCatalogRefresher creates a refresher with the given cron spec
// (seconds-resolution, e.g. "0 0 */6 * * *").
func NewCatalogRefresher(store *Catalog.Store, manager *Wizard.Manager, refreshSpec string) *CatalogRefresher {
	return &CatalogRefresher{
		cronScheduler: cron.New(cron.WithSeconds()),
		store:         store,
		manager:       manager,
		refreshSpec:   refreshSpec,
	}
}

// Start schedules the refresh and sweep jobs and starts the scheduler.
func (r *CatalogRefresher) Start() error {
	var err error
	r.refreshJobID, err = r.cronScheduler.AddFunc(r.refreshSpec, func() {
		log.Println("Running scheduled catalog refresh")
		r.runRefresh()
	})
	if err != nil {
		return fmt.Errorf("error scheduling catalog refresh: %w", err)
	}

	// Every 10 minutes
	r.sweepJobID, err = r.cronScheduler.AddFunc("0 */10 * * * *", func() {
		if removed := r.manager.SweepStale(); removed > 0 {
			log.Printf("Swept %d stale wizard sessions", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling wizard sweep: %w", err)
	}

	r.cronScheduler.Start()
	fmt.Println("Catalog refresh scheduler started")
	return nil
}

// Stop terminates the scheduler.
func (r *CatalogRefresher) Stop() {
	if r.cronScheduler != nil {
		r.cronScheduler.Stop()
		log.Println("Catalog refresh scheduler stopped")
	}
}

func (r *CatalogRefresher) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := r.store.Refresh(ctx); err != nil {
		log.Printf("Catalog refresh failed: %v", err)
		return
	}
	if err := r.store.RefreshServices(ctx); err != nil {
		log.Printf("Service catalog refresh failed: %v", err)
	}
}
