package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-history/internal/weather"
)

// BatchRunner runs one ingestion batch over a list of place names.
type BatchRunner interface {
	RunBatch(ctx context.Context, names []string) (weather.BatchReport, error)
}

// Scheduler periodically ingests the configured locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    BatchRunner
	locations []string
	interval  time.Duration
}

// New creates a new Scheduler.
func New(locations []string, interval time.Duration, runner BatchRunner) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		locations: locations,
		interval:  interval,
	}
}

// Start schedules the periodic batch and starts the underlying scheduler.
// The first run starts immediately; runs never overlap.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}
	budget := time.Duration(minutes) * time.Minute

	_, err := s.scheduler.Every(minutes).Minutes().SingletonMode().Do(func() {
		log.Println("scheduler: running weather ingest batch")

		// The batch gets at most one interval; locations not reached are left for the next run.
		ctx, cancel := context.WithTimeout(context.Background(), budget)
		defer cancel()

		report, err := s.runner.RunBatch(ctx, s.locations)
		if err != nil {
			log.Printf("scheduler: batch %s stopped early: %v", report.RunID, err)
			return
		}
		log.Printf("scheduler: completed batch %s", report.RunID)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
