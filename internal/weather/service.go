package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// PipelineConfig tunes a Pipeline.
type PipelineConfig struct {
	// LookbackDays is the number of days before today to ingest (today included).
	LookbackDays int
	// Now supplies "today"; defaults to time.Now.
	Now func() time.Time
}

// Pipeline runs resolve -> fetch (or synthesize) -> normalize -> upsert -> aggregate
// for one location at a time.
type Pipeline struct {
	store      Store
	resolver   *Resolver
	source     FallbackSource
	aggregator *Aggregator
	lookback   int
	now        func() time.Time
}

// NewPipeline creates a Pipeline bound to one store.
func NewPipeline(store Store, geocoder Geocoder, source FallbackSource, cfg PipelineConfig) *Pipeline {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 30
	}
	return &Pipeline{
		store:      store,
		resolver:   NewResolver(geocoder, store),
		source:     source,
		aggregator: NewAggregator(store),
		lookback:   cfg.LookbackDays,
		now:        cfg.Now,
	}
}

// IngestResult summarizes one Ingest call.
type IngestResult struct {
	Query    string         `json:"query"`
	Location Location       `json:"location"`
	Source   string         `json:"source"`
	From     string         `json:"from"`
	To       string         `json:"to"`
	Inserted int            `json:"inserted"`
	Updated  int            `json:"updated"`
	Rejected int            `json:"rejected"`
	Failed   int            `json:"failed"`
	Periods  []PeriodResult `json:"periods"`
}

// Written is the number of day records inserted or updated.
func (r IngestResult) Written() int {
	return r.Inserted + r.Updated
}

// Ingest processes one place name end to end. It returns a *ResolutionError
// when the name cannot be resolved, and an error wrapping
// ErrStorageUnavailable when storage is lost mid-run. Per-day and per-period
// failures are counted and logged, not returned.
func (p *Pipeline) Ingest(ctx context.Context, name string) (IngestResult, error) {
	res := IngestResult{Query: name}

	loc, err := p.resolver.Resolve(ctx, name)
	if err != nil {
		return res, err
	}
	res.Location = loc

	today := Day(p.now())
	start := today.AddDate(0, 0, -p.lookback)
	res.From, res.To = start.Format(DateLayout), today.Format(DateLayout)

	series, err := p.source.Daily(ctx, loc.Latitude, loc.Longitude, start, today)
	if err != nil {
		return res, &FetchError{Source: "fallback", Err: err}
	}
	res.Source = series.Source

	for raw := range series.Days {
		rec, err := Normalize(raw)
		if err != nil {
			res.Rejected++
			log.Printf("pipeline: %s: rejected day %q: %v", loc.Name, raw.Date, err)
			continue
		}

		outcome, err := p.store.UpsertDay(ctx, loc.ID, rec)
		if err != nil {
			res.Failed++
			log.Printf("ERROR: pipeline: %s: %v", loc.Name, err)
			if lost := p.storageLost(ctx, err); lost != nil {
				return res, lost
			}
			continue
		}
		switch outcome {
		case Inserted:
			res.Inserted++
		case Updated:
			res.Updated++
		}
	}
	log.Printf("pipeline: %s: %d inserted, %d updated from %s (%s..%s)",
		loc.Name, res.Inserted, res.Updated, res.Source, res.From, res.To)

	res.Periods = p.aggregator.Run(ctx, loc.ID, today)
	for _, pr := range res.Periods {
		if pr.Err == nil {
			continue
		}
		if lost := p.storageLost(ctx, pr.Err); lost != nil {
			return res, lost
		}
	}
	return res, nil
}

// storageLost returns a non-nil error when err means no further write can succeed.
func (p *Pipeline) storageLost(ctx context.Context, err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	if pingErr := p.store.Ping(ctx); pingErr != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, pingErr)
	}
	return nil
}

// StoreOpener acquires a store for the duration of one batch. The returned
// release func must be called when the batch is done.
type StoreOpener func(ctx context.Context) (Store, func() error, error)

// BatchReport summarizes a RunBatch call.
type BatchReport struct {
	RunID   string         `json:"runId"`
	Results []IngestResult `json:"results"`
	Skipped []string       `json:"skipped,omitempty"`
	Aborted bool           `json:"aborted"`
	Counts  *Counts        `json:"counts,omitempty"`
}

// Runner drives batches. Batches never overlap, so the pipeline stays the
// only writer even when the scheduler and the HTTP API both trigger runs.
type Runner struct {
	// slot holds a token while a batch runs.
	slot     chan struct{}
	open     StoreOpener
	geocoder Geocoder
	source   FallbackSource
	cfg      PipelineConfig
}

// NewRunner creates a Runner.
func NewRunner(open StoreOpener, geocoder Geocoder, source FallbackSource, cfg PipelineConfig) *Runner {
	return &Runner{
		slot:     make(chan struct{}, 1),
		open:     open,
		geocoder: geocoder,
		source:   source,
		cfg:      cfg,
	}
}

// RunBatch ingests names sequentially with a store acquired for this batch
// only. Unresolvable names are skipped; loss of storage aborts the rest.
// Context cancellation stops the batch before the next location, and also
// ends the wait while another batch holds the runner.
func (r *Runner) RunBatch(ctx context.Context, names []string) (BatchReport, error) {
	report := BatchReport{RunID: uuid.NewString()}

	select {
	case r.slot <- struct{}{}:
		defer func() { <-r.slot }()
	case <-ctx.Done():
		report.Aborted = true
		return report, ctx.Err()
	}

	store, release, err := r.open(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer func() {
		if err := release(); err != nil {
			log.Printf("pipeline[%s]: release store: %v", report.RunID, err)
		}
	}()

	p := NewPipeline(store, r.geocoder, r.source, r.cfg)

	log.Printf("pipeline[%s]: starting batch of %d locations", report.RunID, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			return report, err
		}

		res, err := p.Ingest(ctx, name)
		var resErr *ResolutionError
		switch {
		case errors.As(err, &resErr):
			report.Skipped = append(report.Skipped, name)
			log.Printf("pipeline[%s]: skipping %s: %v", report.RunID, name, err)
			continue
		case errors.Is(err, ErrStorageUnavailable):
			report.Results = append(report.Results, res)
			report.Aborted = true
			log.Printf("ERROR: pipeline[%s]: aborting batch at %s: %v", report.RunID, name, err)
			return report, err
		case err != nil:
			report.Skipped = append(report.Skipped, name)
			log.Printf("ERROR: pipeline[%s]: %s failed: %v", report.RunID, name, err)
			continue
		}
		report.Results = append(report.Results, res)
	}

	if rd, ok := store.(interface {
		Counts(context.Context) (Counts, error)
	}); ok {
		if c, err := rd.Counts(ctx); err == nil {
			report.Counts = &c
			log.Printf("pipeline[%s]: store holds %d locations, %d day records, %d stats",
				report.RunID, c.Locations, c.Days, c.Stats)
		}
	}
	log.Printf("pipeline[%s]: completed batch: %d ingested, %d skipped",
		report.RunID, len(report.Results), len(report.Skipped))
	return report, nil
}
