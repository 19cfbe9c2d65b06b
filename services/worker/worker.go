package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"

	"moneyhunter/dealworker/internal/crawler"
	"moneyhunter/dealworker/internal/filter"
	"moneyhunter/dealworker/logger"
	apperr "moneyhunter/dealworker/pkg/errors"
	"moneyhunter/dealworker/services/notifier"
	"moneyhunter/dealworker/services/publisher"
	"moneyhunter/dealworker/services/store"
)

// Services holds the collaborators a run fans out to
type Services struct {
	Store     store.DealStore
	Notifier  notifier.Notifier
	Publisher publisher.Publisher // nil disables fan-out
}

// Worker schedules each source on its own interval and runs the full
// fetch→extract→classify→dedup→notify→commit sequence per tick. Failures
// are contained at the run boundary; one source going down never touches
// another source's timer.
type Worker struct {
	ctx           context.Context
	crawlers      []crawler.Crawler
	services      Services
	keywords      filter.Keywords
	runTimeout    time.Duration
	notifyTimeout time.Duration
	cron          *cron.Cron
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	crawlers []crawler.Crawler,
	services Services,
	keywords filter.Keywords,
	runTimeout time.Duration,
	notifyTimeout time.Duration,
) *Worker {
	return &Worker{
		ctx:           ctx,
		crawlers:      crawlers,
		services:      services,
		keywords:      keywords,
		runTimeout:    runTimeout,
		notifyTimeout: notifyTimeout,
	}
}

// Start schedules all sources and blocks until the context is cancelled.
// Each source gets an independent timer; an overlapping tick for the same
// source is skipped, never queued.
func (w *Worker) Start() error {
	log := logger.ForWorker()
	cronLog := &cronLogger{log: log}

	w.cron = cron.New()

	for _, c := range w.crawlers {
		job := cron.NewChain(
			cron.SkipIfStillRunning(cronLog),
			cron.Recover(cronLog),
		).Then(&sourceJob{worker: w, crawler: c})

		w.cron.Schedule(cron.Every(c.PollInterval()), job)

		log.Info().
			Str("source", c.GetProvider()).
			Dur("interval", c.PollInterval()).
			Msg("source scheduled")

		// First run right away instead of waiting a full interval; the
		// chain's running guard covers this invocation too
		go job.Run()
	}

	w.cron.Start()

	<-w.ctx.Done()

	// Let in-flight runs finish; their batch commit is all-or-nothing so
	// abandoning mid-run cannot leave partial state
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()

	return w.ctx.Err()
}

// sourceJob adapts a single source run to cron.Job
type sourceJob struct {
	worker  *Worker
	crawler crawler.Crawler
}

func (j *sourceJob) Run() {
	j.worker.runSource(j.crawler)
}

// runSource executes one full run for one source
func (w *Worker) runSource(c crawler.Crawler) {
	provider := c.GetProvider()
	log := logger.ForSource(provider)
	start := time.Now()

	ctx, cancel := context.WithTimeout(w.ctx, w.runTimeout)
	defer cancel()

	listings, err := c.FetchListings(ctx)
	if err != nil {
		switch {
		case apperr.IsSelectorDrift(err):
			// Distinct from "site down": the page loaded but the markup moved
			log.Warn().Err(err).Msg("selector drift; run is a no-op")
		case apperr.IsRateLimit(err):
			log.Warn().Err(err).Msg("rate limited; skipping until the block expires")
		default:
			log.Error().Err(err).Msg("run aborted")
		}
		return
	}

	if len(listings) == 0 {
		log.Debug().Msg("no listings extracted")
		return
	}

	batch, err := w.stage(ctx, c, listings)
	if err != nil {
		log.Error().Err(err).Msg("run aborted during staging")
		return
	}

	if len(batch) == 0 {
		log.Debug().Int("fetched", len(listings)).Msg("신규 딜 없음 (모두 중복)")
		return
	}

	inserted, err := w.services.Store.InsertBatch(ctx, batch)
	if err != nil {
		log.Error().Err(err).Int("staged", len(batch)).Msg("batch discarded")
		return
	}

	w.fanOut(provider, inserted)

	log.Info().
		Int("fetched", len(listings)).
		Int("staged", len(batch)).
		Int("inserted", len(inserted)).
		Dur("elapsed", time.Since(start)).
		Msg("run complete")
}

// stage classifies the run's listings and turns the new, non-banned ones
// into deal records, attempting notification once per record. The batch is
// committed by the caller in a single transaction.
func (w *Worker) stage(ctx context.Context, c crawler.Crawler, listings []crawler.Listing) ([]store.Deal, error) {
	log := logger.ForSource(c.GetProvider())

	seen := make(map[string]struct{}, len(listings))
	var batch []store.Deal

	for _, l := range listings {
		// Same url twice on one page is still one deal
		if _, dup := seen[l.Link]; dup {
			continue
		}
		seen[l.Link] = struct{}{}

		banned, tags := w.keywords.Classify(l.Title)
		if banned {
			log.Debug().Str("title", l.Title).Msg("차단 키워드 매칭, 건너뜀")
			continue
		}

		exists, err := w.services.Store.ExistsByURL(ctx, l.Link)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		deal := store.Deal{
			SourceID: l.SourceID,
			Title:    l.Title,
			URL:      l.Link,
			Price:    l.Price,
		}

		// Attempted exactly once, before commit, so the stored flag reflects
		// the acknowledgment at insert time
		if w.services.Notifier != nil && w.services.Notifier.Enabled() {
			nctx, ncancel := context.WithTimeout(ctx, w.notifyTimeout)
			deal.Notified = w.services.Notifier.Notify(nctx, deal, c.GetLabel(), tags)
			ncancel()
		}

		batch = append(batch, deal)
	}

	return batch, nil
}

// fanOut publishes the run's inserted deals to the stream, if configured
func (w *Worker) fanOut(provider string, inserted []store.Deal) {
	if w.services.Publisher == nil || len(inserted) == 0 {
		return
	}

	log := logger.ForSource(provider)

	for _, deal := range inserted {
		data, err := json.Marshal(deal)
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal deal for fan-out")
			continue
		}
		if err := w.services.Publisher.Publish(provider, data); err != nil {
			log.Error().Err(err).Str("url", deal.URL).Msg("fan-out publish failed")
		}
	}

	if err := w.services.Publisher.TrimStreams(); err != nil {
		log.Error().Err(err).Msg("stream trimming failed")
	}
}

// cronLogger adapts the zerolog logger to cron.Logger; skip notices from
// the running guard land at debug level
type cronLogger struct {
	log *logger.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
