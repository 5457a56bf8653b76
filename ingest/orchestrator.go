package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"

	"github.com/sig-0/tcventanilla/storage"
)

var (
	errInvalidProvider = errors.New("invalid provider")
	errInvalidInterval = errors.New("invalid interval")
)

const (
	baseRetryDelay = time.Second * 10
	maxRetryDelay  = time.Minute * 10
)

// Orchestrator is the main job scheduler for registered providers
type Orchestrator struct {
	storage storage.Storage
	logger  *slog.Logger

	registeredProviders sync.Map
	retryDelays         sync.Map // provider ID -> current backoff

	q             iq.Queue[scheduledFetch]
	queryInterval time.Duration
	collectorSize int
	qMux          sync.Mutex
}

// New creates a new Orchestrator instance
func New(storage storage.Storage, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		storage:       storage,
		q:             iq.NewQueue[scheduledFetch](),
		queryInterval: time.Second, // every second
		collectorSize: 100,
	}

	// Apply the options
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Register registers a new provider with the orchestrator.
// The provider is immediately queued up for execution
func (o *Orchestrator) Register(p Provider) error {
	if p == nil || p.Name() == "" {
		return errInvalidProvider
	}

	if p.Interval() <= 0 {
		return errInvalidInterval
	}

	// Register the provider
	id := xid.New()
	o.registeredProviders.Store(id, p)

	o.logger.Info(
		"registered new provider",
		"name", p.Name(),
	)

	// Schedule the job
	o.scheduleFetch(
		time.Now().UTC(),
		id,
		p,
	)

	return nil
}

// Start starts the provider orchestration service loop [BLOCKING]
func (o *Orchestrator) Start(ctx context.Context) error {
	collectorCh := make(chan *workerResponse, o.collectorSize)

	// Start a listener for monitoring jobs
	ticker := time.NewTicker(o.queryInterval)
	defer ticker.Stop()

	// handleDue initializes all jobs that are executable (due)
	handleDue := func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				nextSF := o.nextFetch()
				if nextSF == nil {
					return // nothing to schedule anymore
				}

				o.logger.Info(
					"scheduling fetch",
					"name", nextSF.provider.Name(),
				)

				// Spawn worker
				info := &workerInfo{
					provider:   nextSF.provider,
					providerID: nextSF.providerID,
					resCh:      collectorCh,
				}

				go handleJob(ctx, info)
			}
		}
	}

	// Initialize the first set of due jobs (on boot)
	handleDue()

	for {
		select {
		case <-ctx.Done():
			// The collector channel is deliberately left open: an
			// in-flight worker may still pick the send branch over
			// ctx.Done, and sending on a closed channel panics
			o.logger.Info("orchestrator service shut down")

			return nil
		case <-ticker.C:
			handleDue()
		case response := <-collectorCh:
			o.handleResponse(ctx, response)
		}
	}
}

// handleResponse persists a successful fetch and reschedules the
// provider: after its regular interval on success, with exponential
// backoff on failure
func (o *Orchestrator) handleResponse(ctx context.Context, response *workerResponse) {
	now := time.Now().UTC()

	rpRaw, ok := o.registeredProviders.Load(response.providerID)
	if !ok {
		o.logger.Error(
			"unable to load registered provider",
			"id", response.providerID.String(),
		)

		return
	}

	rp, _ := rpRaw.(Provider)

	if response.error != nil {
		delay := o.nextRetryDelay(response.providerID)

		o.logger.Error(
			"error encountered during rate fetch",
			"name", rp.Name(),
			"retry_in", delay.String(),
			"err", response.error.Error(),
		)

		o.scheduleFetch(
			now.Add(delay),
			response.providerID,
			rp,
		)

		return
	}

	// A successful fetch resets the backoff
	o.retryDelays.Delete(response.providerID)

	// Save the provider-fetched rates
	for _, rate := range response.rates {
		saveCtx, cancelFn := context.WithTimeout(ctx, time.Second*10)

		if err := o.storage.SaveExchangeRate(saveCtx, rate); err != nil {
			o.logger.Error(
				"unable to save exchange rate",
				"base", rate.Base,
				"target", rate.Target,
				"source", rate.Source,
				"err", err,
			)

			cancelFn()

			continue
		}

		o.logger.Info(
			"saved exchange rate",
			"base", rate.Base,
			"target", rate.Target,
			"source", rate.Source,
			"rate", rate.Rate,
			"rate_type", rate.RateType,
			"effective_date", rate.AsOf.String(),
		)

		cancelFn()
	}

	// Schedule a new fetch for this provider
	o.scheduleFetch(
		now.Add(rp.Interval()),
		response.providerID,
		rp,
	)
}

// nextRetryDelay doubles the provider's backoff, capped at maxRetryDelay
func (o *Orchestrator) nextRetryDelay(id xid.ID) time.Duration {
	delay := baseRetryDelay

	if raw, ok := o.retryDelays.Load(id); ok {
		prev, _ := raw.(time.Duration)

		delay = prev * 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}

	o.retryDelays.Store(id, delay)

	return delay
}

// scheduleFetch schedules a new provider fetch
func (o *Orchestrator) scheduleFetch(
	at time.Time,
	providerID xid.ID,
	provider Provider,
) {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	futureSF := scheduledFetch{
		at:         at,
		providerID: providerID,
		provider:   provider,
	}

	o.q.Push(futureSF)
}

// nextFetch fetches the next due fetch job, as of the moment of calling
func (o *Orchestrator) nextFetch() *scheduledFetch {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	now := time.Now().UTC()

	// Check if anything needs to be scheduled
	if o.q.Len() == 0 {
		return nil // nothing to schedule, all jobs are running
	}

	// Check if the top element is due
	if o.q.Index(0).at.After(now) {
		return nil // nothing to schedule, latest job is in the future
	}

	// Grab the next job
	nextSF := o.q.PopFront()

	return nextSF
}
