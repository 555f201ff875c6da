package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/logger"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 5 * time.Second

// overviewAPI is the slice of the API client the poller needs.
type overviewAPI interface {
	Overview(ctx context.Context) (*api.Overview, error)
}

// Update is one poll result delivered on the poller's channel. Exactly
// one of Overview and Err is set.
type Update struct {
	Overview *api.Overview
	Err      error
	At       time.Time
}

// Poller fetches the dashboard overview on a fixed cadence and publishes
// results on a channel. At most one request is in flight at a time; ticks
// that land mid-fetch are dropped, not queued. After Stop returns, no
// further updates are delivered.
type Poller struct {
	api      overviewAPI
	interval time.Duration
	log      logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	updates chan Update
}

// NewPoller creates a poller with the given cadence. A non-positive
// interval falls back to DefaultInterval.
func NewPoller(client overviewAPI, interval time.Duration, log logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Poller{
		api:      client,
		interval: interval,
		log:      log,
	}
}

// Start begins polling. The first fetch happens immediately, then every
// interval. Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) <-chan Update {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return p.updates
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.updates = make(chan Update, 1)

	p.wg.Add(1)
	go p.loop(ctx, p.updates)

	return p.updates
}

// loop runs the fetch cycle. Fetching inline in this goroutine means a
// slow request naturally holds off the next tick; the ticker coalesces
// ticks that fire while a fetch is in progress.
func (p *Poller) loop(ctx context.Context, out chan<- Update) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetch(ctx, out)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx, out)
		}
	}
}

// fetch performs one request and publishes the result. A result that
// completes after cancellation is dropped on the floor rather than
// delivered to a consumer that already tore down.
func (p *Poller) fetch(ctx context.Context, out chan<- Update) {
	overview, err := p.api.Overview(ctx)
	if err != nil {
		p.log.Debug("overview fetch failed: %v", err)
	}

	update := Update{Overview: overview, Err: err, At: time.Now()}
	select {
	case out <- update:
	case <-ctx.Done():
	}
}

// Stop halts polling and waits for any in-flight fetch to wind down,
// then closes the update channel. Stop on a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	updates := p.updates
	p.cancel = nil
	p.updates = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()

	// Drain the buffered slot so a result published just before
	// cancellation cannot surface after Stop returns.
	select {
	case <-updates:
	default:
	}
	close(updates)
}
