// Package dispatch runs service control actions against the management
// API. One action per service may be in flight at a time, and every
// action settles by re-fetching the authoritative service list rather
// than guessing the resulting state.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/logger"
)

// serviceAPI is the slice of the API client the dispatcher needs.
type serviceAPI interface {
	Services(ctx context.Context) ([]api.Service, error)
	ServiceAction(ctx context.Context, name, action string) (*api.ActionResult, error)
}

// Event is the settled outcome of one dispatched action. Err carries the
// action failure, if any; Services is the re-fetched list, which is the
// source of truth for unit state regardless of how the action went.
type Event struct {
	Service  string
	Action   string
	Result   *api.ActionResult
	Err      error
	Services []api.Service
	ListErr  error
}

// Dispatcher serializes control actions per service and publishes
// settled outcomes on a channel.
type Dispatcher struct {
	api serviceAPI
	log logger.Logger

	mu      sync.Mutex
	pending map[string]string
	closed  bool
	done    chan struct{}
	events  chan Event
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher publishing on a buffered channel.
func NewDispatcher(client serviceAPI, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Noop()
	}
	return &Dispatcher{
		api:     client,
		log:     log,
		pending: make(map[string]string),
		done:    make(chan struct{}),
		events:  make(chan Event, 8),
	}
}

// Events returns the outcome channel. It closes when the dispatcher does.
func (d *Dispatcher) Events() <-chan Event {
	return d.events
}

// Services fetches the current unit list.
func (d *Dispatcher) Services(ctx context.Context) ([]api.Service, error) {
	return d.api.Services(ctx)
}

// Pending reports the in-flight action for a service, if any.
func (d *Dispatcher) Pending(service string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	action, ok := d.pending[service]
	return action, ok
}

// Invoke starts an action against a service. It returns immediately once
// the action is accepted; the outcome arrives on Events. A service with
// an action already in flight rejects further actions until that one
// settles.
func (d *Dispatcher) Invoke(ctx context.Context, service, action string) error {
	switch action {
	case api.ActionStart, api.ActionStop, api.ActionRestart:
	default:
		return errors.New(errors.ErrAction,
			fmt.Sprintf("Unknown service action '%s'", action),
			"Use start, stop, or restart")
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return errors.New(errors.ErrState,
			"Dispatcher is shut down",
			"")
	}
	if inflight, ok := d.pending[service]; ok {
		d.mu.Unlock()
		return errors.New(errors.ErrAction,
			fmt.Sprintf("%s of %s is already in progress", inflight, service),
			"Wait for the current action to finish")
	}
	d.pending[service] = action
	d.mu.Unlock()

	d.wg.Add(1)
	go d.run(ctx, service, action)
	return nil
}

// run executes one accepted action and settles it. The service list is
// re-fetched whether or not the action succeeded; whatever the server
// reports next is the truth about the unit's state.
func (d *Dispatcher) run(ctx context.Context, service, action string) {
	defer d.wg.Done()

	result, err := d.api.ServiceAction(ctx, service, action)
	if err != nil {
		d.log.Debug("%s %s failed: %v", action, service, err)
	}

	services, listErr := d.api.Services(ctx)
	if listErr != nil {
		d.log.Debug("service list refetch failed: %v", listErr)
	}

	d.mu.Lock()
	delete(d.pending, service)
	d.mu.Unlock()

	ev := Event{
		Service:  service,
		Action:   action,
		Result:   result,
		Err:      err,
		Services: services,
		ListErr:  listErr,
	}
	select {
	case d.events <- ev:
	case <-d.done:
	case <-ctx.Done():
	}
}

// Close stops accepting actions, waits for in-flight ones to settle, and
// closes the event channel. Close on a closed dispatcher is a no-op.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.done)
	d.mu.Unlock()

	d.wg.Wait()
	close(d.events)
}
