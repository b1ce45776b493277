package livequeue

import (
	"context"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/queue"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotFetcher retrieves the authoritative ordered snapshot for a scope.
type SnapshotFetcher interface {
	Fetch(ctx context.Context, scope queue.Scope) ([]*queue.QueueEntry, error)
}

// QueueClient issues the two optimistic mutations a staff screen performs.
type QueueClient interface {
	Reorder(ctx context.Context, scope queue.Scope, orderedIDs []uuid.UUID) error
	Transition(ctx context.Context, entryID uuid.UUID, newStatus queue.Status) error
}

// Poller maintains a staff client's shadow copy of one queue scope. It refetches the
// full snapshot on a fixed interval, applies speculative local edits immediately, and
// rolls the shadow back to the last confirmed snapshot when a mutation fails. A change
// event (from Broadcaster.Subscribe) can wake it early, but correctness never depends
// on that: the next tick reconciles regardless.
type Poller struct {
	fetcher  SnapshotFetcher
	client   QueueClient
	scope    queue.Scope
	interval time.Duration
	log      *zap.Logger

	mu       sync.RWMutex
	shadow   []*queue.QueueEntry
	lastGood []*queue.QueueEntry

	onUpdate func([]*queue.QueueEntry)
	wake     chan struct{}
}

// DefaultPollInterval matches the staff screens' refresh cadence. Servers advertise
// their configured interval in the X-Poll-Interval header of queue listings.
const DefaultPollInterval = 3 * time.Second

func NewPoller(fetcher SnapshotFetcher, client QueueClient, scope queue.Scope, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		fetcher:  fetcher,
		client:   client,
		scope:    scope,
		interval: interval,
		log:      log,
		wake:     make(chan struct{}, 1),
	}
}

// OnUpdate registers a callback invoked with a copy of the shadow after every change.
// Must be set before Run.
func (p *Poller) OnUpdate(fn func([]*queue.QueueEntry)) {
	p.onUpdate = fn
}

// Run polls until the context is cancelled. The first fetch happens immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		case <-p.wake:
			p.refresh(ctx)
		}
	}
}

// Wake requests an early refresh. Safe to call from any goroutine; extra wakes while
// one is pending are coalesced.
func (p *Poller) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current shadow.
func (p *Poller) Snapshot() []*queue.QueueEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneEntries(p.shadow)
}

// ApplyReorder speculatively reorders the shadow, then submits the batch. On any
// error the shadow reverts to the last confirmed snapshot and the error is returned;
// the next poll resynchronizes with the server either way.
func (p *Poller) ApplyReorder(ctx context.Context, orderedIDs []uuid.UUID) error {
	p.mu.Lock()
	byID := make(map[uuid.UUID]*queue.QueueEntry, len(p.shadow))
	for _, e := range p.shadow {
		byID[e.ID] = e
	}
	speculative := make([]*queue.QueueEntry, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		if e, ok := byID[id]; ok {
			c := *e
			c.Position = i + 1
			speculative = append(speculative, &c)
		}
	}
	p.shadow = speculative
	p.mu.Unlock()
	p.notify()

	if err := p.client.Reorder(ctx, p.scope, orderedIDs); err != nil {
		p.revert()
		return err
	}
	p.confirm()
	return nil
}

// ApplyTransition speculatively updates one entry's status, then submits it.
func (p *Poller) ApplyTransition(ctx context.Context, entryID uuid.UUID, newStatus queue.Status) error {
	p.mu.Lock()
	speculative := cloneEntries(p.shadow)
	for _, e := range speculative {
		if e.ID == entryID {
			e.Status = newStatus
			break
		}
	}
	p.shadow = speculative
	p.mu.Unlock()
	p.notify()

	if err := p.client.Transition(ctx, entryID, newStatus); err != nil {
		p.revert()
		return err
	}
	p.confirm()
	return nil
}

func (p *Poller) refresh(ctx context.Context) {
	entries, err := p.fetcher.Fetch(ctx, p.scope)
	if err != nil {
		// Keep showing the stale shadow; the next tick retries.
		p.log.Warn("queue snapshot fetch failed", zap.Error(err))
		return
	}

	p.mu.Lock()
	p.shadow = entries
	p.lastGood = cloneEntries(entries)
	p.mu.Unlock()
	p.notify()
}

func (p *Poller) revert() {
	p.mu.Lock()
	p.shadow = cloneEntries(p.lastGood)
	p.mu.Unlock()
	p.notify()
}

func (p *Poller) confirm() {
	p.mu.Lock()
	p.lastGood = cloneEntries(p.shadow)
	p.mu.Unlock()
}

func (p *Poller) notify() {
	if p.onUpdate == nil {
		return
	}
	p.onUpdate(p.Snapshot())
}

func cloneEntries(entries []*queue.QueueEntry) []*queue.QueueEntry {
	out := make([]*queue.QueueEntry, len(entries))
	for i, e := range entries {
		c := *e
		out[i] = &c
	}
	return out
}
