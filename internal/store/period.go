// Package store holds the authoritative snapshot of the current period:
// the active filter plus the latest normalized transactions and summary.
//
// The store is the single writer for period data. Every filter change
// starts a fetch cycle tagged with a generation number; the two fetches
// of a cycle (transactions and summary) are joined and applied as one
// atomic update, and a cycle whose generation no longer matches at
// apply time is discarded in full. In-flight requests are never
// cancelled; superseded results are dropped on arrival.
package store

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"dru/internal/core"
	"dru/internal/log"
)

// DataSource provides the period data the store mediates. Implemented by
// the budgets resource client.
type DataSource interface {
	Transactions(ctx context.Context, filter *core.PeriodFilter) ([]core.Transaction, error)
	MonthReport(ctx context.Context, year, month int) (core.MonthSummary, error)
	CreateTransaction(ctx context.Context, payload core.TransactionPayload) (core.Transaction, error)
}

// Snapshot is the published view of the store. Transactions and Summary
// are nil until a cycle has ever succeeded; an empty slice means the
// period genuinely has no rows. Observers must treat the contents as
// read-only: the store replaces values wholesale and never mutates them
// in place.
type Snapshot struct {
	Filter       core.PeriodFilter
	Transactions []core.Transaction
	Summary      *core.MonthSummary
	Loading      bool
	Err          string
}

// Store owns the current period snapshot.
type Store struct {
	mu      sync.Mutex
	source  DataSource
	logger  *log.Logger
	gen     uint64
	snap    Snapshot
	subs    map[uint64]func(Snapshot)
	nextSub uint64
	closed  bool
}

// New creates a period store backed by the given data source.
func New(source DataSource, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		source: source,
		logger: logger.WithComponent(log.ComponentStore),
		subs:   make(map[uint64]func(Snapshot)),
	}
}

// Snapshot returns the current published state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers an observer and immediately delivers the current
// snapshot. The returned function detaches the observer; after it
// returns no further snapshots are delivered, so views can tear down
// without receiving updates for disposed state.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	current := s.snap
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SetFilter makes filter the active period and starts a fetch cycle for
// it. Previously published data stays visible while the cycle runs.
func (s *Store) SetFilter(ctx context.Context, filter core.PeriodFilter) {
	gen, ok := s.beginCycle(filter)
	if !ok {
		return
	}
	go s.fetch(ctx, gen, filter)
}

// Refresh re-runs the fetch cycle for the current filter.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	filter := s.snap.Filter
	s.mu.Unlock()
	s.SetFilter(ctx, filter)
}

// CreateTransaction records a transaction and, on success, refetches the
// whole period so local state matches the server-computed aggregates.
// No optimistic update takes place.
func (s *Store) CreateTransaction(ctx context.Context, payload core.TransactionPayload) (core.Transaction, error) {
	created, err := s.source.CreateTransaction(ctx, payload)
	if err != nil {
		return core.Transaction{}, err
	}
	s.Refresh(ctx)
	return created, nil
}

// Close detaches all observers and stops in-flight cycles from applying.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.subs = make(map[uint64]func(Snapshot))
	s.mu.Unlock()
}

// beginCycle bumps the generation, marks the store loading and publishes
// the transition. It returns the cycle's generation tag.
func (s *Store) beginCycle(filter core.PeriodFilter) (uint64, bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, false
	}
	s.gen++
	gen := s.gen
	s.snap.Filter = filter
	s.snap.Loading = true
	s.snap.Err = ""
	snap, subs := s.snap, s.observers()
	s.mu.Unlock()

	notify(subs, snap)
	return gen, true
}

// fetch runs one cycle: both requests in parallel, joined, then applied.
func (s *Store) fetch(ctx context.Context, gen uint64, filter core.PeriodFilter) {
	var (
		transactions []core.Transaction
		summary      core.MonthSummary
	)

	// Both requests always run to completion; a failure in one does not
	// cancel the other. Supersession is handled at apply time instead.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		transactions, err = s.source.Transactions(ctx, &filter)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = s.source.MonthReport(ctx, filter.Year, filter.Month)
		return err
	})
	err := g.Wait()

	s.apply(gen, transactions, summary, err)
}

// apply publishes a cycle's outcome. A cycle whose generation no longer
// matches has been superseded by a newer filter: its result is dropped
// silently, regardless of whether it succeeded. On failure the previous
// data stays visible and only the error message changes.
func (s *Store) apply(gen uint64, transactions []core.Transaction, summary core.MonthSummary, err error) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded cycle", log.FieldGeneration, gen)
		return
	}

	s.snap.Loading = false
	if err != nil {
		s.snap.Err = err.Error()
	} else {
		s.snap.Err = ""
		s.snap.Transactions = transactions
		s.snap.Summary = &summary
	}
	snap, subs := s.snap, s.observers()
	s.mu.Unlock()

	notify(subs, snap)
}

// observers returns a copy of the subscriber list. Callers hold s.mu.
func (s *Store) observers() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
