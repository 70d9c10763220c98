// Package radar owns the loaded opportunity snapshot and the current selection.
package radar

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/trogers1052/opportunity-radar/internal/logger"
	"github.com/trogers1052/opportunity-radar/internal/models"
)

// State is the load lifecycle of the controller
type State string

// Controller states
const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateRefreshing State = "refreshing"
)

// RefreshLockKey is the key taken on the Locker during a refresh
const RefreshLockKey = "opportunity-radar:refresh"

// Locker serializes refreshes across replicas
type Locker interface {
	TryLock(ctx context.Context, key string) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Observer is notified after every load attempt
type Observer interface {
	SnapshotLoaded(ctx context.Context, snap models.Snapshot) error
	SnapshotFailed(ctx context.Context, source string, loadErr error) error
}

// Status summarizes the controller for the status endpoint and the page header
type Status struct {
	State       State      `json:"state"`
	Source      string     `json:"source"`
	RecordCount int        `json:"record_count"`
	LoadedAt    *time.Time `json:"loaded_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	CanRefresh  bool       `json:"can_refresh"`
	Selected    string     `json:"selected,omitempty"`
}

// Controller loads the snapshot and holds the selection. It is safe for concurrent use;
// fetches run outside the mutex and at most one is in flight.
type Controller struct {
	fetcher   Fetcher
	locker    Locker
	observers []Observer
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.RWMutex
	state    State
	snapshot models.Snapshot
	lastErr  string
	selected *models.OpportunityRecord

	wg sync.WaitGroup
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger.OrNop(l) }
}

// WithLocker enables the distributed refresh lock
func WithLocker(l Locker) Option {
	return func(c *Controller) { c.locker = l }
}

// WithObserver registers an observer; observers are called in registration order
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates an idle controller
func NewController(fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher: fetcher,
		logger:  zap.NewNop(),
		now:     time.Now,
		state:   StateIdle,
		snapshot: models.Snapshot{
			Records: []models.OpportunityRecord{},
			Source:  fetcher.Source(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Activate performs the initial load. Load failures leave the controller ready with no records.
func (c *Controller) Activate(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyActive
	}
	c.state = StateLoading
	c.mu.Unlock()

	c.load(ctx)
	return nil
}

// Refresh reloads the snapshot and waits for the result
func (c *Controller) Refresh(ctx context.Context) error {
	release, err := c.beginRefresh(ctx)
	if err != nil {
		return err
	}
	defer release()

	c.load(ctx)
	return nil
}

// RefreshAsync starts a reload and returns once it is accepted. The load itself runs
// detached from ctx cancellation; use Wait to drain it.
func (c *Controller) RefreshAsync(ctx context.Context) error {
	release, err := c.beginRefresh(ctx)
	if err != nil {
		return err
	}

	bg := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer release()
		c.load(bg)
	}()
	return nil
}

// Wait blocks until every background refresh has finished
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) beginRefresh(ctx context.Context) (func(), error) {
	c.mu.Lock()
	switch c.state {
	case StateIdle:
		c.mu.Unlock()
		return nil, ErrNotActive
	case StateLoading, StateRefreshing:
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.state = StateRefreshing
	c.mu.Unlock()

	if c.locker == nil {
		return func() {}, nil
	}

	ok, err := c.locker.TryLock(ctx, RefreshLockKey)
	if err != nil {
		// An unreachable lock store must not block refreshes.
		c.logger.Warn("refresh lock unavailable, refreshing without it", zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		c.setState(StateReady)
		return nil, ErrBusy
	}

	return func() {
		if err := c.locker.Unlock(context.WithoutCancel(ctx), RefreshLockKey); err != nil {
			c.logger.Warn("failed to release refresh lock", zap.Error(err))
		}
	}, nil
}

func (c *Controller) load(ctx context.Context) {
	source := c.fetcher.Source()
	start := c.now()

	records, err := c.fetcher.Fetch(ctx)
	var loadErr *LoadError
	if err != nil {
		loadErr = &LoadError{Source: source, Err: err}
		c.logger.Error("failed to load opportunities", zap.String("source", source), zap.Error(err))
		records = []models.OpportunityRecord{}
	}

	for _, problem := range models.ValidateRecords(records) {
		c.logger.Warn("snapshot record violates invariant", zap.Error(problem))
	}

	snap := models.Snapshot{Records: records, Source: source, LoadedAt: c.now()}

	c.mu.Lock()
	c.snapshot = snap
	c.state = StateReady
	c.lastErr = ""
	if loadErr != nil {
		c.lastErr = loadErr.Error()
	}
	c.reconcileSelection()
	c.mu.Unlock()

	if loadErr == nil {
		c.logger.Info("opportunities loaded",
			zap.String("source", source),
			zap.Int("records", len(records)),
			zap.Duration("elapsed", snap.LoadedAt.Sub(start)))
	}

	c.notify(ctx, snap, loadErr)
}

// reconcileSelection re-resolves the selection against the new snapshot. Caller holds mu.
func (c *Controller) reconcileSelection() {
	if c.selected == nil {
		return
	}
	rec, ok := c.snapshot.Lookup(c.selected.Ticker)
	if !ok {
		c.logger.Info("selected ticker no longer present, closing detail", zap.String("ticker", c.selected.Ticker))
		c.selected = nil
		return
	}
	c.selected = &rec
}

func (c *Controller) notify(ctx context.Context, snap models.Snapshot, loadErr *LoadError) {
	for _, o := range c.observers {
		var err error
		if loadErr != nil {
			err = o.SnapshotFailed(ctx, snap.Source, loadErr)
		} else {
			err = o.SnapshotLoaded(ctx, snap)
		}
		if err != nil {
			c.logger.Warn("snapshot observer failed", zap.Error(err))
		}
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// CanRefresh reports whether the refresh control is enabled
func (c *Controller) CanRefresh() bool {
	return c.State() == StateReady
}

// Loading reports whether a fetch is in flight
func (c *Controller) Loading() bool {
	s := c.State()
	return s == StateLoading || s == StateRefreshing
}

// Records returns a copy of the current record sequence
func (c *Controller) Records() []models.OpportunityRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.snapshot.Records)
}

// Snapshot returns a copy of the current snapshot
func (c *Controller) Snapshot() models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := c.snapshot
	snap.Records = slices.Clone(snap.Records)
	return snap
}

// Lookup finds a record in the current snapshot
func (c *Controller) Lookup(ticker string) (models.OpportunityRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.snapshot.Lookup(ticker)
	if !ok {
		return models.OpportunityRecord{}, ErrNotFound
	}
	return rec, nil
}

// Status returns a summary of the controller
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Status{
		State:       c.state,
		Source:      c.snapshot.Source,
		RecordCount: len(c.snapshot.Records),
		LastError:   c.lastErr,
		CanRefresh:  c.state == StateReady,
	}
	if !c.snapshot.LoadedAt.IsZero() {
		loadedAt := c.snapshot.LoadedAt
		st.LoadedAt = &loadedAt
	}
	if c.selected != nil {
		st.Selected = c.selected.Ticker
	}
	return st
}

// Select selects the record with ticker from the current snapshot
func (c *Controller) Select(ticker string) (models.OpportunityRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.snapshot.Lookup(ticker)
	if !ok {
		return models.OpportunityRecord{}, ErrNotFound
	}
	c.selected = &rec
	return rec, nil
}

// SelectRecord replaces the selection with rec. It is the OnRowClick callback of a
// table.View used by the selection API.
func (c *Controller) SelectRecord(rec models.OpportunityRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = &rec
}

// ClearSelection closes the detail view
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

// Selected returns the current selection
func (c *Controller) Selected() (models.OpportunityRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == nil {
		return models.OpportunityRecord{}, false
	}
	return *c.selected, true
}
