package radar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/opportunity-radar/internal/models"
)

// fakeFetcher returns queued results in order; the last one repeats
type fakeFetcher struct {
	mu      sync.Mutex
	results []fetchResult
	calls   int
	gate    chan struct{}
}

type fetchResult struct {
	records []models.OpportunityRecord
	err     error
}

func (f *fakeFetcher) Source() string { return "fake://snapshot" }

func (f *fakeFetcher) Fetch(ctx context.Context) ([]models.OpportunityRecord, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.calls, len(f.results)-1)
	f.calls++
	return f.results[i].records, f.results[i].err
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func rec(ticker string, ivRank float64, strategy models.Strategy) models.OpportunityRecord {
	return models.OpportunityRecord{
		Ticker:   ticker,
		Name:     ticker + " Corp",
		Price:    decimal.NewFromInt(100),
		IVRank:   ivRank,
		Strategy: strategy,
	}
}

func snapshotA() []models.OpportunityRecord {
	return []models.OpportunityRecord{
		rec("NVDA", 72, models.StrategyIncomeGenerator),
		rec("WMT", 18, models.StrategyCheapProtection),
		rec("KO", 40, models.StrategyNeutral),
	}
}

type recordingObserver struct {
	loaded []int
	failed []error
}

func (o *recordingObserver) SnapshotLoaded(_ context.Context, snap models.Snapshot) error {
	o.loaded = append(o.loaded, len(snap.Records))
	return nil
}

func (o *recordingObserver) SnapshotFailed(_ context.Context, _ string, loadErr error) error {
	o.failed = append(o.failed, loadErr)
	return errors.New("observer down")
}

func TestActivate(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{records: snapshotA()}}}
	c := NewController(f)

	assert.Equal(t, StateIdle, c.State())
	assert.False(t, c.CanRefresh())

	require.NoError(t, c.Activate(context.Background()))
	assert.Equal(t, StateReady, c.State())
	assert.True(t, c.CanRefresh())
	assert.Len(t, c.Records(), 3)

	assert.ErrorIs(t, c.Activate(context.Background()), ErrAlreadyActive)
	assert.Equal(t, 1, f.Calls())
}

func TestRefreshBeforeActivate(t *testing.T) {
	c := NewController(&fakeFetcher{results: []fetchResult{{records: snapshotA()}}})
	assert.ErrorIs(t, c.Refresh(context.Background()), ErrNotActive)
}

func TestLoadFailureYieldsEmptyReady(t *testing.T) {
	obs := &recordingObserver{}
	f := &fakeFetcher{results: []fetchResult{
		{records: snapshotA()},
		{err: errors.New("connection refused")},
	}}
	c := NewController(f, WithObserver(obs))

	require.NoError(t, c.Activate(context.Background()))
	require.NoError(t, c.Refresh(context.Background()), "load failures are not surfaced")

	assert.Equal(t, StateReady, c.State())
	assert.Empty(t, c.Records())
	assert.NotNil(t, c.Records())

	st := c.Status()
	assert.Equal(t, 0, st.RecordCount)
	assert.Contains(t, st.LastError, "connection refused")
	assert.True(t, st.CanRefresh)

	assert.Equal(t, []int{3}, obs.loaded)
	require.Len(t, obs.failed, 1)
	var loadErr *LoadError
	require.ErrorAs(t, obs.failed[0], &loadErr)
	assert.Equal(t, "fake://snapshot", loadErr.Source)
}

func TestRefreshReplacesWholesale(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{
		{records: snapshotA()},
		{records: []models.OpportunityRecord{rec("AMD", 55, models.StrategyIncomeGenerator)}},
	}}
	c := NewController(f)
	require.NoError(t, c.Activate(context.Background()))
	require.NoError(t, c.Refresh(context.Background()))

	records := c.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "AMD", records[0].Ticker)
	assert.Empty(t, c.Status().LastError)
}

func TestRefreshWhileInFlightIsBusy(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{records: snapshotA()}}}
	c := NewController(f)
	require.NoError(t, c.Activate(context.Background()))

	f.gate = make(chan struct{})
	require.NoError(t, c.RefreshAsync(context.Background()))

	assert.Equal(t, StateRefreshing, c.State())
	assert.False(t, c.CanRefresh())
	assert.True(t, c.Loading())
	assert.ErrorIs(t, c.Refresh(context.Background()), ErrBusy)
	assert.ErrorIs(t, c.RefreshAsync(context.Background()), ErrBusy)

	close(f.gate)
	c.Wait()

	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, 2, f.Calls(), "rejected refreshes never fetch")
}

func TestSelection(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{records: snapshotA()}}}
	c := NewController(f)
	require.NoError(t, c.Activate(context.Background()))

	_, ok := c.Selected()
	assert.False(t, ok)

	_, err := c.Select("TSLA")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := c.Select("WMT")
	require.NoError(t, err)
	assert.Equal(t, "WMT", got.Ticker)

	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "WMT", sel.Ticker)
	assert.Equal(t, "WMT", c.Status().Selected)

	c.SelectRecord(snapshotA()[0])
	sel, _ = c.Selected()
	assert.Equal(t, "NVDA", sel.Ticker)

	c.ClearSelection()
	_, ok = c.Selected()
	assert.False(t, ok)
}

func TestSelectionAcrossReload(t *testing.T) {
	updated := snapshotA()
	updated[1].IVRank = 22

	f := &fakeFetcher{results: []fetchResult{
		{records: snapshotA()},
		{records: updated},
		{records: []models.OpportunityRecord{rec("NVDA", 70, models.StrategyIncomeGenerator)}},
	}}
	c := NewController(f)
	require.NoError(t, c.Activate(context.Background()))

	_, err := c.Select("WMT")
	require.NoError(t, err)

	require.NoError(t, c.Refresh(context.Background()))
	sel, ok := c.Selected()
	require.True(t, ok, "ticker still present keeps the selection")
	assert.Equal(t, 22.0, sel.IVRank, "selection is replaced with the fresh record")

	require.NoError(t, c.Refresh(context.Background()))
	_, ok = c.Selected()
	assert.False(t, ok, "ticker missing from the new snapshot closes the detail")
}

func TestRecordsReturnsCopy(t *testing.T) {
	c := NewController(&fakeFetcher{results: []fetchResult{{records: snapshotA()}}})
	require.NoError(t, c.Activate(context.Background()))

	records := c.Records()
	records[0].Ticker = "MUTATED"

	_, err := c.Lookup("NVDA")
	assert.NoError(t, err)
}

func TestStatus(t *testing.T) {
	loadedAt := time.Date(2025, 11, 3, 14, 30, 0, 0, time.UTC)
	c := NewController(
		&fakeFetcher{results: []fetchResult{{records: snapshotA()}}},
		WithClock(func() time.Time { return loadedAt }),
	)

	st := c.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Nil(t, st.LoadedAt)

	require.NoError(t, c.Activate(context.Background()))
	st = c.Status()
	assert.Equal(t, StateReady, st.State)
	assert.Equal(t, "fake://snapshot", st.Source)
	assert.Equal(t, 3, st.RecordCount)
	require.NotNil(t, st.LoadedAt)
	assert.Equal(t, loadedAt, *st.LoadedAt)
}

type fakeLocker struct {
	held     bool
	err      error
	unlocked int
}

func (l *fakeLocker) TryLock(context.Context, string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLocker) Unlock(context.Context, string) error {
	l.held = false
	l.unlocked++
	return nil
}

func TestRefreshLock(t *testing.T) {
	t.Run("acquired and released", func(t *testing.T) {
		lock := &fakeLocker{}
		f := &fakeFetcher{results: []fetchResult{{records: snapshotA()}}}
		c := NewController(f, WithLocker(lock))
		require.NoError(t, c.Activate(context.Background()))

		require.NoError(t, c.Refresh(context.Background()))
		assert.Equal(t, 1, lock.unlocked)
		assert.False(t, lock.held)
		assert.Equal(t, 2, f.Calls())
	})

	t.Run("held elsewhere", func(t *testing.T) {
		lock := &fakeLocker{held: true}
		f := &fakeFetcher{results: []fetchResult{{records: snapshotA()}}}
		c := NewController(f, WithLocker(lock))
		require.NoError(t, c.Activate(context.Background()))

		assert.ErrorIs(t, c.Refresh(context.Background()), ErrBusy)
		assert.Equal(t, StateReady, c.State())
		assert.Equal(t, 1, f.Calls())
	})

	t.Run("lock store down", func(t *testing.T) {
		lock := &fakeLocker{err: errors.New("dial tcp: refused")}
		f := &fakeFetcher{results: []fetchResult{{records: snapshotA()}}}
		c := NewController(f, WithLocker(lock))
		require.NoError(t, c.Activate(context.Background()))

		require.NoError(t, c.Refresh(context.Background()))
		assert.Equal(t, 2, f.Calls())
	})
}
