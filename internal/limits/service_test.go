package limits

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predmarket/platform/internal/audit"
	"github.com/predmarket/platform/internal/clock"
	"github.com/predmarket/platform/internal/database"
	"github.com/predmarket/platform/internal/metrics"
	inats "github.com/predmarket/platform/internal/nats"
)

// memStore mirrors the SQL statements of Repository behind a single mutex.
type memStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*Profile
	resets   int
	writes   int
	err      error
}

func newMemStore() *memStore {
	return &memStore{profiles: make(map[uuid.UUID]*Profile)}
}

func (m *memStore) ensure(userID uuid.UUID, starts Starts) *Profile {
	p, ok := m.profiles[userID]
	if !ok {
		fresh := profileAt(starts)
		fresh.UserID = userID
		p = &fresh
		m.profiles[userID] = p
	}
	return p
}

func (m *memStore) GetOrCreate(_ context.Context, userID uuid.UUID, starts Starts) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := *m.ensure(userID, starts)
	return &out, nil
}

func (m *memStore) ResetWindows(_ context.Context, userID uuid.UUID, starts Starts) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.resets++
	p := m.profiles[userID]
	*p, _ = rolloverTo(*p, starts)
	out := *p
	return &out, nil
}

func (m *memStore) AddUsage(_ context.Context, userID uuid.UUID, amount float64, starts Starts) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.writes++
	p := m.ensure(userID, starts)
	*p = accumulateTo(*p, amount, starts)
	out := *p
	return &out, nil
}

func (m *memStore) UpsertLimits(_ context.Context, userID uuid.UUID, update LimitUpdate, starts Starts) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.writes++
	p := m.ensure(userID, starts)
	if update.Daily != nil {
		p.Daily = update.Daily
	}
	if update.Weekly != nil {
		p.Weekly = update.Weekly
	}
	if update.Monthly != nil {
		p.Monthly = update.Monthly
	}
	out := *p
	return &out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []inats.AuditEvent
}

func (f *fakePublisher) PublishAuditEvent(_ context.Context, event inats.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}

var testDefaults = Defaults{Daily: 100, Weekly: 500, Monthly: 2000}

// tuesday is 2026-03-10, inside the week starting Sunday 2026-03-08.
var tuesday = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func newTestTracker(now time.Time) (*Tracker, *memStore, *clock.Manual) {
	store := newMemStore()
	clk := clock.NewManual(now)
	return NewTracker(store, clk, testDefaults, nil), store, clk
}

func ptr(v float64) *float64 { return &v }

func TestGetStatus_NewUserGetsDefaults(t *testing.T) {
	tr, _, _ := newTestTracker(tuesday)

	status, err := tr.GetStatus(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 100.0, status.Daily.Limit)
	assert.Equal(t, 500.0, status.Weekly.Limit)
	assert.Equal(t, 2000.0, status.Monthly.Limit)
	for _, ws := range []WindowStatus{status.Daily, status.Weekly, status.Monthly} {
		assert.Zero(t, ws.Used)
		assert.Equal(t, ws.Limit, ws.Remaining)
	}
	assert.True(t, status.Daily.WindowStart.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, status.Weekly.WindowStart.Equal(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)))
	assert.True(t, status.Monthly.WindowStart.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRecordUsage_AccumulatesWithinWindow(t *testing.T) {
	tr, _, clk := newTestTracker(tuesday)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, tr.RecordUsage(ctx, userID, 30))
	clk.Advance(2 * time.Hour)
	require.NoError(t, tr.RecordUsage(ctx, userID, 20))

	status, err := tr.GetStatus(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, status.Daily.Used)
	assert.Equal(t, 50.0, status.Weekly.Used)
	assert.Equal(t, 50.0, status.Monthly.Used)
	assert.Equal(t, 50.0, status.Daily.Remaining)
}

func TestGetStatus_NextDayResetsDailyOnly(t *testing.T) {
	tr, store, clk := newTestTracker(tuesday)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, tr.RecordUsage(ctx, userID, 40))
	clk.Advance(24 * time.Hour)

	rolloversBefore := testutil.ToFloat64(metrics.WindowRolloversTotal.WithLabelValues("daily"))

	status, err := tr.GetStatus(ctx, userID)
	require.NoError(t, err)

	assert.Zero(t, status.Daily.Used)
	assert.Equal(t, status.Daily.Limit, status.Daily.Remaining)
	assert.Equal(t, 40.0, status.Weekly.Used)
	assert.Equal(t, 40.0, status.Monthly.Used)
	assert.Equal(t, 1, store.resets)
	assert.Equal(t, rolloversBefore+1, testutil.ToFloat64(metrics.WindowRolloversTotal.WithLabelValues("daily")))

	// The reset was persisted.
	assert.Zero(t, store.profiles[userID].DailyUsed)
}

func TestGetStatus_NoBoundaryNoWrite(t *testing.T) {
	tr, store, clk := newTestTracker(tuesday)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, tr.RecordUsage(ctx, userID, 10))
	clk.Advance(time.Hour)

	_, err := tr.GetStatus(ctx, userID)
	require.NoError(t, err)
	_, err = tr.GetStatus(ctx, userID)
	require.NoError(t, err)

	assert.Zero(t, store.resets)
}

func TestRecordUsage_SundayMidnightStartsNewWeek(t *testing.T) {
	saturday := time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC)
	tr, _, clk := newTestTracker(saturday)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, tr.RecordUsage(ctx, userID, 25))
	clk.Set(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, tr.RecordUsage(ctx, userID, 5))

	status, err := tr.GetStatus(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, status.Daily.Used)
	assert.Equal(t, 5.0, status.Weekly.Used)
	assert.Equal(t, 30.0, status.Monthly.Used)
	assert.True(t, status.Weekly.WindowStart.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))
}

func TestRecordUsage_InvalidAmount(t *testing.T) {
	tr, store, _ := newTestTracker(tuesday)
	ctx := context.Background()
	userID := uuid.New()

	for _, amount := range []float64{-5, 0, math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := tr.RecordUsage(ctx, userID, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amount)
	}
	assert.Zero(t, store.writes)

	status, err := tr.GetStatus(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, status.Daily.Used)
}

func TestRecordUsage_NeverRejectsAboveCeiling(t *testing.T) {
	pub := &fakePublisher{}
	store := newMemStore()
	tr := NewTracker(store, clock.NewManual(tuesday), testDefaults, audit.NewRecorder(pub))
	ctx := context.Background()
	userID := uuid.New()

	exceededBefore := testutil.ToFloat64(metrics.LimitExceededTotal.WithLabelValues("daily"))

	require.NoError(t, tr.RecordUsage(ctx, userID, 150))

	status, err := tr.GetStatus(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, status.Daily.Used)
	assert.Zero(t, status.Daily.Remaining)
	assert.Equal(t, 350.0, status.Weekly.Remaining)

	assert.Equal(t, []string{audit.EventWagerRecorded, audit.EventLimitExceeded}, pub.types())
	assert.Equal(t, audit.SeverityWarn, pub.events[1].Severity)
	assert.Equal(t, exceededBefore+1, testutil.ToFloat64(metrics.LimitExceededTotal.WithLabelValues("daily")))
}

func TestSetLimits_KeepsUsage(t *testing.T) {
	tr, _, _ := newTestTracker(tuesday)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, tr.RecordUsage(ctx, userID, 60))

	status, err := tr.SetLimits(ctx, userID, LimitUpdate{Daily: ptr(200)})
	require.NoError(t, err)
	assert.Equal(t, 200.0, status.Daily.Limit)
	assert.Equal(t, 60.0, status.Daily.Used)
	assert.Equal(t, 140.0, status.Daily.Remaining)

	status, err = tr.GetStatus(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, status.Daily.Limit)
	assert.Equal(t, 60.0, status.Daily.Used)
	assert.Equal(t, 500.0, status.Weekly.Limit)
	assert.Equal(t, 60.0, status.Weekly.Used)
}

func TestSetLimits_AbsentFieldsUnchanged(t *testing.T) {
	tr, _, _ := newTestTracker(tuesday)
	ctx := context.Background()
	userID := uuid.New()

	_, err := tr.SetLimits(ctx, userID, LimitUpdate{Weekly: ptr(300), Monthly: ptr(900)})
	require.NoError(t, err)

	status, err := tr.SetLimits(ctx, userID, LimitUpdate{Monthly: ptr(1200)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, status.Daily.Limit)
	assert.Equal(t, 300.0, status.Weekly.Limit)
	assert.Equal(t, 1200.0, status.Monthly.Limit)
}

func TestSetLimits_ZeroShowsDefault(t *testing.T) {
	tr, _, _ := newTestTracker(tuesday)

	status, err := tr.SetLimits(context.Background(), uuid.New(), LimitUpdate{Daily: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, status.Daily.Limit)
}

func TestSetLimits_InvalidLimit(t *testing.T) {
	tr, store, _ := newTestTracker(tuesday)
	ctx := context.Background()

	for _, update := range []LimitUpdate{
		{Daily: ptr(-1)},
		{Weekly: ptr(math.NaN())},
		{Daily: ptr(10), Monthly: ptr(math.Inf(1))},
	} {
		_, err := tr.SetLimits(ctx, uuid.New(), update)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	}
	assert.Zero(t, store.writes)
}

func TestSetLimits_StaleWindowsDisplayEmpty(t *testing.T) {
	tr, store, clk := newTestTracker(tuesday)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, tr.RecordUsage(ctx, userID, 40))
	clk.Advance(24 * time.Hour)

	status, err := tr.SetLimits(ctx, userID, LimitUpdate{Daily: ptr(80)})
	require.NoError(t, err)
	assert.Zero(t, status.Daily.Used)
	assert.Equal(t, 80.0, status.Daily.Remaining)
	assert.Equal(t, 40.0, status.Weekly.Used)

	// Counters are only reset through the rollover path.
	assert.Equal(t, 40.0, store.profiles[userID].DailyUsed)
}

func TestTracker_StorageErrorsPropagate(t *testing.T) {
	tr, store, _ := newTestTracker(tuesday)
	store.err = errors.Join(database.ErrStorage, errors.New("connection refused"))
	ctx := context.Background()

	_, err := tr.GetStatus(ctx, uuid.New())
	assert.ErrorIs(t, err, database.ErrStorage)

	err = tr.RecordUsage(ctx, uuid.New(), 10)
	assert.ErrorIs(t, err, database.ErrStorage)

	_, err = tr.SetLimits(ctx, uuid.New(), LimitUpdate{Daily: ptr(10)})
	assert.ErrorIs(t, err, database.ErrStorage)
}

func TestRecordUsage_ConcurrentCallsKeepExactSum(t *testing.T) {
	tr, _, _ := newTestTracker(tuesday)
	ctx := context.Background()
	userID := uuid.New()

	const n = 64
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- tr.RecordUsage(ctx, userID, 2)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	status, err := tr.GetStatus(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, float64(2*n), status.Daily.Used)
	assert.Equal(t, float64(2*n), status.Weekly.Used)
	assert.Equal(t, float64(2*n), status.Monthly.Used)
}
