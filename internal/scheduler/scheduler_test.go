package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	bookingdomain "github.com/inkhaus/studio/internal/booking/domain"
	"github.com/inkhaus/studio/internal/calcom"
	"github.com/inkhaus/studio/internal/clock"
	syncsvc "github.com/inkhaus/studio/internal/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	calls atomic.Int32
}

func (s *stubSource) ListBookings(context.Context, calcom.ListBookingsRequest) (*calcom.ListBookingsResponse, error) {
	s.calls.Add(1)
	return &calcom.ListBookingsResponse{}, nil
}

type stubRepo struct {
	states []bookingdomain.SyncState
}

func (s *stubRepo) UpsertBooking(context.Context, bookingdomain.UpsertBookingInput) (bool, error) {
	return false, nil
}

func (s *stubRepo) UpsertCustomerFromBooking(context.Context, bookingdomain.UpsertBookingInput, bool) error {
	return nil
}

func (s *stubRepo) GetSyncState(context.Context, string) (*bookingdomain.SyncState, error) {
	return nil, nil
}

func (s *stubRepo) PutSyncState(_ context.Context, state *bookingdomain.SyncState) error {
	s.states = append(s.states, *state)
	return nil
}

func (s *stubRepo) List(context.Context, bookingdomain.ListBookingRequest) ([]*bookingdomain.Booking, int64, error) {
	return nil, 0, nil
}

func newTestScheduler(t *testing.T, source *stubSource, repo *stubRepo) *Scheduler {
	t.Helper()
	fc := clock.NewFakeClock(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	svc := syncsvc.New(syncsvc.Params{
		Log:    zap.NewNop(),
		Clock:  fc,
		Source: source,
		Repo:   repo,
	})
	sched, err := New(Params{
		Log:     zap.NewNop(),
		Clock:   fc,
		SyncSvc: svc,
		Config:  Config{RunInterval: 10 * time.Millisecond, JobTimeout: time.Second},
	})
	require.NoError(t, err)
	return sched
}

func TestRunOnceSyncsAndRecordsState(t *testing.T) {
	source := &stubSource{}
	repo := &stubRepo{}
	sched := newTestScheduler(t, source, repo)

	require.NoError(t, sched.RunOnce(context.Background()))

	assert.Equal(t, int32(1), source.calls.Load())
	require.Len(t, repo.states, 1)
	assert.Equal(t, bookingdomain.SyncStatusSuccess, repo.states[0].LastRunStatus)
}

func TestRunForeverStopsOnCancel(t *testing.T) {
	source := &stubSource{}
	sched := newTestScheduler(t, source, &stubRepo{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.RunForever(ctx)
		close(done)
	}()

	// The first pass runs immediately; cancel afterwards.
	assert.Eventually(t, func() bool { return source.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
