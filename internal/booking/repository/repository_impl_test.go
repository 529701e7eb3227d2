package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/inkhaus/studio/internal/booking/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) domain.Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Booking{}, &domain.Customer{}, &domain.SyncState{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return Provide(db, node)
}

func sampleInput(uid string) domain.UpsertBookingInput {
	start := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	return domain.UpsertBookingInput{
		CalcomUID:     uid,
		CalcomID:      7,
		Title:         "Flash session",
		AttendeeName:  "Ada",
		AttendeeEmail: "Ada@Example.com",
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		Status:        "ACCEPTED",
	}
}

func TestUpsertBookingCreateThenUpdate(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	created, err := repo.UpsertBooking(ctx, sampleInput("uid-1"))
	require.NoError(t, err)
	assert.True(t, created)

	// Same UID again with a new status updates in place.
	input := sampleInput("uid-1")
	input.Status = "CANCELLED"
	created, err = repo.UpsertBooking(ctx, input)
	require.NoError(t, err)
	assert.False(t, created)

	bookings, total, err := repo.List(ctx, domain.ListBookingRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, bookings, 1)
	assert.Equal(t, "CANCELLED", bookings[0].Status)
	// Email is normalized on write.
	assert.Equal(t, "ada@example.com", bookings[0].AttendeeEmail)
}

func TestUpsertBookingRequiresUID(t *testing.T) {
	repo := setupRepo(t)
	_, err := repo.UpsertBooking(context.Background(), sampleInput("  "))
	assert.ErrorIs(t, err, domain.ErrInvalidUID)
}

func TestUpsertCustomerCountsNewBookingsOnly(t *testing.T) {
	repo := setupRepo(t).(*bookingRepo)
	ctx := context.Background()

	input := sampleInput("uid-1")
	require.NoError(t, repo.UpsertCustomerFromBooking(ctx, input, true))
	require.NoError(t, repo.UpsertCustomerFromBooking(ctx, input, true))
	// A re-synced existing booking must not inflate the counter.
	require.NoError(t, repo.UpsertCustomerFromBooking(ctx, input, false))

	var customer domain.Customer
	require.NoError(t, repo.db.Where("email = ?", "ada@example.com").First(&customer).Error)
	assert.Equal(t, 2, customer.BookingCount)
}

func TestUpsertCustomerRequiresEmail(t *testing.T) {
	repo := setupRepo(t)
	input := sampleInput("uid-1")
	input.AttendeeEmail = ""
	err := repo.UpsertCustomerFromBooking(context.Background(), input, true)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestSyncStateRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	state, err := repo.GetSyncState(ctx, domain.SyncTypeCalcomBookings)
	require.NoError(t, err)
	assert.Nil(t, state)

	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.PutSyncState(ctx, &domain.SyncState{
		SyncType:         domain.SyncTypeCalcomBookings,
		LastSyncedAt:     &at,
		RecordsProcessed: 12,
		RecordsErrored:   1,
		LastRunStatus:    domain.SyncStatusPartialSuccess,
	}))

	state, err = repo.GetSyncState(ctx, domain.SyncTypeCalcomBookings)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, 12, state.RecordsProcessed)
	assert.Equal(t, domain.SyncStatusPartialSuccess, state.LastRunStatus)
	require.NotNil(t, state.LastSyncedAt)
	assert.True(t, at.Equal(state.LastSyncedAt.UTC()))
}

func TestListFiltersByStatusAndRange(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	accepted := sampleInput("uid-1")
	cancelled := sampleInput("uid-2")
	cancelled.Status = "CANCELLED"
	late := sampleInput("uid-3")
	late.StartTime = late.StartTime.Add(48 * time.Hour)
	late.EndTime = late.StartTime.Add(time.Hour)

	for _, input := range []domain.UpsertBookingInput{accepted, cancelled, late} {
		_, err := repo.UpsertBooking(ctx, input)
		require.NoError(t, err)
	}

	bookings, total, err := repo.List(ctx, domain.ListBookingRequest{Status: "ACCEPTED"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, bookings, 2)

	to := accepted.StartTime.Add(time.Hour)
	bookings, total, err = repo.List(ctx, domain.ListBookingRequest{Status: "ACCEPTED", To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, bookings, 1)
	assert.Equal(t, "uid-1", bookings[0].CalcomUID)
}
