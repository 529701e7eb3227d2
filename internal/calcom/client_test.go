package calcom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkhaus/studio/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.Config{
		CalcomBaseURL: baseURL,
		CalcomAPIKey:  "test-key",
		CalcomTimeout: time.Second,
	}, zap.NewNop())
}

func TestListBookingsSendsAuthAndPaging(t *testing.T) {
	var gotAuth, gotStartAfter string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotStartAfter = r.URL.Query().Get("startAfter")
		assert.Equal(t, "/bookings", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "50", r.URL.Query().Get("offset"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"bookings": [
				{
					"id": 9,
					"uid": "abc",
					"title": "Consultation",
					"status": "ACCEPTED",
					"startTime": "2025-06-10T14:00:00Z",
					"endTime": "2025-06-10T15:00:00Z",
					"attendees": [{"name": "Ada", "email": "ada@example.com", "timeZone": "Europe/Berlin"}],
					"payment": [{"amount": 5000, "currency": "EUR", "success": true}]
				}
			],
			"pagination": {"total": 51, "hasMore": true}
		}`))
	}))
	defer srv.Close()

	cursor := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	resp, err := newTestClient(srv.URL).ListBookings(context.Background(), ListBookingsRequest{
		Limit:      25,
		Offset:     50,
		StartAfter: &cursor,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "2025-06-01T00:00:00Z", gotStartAfter)

	require.Len(t, resp.Bookings, 1)
	booking := resp.Bookings[0]
	assert.Equal(t, "abc", booking.UID)
	assert.Equal(t, "Europe/Berlin", booking.Attendees[0].Timezone)
	assert.Equal(t, int64(5000), booking.Payment[0].Amount)
	assert.True(t, resp.Pagination.HasMore)
	assert.Equal(t, int64(51), resp.Pagination.Total)
}

func TestListBookingsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream broke`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ListBookings(context.Background(), ListBookingsRequest{Limit: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream broke")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, newTestClient(srv.URL).Health(context.Background()))
}
