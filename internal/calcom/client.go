// Package calcom is a minimal client for the Cal.com bookings API: a paged
// list endpoint and a health check.
package calcom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/inkhaus/studio/internal/config"
	"go.uber.org/zap"
)

// Booking is the provider-side booking record.
type Booking struct {
	ID        int64          `json:"id"`
	UID       string         `json:"uid"`
	Title     string         `json:"title"`
	Status    string         `json:"status"`
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	EventType EventType      `json:"eventType"`
	Attendees []Attendee     `json:"attendees"`
	Payment   []Payment      `json:"payment"`
	Paid      bool           `json:"paid"`
	Metadata  map[string]any `json:"metadata"`
}

type EventType struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type Attendee struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Timezone string `json:"timeZone"`
}

type Payment struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Success  bool   `json:"success"`
}

// ListBookingsRequest pages through provider bookings. StartAfter narrows to
// bookings created after the cursor for incremental syncs.
type ListBookingsRequest struct {
	Limit      int
	Offset     int
	StartAfter *time.Time
}

type ListBookingsResponse struct {
	Bookings   []Booking `json:"bookings"`
	Pagination Paging    `json:"pagination"`
}

type Paging struct {
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.CalcomBaseURL,
		apiKey:  cfg.CalcomAPIKey,
		client:  &http.Client{Timeout: cfg.CalcomTimeout},
		log:     log.Named("calcom.client"),
	}
}

// ListBookings fetches one page of bookings.
func (c *Client) ListBookings(ctx context.Context, req ListBookingsRequest) (*ListBookingsResponse, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(req.Limit))
	query.Set("offset", strconv.Itoa(req.Offset))
	if req.StartAfter != nil {
		query.Set("startAfter", req.StartAfter.UTC().Format(time.RFC3339))
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/bookings?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var out ListBookingsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode bookings page: %w", err)
	}
	return &out, nil
}

// Health probes the provider API.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health")
	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("calcom api error %d: %s", res.StatusCode, snippet(body))
	}
	return body, nil
}

func snippet(body []byte) string {
	const max = 256
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}
