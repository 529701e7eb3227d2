package domain

import (
	"context"
	"errors"
	"time"

	designdomain "github.com/inkhaus/studio/internal/design/domain"
	"github.com/inkhaus/studio/pkg/db/pagination"
)

// IngestEventRequest is the wire shape accepted by the ingestion endpoint.
// Exactly one metadata variant is read, selected by Category.
type IngestEventRequest struct {
	Timestamp  time.Time     `json:"timestamp"`
	UserID     string        `json:"user_id"`
	SessionID  string        `json:"session_id"`
	Category   EventCategory `json:"category"`
	Action     string        `json:"action"`
	Label      string        `json:"label"`
	Value      *float64      `json:"value"`
	Path       string        `json:"path"`
	Referrer   string        `json:"referrer"`
	DeviceType string        `json:"device_type"`
	Browser    string        `json:"browser"`
	OS         string        `json:"os"`

	PageView    *PageViewMetadata    `json:"page_view,omitempty"`
	Interaction *InteractionMetadata `json:"interaction,omitempty"`
	Booking     *BookingMetadata     `json:"booking,omitempty"`
	Gallery     *GalleryMetadata     `json:"gallery,omitempty"`
	Conversion  *ConversionMetadata  `json:"conversion,omitempty"`
	Error       *ErrorMetadata       `json:"error,omitempty"`
}

// QueryEventsRequest filters stored events. All predicates are conjunctive;
// zero values are ignored.
type QueryEventsRequest struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Categories []EventCategory
	Actions    []string
	UserID     string
	Path       string
	DeviceType string

	SortBy  string
	SortDir string

	pagination.Pagination
}

type QueryEventsResponse struct {
	Events     []Event             `json:"events"`
	Pagination pagination.PageInfo `json:"pagination"`
}

// DateRange bounds an aggregation. Zero endpoints are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Summary is the dashboard aggregate over a date range.
type Summary struct {
	TotalEvents            int64            `json:"total_events"`
	EventsByCategory       map[string]int64 `json:"events_by_category"`
	EventsByAction         map[string]int64 `json:"events_by_action"`
	TopPages               []PageCount      `json:"top_pages"`
	DeviceBreakdown        map[string]int64 `json:"device_breakdown"`
	ConversionRate         float64          `json:"conversion_rate"`
	SessionCount           int64            `json:"session_count"`
	AverageSessionDuration float64          `json:"average_session_duration"`
	BounceRate             float64          `json:"bounce_rate"`
}

type PageCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// DesignScore ranks one gallery design by weighted engagement.
type DesignScore struct {
	DesignID     string               `json:"design_id"`
	Views        int64                `json:"views"`
	Interactions int64                `json:"interactions"`
	Score        int64                `json:"score"`
	Design       *designdomain.Design `json:"design,omitempty"`
}

// FunnelStepCount is the global event count for one funnel step.
type FunnelStepCount struct {
	Step  string `json:"step"`
	Count int64  `json:"count"`
}

// Funnel is the booking funnel aggregate. ConversionRates and StepTimings are
// keyed "stepA_to_stepB" for each adjacent step pair.
type Funnel struct {
	Steps           []FunnelStepCount  `json:"steps"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
	StepTimings     map[string]float64 `json:"step_timings"`
	CompletionRate  float64            `json:"completion_rate"`
	AbandonmentRate float64            `json:"abandonment_rate"`
}

type Service interface {
	Ingest(ctx context.Context, req IngestEventRequest) (*Event, error)
	Query(ctx context.Context, req QueryEventsRequest) (QueryEventsResponse, error)
	Summary(ctx context.Context, r DateRange) (*Summary, error)
	TopDesigns(ctx context.Context, r DateRange, limit int) ([]DesignScore, error)
	BookingFunnel(ctx context.Context, r DateRange) (*Funnel, error)
	DailyTrend(ctx context.Context, r DateRange) ([]DailyCount, error)
}

var (
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidAction   = errors.New("invalid_action")
	ErrInvalidRange    = errors.New("invalid_range")
)
