package domain

import "context"

// Repository hides the SQL dialect behind typed query and aggregation
// methods. Aggregations that reduce in Go fetch rows ordered by
// (timestamp, id) ascending so grouping preserves first-seen order.
type Repository interface {
	Insert(ctx context.Context, event *Event) error
	Query(ctx context.Context, req QueryEventsRequest) ([]*Event, int64, error)

	// EventsInRange returns every event in [start,end] in first-seen order.
	EventsInRange(ctx context.Context, r DateRange) ([]*Event, error)

	// GalleryEvents returns gallery-category events in range, split by
	// whether the action is a plain view.
	GalleryEvents(ctx context.Context, r DateRange, view bool) ([]*Event, error)

	// FunnelEvents returns booking-category events in range whose action is
	// one of the fixed funnel steps.
	FunnelEvents(ctx context.Context, r DateRange) ([]*Event, error)

	// DailyCounts aggregates event volume per UTC day in SQL.
	DailyCounts(ctx context.Context, r DateRange) ([]DailyCount, error)
}
