package repository

import (
	"context"
	"strings"

	"github.com/inkhaus/studio/internal/analytics/domain"
	"github.com/inkhaus/studio/pkg/db/option"
	"github.com/inkhaus/studio/pkg/repository"
	"gorm.io/gorm"
)

type analyticsRepo struct {
	db    *gorm.DB
	store repository.Repository[domain.Event]
}

func Provide(db *gorm.DB) domain.Repository {
	return &analyticsRepo{
		db:    db,
		store: repository.ProvideStore[domain.Event](db),
	}
}

// Columns callers may sort query results by.
var allowedSortFields = map[string]bool{
	"timestamp": true,
	"category":  true,
	"action":    true,
	"path":      true,
}

func (r *analyticsRepo) Insert(ctx context.Context, event *domain.Event) error {
	return r.store.Create(ctx, event)
}

func (r *analyticsRepo) Query(ctx context.Context, req domain.QueryEventsRequest) ([]*domain.Event, int64, error) {
	filter := &domain.Event{
		UserID:     req.UserID,
		Path:       req.Path,
		DeviceType: req.DeviceType,
	}

	categories := make([]string, 0, len(req.Categories))
	for _, c := range req.Categories {
		categories = append(categories, string(c))
	}

	opts := []option.QueryOption{
		option.WithTimeRange("timestamp", req.StartDate, req.EndDate),
		option.WithIn("category", categories),
		option.WithIn("action", req.Actions),
	}

	total, err := r.store.Count(ctx, filter, opts...)
	if err != nil {
		return nil, 0, err
	}

	page := req.Pagination.Normalize()
	opts = append(opts,
		option.WithSortBy(option.QuerySortBy{
			Field:   req.SortBy,
			Desc:    !strings.EqualFold(req.SortDir, "asc"),
			Allow:   allowedSortFields,
			Default: "timestamp",
		}),
		option.ApplyPagination(page),
	)

	events, err := r.store.Find(ctx, filter, opts...)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *analyticsRepo) EventsInRange(ctx context.Context, dr domain.DateRange) ([]*domain.Event, error) {
	return r.rangeQuery(ctx, dr).Find()
}

func (r *analyticsRepo) GalleryEvents(ctx context.Context, dr domain.DateRange, view bool) ([]*domain.Event, error) {
	q := r.rangeQuery(ctx, dr).Where("category = ?", string(domain.CategoryGallery))
	if view {
		q = q.Where("action = ?", domain.GalleryActionView)
	} else {
		q = q.Where("action <> ?", domain.GalleryActionView)
	}
	return q.Find()
}

func (r *analyticsRepo) FunnelEvents(ctx context.Context, dr domain.DateRange) ([]*domain.Event, error) {
	return r.rangeQuery(ctx, dr).
		Where("category = ?", string(domain.CategoryBooking)).
		Where("action IN ?", domain.FunnelSteps).
		Find()
}

func (r *analyticsRepo) DailyCounts(ctx context.Context, dr domain.DateRange) ([]domain.DailyCount, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.Event{}).
		Select(r.dayExpr() + " AS day, COUNT(*) AS count").
		Group("day").
		Order("day ASC")
	if dr.Start != nil {
		q = q.Where("timestamp >= ?", *dr.Start)
	}
	if dr.End != nil {
		q = q.Where("timestamp <= ?", *dr.End)
	}

	var rows []domain.DailyCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// dayExpr truncates the event timestamp to a UTC day in the connected
// dialect.
func (r *analyticsRepo) dayExpr() string {
	switch strings.ToLower(r.db.Dialector.Name()) {
	case "postgres":
		return "date_trunc('day', timestamp)"
	case "mysql":
		return "DATE(timestamp)"
	default:
		return "datetime(strftime('%Y-%m-%dT00:00:00', timestamp))"
	}
}

type rangeStmt struct {
	db *gorm.DB
}

func (r *analyticsRepo) rangeQuery(ctx context.Context, dr domain.DateRange) *rangeStmt {
	q := r.db.WithContext(ctx).Model(&domain.Event{})
	if dr.Start != nil {
		q = q.Where("timestamp >= ?", *dr.Start)
	}
	if dr.End != nil {
		q = q.Where("timestamp <= ?", *dr.End)
	}
	return &rangeStmt{db: q}
}

func (s *rangeStmt) Where(query string, args ...any) *rangeStmt {
	s.db = s.db.Where(query, args...)
	return s
}

// Find returns matching events in first-seen order.
func (s *rangeStmt) Find() ([]*domain.Event, error) {
	var events []*domain.Event
	err := s.db.Order("timestamp ASC, id ASC").Find(&events).Error
	return events, err
}
