package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/inkhaus/studio/internal/analytics/domain"
	"github.com/inkhaus/studio/internal/clock"
	"github.com/inkhaus/studio/internal/config"
	designdomain "github.com/inkhaus/studio/internal/design/domain"
	"github.com/inkhaus/studio/internal/realtime"
	"github.com/inkhaus/studio/pkg/db/pagination"
	"github.com/inkhaus/studio/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	CfgHolder *config.AnalyticsConfigHolder
	Repo      domain.Repository
	DesignSvc designdomain.Service
	Metrics   *telemetry.Metrics `optional:"true"`
	Hub       *realtime.Hub      `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	cfgHolder *config.AnalyticsConfigHolder
	repo      domain.Repository
	designsvc designdomain.Service
	metrics   *telemetry.Metrics
	hub       *realtime.Hub
}

func New(p ServiceParam) domain.Service {
	return &Service{
		log:       p.Log.Named("analytics.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		cfgHolder: p.CfgHolder,
		repo:      p.Repo,
		designsvc: p.DesignSvc,
		metrics:   p.Metrics,
		hub:       p.Hub,
	}
}

// Ingest validates and stores one analytics event. Any write error is logged
// and returned; retry policy belongs to the caller.
func (s *Service) Ingest(ctx context.Context, req domain.IngestEventRequest) (*domain.Event, error) {
	if !domain.ValidCategory(req.Category) {
		s.metrics.RecordEventRejected("invalid_category")
		return nil, domain.ErrInvalidCategory
	}
	action := strings.TrimSpace(req.Action)
	if action == "" {
		s.metrics.RecordEventRejected("invalid_action")
		return nil, domain.ErrInvalidAction
	}

	timestamp := req.Timestamp
	if timestamp.IsZero() {
		timestamp = s.clock.Now()
	}

	metadata, err := domain.ExtractMetadata(req)
	if err != nil {
		return nil, err
	}

	event := &domain.Event{
		ID:         s.genID.Generate(),
		Timestamp:  timestamp.UTC(),
		UserID:     strings.TrimSpace(req.UserID),
		SessionID:  strings.TrimSpace(req.SessionID),
		Category:   req.Category,
		Action:     action,
		Label:      strings.TrimSpace(req.Label),
		Value:      req.Value,
		Path:       strings.TrimSpace(req.Path),
		Referrer:   strings.TrimSpace(req.Referrer),
		DeviceType: strings.TrimSpace(req.DeviceType),
		Browser:    strings.TrimSpace(req.Browser),
		OS:         strings.TrimSpace(req.OS),
		Metadata:   metadata,
	}

	if err := s.repo.Insert(ctx, event); err != nil {
		s.log.Error("failed to store analytics event",
			zap.String("category", string(event.Category)),
			zap.String("action", event.Action),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordEventIngested(string(event.Category))
	return event, nil
}

// Query returns events matching the filter, paginated.
func (s *Service) Query(ctx context.Context, req domain.QueryEventsRequest) (domain.QueryEventsResponse, error) {
	for _, c := range req.Categories {
		if !domain.ValidCategory(c) {
			return domain.QueryEventsResponse{}, domain.ErrInvalidCategory
		}
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return domain.QueryEventsResponse{}, domain.ErrInvalidRange
	}

	req.Pagination = req.Pagination.Normalize()
	items, total, err := s.repo.Query(ctx, req)
	if err != nil {
		s.log.Error("analytics query failed", zap.Error(err))
		return domain.QueryEventsResponse{}, err
	}

	events := make([]domain.Event, 0, len(items))
	for _, item := range items {
		events = append(events, *item)
	}

	return domain.QueryEventsResponse{
		Events:     events,
		Pagination: pagination.BuildPageInfo(req.Pagination, total),
	}, nil
}

func validateRange(r domain.DateRange) error {
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return domain.ErrInvalidRange
	}
	return nil
}
