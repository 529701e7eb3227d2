// Package sync pulls booking records from Cal.com in pages and upserts them
// into the local mirror.
package sync

import (
	"context"
	"time"

	bookingdomain "github.com/inkhaus/studio/internal/booking/domain"
	"github.com/inkhaus/studio/internal/calcom"
	"github.com/inkhaus/studio/internal/clock"
	"github.com/inkhaus/studio/internal/realtime"
	"github.com/inkhaus/studio/pkg/telemetry"
	"go.uber.org/zap"
)

// BookingSource is the slice of the Cal.com client the sync consumes.
type BookingSource interface {
	ListBookings(ctx context.Context, req calcom.ListBookingsRequest) (*calcom.ListBookingsResponse, error)
}

// Options tune one sync run.
type Options struct {
	PageSize      int
	ForceFullSync bool
}

// Result reports a completed (or aborted) sync run.
type Result struct {
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Errors    int    `json:"errors"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

type Service struct {
	log     *zap.Logger
	clock   clock.Clock
	source  BookingSource
	repo    bookingdomain.Repository
	hub     *realtime.Hub
	metrics *telemetry.Metrics

	defaultPageSize int
}

type Params struct {
	Log             *zap.Logger
	Clock           clock.Clock
	Source          BookingSource
	Repo            bookingdomain.Repository
	Hub             *realtime.Hub
	Metrics         *telemetry.Metrics
	DefaultPageSize int
}

func New(p Params) *Service {
	pageSize := p.DefaultPageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Service{
		log:             p.Log.Named("sync.service"),
		clock:           p.Clock,
		source:          p.Source,
		repo:            p.Repo,
		hub:             p.Hub,
		metrics:         p.Metrics,
		defaultPageSize: pageSize,
	}
}

// SyncAppointments pages through the provider API sequentially, upserting
// each booking. A record failure is counted and skipped; a page-fetch
// failure aborts the run with status ERROR.
func (s *Service) SyncAppointments(ctx context.Context, opts Options) (*Result, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}

	runStart := s.clock.Now()
	result := &Result{}

	state, err := s.repo.GetSyncState(ctx, bookingdomain.SyncTypeCalcomBookings)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &bookingdomain.SyncState{SyncType: bookingdomain.SyncTypeCalcomBookings}
	}

	var startAfter *time.Time
	if !opts.ForceFullSync && state.LastSyncedAt != nil {
		startAfter = state.LastSyncedAt
	}

	offset := 0
	for {
		page, err := s.source.ListBookings(ctx, calcom.ListBookingsRequest{
			Limit:      pageSize,
			Offset:     offset,
			StartAfter: startAfter,
		})
		if err != nil {
			s.log.Error("booking page fetch failed",
				zap.Int("offset", offset),
				zap.Error(err),
			)
			result.Status = bookingdomain.SyncStatusError
			result.Message = err.Error()
			s.recordOutcome(ctx, state, result, runStart)
			return result, err
		}

		for _, booking := range page.Bookings {
			result.Processed++
			created, err := s.upsertOne(ctx, booking)
			if err != nil {
				result.Errors++
				s.metrics.RecordSyncRecord("error")
				s.log.Warn("booking upsert failed",
					zap.String("uid", booking.UID),
					zap.Error(err),
				)
				continue
			}
			if created {
				result.Created++
				s.metrics.RecordSyncRecord("created")
				s.publishNewBooking(booking)
			} else {
				result.Updated++
				s.metrics.RecordSyncRecord("updated")
			}
		}

		if !page.Pagination.HasMore || len(page.Bookings) == 0 {
			break
		}
		offset += len(page.Bookings)
	}

	if result.Errors > 0 {
		result.Status = bookingdomain.SyncStatusPartialSuccess
	} else {
		result.Status = bookingdomain.SyncStatusSuccess
	}
	s.recordOutcome(ctx, state, result, runStart)
	s.publishMetricsUpdate(result)

	s.log.Info("appointment sync completed",
		zap.Int("processed", result.Processed),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", result.Errors),
		zap.String("status", result.Status),
	)

	return result, nil
}

func (s *Service) upsertOne(ctx context.Context, booking calcom.Booking) (bool, error) {
	input := toUpsertInput(booking)
	created, err := s.repo.UpsertBooking(ctx, input)
	if err != nil {
		return false, err
	}
	if input.AttendeeEmail != "" {
		if err := s.repo.UpsertCustomerFromBooking(ctx, input, created); err != nil {
			// The booking row is already written; surface the customer
			// failure as a record error.
			return created, err
		}
	}
	return created, nil
}

func toUpsertInput(booking calcom.Booking) bookingdomain.UpsertBookingInput {
	input := bookingdomain.UpsertBookingInput{
		CalcomUID:     booking.UID,
		CalcomID:      booking.ID,
		Title:         booking.Title,
		EventTypeID:   booking.EventType.ID,
		EventTypeSlug: booking.EventType.Slug,
		StartTime:     booking.StartTime.UTC(),
		EndTime:       booking.EndTime.UTC(),
		Status:        booking.Status,
		Paid:          booking.Paid,
		Metadata:      booking.Metadata,
	}
	if len(booking.Attendees) > 0 {
		input.AttendeeName = booking.Attendees[0].Name
		input.AttendeeEmail = booking.Attendees[0].Email
		input.AttendeeTimezone = booking.Attendees[0].Timezone
	}
	if len(booking.Payment) > 0 {
		input.PaymentAmount = booking.Payment[0].Amount
		input.PaymentCurrency = booking.Payment[0].Currency
	}
	return input
}

func (s *Service) recordOutcome(ctx context.Context, state *bookingdomain.SyncState, result *Result, runStart time.Time) {
	state.RecordsProcessed = result.Processed
	state.RecordsErrored = result.Errors
	state.LastRunStatus = result.Status
	state.LastRunMessage = result.Message
	if result.Status != bookingdomain.SyncStatusError {
		at := runStart
		state.LastSyncedAt = &at
	}

	if err := s.repo.PutSyncState(ctx, state); err != nil {
		s.log.Error("failed to record sync state", zap.Error(err))
	}
	s.metrics.RecordSyncRun(result.Status)
}

func (s *Service) publishNewBooking(booking calcom.Booking) {
	if s.hub == nil {
		return
	}
	payload := map[string]any{
		"uid":        booking.UID,
		"title":      booking.Title,
		"start_time": booking.StartTime.UTC().Format(time.RFC3339),
		"status":     booking.Status,
	}
	if len(booking.Attendees) > 0 {
		payload["attendee_name"] = booking.Attendees[0].Name
	}
	s.hub.Publish(realtime.TopicBookings, realtime.Event{
		Type:    realtime.EventNewBooking,
		Payload: payload,
	})
	s.metrics.RecordRealtimePublish(realtime.TopicBookings)
}

func (s *Service) publishMetricsUpdate(result *Result) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(realtime.TopicMetrics, realtime.Event{
		Type: realtime.EventMetricsUpdate,
		Payload: map[string]any{
			"kind":      "sync",
			"processed": result.Processed,
			"created":   result.Created,
			"updated":   result.Updated,
			"errors":    result.Errors,
			"status":    result.Status,
		},
	})
	s.metrics.RecordRealtimePublish(realtime.TopicMetrics)
}
