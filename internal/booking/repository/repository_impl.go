package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/inkhaus/studio/internal/booking/domain"
	"github.com/inkhaus/studio/pkg/db/option"
	"github.com/inkhaus/studio/pkg/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type bookingRepo struct {
	db    *gorm.DB
	genID *snowflake.Node
	store repository.Repository[domain.Booking]
}

func Provide(db *gorm.DB, genID *snowflake.Node) domain.Repository {
	return &bookingRepo{
		db:    db,
		genID: genID,
		store: repository.ProvideStore[domain.Booking](db),
	}
}

func (r *bookingRepo) UpsertBooking(ctx context.Context, input domain.UpsertBookingInput) (bool, error) {
	uid := strings.TrimSpace(input.CalcomUID)
	if uid == "" {
		return false, domain.ErrInvalidUID
	}

	var existing domain.Booking
	err := r.db.WithContext(ctx).Where("calcom_uid = ?", uid).First(&existing).Error
	switch {
	case err == nil:
		updates := bookingColumns(input)
		updates["updated_at"] = time.Now().UTC()
		if err := r.db.WithContext(ctx).
			Model(&domain.Booking{}).
			Where("calcom_uid = ?", uid).
			Updates(updates).Error; err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		record := toBooking(input)
		record.ID = r.genID.Generate()
		if err := r.store.Create(ctx, record); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

func (r *bookingRepo) UpsertCustomerFromBooking(ctx context.Context, input domain.UpsertBookingInput, newBooking bool) error {
	email := strings.ToLower(strings.TrimSpace(input.AttendeeEmail))
	if email == "" {
		return domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	var existing domain.Customer
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]any{
			"name":       strings.TrimSpace(input.AttendeeName),
			"updated_at": now,
		}
		if newBooking {
			updates["booking_count"] = gorm.Expr("booking_count + 1")
		}
		return r.db.WithContext(ctx).
			Model(&domain.Customer{}).
			Where("email = ?", email).
			Updates(updates).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		customer := &domain.Customer{
			ID:          r.genID.Generate(),
			Name:        strings.TrimSpace(input.AttendeeName),
			Email:       email,
			FirstSeenAt: now,
		}
		if newBooking {
			customer.BookingCount = 1
		}
		return r.db.WithContext(ctx).Create(customer).Error
	default:
		return err
	}
}

func (r *bookingRepo) GetSyncState(ctx context.Context, syncType string) (*domain.SyncState, error) {
	var state domain.SyncState
	err := r.db.WithContext(ctx).Where("sync_type = ?", syncType).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *bookingRepo) PutSyncState(ctx context.Context, state *domain.SyncState) error {
	state.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(state).Error
}

func (r *bookingRepo) List(ctx context.Context, req domain.ListBookingRequest) ([]*domain.Booking, int64, error) {
	filter := &domain.Booking{Status: strings.TrimSpace(req.Status)}

	opts := []option.QueryOption{
		option.WithTimeRange("start_time", req.From, req.To),
	}

	total, err := r.store.Count(ctx, filter, opts...)
	if err != nil {
		return nil, 0, err
	}

	page := req.Pagination.Normalize()
	opts = append(opts,
		option.WithSortBy(option.QuerySortBy{Default: "start_time", Desc: true}),
		option.ApplyPagination(page),
	)
	bookings, err := r.store.Find(ctx, filter, opts...)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func toBooking(input domain.UpsertBookingInput) *domain.Booking {
	record := &domain.Booking{
		CalcomUID:        strings.TrimSpace(input.CalcomUID),
		CalcomID:         input.CalcomID,
		Title:            input.Title,
		EventTypeID:      input.EventTypeID,
		EventTypeSlug:    input.EventTypeSlug,
		AttendeeName:     strings.TrimSpace(input.AttendeeName),
		AttendeeEmail:    strings.ToLower(strings.TrimSpace(input.AttendeeEmail)),
		AttendeeTimezone: input.AttendeeTimezone,
		StartTime:        input.StartTime,
		EndTime:          input.EndTime,
		Status:           input.Status,
		Paid:             input.Paid,
		PaymentAmount:    input.PaymentAmount,
		PaymentCurrency:  input.PaymentCurrency,
	}
	if input.Metadata != nil {
		record.Metadata = datatypes.JSONMap(input.Metadata)
	}
	return record
}

func bookingColumns(input domain.UpsertBookingInput) map[string]any {
	columns := map[string]any{
		"calcom_id":         input.CalcomID,
		"title":             input.Title,
		"event_type_id":     input.EventTypeID,
		"event_type_slug":   input.EventTypeSlug,
		"attendee_name":     strings.TrimSpace(input.AttendeeName),
		"attendee_email":    strings.ToLower(strings.TrimSpace(input.AttendeeEmail)),
		"attendee_timezone": input.AttendeeTimezone,
		"start_time":        input.StartTime,
		"end_time":          input.EndTime,
		"status":            input.Status,
		"paid":              input.Paid,
		"payment_amount":    input.PaymentAmount,
		"payment_currency":  input.PaymentCurrency,
	}
	if input.Metadata != nil {
		columns["metadata"] = datatypes.JSONMap(input.Metadata)
	}
	return columns
}
