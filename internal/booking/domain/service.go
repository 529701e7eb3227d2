package domain

import (
	"context"
	"errors"
	"time"

	"github.com/inkhaus/studio/pkg/db/pagination"
)

// UpsertBookingInput carries the provider fields written on create or
// update. The zero snowflake id is assigned by the repository on create.
type UpsertBookingInput struct {
	CalcomUID        string
	CalcomID         int64
	Title            string
	EventTypeID      int64
	EventTypeSlug    string
	AttendeeName     string
	AttendeeEmail    string
	AttendeeTimezone string
	StartTime        time.Time
	EndTime          time.Time
	Status           string
	Paid             bool
	PaymentAmount    int64
	PaymentCurrency  string
	Metadata         map[string]any
}

type ListBookingRequest struct {
	Status string
	From   *time.Time
	To     *time.Time

	pagination.Pagination
}

type ListBookingResponse struct {
	Bookings   []Booking           `json:"bookings"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type Service interface {
	List(ctx context.Context, req ListBookingRequest) (ListBookingResponse, error)
	SyncStatus(ctx context.Context) (*SyncState, error)
}

// Repository persists the booking mirror and sync bookkeeping.
type Repository interface {
	// UpsertBooking writes the booking keyed by provider UID and reports
	// whether a new row was created.
	UpsertBooking(ctx context.Context, input UpsertBookingInput) (created bool, err error)

	// UpsertCustomerFromBooking upserts the derived customer by email and
	// increments its booking counter when the booking is new.
	UpsertCustomerFromBooking(ctx context.Context, input UpsertBookingInput, newBooking bool) error

	GetSyncState(ctx context.Context, syncType string) (*SyncState, error)
	PutSyncState(ctx context.Context, state *SyncState) error

	List(ctx context.Context, req ListBookingRequest) ([]*Booking, int64, error)
}

var (
	ErrInvalidUID   = errors.New("invalid_booking_uid")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrNotFound     = errors.New("not_found")
)
