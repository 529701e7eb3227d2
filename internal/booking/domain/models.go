// Package domain contains the local mirror of Cal.com bookings and the
// bookkeeping rows for incremental syncs.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Booking is a local copy of a scheduling-provider booking, keyed by the
// provider's UID. Created and updated idempotently by the sync service.
type Booking struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	CalcomUID        string            `gorm:"type:text;not null;uniqueIndex" json:"calcom_uid"`
	CalcomID         int64             `gorm:"not null" json:"calcom_id"`
	Title            string            `gorm:"type:text" json:"title"`
	EventTypeID      int64             `json:"event_type_id"`
	EventTypeSlug    string            `gorm:"type:text" json:"event_type_slug"`
	AttendeeName     string            `gorm:"type:text" json:"attendee_name"`
	AttendeeEmail    string            `gorm:"type:text;index" json:"attendee_email"`
	AttendeeTimezone string            `gorm:"type:text" json:"attendee_timezone"`
	StartTime        time.Time         `gorm:"not null;index" json:"start_time"`
	EndTime          time.Time         `gorm:"not null" json:"end_time"`
	Status           string            `gorm:"type:text;not null;index" json:"status"`
	Paid             bool              `gorm:"not null;default:false" json:"paid"`
	PaymentAmount    int64             `json:"payment_amount"`
	PaymentCurrency  string            `gorm:"type:text" json:"payment_currency"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Booking) TableName() string { return "bookings" }

// Customer is derived from bookings, upserted by attendee email.
type Customer struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:text" json:"name"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	BookingCount int          `gorm:"not null;default:0" json:"booking_count"`
	FirstSeenAt  time.Time    `gorm:"not null" json:"first_seen_at"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// Sync run statuses recorded on SyncState.
const (
	SyncStatusSuccess        = "SUCCESS"
	SyncStatusPartialSuccess = "PARTIAL_SUCCESS"
	SyncStatusError          = "ERROR"
)

// SyncTypeCalcomBookings identifies the appointment sync.
const SyncTypeCalcomBookings = "calcom_bookings"

// SyncState is one row per sync type, used only for bookkeeping and to
// derive the incremental sync cursor.
type SyncState struct {
	SyncType         string     `gorm:"primaryKey;type:text" json:"sync_type"`
	LastSyncedAt     *time.Time `json:"last_synced_at"`
	RecordsProcessed int        `gorm:"not null;default:0" json:"records_processed"`
	RecordsErrored   int        `gorm:"not null;default:0" json:"records_errored"`
	LastRunStatus    string     `gorm:"type:text" json:"last_run_status"`
	LastRunMessage   string     `gorm:"type:text" json:"last_run_message"`
	UpdatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SyncState) TableName() string { return "sync_states" }
