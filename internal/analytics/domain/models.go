// Package domain contains persistence models for analytics event ingestion.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventCategory classifies a tracked user action.
type EventCategory string

const (
	CategoryPageView    EventCategory = "page_view"
	CategoryInteraction EventCategory = "interaction"
	CategoryBooking     EventCategory = "booking"
	CategoryGallery     EventCategory = "gallery"
	CategoryConversion  EventCategory = "conversion"
	CategoryError       EventCategory = "error"
)

// Categories lists every valid event category.
var Categories = []EventCategory{
	CategoryPageView,
	CategoryInteraction,
	CategoryBooking,
	CategoryGallery,
	CategoryConversion,
	CategoryError,
}

func ValidCategory(c EventCategory) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Booking funnel steps in their fixed order. Abandon is terminal and not
// part of the adjacent-pair chain leading to completion.
const (
	FunnelStepStart         = "start"
	FunnelStepSelectService = "select_service"
	FunnelStepSelectDate    = "select_date"
	FunnelStepEnterDetails  = "enter_details"
	FunnelStepPayment       = "payment"
	FunnelStepComplete      = "complete"
	FunnelStepAbandon       = "abandon"
)

// FunnelSteps is the ordered step sequence used for pair conversion rates.
var FunnelSteps = []string{
	FunnelStepStart,
	FunnelStepSelectService,
	FunnelStepSelectDate,
	FunnelStepEnterDetails,
	FunnelStepPayment,
	FunnelStepComplete,
	FunnelStepAbandon,
}

// GalleryActionView marks a gallery event as a plain design view; any other
// gallery action counts as an interaction for popularity scoring.
const GalleryActionView = "view"

// Event is one immutable analytics fact. Events are created on ingestion,
// never mutated, and retained indefinitely.
type Event struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	Timestamp  time.Time         `gorm:"not null;index" json:"timestamp"`
	UserID     string            `gorm:"type:text;index" json:"user_id,omitempty"`
	SessionID  string            `gorm:"type:text;index" json:"session_id,omitempty"`
	Category   EventCategory     `gorm:"type:text;not null;index" json:"category"`
	Action     string            `gorm:"type:text;not null" json:"action"`
	Label      string            `gorm:"type:text" json:"label,omitempty"`
	Value      *float64          `json:"value,omitempty"`
	Path       string            `gorm:"type:text;index" json:"path,omitempty"`
	Referrer   string            `gorm:"type:text" json:"referrer,omitempty"`
	DeviceType string            `gorm:"type:text" json:"device_type,omitempty"`
	Browser    string            `gorm:"type:text" json:"browser,omitempty"`
	OS         string            `gorm:"type:text" json:"os,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Event) TableName() string { return "analytics_events" }

// DailyCount is one day of event volume from the trend aggregation.
type DailyCount struct {
	Day   time.Time `gorm:"column:day" json:"day"`
	Count int64     `gorm:"column:count" json:"count"`
}
