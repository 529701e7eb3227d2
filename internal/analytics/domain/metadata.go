package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Category-specific metadata variants. Each category carries only the fields
// relevant to it; pointer fields left nil are stored as explicit nulls so the
// stored shape is stable per category.

type PageViewMetadata struct {
	Title      *string  `json:"title"`
	LoadTimeMS *float64 `json:"load_time_ms"`
}

type InteractionMetadata struct {
	Element *string `json:"element"`
	Section *string `json:"section"`
}

type BookingMetadata struct {
	BookingUID       *string    `json:"booking_uid"`
	ServiceID        *string    `json:"service_id"`
	ServiceName      *string    `json:"service_name"`
	AppointmentDate  *time.Time `json:"appointment_date"`
	Step             *string    `json:"step"`
	TotalSteps       *int       `json:"total_steps"`
	TimeSpentSeconds *float64   `json:"time_spent_seconds"`
}

type GalleryMetadata struct {
	DesignID   *string `json:"design_id"`
	DesignSlug *string `json:"design_slug"`
	Position   *int    `json:"position"`
}

type ConversionMetadata struct {
	Kind       *string  `json:"kind"`
	BookingUID *string  `json:"booking_uid"`
	Amount     *float64 `json:"amount"`
}

type ErrorMetadata struct {
	Code    *string `json:"code"`
	Message *string `json:"message"`
	Source  *string `json:"source"`
}

// ExtractMetadata maps the category-specific variant of the request into the
// flexible attribute bag stored with the event. The variant is round-tripped
// through JSON so only plain values reach the database.
func ExtractMetadata(req IngestEventRequest) (datatypes.JSONMap, error) {
	variant := metadataVariant(req)
	if variant == nil {
		return nil, nil
	}

	raw, err := json.Marshal(variant)
	if err != nil {
		return nil, err
	}

	var bag map[string]any
	if err := json.Unmarshal(raw, &bag); err != nil {
		return nil, err
	}
	if len(bag) == 0 {
		return nil, nil
	}
	return datatypes.JSONMap(bag), nil
}

func metadataVariant(req IngestEventRequest) any {
	switch req.Category {
	case CategoryPageView:
		if req.PageView == nil {
			return nil
		}
		return req.PageView
	case CategoryInteraction:
		if req.Interaction == nil {
			return nil
		}
		return req.Interaction
	case CategoryBooking:
		if req.Booking == nil {
			return nil
		}
		return req.Booking
	case CategoryGallery:
		if req.Gallery == nil {
			return nil
		}
		return req.Gallery
	case CategoryConversion:
		if req.Conversion == nil {
			return nil
		}
		return req.Conversion
	case CategoryError:
		if req.Error == nil {
			return nil
		}
		return req.Error
	default:
		return nil
	}
}

// MetadataString reads a string attribute from a stored metadata bag.
func MetadataString(bag datatypes.JSONMap, key string) string {
	if bag == nil {
		return ""
	}
	if v, ok := bag[key].(string); ok {
		return v
	}
	return ""
}
