// Package domain contains the gallery design catalog models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Design is one tattoo design shown in the public gallery.
type Design struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Slug       string       `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Title      string       `gorm:"type:text;not null" json:"title"`
	Style      string       `gorm:"type:text" json:"style"`
	ArtistName string       `gorm:"type:text" json:"artist_name"`
	ImageURL   string       `gorm:"type:text" json:"image_url"`
	Active     bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Design) TableName() string { return "designs" }
