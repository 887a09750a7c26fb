package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventRecord stores every accepted provider notification exactly once. The
// unique index over (provider, provider_event_id) is what makes replay a
// no-op.
type EventRecord struct {
	ID              snowflake.ID   `gorm:"primaryKey"`
	Provider        string         `gorm:"type:text;not null;uniqueIndex:ux_webhook_events_provider_event,priority:1"`
	ProviderEventID string         `gorm:"type:text;not null;uniqueIndex:ux_webhook_events_provider_event,priority:2"`
	Action          string         `gorm:"type:text;not null"`
	Reference       string         `gorm:"type:text;index"`
	Payload         datatypes.JSON `gorm:"type:json"`
	ReceivedAt      time.Time      `gorm:"not null"`
	ProcessedAt     *time.Time     `gorm:"index"`
}

// TableName sets the database table name.
func (EventRecord) TableName() string { return "webhook_events" }
