package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	TicketEarlyBird = "early_bird"
	TicketOnsite    = "onsite"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID              int64              `bun:"id,pk,autoincrement" json:"id"`
	Code            string             `bun:"code,unique,notnull" json:"code"`
	Name            string             `bun:"name,notnull" json:"name"`
	EventType       string             `bun:"event_type" json:"eventType"`
	Location        string             `bun:"location" json:"location"`
	StartDate       string             `bun:"start_date" json:"startDate"`
	StartTime       string             `bun:"start_time" json:"startTime"`
	MaxParticipants int                `bun:"max_participants,notnull" json:"maxParticipants"`
	PriceConfig     map[string]float64 `bun:"price_config,type:jsonb" json:"priceConfig"`
	Description     string             `bun:"description" json:"description"`
	IncludedItems   []string           `bun:"included_items,type:jsonb" json:"includedItems"`
	CustomFields    map[string]any     `bun:"custom_fields,type:jsonb" json:"customFields"`
	IsActive        bool               `bun:"is_active,notnull" json:"isActive"`
	CreatedAt       time.Time          `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt       time.Time          `bun:"updated_at,notnull" json:"updatedAt"`
}

// EventDetail is an event with its current registration load.
type EventDetail struct {
	Event
	RegisteredParticipants int `json:"registeredParticipants"`
	RemainingSlots         int `json:"remainingSlots"`
}

// NewEventDetail derives the remaining slots. Zero capacity means unlimited
// and always reports zero remaining; an overbooked event never goes negative.
func NewEventDetail(e Event, registered int) EventDetail {
	detail := EventDetail{Event: e, RegisteredParticipants: registered}
	if e.MaxParticipants > 0 {
		detail.RemainingSlots = max(e.MaxParticipants-registered, 0)
	}
	return detail
}

// Full reports whether a capped event has no slots left.
func (d EventDetail) Full() bool {
	return d.MaxParticipants > 0 && d.RemainingSlots == 0
}

type EventFilter struct {
	EventType  string
	ActiveOnly bool
	HasSlots   bool
	From       string // YYYY-MM-DD, inclusive
	Limit      int
	Offset     int
}
