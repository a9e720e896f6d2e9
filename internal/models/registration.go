package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentMethod string

const (
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCash     PaymentMethod = "cash"
)

// Normalize maps anything that is not cash onto transfer.
func (m PaymentMethod) Normalize() PaymentMethod {
	if m == PaymentCash {
		return PaymentCash
	}
	return PaymentTransfer
}

type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	Email           string    `bun:"email,unique,notnull" json:"email"`
	Name            string    `bun:"name,notnull" json:"name"`
	Phone           string    `bun:"phone" json:"phone"`
	InstagramHandle string    `bun:"instagram_handle" json:"instagramHandle"`
	CreatedAt       time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt       time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

type Registration struct {
	bun.BaseModel `bun:"table:registrations"`

	ID               int64          `bun:"id,pk,autoincrement" json:"id"`
	EventID          int64          `bun:"event_id,notnull" json:"eventId"`
	CustomerID       int64          `bun:"customer_id,notnull" json:"customerId"`
	ParticipantName  string         `bun:"participant_name,notnull" json:"participantName"`
	ParticipantEmail string         `bun:"participant_email,notnull" json:"participantEmail"`
	ParticipantPhone string         `bun:"participant_phone" json:"participantPhone"`
	InstagramHandle  string         `bun:"instagram_handle" json:"instagramHandle"`
	TicketType       string         `bun:"ticket_type,notnull" json:"ticketType"`
	PaymentMethod    PaymentMethod  `bun:"payment_method,notnull" json:"paymentMethod"`
	ParticipantCount int            `bun:"participant_count,notnull" json:"participantCount"`
	TransferAmount   *float64       `bun:"transfer_amount" json:"transferAmount,omitempty"`
	TransferLastFive string         `bun:"transfer_last_five" json:"transferLastFive,omitempty"`
	Notes            string         `bun:"notes" json:"notes,omitempty"`
	CustomFields     map[string]any `bun:"custom_fields,type:jsonb" json:"customFields"`
	CreatedAt        time.Time      `bun:"created_at,notnull" json:"createdAt"`
}

// NewRegistration is everything the data store needs to create a registration,
// its customer and its payment order in one transaction.
type NewRegistration struct {
	EventCode        string
	Name             string
	Email            string
	Phone            string
	InstagramHandle  string
	TicketType       string
	PaymentMethod    PaymentMethod
	ParticipantCount int
	TransferAmount   *float64
	TransferLastFive string
	Notes            string
	CustomFields     map[string]any
}

type RegistrationResult struct {
	RegistrationID int64   `json:"registrationId"`
	CustomerID     int64   `json:"customerId"`
	PaymentOrderID int64   `json:"paymentOrderId"`
	OrderNumber    string  `json:"orderNumber"`
	PaymentAmount  float64 `json:"paymentAmount"`
}

// RegistrationRequest is the public signup body.
type RegistrationRequest struct {
	EventCode           string `json:"eventCode" validate:"required"`
	Name                string `json:"name" validate:"required"`
	Email               string `json:"email" validate:"required,email"`
	Phone               string `json:"phone,omitempty"`
	InstagramID         string `json:"instagramId,omitempty"`
	PaymentType         string `json:"paymentType,omitempty" validate:"omitempty,max=32"`
	ParticipantCount    int    `json:"participantCount,omitempty" validate:"gte=0"`
	TransferAmount      string `json:"transferAmount,omitempty" validate:"omitempty,numeric"`
	TransferLastFive    string `json:"transferLastFive,omitempty" validate:"omitempty,max=5"`
	Notes               string `json:"notes,omitempty"`
	SubscribeNewsletter bool   `json:"subscribeNewsletter,omitempty"`
}

type RegistrationResponse struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	RegistrationID int64   `json:"registrationId,omitempty"`
	CustomerID     int64   `json:"customerId,omitempty"`
	OrderNumber    string  `json:"orderNumber,omitempty"`
	PaymentAmount  float64 `json:"paymentAmount,omitempty"`
}
