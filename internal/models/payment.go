package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentCompleted
}

type PaymentOrder struct {
	bun.BaseModel `bun:"table:payment_orders"`

	ID                 int64         `bun:"id,pk,autoincrement" json:"id"`
	OrderNumber        string        `bun:"order_number,unique,notnull" json:"orderNumber"`
	RegistrationID     int64         `bun:"registration_id,notnull" json:"registrationId"`
	CustomerID         int64         `bun:"customer_id,notnull" json:"customerId"`
	EventID            int64         `bun:"event_id,notnull" json:"eventId"`
	UnitPrice          float64       `bun:"unit_price,notnull" json:"unitPrice"`
	TotalAmount        float64       `bun:"total_amount,notnull" json:"totalAmount"`
	PaymentMethod      PaymentMethod `bun:"payment_method,notnull" json:"paymentMethod"`
	PaymentStatus      PaymentStatus `bun:"payment_status,notnull" json:"paymentStatus"`
	TransferAmount     *float64      `bun:"transfer_amount" json:"transferAmount,omitempty"`
	SenderAccountLast5 string        `bun:"sender_account_last5" json:"senderAccountLast5,omitempty"`
	CheckedIn          bool          `bun:"checked_in,notnull" json:"checkedIn"`
	CheckedInAt        *time.Time    `bun:"checked_in_at" json:"checkedInAt,omitempty"`
	CheckedInBy        string        `bun:"checked_in_by" json:"checkedInBy,omitempty"`
	ConfirmedAt        *time.Time    `bun:"confirmed_at" json:"confirmedAt,omitempty"`
	ConfirmedBy        string        `bun:"confirmed_by" json:"confirmedBy,omitempty"`
	CreatedAt          time.Time     `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt          time.Time     `bun:"updated_at,notnull" json:"updatedAt"`
}

// DashboardRecord is one payment order joined with its registration and event.
type DashboardRecord struct {
	PaymentOrderID   int64         `bun:"payment_order_id" json:"paymentOrderId"`
	RegistrationID   int64         `bun:"registration_id" json:"registrationId"`
	OrderNumber      string        `bun:"order_number" json:"orderNumber"`
	EventCode        string        `bun:"event_code" json:"eventCode"`
	EventName        string        `bun:"event_name" json:"eventName"`
	ParticipantName  string        `bun:"participant_name" json:"participantName"`
	ParticipantEmail string        `bun:"participant_email" json:"participantEmail"`
	ParticipantPhone string        `bun:"participant_phone" json:"participantPhone"`
	InstagramHandle  string        `bun:"instagram_handle" json:"instagramHandle"`
	TicketType       string        `bun:"ticket_type" json:"ticketType"`
	PaymentMethod    PaymentMethod `bun:"payment_method" json:"paymentMethod"`
	PaymentStatus    PaymentStatus `bun:"payment_status" json:"paymentStatus"`
	ParticipantCount int           `bun:"participant_count" json:"participantCount"`
	UnitPrice        float64       `bun:"unit_price" json:"unitPrice"`
	TotalAmount      float64       `bun:"total_amount" json:"totalAmount"`
	TransferAmount   *float64      `bun:"transfer_amount" json:"transferAmount,omitempty"`
	TransferLastFive string        `bun:"transfer_last_five" json:"transferLastFive,omitempty"`
	Notes            string        `bun:"notes" json:"notes,omitempty"`
	CheckedIn        bool          `bun:"checked_in" json:"checkedIn"`
	ConfirmedAt      *time.Time    `bun:"confirmed_at" json:"confirmedAt,omitempty"`
	ConfirmedBy      string        `bun:"confirmed_by" json:"confirmedBy,omitempty"`
	CreatedAt        time.Time     `bun:"created_at" json:"createdAt"`
}

// CheckInRef identifies the payment order a check-in code was issued for.
type CheckInRef struct {
	PaymentOrderID int64  `json:"payment_order_id"`
	EventCode      string `json:"event_code"`
	OrderNumber    string `json:"order_number"`
}
