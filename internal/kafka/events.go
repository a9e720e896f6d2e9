package kafka

import "time"

const (
	TypeRegistrationCreated  = "registration_created"
	TypePaymentStatusChanged = "payment_status_changed"
	TypeCheckInChanged       = "checkin_changed"
)

type RegistrationCreated struct {
	Type             string    `json:"type"`
	RegistrationID   int64     `json:"registration_id"`
	CustomerID       int64     `json:"customer_id"`
	PaymentOrderID   int64     `json:"payment_order_id"`
	OrderNumber      string    `json:"order_number"`
	EventCode        string    `json:"event_code"`
	TicketType       string    `json:"ticket_type"`
	PaymentMethod    string    `json:"payment_method"`
	ParticipantCount int       `json:"participant_count"`
	PaymentAmount    float64   `json:"payment_amount"`
	CreatedAt        time.Time `json:"created_at"`
}

type PaymentStatusChanged struct {
	Type           string    `json:"type"`
	PaymentOrderID int64     `json:"payment_order_id"`
	EventCode      string    `json:"event_code"`
	Status         string    `json:"status"`
	Actor          string    `json:"actor"`
	ChangedAt      time.Time `json:"changed_at"`
}

type CheckInChanged struct {
	Type           string    `json:"type"`
	PaymentOrderID int64     `json:"payment_order_id"`
	EventCode      string    `json:"event_code"`
	CheckedIn      bool      `json:"checked_in"`
	Actor          string    `json:"actor"`
	ChangedAt      time.Time `json:"changed_at"`
}
