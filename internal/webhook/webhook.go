package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ms-registration/internal/logger"
)

// Payload is the flat body posted to the automation endpoint.
type Payload struct {
	DeliveryID          string   `json:"delivery_id"`
	RegistrationID      int64    `json:"registration_id"`
	CustomerID          int64    `json:"customer_id"`
	PaymentOrderID      int64    `json:"payment_order_id"`
	OrderNumber         string   `json:"order_number"`
	EventID             int64    `json:"event_id"`
	EventCode           string   `json:"event_code"`
	EventName           string   `json:"event_name"`
	ParticipantName     string   `json:"participant_name"`
	ParticipantEmail    string   `json:"participant_email"`
	ParticipantPhone    string   `json:"participant_phone"`
	InstagramHandle     string   `json:"instagram_handle"`
	TicketType          string   `json:"ticket_type"`
	PaymentMethod       string   `json:"payment_method"`
	ParticipantCount    int      `json:"participant_count"`
	PaymentAmount       float64  `json:"payment_amount"`
	TransferAmount      *float64 `json:"transfer_amount"`
	TransferLastFive    string   `json:"transfer_last_five"`
	Notes               string   `json:"notes"`
	SubscribeNewsletter bool     `json:"subscribe_newsletter"`
	Timestamp           string   `json:"timestamp"`
}

// Notifier posts registration payloads. An empty URL disables it.
type Notifier struct {
	URL    string
	client *http.Client
	Logger *logger.Logger
}

func NewNotifier(url string, timeout time.Duration, l *logger.Logger) *Notifier {
	return &Notifier{
		URL:    url,
		client: &http.Client{Timeout: timeout},
		Logger: l,
	}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.URL != ""
}

// Notify makes a single attempt. Non-2xx responses are errors.
func (n *Notifier) Notify(ctx context.Context, p Payload) error {
	if !n.Enabled() {
		return nil
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.Logger.LogWebhook("DELIVERED", p.OrderNumber, fmt.Sprintf("status %d in %s", resp.StatusCode, time.Since(start)))
	return nil
}
