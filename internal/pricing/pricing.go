package pricing

import (
	"fmt"

	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

const (
	DefaultKey = "default"

	fallbackStandard = 300
	fallbackOnsite   = 400
)

// Lookup resolves a unit price: exact ticket type, then the "default" key,
// then the legacy constants. The bool is false when a constant was used.
func Lookup(cfg map[string]float64, ticketType string) (float64, bool) {
	if price, ok := cfg[ticketType]; ok && price > 0 {
		return price, true
	}
	if price, ok := cfg[DefaultKey]; ok && price > 0 {
		return price, true
	}
	if ticketType == models.TicketOnsite {
		return fallbackOnsite, false
	}
	return fallbackStandard, false
}

// Total is unit × count, with count defaulting to 1.
func Total(unit float64, count int) float64 {
	if count < 1 {
		count = 1
	}
	return unit * float64(count)
}

type Resolver struct {
	Logger *logger.Logger
}

func NewResolver(l *logger.Logger) *Resolver {
	return &Resolver{Logger: l}
}

func (r *Resolver) UnitPrice(event *models.Event, ticketType string) float64 {
	var cfg map[string]float64
	code := "<none>"
	if event != nil {
		cfg = event.PriceConfig
		code = event.Code
	}
	price, ok := Lookup(cfg, ticketType)
	if !ok && r != nil && r.Logger != nil {
		r.Logger.Warn("PRICING", fmt.Sprintf("no price for ticket type %q on event %s, using fallback %.0f", ticketType, code, price))
	}
	return price
}
