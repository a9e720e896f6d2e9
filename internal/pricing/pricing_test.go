package pricing

import (
	"bytes"
	"testing"

	"ms-registration/internal/logger"
	"ms-registration/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	cfg := map[string]float64{"default": 300, "early_bird": 280, "onsite": 400}

	price, ok := Lookup(cfg, "early_bird")
	assert.True(t, ok)
	assert.Equal(t, 280.0, price)

	price, ok = Lookup(cfg, "vip")
	assert.True(t, ok)
	assert.Equal(t, 300.0, price)

	price, ok = Lookup(nil, "onsite")
	assert.False(t, ok)
	assert.Equal(t, 400.0, price)

	price, ok = Lookup(map[string]float64{}, "early_bird")
	assert.False(t, ok)
	assert.Equal(t, 300.0, price)
}

func TestLookupIgnoresZeroPrices(t *testing.T) {
	price, ok := Lookup(map[string]float64{"onsite": 0, "default": 350}, "onsite")
	assert.True(t, ok)
	assert.Equal(t, 350.0, price)
}

func TestTotal(t *testing.T) {
	assert.Equal(t, 600.0, Total(300, 2))
	assert.Equal(t, 300.0, Total(300, 0))
	assert.Equal(t, 300.0, Total(300, -4))
}

func TestResolverLogsFallback(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(logger.NewLoggerWithWriter(&buf))

	event := &models.Event{Code: "COFFEE-2025-0726", PriceConfig: map[string]float64{"onsite": 400}}
	assert.Equal(t, 400.0, r.UnitPrice(event, "onsite"))
	assert.Empty(t, buf.String())

	assert.Equal(t, 300.0, r.UnitPrice(event, "early_bird"))
	assert.Contains(t, buf.String(), "COFFEE-2025-0726")
}

func TestResolverNilEvent(t *testing.T) {
	var r *Resolver
	assert.Equal(t, 400.0, r.UnitPrice(nil, "onsite"))
}
