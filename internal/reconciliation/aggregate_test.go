package reconciliation

import (
	"testing"

	"ms-registration/internal/models"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func record(id int64, method models.PaymentMethod, status models.PaymentStatus, unit float64, count int) models.DashboardRecord {
	return models.DashboardRecord{
		PaymentOrderID:   id,
		TicketType:       models.TicketEarlyBird,
		PaymentMethod:    method,
		PaymentStatus:    status,
		UnitPrice:        unit,
		ParticipantCount: count,
	}
}

func TestTotalAmount(t *testing.T) {
	prices := map[string]float64{"default": 300, "onsite": 400}

	assert.Equal(t, 600.0, TotalAmount(record(1, models.PaymentTransfer, models.PaymentPending, 300, 2), prices))

	withTransfer := record(2, models.PaymentTransfer, models.PaymentPending, 300, 2)
	withTransfer.TransferAmount = ptr(550)
	assert.Equal(t, 550.0, TotalAmount(withTransfer, prices))

	noUnit := record(3, models.PaymentCash, models.PaymentPending, 0, 0)
	noUnit.TicketType = models.TicketOnsite
	assert.Equal(t, 400.0, TotalAmount(noUnit, prices))
}

func TestAggregate(t *testing.T) {
	records := []models.DashboardRecord{
		record(1, models.PaymentTransfer, models.PaymentPending, 300, 1),
		record(2, models.PaymentTransfer, models.PaymentCompleted, 300, 2),
		record(3, models.PaymentCash, models.PaymentPending, 400, 1),
		record(4, models.PaymentCash, models.PaymentCompleted, 400, 0),
		record(5, models.PaymentMethod("line_pay"), models.PaymentPending, 300, 1),
	}
	records[1].TransferAmount = ptr(650)

	s := Aggregate(records, map[int64]bool{2: true, 4: true, 99: true}, nil)

	assert.Equal(t, 5, s.TotalCount)
	assert.Equal(t, 6, s.TotalParticipants)
	assert.Equal(t, 2, s.CashCount)
	assert.Equal(t, 1, s.CashPending)
	assert.Equal(t, 1, s.CashCompleted)
	assert.Equal(t, 2, s.PendingTransfer)
	assert.Equal(t, 1, s.ConfirmedTransfer)
	assert.Equal(t, s.TotalCount, s.CashCount+s.PendingTransfer+s.ConfirmedTransfer)

	assert.Equal(t, 2050.0, s.TotalRevenue)
	assert.Equal(t, 1050.0, s.ConfirmedRevenue)
	assert.Equal(t, 1000.0, s.PendingRevenue)
	assert.Equal(t, s.TotalRevenue, s.ConfirmedRevenue+s.PendingRevenue)
	assert.Equal(t, 800.0, s.CashRevenue)
	assert.Equal(t, 1250.0, s.TransferRevenue)

	assert.Equal(t, 2, s.CheckedInCount)
	assert.InDelta(t, 0.4, s.CheckInRate, 1e-9)
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, nil, nil)
	assert.Equal(t, models.Stats{}, s)
}
