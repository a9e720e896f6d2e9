package analytics

import (
	"context"
	"testing"
	"time"

	"ms-registration/internal/apperr"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	customers int
	pending   int
	payments  []models.CompletedPayment
	inventory []models.InventoryItem
	event     *models.Event
	records   []models.DashboardRecord
}

func (f *fakeStore) CountCustomers(context.Context) (int, error)       { return f.customers, nil }
func (f *fakeStore) CountPendingPayments(context.Context) (int, error) { return f.pending, nil }

func (f *fakeStore) ListCompletedPayments(_ context.Context, from, to time.Time) ([]models.CompletedPayment, error) {
	var out []models.CompletedPayment
	for _, p := range f.payments {
		if !p.ConfirmedAt.Before(from) && p.ConfirmedAt.Before(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListInventory(context.Context, bool) ([]models.InventoryItem, error) {
	return f.inventory, nil
}

func (f *fakeStore) GetEventDetail(_ context.Context, code string) (*models.Event, error) {
	if f.event == nil || f.event.Code != code {
		return nil, nil
	}
	return f.event, nil
}

func (f *fakeStore) GetDashboardRegistrations(context.Context, string) ([]models.DashboardRecord, error) {
	return f.records, nil
}

type fixedCheckIns map[int64]bool

func (c fixedCheckIns) CheckedIn(context.Context, string) (map[int64]bool, error) { return c, nil }

var taipei = time.FixedZone("CST", 8*3600)

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, taipei)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestService(store *fakeStore, checkIns fixedCheckIns) *Service {
	svc := NewService(store, checkIns, taipei, logger.Nop())
	svc.now = func() time.Time { return at("2025-07-27 10:00") }
	return svc
}

func samplePayments() []models.CompletedPayment {
	return []models.CompletedPayment{
		{ID: 1, PaymentMethod: models.PaymentTransfer, TotalAmount: 300, ConfirmedAt: at("2025-06-30 23:00")},
		{ID: 2, PaymentMethod: models.PaymentCash, TotalAmount: 400, ConfirmedAt: at("2025-07-26 08:30")},
		{ID: 3, PaymentMethod: models.PaymentTransfer, TotalAmount: 600, ConfirmedAt: time.Date(2025, 7, 26, 23, 30, 0, 0, time.UTC)},
		{ID: 4, PaymentMethod: models.PaymentTransfer, TotalAmount: 300, ConfirmedAt: at("2025-07-24 12:00")},
	}
}

func sampleInventory() []models.InventoryItem {
	return []models.InventoryItem{
		{ID: 1, ProductName: "Drip bag", CurrentStock: 10, CostPrice: 50, MinStockAlert: 3, IsActive: true},
		{ID: 2, ProductName: "Tote", CurrentStock: 2, CostPrice: 80, MinStockAlert: 5, IsActive: true},
		{ID: 3, ProductName: "Mug", CurrentStock: 1, ReservedStock: 1, CostPrice: 20, MinStockAlert: 1, IsActive: true},
	}
}

func TestDailyRevenue(t *testing.T) {
	svc := newTestService(&fakeStore{payments: samplePayments()}, nil)

	rows, err := svc.DailyRevenue(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "2025-07-25", rows[0].Date)
	assert.Zero(t, rows[0].Income)

	assert.Equal(t, "2025-07-26", rows[1].Date)
	assert.Equal(t, 400.0, rows[1].Income)
	assert.Equal(t, 400.0, rows[1].CashIncome)
	assert.Equal(t, 1, rows[1].Transactions)

	// 23:30 UTC is the next morning in Taipei
	assert.Equal(t, "2025-07-27", rows[2].Date)
	assert.Equal(t, 600.0, rows[2].TransferIncome)
}

func TestDailyRevenueRejectsBadRange(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)
	for _, days := range []int{0, -1, 400} {
		_, err := svc.DailyRevenue(context.Background(), days)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestRevenueByPeriod(t *testing.T) {
	svc := newTestService(&fakeStore{payments: samplePayments()}, nil)

	period, err := svc.RevenueByPeriod(context.Background(), at("2025-07-24 00:00"), at("2025-07-27 00:00"))
	require.NoError(t, err)
	assert.Len(t, period.Days, 4)
	assert.Equal(t, 1300.0, period.Income)
	assert.Equal(t, 3, period.Transactions)

	_, err = svc.RevenueByPeriod(context.Background(), at("2025-07-27 00:00"), at("2025-07-24 00:00"))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestBusinessSummary(t *testing.T) {
	store := &fakeStore{customers: 12, pending: 4, payments: samplePayments(), inventory: sampleInventory()}
	svc := newTestService(store, nil)

	summary, err := svc.BusinessSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, summary.TotalCustomers)
	assert.Equal(t, 4, summary.PendingRegistrations)
	assert.Equal(t, 1300.0, summary.MonthRevenue)
	assert.Equal(t, 3, summary.MonthTransactions)
	assert.Equal(t, 680.0, summary.InventoryValue)
	assert.Equal(t, 2, summary.LowStockItems)
}

func TestConversionFunnel(t *testing.T) {
	store := &fakeStore{
		event: &models.Event{ID: 1, Code: "COFFEE-2025-0726"},
		records: []models.DashboardRecord{
			{PaymentOrderID: 1, PaymentStatus: models.PaymentCompleted},
			{PaymentOrderID: 2, PaymentStatus: models.PaymentCompleted},
			{PaymentOrderID: 3, PaymentStatus: models.PaymentPending},
			{PaymentOrderID: 4, PaymentStatus: models.PaymentPending},
		},
	}
	svc := newTestService(store, fixedCheckIns{1: true, 3: true, 99: true})

	funnel, err := svc.ConversionFunnel(context.Background(), "COFFEE-2025-0726")
	require.NoError(t, err)
	assert.Equal(t, 4, funnel.Registered)
	assert.Equal(t, 2, funnel.PaymentConfirmed)
	assert.Equal(t, 2, funnel.CheckedIn)
	assert.Equal(t, 0.5, funnel.ConfirmRate)
	assert.Equal(t, 0.5, funnel.AttendanceRate)

	_, err = svc.ConversionFunnel(context.Background(), "NOPE")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestConversionFunnelEmptyEvent(t *testing.T) {
	store := &fakeStore{event: &models.Event{ID: 1, Code: "EMPTY"}}
	funnel, err := newTestService(store, fixedCheckIns{}).ConversionFunnel(context.Background(), "EMPTY")
	require.NoError(t, err)
	assert.Zero(t, funnel.ConfirmRate)
	assert.Zero(t, funnel.AttendanceRate)
}

func TestInventoryOverview(t *testing.T) {
	svc := newTestService(&fakeStore{inventory: sampleInventory()}, nil)

	all, err := svc.InventoryOverview(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.StockOK, all[0].Status)
	assert.Equal(t, 500.0, all[0].StockValue)
	assert.Equal(t, 0, all[2].AvailableStock)
	assert.Equal(t, models.StockOutOfStock, all[2].Status)

	low, err := svc.InventoryOverview(context.Background(), models.StockLow)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Tote", low[0].ProductName)

	_, err = svc.InventoryOverview(context.Background(), "PLENTY")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
