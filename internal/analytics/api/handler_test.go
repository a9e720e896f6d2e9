package analytics_api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ms-registration/internal/apperr"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReports struct {
	mock.Mock
}

func (m *MockReports) BusinessSummary(ctx context.Context) (*models.BusinessSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BusinessSummary), args.Error(1)
}

func (m *MockReports) DailyRevenue(ctx context.Context, days int) ([]models.DailyRevenue, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyRevenue), args.Error(1)
}

func (m *MockReports) RevenueByPeriod(ctx context.Context, from, to time.Time) (*models.PeriodRevenue, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PeriodRevenue), args.Error(1)
}

func (m *MockReports) ConversionFunnel(ctx context.Context, eventCode string) (*models.ConversionFunnel, error) {
	args := m.Called(ctx, eventCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConversionFunnel), args.Error(1)
}

func (m *MockReports) InventoryOverview(ctx context.Context, status string) ([]models.InventoryStatus, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryStatus), args.Error(1)
}

func setup() (*MockReports, http.Handler) {
	reports := new(MockReports)
	r := chi.NewRouter()
	NewHandler(reports, logger.Nop()).RegisterRoutes(r)
	return reports, r
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetBusinessSummary(t *testing.T) {
	reports, router := setup()
	reports.On("BusinessSummary", mock.Anything).Return(&models.BusinessSummary{TotalCustomers: 5, MonthRevenue: 1200}, nil)

	rec := get(router, "/api/reports/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.BusinessSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 5, got.TotalCustomers)
	assert.Equal(t, 1200.0, got.MonthRevenue)
}

func TestGetDailyRevenue(t *testing.T) {
	reports, router := setup()
	reports.On("DailyRevenue", mock.Anything, 30).Return([]models.DailyRevenue{{Date: "2025-07-26", Income: 400}}, nil)
	reports.On("DailyRevenue", mock.Anything, 7).Return([]models.DailyRevenue{}, nil)
	reports.On("DailyRevenue", mock.Anything, 0).Return(nil, apperr.Validation("days must be between 1 and 366"))

	assert.Equal(t, http.StatusOK, get(router, "/api/reports/daily-revenue").Code)
	assert.Equal(t, http.StatusOK, get(router, "/api/reports/daily-revenue?days=7").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/api/reports/daily-revenue?days=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/api/reports/daily-revenue?days=week").Code)
	reports.AssertExpectations(t)
}

func TestGetRevenueByPeriod(t *testing.T) {
	reports, router := setup()
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	reports.On("RevenueByPeriod", mock.Anything, from, to).Return(&models.PeriodRevenue{Income: 9000, Transactions: 30}, nil)

	rec := get(router, "/api/reports/revenue?from=2025-07-01&to=2025-07-31")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"income":9000`)

	assert.Equal(t, http.StatusBadRequest, get(router, "/api/reports/revenue?from=07/01/2025&to=2025-07-31").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/api/reports/revenue?from=2025-07-01").Code)
}

func TestGetConversionFunnel(t *testing.T) {
	reports, router := setup()
	reports.On("ConversionFunnel", mock.Anything, "COFFEE-2025-0726").Return(&models.ConversionFunnel{Registered: 4, PaymentConfirmed: 2}, nil)
	reports.On("ConversionFunnel", mock.Anything, "NOPE").Return(nil, apperr.NotFound("活動不存在"))

	assert.Equal(t, http.StatusOK, get(router, "/api/reports/events/COFFEE-2025-0726/funnel").Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/api/reports/events/NOPE/funnel").Code)
}

func TestGetInventoryOverview(t *testing.T) {
	reports, router := setup()
	reports.On("InventoryOverview", mock.Anything, "LOW_STOCK").Return([]models.InventoryStatus{{Status: models.StockLow}}, nil)
	reports.On("InventoryOverview", mock.Anything, "").Return(nil, apperr.System("list inventory", assert.AnError))

	rec := get(router, "/api/reports/inventory?status=LOW_STOCK")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stockStatus":"LOW_STOCK"`)

	rec = get(router, "/api/reports/inventory")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "系統錯誤，請稍後再試")
}
