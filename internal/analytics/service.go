package analytics

import (
	"context"
	"fmt"
	"time"

	"ms-registration/internal/apperr"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

const (
	dateLayout = "2006-01-02"
	maxDays    = 366
)

type Store interface {
	CountCustomers(ctx context.Context) (int, error)
	CountPendingPayments(ctx context.Context) (int, error)
	ListCompletedPayments(ctx context.Context, from, to time.Time) ([]models.CompletedPayment, error)
	ListInventory(ctx context.Context, activeOnly bool) ([]models.InventoryItem, error)
	GetEventDetail(ctx context.Context, code string) (*models.Event, error)
	GetDashboardRegistrations(ctx context.Context, eventCode string) ([]models.DashboardRecord, error)
}

type CheckInReader interface {
	CheckedIn(ctx context.Context, eventCode string) (map[int64]bool, error)
}

// Service builds the business reports. Days are bucketed in Location.
type Service struct {
	Store    Store
	CheckIns CheckInReader
	Location *time.Location
	Logger   *logger.Logger
	now      func() time.Time
}

func NewService(store Store, checkIns CheckInReader, loc *time.Location, l *logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{Store: store, CheckIns: checkIns, Location: loc, Logger: l, now: time.Now}
}

func (s *Service) today() time.Time {
	n := s.now().In(s.Location)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.Location)
}

// BusinessSummary covers customers, open payments, this month's confirmed
// income and the stock on hand.
func (s *Service) BusinessSummary(ctx context.Context) (*models.BusinessSummary, error) {
	customers, err := s.Store.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.Store.CountPendingPayments(ctx)
	if err != nil {
		return nil, err
	}

	today := s.today()
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.Location)
	payments, err := s.Store.ListCompletedPayments(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	items, err := s.Store.ListInventory(ctx, true)
	if err != nil {
		return nil, err
	}

	summary := &models.BusinessSummary{
		TotalCustomers:       customers,
		PendingRegistrations: pending,
		MonthTransactions:    len(payments),
		GeneratedAt:          s.now().UTC(),
	}
	for _, p := range payments {
		summary.MonthRevenue += p.TotalAmount
	}
	for _, item := range items {
		summary.InventoryValue += stockValue(item)
		if item.StockStatus() != models.StockOK {
			summary.LowStockItems++
		}
	}
	return summary, nil
}

// DailyRevenue returns one row per day for the last days days, oldest first,
// including days without income.
func (s *Service) DailyRevenue(ctx context.Context, days int) ([]models.DailyRevenue, error) {
	if days < 1 || days > maxDays {
		return nil, apperr.Validation(fmt.Sprintf("days must be between 1 and %d", maxDays))
	}
	from := s.today().AddDate(0, 0, -(days - 1))
	return s.dailyRevenue(ctx, from, days)
}

// RevenueByPeriod sums confirmed income for the calendar days from..to, both inclusive.
func (s *Service) RevenueByPeriod(ctx context.Context, from, to time.Time) (*models.PeriodRevenue, error) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.Location)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, s.Location)
	if end.Before(start) {
		return nil, apperr.Validation("結束日期不可早於開始日期")
	}
	days := int(end.Sub(start).Hours()/24+0.5) + 1
	if days > maxDays {
		return nil, apperr.Validation(fmt.Sprintf("period must not exceed %d days", maxDays))
	}

	rows, err := s.dailyRevenue(ctx, start, days)
	if err != nil {
		return nil, err
	}

	period := &models.PeriodRevenue{From: start, To: end, Days: rows}
	for _, row := range rows {
		period.Income += row.Income
		period.Transactions += row.Transactions
	}
	return period, nil
}

func (s *Service) dailyRevenue(ctx context.Context, from time.Time, days int) ([]models.DailyRevenue, error) {
	payments, err := s.Store.ListCompletedPayments(ctx, from, from.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}

	rows := make([]models.DailyRevenue, days)
	index := make(map[string]int, days)
	for i := range rows {
		date := from.AddDate(0, 0, i).Format(dateLayout)
		rows[i].Date = date
		index[date] = i
	}

	for _, p := range payments {
		i, ok := index[p.ConfirmedAt.In(s.Location).Format(dateLayout)]
		if !ok {
			continue
		}
		rows[i].Income += p.TotalAmount
		rows[i].Transactions++
		if p.PaymentMethod.Normalize() == models.PaymentCash {
			rows[i].CashIncome += p.TotalAmount
		} else {
			rows[i].TransferIncome += p.TotalAmount
		}
	}
	return rows, nil
}

// ConversionFunnel follows one event's registrations through payment and attendance.
func (s *Service) ConversionFunnel(ctx context.Context, eventCode string) (*models.ConversionFunnel, error) {
	event, err := s.Store.GetEventDetail(ctx, eventCode)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperr.NotFound("活動不存在")
	}

	records, err := s.Store.GetDashboardRegistrations(ctx, eventCode)
	if err != nil {
		return nil, err
	}
	checked, err := s.CheckIns.CheckedIn(ctx, eventCode)
	if err != nil {
		return nil, apperr.System("load check-ins", err)
	}

	funnel := &models.ConversionFunnel{EventCode: eventCode, Registered: len(records)}
	for _, rec := range records {
		if rec.PaymentStatus == models.PaymentCompleted {
			funnel.PaymentConfirmed++
		}
		if checked[rec.PaymentOrderID] {
			funnel.CheckedIn++
		}
	}
	if funnel.Registered > 0 {
		funnel.ConfirmRate = float64(funnel.PaymentConfirmed) / float64(funnel.Registered)
		funnel.AttendanceRate = float64(funnel.CheckedIn) / float64(funnel.Registered)
	}
	return funnel, nil
}

// InventoryOverview lists active stock; status narrows to OK, LOW_STOCK or OUT_OF_STOCK.
func (s *Service) InventoryOverview(ctx context.Context, status string) ([]models.InventoryStatus, error) {
	switch status {
	case "", models.StockOK, models.StockLow, models.StockOutOfStock:
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown stock status %q", status))
	}

	items, err := s.Store.ListInventory(ctx, true)
	if err != nil {
		return nil, err
	}

	out := make([]models.InventoryStatus, 0, len(items))
	for _, item := range items {
		st := item.StockStatus()
		if status != "" && st != status {
			continue
		}
		out = append(out, models.InventoryStatus{
			InventoryItem:  item,
			AvailableStock: item.Available(),
			Status:         st,
			StockValue:     stockValue(item),
		})
	}
	return out, nil
}

func stockValue(item models.InventoryItem) float64 {
	return float64(item.CurrentStock) * item.CostPrice
}
