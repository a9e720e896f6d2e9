package reconciliation

import (
	"ms-registration/internal/models"
	"ms-registration/internal/pricing"
)

// TotalAmount is what a record is worth: the declared transfer amount when
// one was given, otherwise unit price × participant count.
func TotalAmount(rec models.DashboardRecord, prices map[string]float64) float64 {
	if rec.TransferAmount != nil {
		return *rec.TransferAmount
	}
	unit := rec.UnitPrice
	if unit <= 0 {
		unit, _ = pricing.Lookup(prices, rec.TicketType)
	}
	return pricing.Total(unit, rec.ParticipantCount)
}

// Aggregate computes the dashboard figures in one pass. Anything that is not
// cash counts as transfer, so TotalCount == CashCount + PendingTransfer + ConfirmedTransfer.
func Aggregate(records []models.DashboardRecord, checkedIn map[int64]bool, prices map[string]float64) models.Stats {
	var s models.Stats

	for _, rec := range records {
		s.TotalCount++

		count := rec.ParticipantCount
		if count < 1 {
			count = 1
		}
		s.TotalParticipants += count

		if checkedIn[rec.PaymentOrderID] {
			s.CheckedInCount++
		}

		amount := TotalAmount(rec, prices)
		completed := rec.PaymentStatus == models.PaymentCompleted
		s.TotalRevenue += amount
		if completed {
			s.ConfirmedRevenue += amount
		} else {
			s.PendingRevenue += amount
		}

		if rec.PaymentMethod.Normalize() == models.PaymentCash {
			s.CashCount++
			s.CashRevenue += amount
			if completed {
				s.CashCompleted++
			} else {
				s.CashPending++
			}
			continue
		}

		s.TransferRevenue += amount
		if completed {
			s.ConfirmedTransfer++
		} else {
			s.PendingTransfer++
		}
	}

	if s.TotalCount > 0 {
		s.CheckInRate = float64(s.CheckedInCount) / float64(s.TotalCount)
	}
	return s
}
