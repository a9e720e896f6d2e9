package datastore

import (
	"context"
	"time"

	"ms-registration/internal/models"
)

// ListCompletedPayments returns payments confirmed in [from, to).
func (d *DB) ListCompletedPayments(ctx context.Context, from, to time.Time) ([]models.CompletedPayment, error) {
	payments := []models.CompletedPayment{}
	err := d.Bun.NewSelect().
		Model((*models.PaymentOrder)(nil)).
		Column("id", "event_id", "payment_method", "total_amount", "confirmed_at").
		Where("payment_status = ?", models.PaymentCompleted).
		Where("confirmed_at >= ?", from.UTC()).
		Where("confirmed_at < ?", to.UTC()).
		OrderExpr("confirmed_at ASC").
		Scan(ctx, &payments)
	if err != nil {
		return nil, d.translate("completed payments", err)
	}
	return payments, nil
}

func (d *DB) CountCustomers(ctx context.Context) (int, error) {
	n, err := d.Bun.NewSelect().Model((*models.Customer)(nil)).Count(ctx)
	if err != nil {
		return 0, d.translate("count customers", err)
	}
	return n, nil
}

func (d *DB) CountPendingPayments(ctx context.Context) (int, error) {
	n, err := d.Bun.NewSelect().
		Model((*models.PaymentOrder)(nil)).
		Where("payment_status = ?", models.PaymentPending).
		Count(ctx)
	if err != nil {
		return 0, d.translate("count pending payments", err)
	}
	return n, nil
}

func (d *DB) ListInventory(ctx context.Context, activeOnly bool) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	q := d.Bun.NewSelect().Model(&items).OrderExpr("product_name ASC, id ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, d.translate("list inventory", err)
	}
	return items, nil
}
