package datastore

import (
	"context"
	"fmt"

	"ms-registration/internal/apperr"
	"ms-registration/internal/models"

	"github.com/uptrace/bun"
)

// GetDashboardRegistrations returns every payment order of the event joined
// with its registration, newest first.
func (d *DB) GetDashboardRegistrations(ctx context.Context, eventCode string) ([]models.DashboardRecord, error) {
	records := []models.DashboardRecord{}
	err := d.Bun.NewSelect().
		TableExpr("payment_orders AS po").
		Join("JOIN registrations AS r ON r.id = po.registration_id").
		Join("JOIN events AS e ON e.id = po.event_id").
		ColumnExpr("po.id AS payment_order_id").
		ColumnExpr("r.id AS registration_id").
		ColumnExpr("po.order_number").
		ColumnExpr("e.code AS event_code").
		ColumnExpr("e.name AS event_name").
		ColumnExpr("r.participant_name, r.participant_email, r.participant_phone, r.instagram_handle").
		ColumnExpr("r.ticket_type, po.payment_method, po.payment_status, r.participant_count").
		ColumnExpr("po.unit_price, po.total_amount, po.transfer_amount").
		ColumnExpr("r.transfer_last_five, r.notes").
		ColumnExpr("po.checked_in, po.confirmed_at, po.confirmed_by, po.created_at").
		Where("e.code = ?", eventCode).
		OrderExpr("po.created_at DESC, po.id DESC").
		Scan(ctx, &records)
	if err != nil {
		return nil, d.translate("dashboard registrations", err)
	}
	return records, nil
}

// UpdatePaymentStatus moves a payment order between pending and completed.
// Completing stamps the confirmation; reverting to pending clears it.
func (d *DB) UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus, actor string) error {
	if !status.Valid() {
		return apperr.Validation(fmt.Sprintf("無效的付款狀態: %s", status))
	}

	now := d.now()
	q := d.Bun.NewUpdate().
		Model((*models.PaymentOrder)(nil)).
		Set("payment_status = ?", status).
		Set("updated_at = ?", now).
		Where("id = ?", id)
	if status == models.PaymentCompleted {
		q = q.Set("confirmed_at = ?", now).Set("confirmed_by = ?", actor)
	} else {
		q = q.Set("confirmed_at = NULL").Set("confirmed_by = ''")
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return d.translate("update payment status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound(MsgPaymentNotFound)
	}

	if d.Logger != nil {
		d.Logger.LogDatabase("UPDATE", "payment_orders", fmt.Sprintf("payment %d -> %s by %s", id, status, actor))
	}
	return nil
}

// GetPaymentOrder loads a payment order and checks it belongs to eventCode.
func (d *DB) GetPaymentOrder(ctx context.Context, eventCode string, id int64) (*models.PaymentOrder, error) {
	return d.paymentOrderForEvent(ctx, d.Bun, eventCode, id, false)
}

func (d *DB) paymentOrderForEvent(ctx context.Context, db bun.IDB, eventCode string, id int64, lock bool) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	q := db.NewSelect().
		Model(&order).
		Join("JOIN events AS e ON e.id = payment_order.event_id").
		Where("payment_order.id = ?", id).
		Where("e.code = ?", eventCode).
		Limit(1)
	if lock && d.isPostgres() {
		q = q.For("UPDATE OF payment_order")
	}
	if err := q.Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound(MsgPaymentNotFound)
		}
		return nil, d.translate("get payment order", err)
	}
	return &order, nil
}
