package datastore

import (
	"context"
	"fmt"

	"ms-registration/internal/models"

	"github.com/uptrace/bun"
)

// CheckedIn returns the payment order ids of eventCode that are checked in.
func (d *DB) CheckedIn(ctx context.Context, eventCode string) (map[int64]bool, error) {
	var ids []int64
	err := d.Bun.NewSelect().
		TableExpr("payment_orders AS po").
		Join("JOIN events AS e ON e.id = po.event_id").
		ColumnExpr("po.id").
		Where("e.code = ?", eventCode).
		Where("po.checked_in = ?", true).
		Scan(ctx, &ids)
	if err != nil {
		return nil, d.translate("checked in", err)
	}

	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// SetCheckIn records attendance for one payment order. It is idempotent.
func (d *DB) SetCheckIn(ctx context.Context, eventCode string, id int64, checkedIn bool, actor string) error {
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		order, err := d.paymentOrderForEvent(ctx, tx, eventCode, id, true)
		if err != nil {
			return err
		}
		return d.writeCheckIn(ctx, tx, order.ID, checkedIn, actor)
	})
	return d.translate("set check-in", err)
}

// ToggleCheckIn flips the flag and returns the new value.
func (d *DB) ToggleCheckIn(ctx context.Context, eventCode string, id int64, actor string) (bool, error) {
	var next bool
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		order, err := d.paymentOrderForEvent(ctx, tx, eventCode, id, true)
		if err != nil {
			return err
		}
		next = !order.CheckedIn
		return d.writeCheckIn(ctx, tx, order.ID, next, actor)
	})
	if err != nil {
		return false, d.translate("toggle check-in", err)
	}
	return next, nil
}

func (d *DB) writeCheckIn(ctx context.Context, tx bun.Tx, id int64, checkedIn bool, actor string) error {
	now := d.now()
	q := tx.NewUpdate().
		Model((*models.PaymentOrder)(nil)).
		Set("checked_in = ?", checkedIn).
		Set("updated_at = ?", now).
		Where("id = ?", id)
	if checkedIn {
		q = q.Set("checked_in_at = ?", now).Set("checked_in_by = ?", actor)
	} else {
		q = q.Set("checked_in_at = NULL").Set("checked_in_by = ''")
	}
	if _, err := q.Exec(ctx); err != nil {
		return err
	}

	if d.Logger != nil {
		d.Logger.LogDatabase("UPDATE", "payment_orders", fmt.Sprintf("check-in %d -> %t by %s", id, checkedIn, actor))
	}
	return nil
}
