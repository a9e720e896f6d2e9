package datastore

import (
	"context"
	"fmt"

	"ms-registration/internal/apperr"
	"ms-registration/internal/models"
	"ms-registration/internal/pricing"
	"ms-registration/internal/utils"

	"github.com/uptrace/bun"
)

// CreateRegistration writes the customer, registration and payment order in
// one transaction. The event row is locked for the capacity check so
// concurrent signups for one event are serialized.
func (d *DB) CreateRegistration(ctx context.Context, in models.NewRegistration) (*models.RegistrationResult, error) {
	count := in.ParticipantCount
	if count < 1 {
		count = 1
	}

	var result models.RegistrationResult
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var event models.Event
		q := tx.NewSelect().Model(&event).Where("code = ?", in.EventCode).Limit(1)
		if d.isPostgres() {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			if isNoRows(err) {
				return apperr.NotFound(MsgEventNotFound)
			}
			return err
		}
		if !event.IsActive {
			return apperr.NotFound(MsgEventNotFound)
		}

		if event.MaxParticipants > 0 {
			load, err := d.participantLoad(ctx, tx, []int64{event.ID})
			if err != nil {
				return err
			}
			if load[event.ID]+count > event.MaxParticipants {
				return apperr.Capacity(MsgEventFull)
			}
		}

		now := d.now()
		customer := models.Customer{
			Email:           in.Email,
			Name:            in.Name,
			Phone:           in.Phone,
			InstagramHandle: in.InstagramHandle,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if _, err := tx.NewInsert().
			Model(&customer).
			On("CONFLICT (email) DO UPDATE").
			Set("name = EXCLUDED.name").
			Set("phone = EXCLUDED.phone").
			Set("instagram_handle = EXCLUDED.instagram_handle").
			Set("updated_at = EXCLUDED.updated_at").
			Returning("NULL").
			Exec(ctx); err != nil {
			return err
		}
		if err := tx.NewSelect().Model(&customer).Where("email = ?", in.Email).Limit(1).Scan(ctx); err != nil {
			return err
		}

		reg := models.Registration{
			EventID:          event.ID,
			CustomerID:       customer.ID,
			ParticipantName:  in.Name,
			ParticipantEmail: in.Email,
			ParticipantPhone: in.Phone,
			InstagramHandle:  in.InstagramHandle,
			TicketType:       in.TicketType,
			PaymentMethod:    in.PaymentMethod.Normalize(),
			ParticipantCount: count,
			TransferAmount:   in.TransferAmount,
			TransferLastFive: in.TransferLastFive,
			Notes:            in.Notes,
			CustomFields:     in.CustomFields,
			CreatedAt:        now,
		}
		if _, err := tx.NewInsert().Model(&reg).Exec(ctx); err != nil {
			return err
		}

		unit := d.Prices.UnitPrice(&event, in.TicketType)
		order := models.PaymentOrder{
			OrderNumber:        utils.GenerateOrderNumber(utils.OrderPrefix(event.Code), now),
			RegistrationID:     reg.ID,
			CustomerID:         customer.ID,
			EventID:            event.ID,
			UnitPrice:          unit,
			TotalAmount:        pricing.Total(unit, count),
			PaymentMethod:      reg.PaymentMethod,
			PaymentStatus:      models.PaymentPending,
			TransferAmount:     in.TransferAmount,
			SenderAccountLast5: in.TransferLastFive,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if _, err := tx.NewInsert().Model(&order).Exec(ctx); err != nil {
			return err
		}

		result = models.RegistrationResult{
			RegistrationID: reg.ID,
			CustomerID:     customer.ID,
			PaymentOrderID: order.ID,
			OrderNumber:    order.OrderNumber,
			PaymentAmount:  order.TotalAmount,
		}
		return nil
	})
	if err != nil {
		return nil, d.translate("create registration", err)
	}

	if d.Logger != nil {
		d.Logger.LogDatabase("INSERT", "payment_orders", fmt.Sprintf("order %s for event %s (%d participants, %.0f)",
			result.OrderNumber, in.EventCode, count, result.PaymentAmount))
	}
	return &result, nil
}
