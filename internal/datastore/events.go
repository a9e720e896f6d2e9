package datastore

import (
	"context"
	"fmt"

	"ms-registration/internal/models"

	"github.com/uptrace/bun"
)

// GetEventDetail returns nil, nil when no event has the code.
func (d *DB) GetEventDetail(ctx context.Context, code string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("code = ?", code).
		Limit(1).
		Scan(ctx)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, d.translate("get event", err)
	}
	return &event, nil
}

// UpsertEvent inserts def unless an event with the same code exists, then
// returns the stored row. Existing rows are never modified.
func (d *DB) UpsertEvent(ctx context.Context, def models.Event) (*models.Event, error) {
	now := d.now()
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}
	if def.UpdatedAt.IsZero() {
		def.UpdatedAt = now
	}

	res, err := d.Bun.NewInsert().
		Model(&def).
		On("CONFLICT (code) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return nil, d.translate("upsert event", err)
	}
	if n, _ := res.RowsAffected(); n > 0 && d.Logger != nil {
		d.Logger.LogDatabase("INSERT", "events", fmt.Sprintf("created event %s", def.Code))
	}

	event, err := d.GetEventDetail(ctx, def.Code)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, d.translate("upsert event", fmt.Errorf("event %s missing after upsert", def.Code))
	}
	return event, nil
}

func (d *DB) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, error) {
	var events []models.Event
	q := d.Bun.NewSelect().Model(&events).OrderExpr("start_date ASC, id ASC")
	if filter.EventType != "" {
		q = q.Where("event_type = ?", filter.EventType)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.From != "" {
		q = q.Where("start_date >= ?", filter.From)
	}
	// slot filtering needs the load, so paging moves to Go in that case
	sqlPaging := !filter.HasSlots && filter.Limit > 0
	if sqlPaging {
		q = q.Limit(filter.Limit)
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, d.translate("list events", err)
	}

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	load, err := d.participantLoad(ctx, d.Bun, ids)
	if err != nil {
		return nil, err
	}

	details := make([]models.EventDetail, 0, len(events))
	for _, e := range events {
		detail := models.NewEventDetail(e, load[e.ID])
		if filter.HasSlots && detail.Full() {
			continue
		}
		details = append(details, detail)
	}

	if !sqlPaging {
		details = page(details, filter.Offset, filter.Limit)
	}
	return details, nil
}

// RegisteredParticipants sums participant counts across an event's registrations.
func (d *DB) RegisteredParticipants(ctx context.Context, eventID int64) (int, error) {
	load, err := d.participantLoad(ctx, d.Bun, []int64{eventID})
	if err != nil {
		return 0, err
	}
	return load[eventID], nil
}

type eventLoad struct {
	EventID int64 `bun:"event_id"`
	Total   int   `bun:"total"`
}

func (d *DB) participantLoad(ctx context.Context, db bun.IDB, ids []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []eventLoad
	err := db.NewSelect().
		Model((*models.Registration)(nil)).
		ColumnExpr("event_id").
		ColumnExpr("COALESCE(SUM(participant_count), 0) AS total").
		Where("event_id IN (?)", bun.In(ids)).
		GroupExpr("event_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, d.translate("participant load", err)
	}
	for _, r := range rows {
		out[r.EventID] = r.Total
	}
	return out, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
