package reconciliation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ms-registration/internal/apperr"
	"ms-registration/internal/kafka"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"

	"golang.org/x/sync/singleflight"
)

type Store interface {
	GetEventDetail(ctx context.Context, code string) (*models.Event, error)
	GetDashboardRegistrations(ctx context.Context, eventCode string) ([]models.DashboardRecord, error)
	GetPaymentOrder(ctx context.Context, eventCode string, id int64) (*models.PaymentOrder, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus, actor string) error
}

// CheckInStore is satisfied by the payment-order column (datastore) and by
// the Redis set (cache).
type CheckInStore interface {
	CheckedIn(ctx context.Context, eventCode string) (map[int64]bool, error)
	SetCheckIn(ctx context.Context, eventCode string, id int64, checkedIn bool, actor string) error
	ToggleCheckIn(ctx context.Context, eventCode string, id int64, actor string) (bool, error)
}

type SnapshotCache interface {
	Get(ctx context.Context, eventCode string) (*models.Snapshot, error)
	Set(ctx context.Context, snap *models.Snapshot) error
}

type Broadcaster interface {
	Emit(snap models.Snapshot)
}

// View is the operator's reconciliation state for every event being watched.
// Refreshes per event are de-duplicated; mutations never touch the cached
// snapshot directly, they re-read after the store accepted the change.
// A load only replaces the stored snapshot if it started after the load that
// produced it.
type View struct {
	Store    Store
	CheckIns CheckInStore
	Cache    SnapshotCache
	Events   Broadcaster
	Kafka    kafka.Publisher
	Logger   *logger.Logger
	MaxAge   time.Duration

	// LoadTimeout bounds one shared load, which is detached from the
	// caller's context.
	LoadTimeout time.Duration

	group     singleflight.Group
	mu        sync.RWMutex
	latest    map[string]*models.Snapshot
	latestSeq map[string]uint64
	seq       uint64

	pubMu        sync.Mutex
	publishedSeq map[string]uint64
}

const defaultLoadTimeout = 15 * time.Second

func NewView(store Store, checkIns CheckInStore, publisher kafka.Publisher, l *logger.Logger, maxAge time.Duration) *View {
	if publisher == nil {
		publisher = kafka.NopPublisher{}
	}
	return &View{
		Store:        store,
		CheckIns:     checkIns,
		Kafka:        publisher,
		Logger:       l,
		MaxAge:       maxAge,
		LoadTimeout:  defaultLoadTimeout,
		latest:       make(map[string]*models.Snapshot),
		latestSeq:    make(map[string]uint64),
		publishedSeq: make(map[string]uint64),
	}
}

// Refresh reloads the event's records and recomputes the stats. Concurrent
// callers for the same event share one load. The load keeps running when the
// caller that started it goes away; ctx only bounds how long this caller waits.
func (v *View) Refresh(ctx context.Context, eventCode string) (*models.Snapshot, error) {
	ch := v.group.DoChan(eventCode, func() (interface{}, error) {
		timeout := v.LoadTimeout
		if timeout <= 0 {
			timeout = defaultLoadTimeout
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return v.load(loadCtx, eventCode)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (v *View) nextSeq() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	return v.seq
}

func (v *View) load(ctx context.Context, eventCode string) (*models.Snapshot, error) {
	seq := v.nextSeq()

	event, err := v.Store.GetEventDetail(ctx, eventCode)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperr.NotFound("活動不存在")
	}

	records, err := v.Store.GetDashboardRegistrations(ctx, eventCode)
	if err != nil {
		return nil, err
	}
	checked, err := v.CheckIns.CheckedIn(ctx, eventCode)
	if err != nil {
		return nil, apperr.System("load check-ins", err)
	}
	for i := range records {
		records[i].CheckedIn = checked[records[i].PaymentOrderID]
	}

	snap := &models.Snapshot{
		EventCode:   eventCode,
		Event:       event,
		Records:     records,
		Stats:       Aggregate(records, checked, event.PriceConfig),
		RefreshedAt: time.Now().UTC(),
	}

	v.mu.Lock()
	if current := v.latestSeq[eventCode]; current > seq {
		newer := v.latest[eventCode]
		v.mu.Unlock()
		v.Logger.Debug("RECONCILE", fmt.Sprintf("%s load %d superseded by %d, dropped", eventCode, seq, current))
		return newer, nil
	}
	v.latest[eventCode] = snap
	v.latestSeq[eventCode] = seq
	v.mu.Unlock()

	v.publish(ctx, seq, snap)

	v.Logger.Debug("RECONCILE", fmt.Sprintf("%s refreshed: %d records, %d checked in", eventCode, snap.Stats.TotalCount, snap.Stats.CheckedInCount))
	return snap, nil
}

// publish writes snap to the shared cache and the live streams unless a
// newer load already did.
func (v *View) publish(ctx context.Context, seq uint64, snap *models.Snapshot) {
	v.pubMu.Lock()
	defer v.pubMu.Unlock()
	if v.publishedSeq[snap.EventCode] > seq {
		return
	}
	v.publishedSeq[snap.EventCode] = seq

	if v.Cache != nil {
		if err := v.Cache.Set(ctx, snap); err != nil {
			v.Logger.Warn("RECONCILE", fmt.Sprintf("snapshot cache write failed for %s: %v", snap.EventCode, err))
		}
	}
	if v.Events != nil {
		v.Events.Emit(*snap)
	}
}

// Snapshot serves the newest snapshot younger than MaxAge from memory or the
// shared cache, and refreshes otherwise. force always refreshes.
func (v *View) Snapshot(ctx context.Context, eventCode string, force bool) (*models.Snapshot, error) {
	if !force {
		if snap := v.Latest(eventCode); v.fresh(snap) {
			return snap, nil
		}
		if v.Cache != nil {
			snap, err := v.Cache.Get(ctx, eventCode)
			if err != nil {
				v.Logger.Warn("RECONCILE", fmt.Sprintf("snapshot cache read failed for %s: %v", eventCode, err))
			} else if v.fresh(snap) {
				return snap, nil
			}
		}
	}
	return v.Refresh(ctx, eventCode)
}

func (v *View) fresh(snap *models.Snapshot) bool {
	return snap != nil && v.MaxAge > 0 && time.Since(snap.RefreshedAt) < v.MaxAge
}

// Latest is the last completed snapshot held in memory, or nil.
func (v *View) Latest(eventCode string) *models.Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.latest[eventCode]
}

// ActiveCodes lists events that have been loaded at least once.
func (v *View) ActiveCodes() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	codes := make([]string, 0, len(v.latest))
	for code := range v.latest {
		codes = append(codes, code)
	}
	return codes
}

func (v *View) IsActive(eventCode string) bool {
	return v.Latest(eventCode) != nil
}

// PaymentOrder loads one payment order, scoped to the event.
func (v *View) PaymentOrder(ctx context.Context, eventCode string, id int64) (*models.PaymentOrder, error) {
	return v.Store.GetPaymentOrder(ctx, eventCode, id)
}

// SetPaymentStatus accepts pending or completed only. On failure nothing
// local changes; on success the event is re-read.
func (v *View) SetPaymentStatus(ctx context.Context, eventCode string, id int64, status models.PaymentStatus, actor string) (*models.Snapshot, error) {
	if !status.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("無效的付款狀態: %s", status))
	}
	if _, err := v.Store.GetPaymentOrder(ctx, eventCode, id); err != nil {
		return nil, err
	}
	if err := v.Store.UpdatePaymentStatus(ctx, id, status, actor); err != nil {
		return nil, err
	}

	v.Logger.LogReconciliation("PAYMENT", eventCode, fmt.Sprintf("payment %d -> %s by %s", id, status, actor))
	if err := v.Kafka.PublishPaymentStatusChanged(ctx, kafka.PaymentStatusChanged{
		PaymentOrderID: id,
		EventCode:      eventCode,
		Status:         string(status),
		Actor:          actor,
		ChangedAt:      time.Now().UTC(),
	}); err != nil {
		v.Logger.Error("KAFKA", fmt.Sprintf("Kafka publish error (payment status): %v", err))
	}

	return v.refreshAfterWrite(ctx, eventCode)
}

// ToggleCheckIn flips attendance for one payment order and returns the new value.
func (v *View) ToggleCheckIn(ctx context.Context, eventCode string, id int64, actor string) (bool, *models.Snapshot, error) {
	if _, err := v.Store.GetPaymentOrder(ctx, eventCode, id); err != nil {
		return false, nil, err
	}
	checked, err := v.CheckIns.ToggleCheckIn(ctx, eventCode, id, actor)
	if err != nil {
		return false, nil, apperr.System("toggle check-in", err)
	}

	v.checkInChanged(ctx, eventCode, id, checked, actor)
	snap, err := v.refreshAfterWrite(ctx, eventCode)
	return checked, snap, err
}

// SetCheckIn marks attendance explicitly, as the QR scanner does.
func (v *View) SetCheckIn(ctx context.Context, eventCode string, id int64, checkedIn bool, actor string) (*models.Snapshot, error) {
	if _, err := v.Store.GetPaymentOrder(ctx, eventCode, id); err != nil {
		return nil, err
	}
	if err := v.CheckIns.SetCheckIn(ctx, eventCode, id, checkedIn, actor); err != nil {
		return nil, apperr.System("set check-in", err)
	}

	v.checkInChanged(ctx, eventCode, id, checkedIn, actor)
	return v.refreshAfterWrite(ctx, eventCode)
}

func (v *View) checkInChanged(ctx context.Context, eventCode string, id int64, checkedIn bool, actor string) {
	v.Logger.LogReconciliation("CHECKIN", eventCode, fmt.Sprintf("payment %d checked_in=%t by %s", id, checkedIn, actor))
	if err := v.Kafka.PublishCheckInChanged(ctx, kafka.CheckInChanged{
		PaymentOrderID: id,
		EventCode:      eventCode,
		CheckedIn:      checkedIn,
		Actor:          actor,
		ChangedAt:      time.Now().UTC(),
	}); err != nil {
		v.Logger.Error("KAFKA", fmt.Sprintf("Kafka publish error (check-in): %v", err))
	}
}

// refreshAfterWrite must not join a load that started before the write. That
// older load can still finish later, but load drops it.
func (v *View) refreshAfterWrite(ctx context.Context, eventCode string) (*models.Snapshot, error) {
	v.group.Forget(eventCode)
	return v.Refresh(ctx, eventCode)
}
