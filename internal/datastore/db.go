package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-registration/internal/apperr"
	"ms-registration/internal/logger"
	"ms-registration/internal/pricing"

	"github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

const (
	MsgEventNotFound   = "活動不存在"
	MsgEventFull       = "活動已額滿"
	MsgPaymentNotFound = "找不到付款紀錄"
)

type DB struct {
	Bun    *bun.DB
	Prices *pricing.Resolver
	Logger *logger.Logger
}

func New(bunDB *bun.DB, l *logger.Logger) *DB {
	return &DB{Bun: bunDB, Prices: pricing.NewResolver(l), Logger: l}
}

func (d *DB) isPostgres() bool {
	return d.Bun.Dialect().Name() == dialect.PG
}

func (d *DB) now() time.Time {
	return time.Now().UTC()
}

// translate turns driver errors into tagged errors. Database error text is
// classified here and nowhere else.
func (d *DB) translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch apperr.ClassifyMessage(pqErr.Message) {
		case apperr.KindCapacity:
			return &apperr.Error{Kind: apperr.KindCapacity, Message: MsgEventFull, Err: err}
		case apperr.KindNotFound:
			return &apperr.Error{Kind: apperr.KindNotFound, Message: MsgEventNotFound, Err: err}
		}
	}

	if d.Logger != nil {
		d.Logger.Error("DATABASE", fmt.Sprintf("%s failed: %v", op, err))
	}
	return apperr.System(op, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Ping backs the /health endpoint.
func (d *DB) Ping(ctx context.Context) error {
	return d.Bun.PingContext(ctx)
}
