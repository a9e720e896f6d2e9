package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	StockOK         = "OK"
	StockLow        = "LOW_STOCK"
	StockOutOfStock = "OUT_OF_STOCK"
)

type InventoryItem struct {
	bun.BaseModel `bun:"table:inventory"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	ProductName   string    `bun:"product_name,notnull" json:"productName"`
	Category      string    `bun:"category" json:"category"`
	Variant       string    `bun:"variant" json:"variant"`
	Size          string    `bun:"size" json:"size"`
	Color         string    `bun:"color" json:"color"`
	CostPrice     float64   `bun:"cost_price,notnull" json:"costPrice"`
	RetailPrice   float64   `bun:"retail_price,notnull" json:"retailPrice"`
	CurrentStock  int       `bun:"current_stock,notnull" json:"currentStock"`
	ReservedStock int       `bun:"reserved_stock,notnull" json:"reservedStock"`
	MinStockAlert int       `bun:"min_stock_alert,notnull" json:"minStockAlert"`
	IsActive      bool      `bun:"is_active,notnull" json:"isActive"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// Available is stock that is not held for an order.
func (i InventoryItem) Available() int {
	return i.CurrentStock - i.ReservedStock
}

func (i InventoryItem) StockStatus() string {
	available := i.Available()
	switch {
	case available <= 0:
		return StockOutOfStock
	case available <= i.MinStockAlert:
		return StockLow
	default:
		return StockOK
	}
}
