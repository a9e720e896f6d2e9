package models

import "time"

type BusinessSummary struct {
	TotalCustomers       int       `json:"totalCustomers"`
	PendingRegistrations int       `json:"pendingRegistrations"`
	MonthRevenue         float64   `json:"monthRevenue"`
	MonthTransactions    int       `json:"monthTransactions"`
	InventoryValue       float64   `json:"inventoryValue"`
	LowStockItems        int       `json:"lowStockItems"`
	GeneratedAt          time.Time `json:"generatedAt"`
}

type DailyRevenue struct {
	Date           string  `json:"date"`
	Income         float64 `json:"income"`
	Transactions   int     `json:"transactions"`
	CashIncome     float64 `json:"cashIncome"`
	TransferIncome float64 `json:"transferIncome"`
}

type PeriodRevenue struct {
	From         time.Time      `json:"from"`
	To           time.Time      `json:"to"`
	Income       float64        `json:"income"`
	Transactions int            `json:"transactions"`
	Days         []DailyRevenue `json:"days"`
}

type ConversionFunnel struct {
	EventCode        string  `json:"eventCode"`
	Registered       int     `json:"registered"`
	PaymentConfirmed int     `json:"paymentConfirmed"`
	CheckedIn        int     `json:"checkedIn"`
	ConfirmRate      float64 `json:"confirmRate"`
	AttendanceRate   float64 `json:"attendanceRate"`
}

type InventoryStatus struct {
	InventoryItem
	AvailableStock int     `json:"availableStock"`
	Status         string  `json:"stockStatus"`
	StockValue     float64 `json:"stockValue"`
}

// CompletedPayment is the slice of a payment order the revenue reports read.
type CompletedPayment struct {
	ID            int64         `bun:"id"`
	EventID       int64         `bun:"event_id"`
	PaymentMethod PaymentMethod `bun:"payment_method"`
	TotalAmount   float64       `bun:"total_amount"`
	ConfirmedAt   time.Time     `bun:"confirmed_at"`
}
