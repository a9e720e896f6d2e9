package models

import "time"

// Stats are the reconciliation figures derived from one event's records.
type Stats struct {
	TotalCount        int     `json:"totalCount"`
	TotalParticipants int     `json:"totalParticipants"`
	CashCount         int     `json:"cashCount"`
	CashPending       int     `json:"cashPending"`
	CashCompleted     int     `json:"cashCompleted"`
	PendingTransfer   int     `json:"pendingTransfer"`
	ConfirmedTransfer int     `json:"confirmedTransfer"`
	TotalRevenue      float64 `json:"totalRevenue"`
	PendingRevenue    float64 `json:"pendingRevenue"`
	ConfirmedRevenue  float64 `json:"confirmedRevenue"`
	CashRevenue       float64 `json:"cashRevenue"`
	TransferRevenue   float64 `json:"transferRevenue"`
	CheckedInCount    int     `json:"checkedInCount"`
	CheckInRate       float64 `json:"checkInRate"`
}

type Snapshot struct {
	EventCode   string            `json:"eventCode"`
	Event       *Event            `json:"event,omitempty"`
	Records     []DashboardRecord `json:"records"`
	Stats       Stats             `json:"stats"`
	RefreshedAt time.Time         `json:"refreshedAt"`
}
