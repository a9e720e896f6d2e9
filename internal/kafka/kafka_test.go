package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	evt := PaymentStatusChanged{
		Type:           TypePaymentStatusChanged,
		PaymentOrderID: 42,
		EventCode:      "COFFEE-2025-0726",
		Status:         "completed",
		Actor:          "Dashboard User",
		ChangedAt:      time.Date(2025, 7, 26, 9, 0, 0, 0, time.UTC),
	}

	msg, err := buildMessage("payment.status_changed", "42", evt)
	require.NoError(t, err)
	assert.Equal(t, "payment.status_changed", msg.Topic)
	assert.Equal(t, []byte("42"), msg.Key)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "completed", decoded["status"])
	assert.Equal(t, "Dashboard User", decoded["actor"])
	assert.Equal(t, "2025-07-26T09:00:00Z", decoded["changed_at"])
}

func TestBuildMessageRejectsUnencodable(t *testing.T) {
	_, err := buildMessage("t", "k", map[string]interface{}{"bad": make(chan int)})
	assert.Error(t, err)
}

func TestDecodeRegistrationCreated(t *testing.T) {
	raw, _ := json.Marshal(RegistrationCreated{
		Type:           TypeRegistrationCreated,
		EventCode:      "COFFEE-2025-0726",
		OrderNumber:    "COFFEE-20250726-000001",
		PaymentOrderID: 3,
	})
	evt, err := decodeRegistrationCreated(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(3), evt.PaymentOrderID)

	other, _ := json.Marshal(CheckInChanged{Type: TypeCheckInChanged, EventCode: "X"})
	_, err = decodeRegistrationCreated(other)
	assert.Error(t, err)

	_, err = decodeRegistrationCreated([]byte("{"))
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	ctx := context.Background()
	assert.NoError(t, p.PublishRegistrationCreated(ctx, RegistrationCreated{}))
	assert.NoError(t, p.PublishPaymentStatusChanged(ctx, PaymentStatusChanged{}))
	assert.NoError(t, p.PublishCheckInChanged(ctx, CheckInChanged{}))
}

func TestEnsureTopicsRequiresBrokers(t *testing.T) {
	assert.Error(t, EnsureTopicsExist(nil, []string{"x"}, nil))
}
