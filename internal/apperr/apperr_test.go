package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("create registration: %w", Capacity("活動已額滿"))
	assert.Equal(t, KindCapacity, KindOf(err))
	assert.Equal(t, "活動已額滿", Message(err))
}

func TestKindOfUntaggedIsSystem(t *testing.T) {
	err := errors.New("dial tcp: connection refused")
	assert.Equal(t, KindSystem, KindOf(err))
	assert.NotContains(t, Message(err), "connection refused")
}

func TestSystemMessageHidesCause(t *testing.T) {
	err := System("insert payment order", errors.New("pq: duplicate key"))
	assert.Equal(t, KindSystem, KindOf(err))
	assert.NotContains(t, Message(err), "duplicate key")
	assert.Contains(t, err.Error(), "duplicate key")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindValidation))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(KindCapacity))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindSystem))
}

func TestClassifyMessage(t *testing.T) {
	cases := []struct {
		text string
		want Kind
	}{
		{"Event is full", KindCapacity},
		{"活動已額滿", KindCapacity},
		{"event COFFEE-1 not found", KindNotFound},
		{"Event does not exist", KindNotFound},
		{"活動不存在", KindNotFound},
		{`null value in column "name"`, KindSystem},
		{"", KindSystem},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyMessage(tc.text), tc.text)
	}
}
