package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2025, 7, 26, 8, 30, 0, 0, time.UTC)

	n := GenerateOrderNumber("coffee", now)
	assert.Regexp(t, regexp.MustCompile(`^COFFEE-20250726-\d{6}$`), n)

	assert.Regexp(t, `^ORD-20250726-\d{6}$`, GenerateOrderNumber("", now))
}

func TestOrderPrefix(t *testing.T) {
	assert.Equal(t, "COFFEE", OrderPrefix("COFFEE-2025-0726"))
	assert.Equal(t, "WORKSHOP", OrderPrefix("WORKSHOPXYZ"))
	assert.Equal(t, "", OrderPrefix(""))
}
