package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// GenerateOrderNumber builds a payment order number like WDA-20250726-004217.
func GenerateOrderNumber(prefix string, now time.Time) string {
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	if prefix == "" {
		prefix = "ORD"
	}
	return fmt.Sprintf("%s-%s-%06d", strings.ToUpper(prefix), now.Format("20060102"), randomNum.Int64())
}

// OrderPrefix takes the leading segment of an event code ("COFFEE-2025-0726" → "COFFEE").
func OrderPrefix(eventCode string) string {
	head, _, _ := strings.Cut(eventCode, "-")
	head = strings.TrimSpace(head)
	if len(head) > 8 {
		head = head[:8]
	}
	return head
}
