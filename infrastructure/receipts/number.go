package receipts

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

const (
	ImportPrefix = "NH"
	CheckPrefix  = "KIEM"
)

// NewReceiptNumber returns prefix + YYMMDDHHmm + a short random suffix so
// receipts created within the same minute stay unique.
func NewReceiptNumber(prefix string, at time.Time) string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	return prefix + at.Format("0601021504") + hex.EncodeToString(b[:])
}
