package usecase

import (
	"strings"
	"sync/atomic"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DegradedMessage = "Could not connect to live database. Using sample data. Please check your Firebase configuration and security rules."

// DegradedLatch flips once per session and never resets.
type DegradedLatch struct {
	tripped atomic.Bool
}

// Trip sets the latch and reports whether this call was the one that set it.
func (l *DegradedLatch) Trip() bool {
	return l.tripped.CompareAndSwap(false, true)
}

func (l *DegradedLatch) Tripped() bool {
	return l.tripped.Load()
}

// IsDegradingError matches permission and missing-index failures, the errors
// that will not go away by waiting.
func IsDegradingError(err error) bool {
	if err == nil {
		return false
	}
	if status.Code(err) == codes.PermissionDenied {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Missing or insufficient permissions") ||
		strings.Contains(msg, "requires an index") ||
		strings.Contains(msg, "permission-denied")
}
