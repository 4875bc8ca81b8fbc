package testutil

import (
	"time"

	"github.com/light-bringer/changegraph/internal/pkg/clock"
)

// NewMockClock returns a controllable clock starting at a fixed instant, so
// recorded change times are reproducible.
func NewMockClock() *clock.MockClock {
	return clock.NewMockClock(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
}
