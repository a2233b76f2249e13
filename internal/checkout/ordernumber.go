package checkout

import (
	"fmt"
	"math/rand"
	"time"
)

// NewOrderNumber produces a human-readable order identifier. Uniqueness is
// enforced by the database index on order_number; the random suffix only
// disambiguates orders placed within the same millisecond.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%03d", now.UnixMilli(), rand.Intn(1000))
}
