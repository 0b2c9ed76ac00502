package models

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const orderNumberLayout = "20060102150405"

// GenerateOrderNumber returns ORD-<yyyyMMddHHmmss>-<NNN> for t in UTC with a
// random three digit suffix.
func GenerateOrderNumber(t time.Time) string {
	return fmt.Sprintf("ORD-%s-%03d", t.UTC().Format(orderNumberLayout), rand.IntN(1000))
}
