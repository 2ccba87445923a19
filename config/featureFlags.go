package config

import (
	"os"
	"strings"
)

// IncludeCroreSavings widens the savings aggregation to practices recorded in
// crores, converting them to lakhs before summing. The legacy behavior sums
// lakhs-denominated rows only, silently leaving crore rows out of monthly and
// YTD totals; historical reports depend on those numbers, so the widened sum
// is opt-in until product signs off on a migration.
//
// Set via env:
// - INCLUDE_CRORE_SAVINGS=true
func IncludeCroreSavings() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("INCLUDE_CRORE_SAVINGS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
