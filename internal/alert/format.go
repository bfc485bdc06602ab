package alert

import (
	"math"
	"strconv"
	"time"
)

// formatTimestampLabel renders a compact month-day hour-minute label for
// alert messages.
func formatTimestampLabel(t time.Time) string {
	return t.Format("01/02 15:04")
}

// formatPrice keeps three decimals for prices at or above one, three
// significant digits below.
func formatPrice(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "-"
	}
	if value >= 1 {
		return strconv.FormatFloat(value, 'f', 3, 64)
	}
	return strconv.FormatFloat(value, 'g', 3, 64)
}

// formatAmount keeps two decimals for amounts at or above one, three
// significant digits below.
func formatAmount(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "-"
	}
	if value >= 1 {
		return strconv.FormatFloat(value, 'f', 2, 64)
	}
	return strconv.FormatFloat(value, 'g', 3, 64)
}
