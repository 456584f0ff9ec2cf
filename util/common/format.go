package common

import (
	"fmt"
)

// Percent returns count/target as a percentage, 0 when there is no target.
func Percent(count int64, target int) float64 {
	if target <= 0 {
		return 0
	}
	return float64(count) / float64(target) * 100
}

// FormatProgress renders "count/target (pp.p%)".
func FormatProgress(count int64, target int) string {
	return fmt.Sprintf("%d/%d (%.1f%%)", count, target, Percent(count, target))
}
