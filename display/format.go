// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package display

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as M:SS, truncating fractions. Negative and
// non-finite input renders as 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	minutes, remainingSeconds := secondsToMinAndSec(int64(seconds))
	return fmt.Sprintf("%d:%02d", minutes, remainingSeconds)
}

func secondsToMinAndSec(seconds int64) (int64, int64) {
	return seconds / 60, seconds % 60
}

func validDuration(duration float64) bool {
	return duration > 0 && !math.IsNaN(duration) && !math.IsInf(duration, 0)
}

func percentOf(current, duration float64) float64 {
	percent := 100 * current / duration
	if math.IsNaN(percent) || percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
