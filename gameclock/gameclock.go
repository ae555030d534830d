// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gameclock

import (
	"fmt"
	"time"
)

// GameHourSlot maps a UTC hour 0-23 to game slot 1-24 (slot 1 = 00:00-00:59 UTC).
func GameHourSlot(now time.Time) int {
	return now.UTC().Hour() + 1
}

// GameMonthSlot maps a UTC month to game slot 1-12.
func GameMonthSlot(now time.Time) int {
	return int(now.UTC().Month())
}

// EpochID returns the HHDDMMYY epoch identifier for the UTC hour containing now.
// Hour uses the game slot 1-24, so midnight UTC is "01". The id is stable for
// exactly one UTC hour and changes at minute 0 of the next hour.
//
// The field order is not lexicographically sortable; treat the id strictly as
// an opaque grouping key.
func EpochID(now time.Time) string {
	u := now.UTC()
	return fmt.Sprintf("%02d%02d%02d%02d",
		GameHourSlot(u), u.Day(), GameMonthSlot(u), u.Year()%100)
}

// EpochBounds returns the opens_at/closes_at timestamps for the UTC hour
// containing now: the top of the hour and hh:59:59.999.
func EpochBounds(now time.Time) (opensAt, closesAt time.Time) {
	u := now.UTC()
	opensAt = time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), 0, 0, 0, time.UTC)
	closesAt = opensAt.Add(time.Hour - time.Millisecond)
	return opensAt, closesAt
}
