// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package gameclock maps wall-clock time to game epochs.

One question is live per UTC hour. The epoch id is an eight-character
HHDDMMYY string where HH is the game hour slot (UTC hour + 1, so 01-24),
DD the UTC day, MM the month slot 1-12, and YY the two-digit year:

	EpochID(now)           // "01230615" for 00:xx UTC on 2015-06-23
	EpochBounds(now)       // start of hour, hh:59:59.999

All functions are pure; callers must snapshot "now" once per logical
operation so epoch id and bounds never straddle an hour boundary.
*/
package gameclock
