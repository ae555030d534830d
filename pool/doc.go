// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package pool manages the question lifecycle state machine.

Questions move strictly forward through four statuses:

	UPCOMING → ACTIVE → AGGREGATING → FINALIZED

Exactly one question is live per UTC-hour epoch. ResolveActiveQuestion
promotes the most recently created UPCOMING question when no question is
live, recycling a random FINALIZED question into a fresh UPCOMING copy when
the pool runs dry (self-healing; the history itself is append-only).
Promotion is a conditional UPDATE guarded on status, so concurrent
resolutions for the same epoch settle on a single winner.

Invariants enforced on every resolution:

  - at most two ACTIVE rows system-wide (current epoch plus a not-yet-demoted
    previous epoch); more fails with ErrCorruptedState
  - at most one ACTIVE row per epoch; a duplicate fails with ErrCorruptedState

Demotion of stale ACTIVE rows to AGGREGATING is best-effort and never fails
the caller's request. CloseEpoch (called by the aggregator) moves an epoch's
questions to FINALIZED and is idempotent.

SampleQuestion serves the anonymous preview: the most recently closed
question, read-only.
*/
package pool
