// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package aggregate turns a closed epoch's commitments into one immutable
aggregate record.

Run tallies the transitional plaintext answer bits into count_a/count_b,
picks the winning answer (ties go to A), writes the aggregate with a
deterministic digest of the form "<epoch>_<total>_<winning>" for external
verification, and finalizes the epoch's question through the pool manager.

Aggregation is triggered by an operator request, exactly once per epoch. A
repeat run fails on the aggregate table's UNIQUE epoch constraint rather
than producing a second record.
*/
package aggregate
