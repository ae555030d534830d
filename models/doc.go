// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the request, response, and domain types shared across
the Mora Poll API.

Question rows move through four statuses:

	UPCOMING → ACTIVE → AGGREGATING → FINALIZED

A question's two answers map to the answer bits used by the commitment
scheme: the answer with the smaller id is A (bit 0), the other is B (bit 1).

The SubmitCommitmentRequest carries the anonymous voting payload: a
nullifier (one submission per identity per question per epoch), a salted
commitment to the chosen answer, and the transitional plaintext answer bit
consumed by the aggregator.
*/
package models
