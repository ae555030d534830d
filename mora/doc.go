// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package mora derives the anonymous voting identity, nullifiers, and answer
commitments for the private data game.

A voter's identity secret comes deterministically from their Vault Master
Key, so the same vault always votes as the same (opaque) identity:

	secret, _ := mora.DeriveIdentitySecret(vmk)
	sub, salt, _ := mora.BuildSubmission(secret, questionID, epochID, mora.AnswerBit(0))

The nullifier proves "this identity already voted on this question in this
epoch" without revealing the identity; the commitment hides the chosen
answer behind a private 32-byte salt. This is classical commit/reveal
scaffolding, not a zero-knowledge proof: the server learns the nullifier and
commitment but neither the identity secret nor the salt.

All derivations are pure functions over already-validated inputs and safe to
run concurrently.
*/
package mora
