// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mora

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Domain separation tags. A nullifier hash can never collide with or be
// reinterpreted as a commitment hash, and versioned tags let the protocol
// upgrade (..._V2) while old data stays verifiable.
const (
	DomainNullifier  = "MORA_NULLIFIER_V1"
	DomainCommitment = "MORA_COMMITMENT_V1"
)

// Identity-secret HKDF labels.
const (
	identitySalt = "MORA_USER_SECRET_V1"
	identityInfo = "nullifier-root"
)

// SecretSize is the byte length of the identity secret and commitment salt.
const SecretSize = 32

// AnswerBit selects one of the two answers: 0 for A, 1 for B.
type AnswerBit byte

// Submission is the network payload sent to the server. Digests are hex.
// The commitment salt is NOT part of it; it stays client-side.
type Submission struct {
	QuestionID int    `json:"question_id"`
	EpochID    string `json:"epoch_id"`
	Nullifier  string `json:"nullifier"`
	Commitment string `json:"commitment"`
}

// DeriveIdentitySecret derives the stable per-vault voting identity from the
// raw VMK bytes. The same VMK always reproduces the same secret, so no
// server-side state is needed to remember an identity across sessions.
func DeriveIdentitySecret(vmk []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, vmk, []byte(identitySalt), []byte(identityInfo))
	secret := make([]byte, SecretSize)
	if _, err := io.ReadFull(r, secret); err != nil {
		return nil, fmt.Errorf("failed to derive identity secret: %w", err)
	}
	return secret, nil
}

// DeriveNullifier computes
//
//	SHA-256(DomainNullifier ‖ secret ‖ be32(questionID) ‖ epochID)
//
// Deterministic and one-way: a repeat vote by the same identity on the same
// (question, epoch) reproduces the identical digest, which is how the store
// detects duplicates without ever seeing the identity.
func DeriveNullifier(secret []byte, questionID int, epochID string) []byte {
	h := sha256.New()
	h.Write([]byte(DomainNullifier))
	h.Write(secret)

	var qid [4]byte
	binary.BigEndian.PutUint32(qid[:], uint32(questionID))
	h.Write(qid[:])

	h.Write([]byte(epochID))
	return h.Sum(nil)
}

// GenerateCommitmentSalt returns a fresh 32-byte salt. The salt is the only
// thing that can later open the commitment and must never be transmitted.
func GenerateCommitmentSalt() ([]byte, error) {
	salt := make([]byte, SecretSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate commitment salt: %w", err)
	}
	return salt, nil
}

// DeriveCommitment computes SHA-256(DomainCommitment ‖ bit ‖ salt).
func DeriveCommitment(bit AnswerBit, salt []byte) []byte {
	h := sha256.New()
	h.Write([]byte(DomainCommitment))
	h.Write([]byte{byte(bit)})
	h.Write(salt)
	return h.Sum(nil)
}

// BuildSubmission assembles the payload for one vote and returns the fresh
// commitment salt alongside it. The caller keeps the salt (discard it, or
// persist it encrypted under the VMK if a later reveal is wanted) and never
// sends it to the server.
func BuildSubmission(secret []byte, questionID int, epochID string, bit AnswerBit) (Submission, []byte, error) {
	salt, err := GenerateCommitmentSalt()
	if err != nil {
		return Submission{}, nil, err
	}

	return Submission{
		QuestionID: questionID,
		EpochID:    epochID,
		Nullifier:  hex.EncodeToString(DeriveNullifier(secret, questionID, epochID)),
		Commitment: hex.EncodeToString(DeriveCommitment(bit, salt)),
	}, salt, nil
}
