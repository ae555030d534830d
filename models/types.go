package models

import "time"

// Question lifecycle status constants
const (
	StatusUpcoming    = "UPCOMING"
	StatusActive      = "ACTIVE"
	StatusAggregating = "AGGREGATING"
	StatusFinalized   = "FINALIZED"
)

// Answer bits: the first answer of a question is A (0), the second is B (1).
const (
	AnswerBitA = 0
	AnswerBitB = 1
)

// Request types

type RegisterRequest struct {
	Username string `json:"username"`
}

type SaveVaultKeysRequest struct {
	KEKSalt       string `json:"kek_salt,omitempty"`
	WrappedVMK    string `json:"wrapped_vmk,omitempty"`
	VMKIV         string `json:"vmk_iv,omitempty"`
	WrappedVMKPRF string `json:"wrapped_vmk_prf,omitempty"`
	PRFVMKIV      string `json:"prf_vmk_iv,omitempty"`
}

type SubmitCommitmentRequest struct {
	QuestionID      int    `json:"question_id"`
	EpochID         string `json:"epoch_id"`
	Nullifier       string `json:"nullifier"`
	Commitment      string `json:"commitment"`
	EncryptedAnswer string `json:"encrypted_answer"`
	// Transitional: the vote in the clear, tallied by the aggregator until a
	// blind aggregation path exists. Never returned by any read endpoint.
	PlaintextAnswerBit *int `json:"plaintext_answer_bit"`
}

type AggregateRequest struct {
	EpochID string `json:"epoch_id"`
}

type AddQuestionRequest struct {
	Title   *string             `json:"title"`
	Image   *string             `json:"image"`
	Text    string              `json:"text"`
	Answers []AddQuestionAnswer `json:"answers"`
}

type AddQuestionAnswer struct {
	Text string `json:"text"`
}

// Response types

type RegisterResponse struct {
	UserID       string `json:"user_id"`
	SessionToken string `json:"session_token"`
}

type SubmitCommitmentResponse struct {
	ID          int       `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type AggregateResponse struct {
	Success bool `json:"success"`
}

type AddQuestionResponse struct {
	QuestionID int   `json:"question_id"`
	AnswerIDs  []int `json:"answer_ids"`
}

type ResetGameMetaResponse struct {
	Success    bool `json:"success"`
	ResetCount int  `json:"reset_count"`
}

type CommitmentsByEpochResponse struct {
	Commitments []Commitment `json:"commitments"`
	Count       int          `json:"count"`
}

type ActiveQuestionResponse struct {
	ActiveQuestion QuestionWithAnswers `json:"active_question"`
}

// Domain types

type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	KEKSalt       *string   `json:"kek_salt,omitempty"`
	WrappedVMK    *string   `json:"wrapped_vmk,omitempty"`
	VMKIV         *string   `json:"vmk_iv,omitempty"`
	WrappedVMKPRF *string   `json:"wrapped_vmk_prf,omitempty"`
	PRFVMKIV      *string   `json:"prf_vmk_iv,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Question struct {
	ID             int        `json:"id"`
	Title          *string    `json:"title,omitempty"`
	Image          *string    `json:"image,omitempty"`
	Text           string     `json:"text"`
	Status         string     `json:"status"`
	EpochID        *string    `json:"epoch_id,omitempty"`
	OpensAt        *time.Time `json:"opens_at,omitempty"`
	ClosesAt       *time.Time `json:"closes_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastPromotedAt *time.Time `json:"last_promoted_at,omitempty"`
	TimesAsked     int        `json:"times_asked"`
}

type Answer struct {
	ID         int    `json:"id"`
	QuestionID int    `json:"question_id"`
	Text       string `json:"text"`
}

type QuestionWithAnswers struct {
	Question
	Answers []Answer `json:"answers"`
}

type Commitment struct {
	ID              int       `json:"id"`
	QuestionID      int       `json:"question_id"`
	EpochID         string    `json:"epoch_id"`
	Nullifier       string    `json:"nullifier"`
	Commitment      string    `json:"commitment"`
	EncryptedAnswer *string   `json:"encrypted_answer,omitempty"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

type Aggregate struct {
	ID                int       `json:"id"`
	QuestionID        int       `json:"question_id"`
	EpochID           string    `json:"epoch_id"`
	TotalResponses    int       `json:"total_responses"`
	CountA            int       `json:"count_a"`
	CountB            int       `json:"count_b"`
	WinningAnswer     int       `json:"winning_answer"`
	AggregationDigest string    `json:"aggregation_digest"`
	FinalizedAt       time.Time `json:"finalized_at"`
}

type PastResult struct {
	QuestionID     int       `json:"question_id"`
	EpochID        string    `json:"epoch_id"`
	Title          *string   `json:"title"`
	Image          *string   `json:"image"`
	Text           string    `json:"text"`
	TotalResponses int       `json:"total_responses"`
	AnswerAText    string    `json:"answer_a_text"`
	AnswerBText    string    `json:"answer_b_text"`
	CountA         int       `json:"count_a"`
	CountB         int       `json:"count_b"`
	WinningAnswer  int       `json:"winning_answer"`
	FinalizedAt    time.Time `json:"finalized_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
