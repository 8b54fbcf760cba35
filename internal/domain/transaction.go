package domain

import (
	"time"
)

// Transaction is one monetary movement the user wants recorded. It is the
// shape shared by the classifier path (user accepts a ParsedTransaction) and
// the model path (the remote parser emits richer extractions); the storage
// layer maps it onto the transactions table.
type Transaction struct {
	ID string `json:"id"`

	OccurredAt  time.Time `json:"occurred_at"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`   // always positive; Direction carries the sign
	Currency    string    `json:"currency"` // ISO code, SAR when undetected
	Direction   string    `json:"direction"`
	Category    string    `json:"category"`
	Merchant    *string   `json:"merchant,omitempty"`

	// Source records which extractor produced the row: "classifier" or "model".
	Source string `json:"source"`

	// RawText is the original input text, retained for audit.
	RawText string `json:"raw_text"`

	CreatedAt time.Time `json:"created_at"`
}

const (
	SourceClassifier = "classifier"
	SourceModel      = "model"
)

const (
	DirectionIn  = "in"
	DirectionOut = "out"
)
