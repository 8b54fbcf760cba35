package aiparse

import (
	"context"
	"time"

	"github.com/masareef/brain/internal/domain"
)

// Request is the payload accepted by the companion model-parsing endpoint.
// CurrentDateTime lets the model resolve relative dates ("yesterday") in the
// caller's clock, and CustomCategories extends the allowed category set with
// the user's own categories.
type Request struct {
	Text             string    `json:"text"`
	CurrentDateTime  time.Time `json:"currentDateTime"`
	CustomCategories []string  `json:"customCategories,omitempty"`
}

// Result is the model parser's answer. Error and Reason report semantic
// failures (unusable model output, nothing found) as data; transport and
// client failures surface as a Go error from ParseText instead.
type Result struct {
	Transactions []*domain.Transaction `json:"transactions"`
	Error        string                `json:"error,omitempty"`
	Reason       string                `json:"reason,omitempty"`
}

// Parser is the interface the API and worker depend on, so tests can swap in
// a mock instead of calling Gemini.
type Parser interface {
	ParseText(ctx context.Context, req Request) (*Result, error)
}

// GeminiParser is the concrete Parser backed by the Gemini API.
type GeminiParser struct {
	model      string
	categories []string
}

// NewGeminiParser creates a parser for the given model name. categories is
// the app's fixed category list; per-request custom categories are merged in
// at call time.
func NewGeminiParser(model string, categories []string) *GeminiParser {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiParser{
		model:      model,
		categories: categories,
	}
}

// ParseText sends the text to the model and transforms the output into
// domain transactions.
func (p *GeminiParser) ParseText(ctx context.Context, req Request) (*Result, error) {
	raw, err := parseTextWithModel(ctx, req, p.model, p.categories)
	if err != nil {
		return nil, err
	}

	validator := NewCategoryValidator(p.categories, req.CustomCategories)

	txs, err := transformModelOutput(raw, req, validator)
	if err != nil {
		return &Result{
			Transactions: []*domain.Transaction{},
			Error:        "model output could not be transformed",
			Reason:       err.Error(),
		}, nil
	}

	if len(txs) == 0 {
		return &Result{
			Transactions: []*domain.Transaction{},
			Reason:       "no transactions found in the text",
		}, nil
	}

	return &Result{Transactions: txs}, nil
}

var _ Parser = (*GeminiParser)(nil)
