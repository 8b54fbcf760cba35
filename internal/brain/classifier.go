// Package brain implements the transaction text classifier: a rule-based
// filter that decides whether free-form input (an SMS bank alert, a note like
// "Coffee 25 SAR") describes a real financial transaction, and extracts
// amount, currency, direction and category when it does.
//
// Every function here is pure and side-effect free; a Classifier is safe to
// share across any number of goroutines.
package brain

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Confidence is the classifier's self-reported certainty tier. The UI uses it
// to decide between auto-accepting, accepting with a note, or asking the user
// to confirm.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Direction of a monetary movement.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// CategoryOther is the fallback when no category pattern matches.
const CategoryOther = "Other"

// ValidationResult is the verdict for one input text.
type ValidationResult struct {
	// IsValid reports whether the text is judged to describe a transaction.
	IsValid bool `json:"isValid"`

	// Reason explains the verdict. Empty only for high-confidence valid input.
	Reason string `json:"reason,omitempty"`

	// Confidence is the strength of the signal that produced the verdict.
	Confidence Confidence `json:"confidence"`

	// SuggestedCategory is the best-guess category, present only when valid.
	SuggestedCategory string `json:"suggestedCategory,omitempty"`
}

// ParsedTransaction is the best-effort structured extraction for valid input.
type ParsedTransaction struct {
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Direction Direction `json:"direction"`
	Category  string    `json:"category"`

	// Merchant is never set by the classifier; it is left for a later
	// enrichment step (the remote model parser fills it when it can).
	Merchant *string `json:"merchant,omitempty"`

	// RawText is the original input, retained for audit and debugging.
	RawText string `json:"rawText"`
}

// Classifier evaluates input text against an immutable set of keyword and
// pattern tables.
type Classifier struct {
	cfg Config
}

// New builds a Classifier from the given tables. The Config is copied-by-value
// and must not be mutated by the caller afterwards.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// NewDefault builds a Classifier on the stock Masareef tables.
func NewDefault() *Classifier {
	return New(DefaultConfig())
}

// ExtractAmount finds the transaction amount in text.
//
// Currency-anchored numbers are tried first, in pattern-table order: within
// the first substring a pattern matches, the first generic number run is
// parsed (thousands commas stripped) and accepted if positive. Only when no
// currency pattern yields an amount does the generic scan run: every number
// run in the text, in order of appearance, first one inside
// [FallbackMin, FallbackMax] wins. Currency-adjacent numbers are far more
// likely to be the amount than dates, phone numbers or reference IDs, which
// is why the anchored phase always wins over the generic one.
func (c *Classifier) ExtractAmount(text string) (float64, bool) {
	for _, re := range c.cfg.CurrencyPatterns {
		match := re.FindString(text)
		if match == "" {
			continue
		}
		num := numberPattern.FindString(match)
		if num == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
		if err == nil && v > 0 {
			return v, true
		}
	}

	for _, num := range numberPattern.FindAllString(text, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
		if err != nil {
			continue
		}
		if v >= c.cfg.FallbackMin && v <= c.cfg.FallbackMax {
			return v, true
		}
	}

	return 0, false
}

// InferCategory returns the name of the first category whose pattern list
// matches the text, or CategoryOther. Matching is case-insensitive and the
// iteration order over Config.Categories is a priority list.
func (c *Classifier) InferCategory(text string) string {
	for _, cat := range c.cfg.Categories {
		for _, re := range cat.Patterns {
			if re.MatchString(text) {
				return cat.Name
			}
		}
	}
	return CategoryOther
}

// InferDirection returns DirectionIn when an income indicator is present and
// DirectionOut otherwise. Most alert messages are spend notifications, so
// expense is the default.
func (c *Classifier) InferDirection(text string) Direction {
	lower := strings.ToLower(text)
	for _, kw := range c.cfg.IncomeKeywords {
		if strings.Contains(lower, kw) {
			return DirectionIn
		}
	}
	return DirectionOut
}

// ValidateInput is the core decision function. Rules are evaluated in order
// and the first applicable one wins; the order is the contract.
func (c *Classifier) ValidateInput(text string) ValidationResult {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < c.cfg.MinLength {
		return ValidationResult{
			IsValid:    false,
			Reason:     "text is too short to describe a transaction",
			Confidence: ConfidenceHigh,
		}
	}

	if utf8.RuneCountInString(text) > c.cfg.MaxLength {
		return ValidationResult{
			IsValid:    false,
			Reason:     "text is too long, probably not a transaction message",
			Confidence: ConfidenceMedium,
		}
	}

	lower := strings.ToLower(text)
	for _, kw := range c.cfg.ExcludeKeywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		reason := "looks like a promotional or informational message, not a transaction"
		if strings.Contains(kw, "otp") || strings.Contains(kw, "code") {
			reason = "looks like a security message, not a transaction"
		}
		return ValidationResult{
			IsValid:    false,
			Reason:     reason,
			Confidence: ConfidenceHigh,
		}
	}

	hasCurrency := c.hasCurrencyToken(text)
	hasKeyword := c.hasIncludeKeyword(lower)
	amount, hasAmount := c.ExtractAmount(text)

	switch {
	case hasCurrency && hasAmount:
		return ValidationResult{
			IsValid:           true,
			Confidence:        ConfidenceHigh,
			SuggestedCategory: c.InferCategory(text),
		}
	case hasKeyword && hasAmount:
		return ValidationResult{
			IsValid:           true,
			Reason:            "transaction keyword found but no explicit currency",
			Confidence:        ConfidenceMedium,
			SuggestedCategory: c.InferCategory(text),
		}
	case hasAmount && amount >= c.cfg.FallbackMin:
		return ValidationResult{
			IsValid:           true,
			Reason:            "found an amount but no currency or transaction keyword, please confirm",
			Confidence:        ConfidenceLow,
			SuggestedCategory: c.InferCategory(text),
		}
	default:
		return ValidationResult{
			IsValid:    false,
			Reason:     "no monetary amount detected",
			Confidence: ConfidenceHigh,
		}
	}
}

// ParseTransaction runs ValidateInput and, for valid input, packages the
// structured extraction. Returns nil when the text is not a transaction.
//
// Currency detection here is intentionally NOT the pattern table used by
// ExtractAmount: it is a simpler, fixed-priority token scan (USD/$ before
// AED before EUR before GBP, defaulting to SAR). The two detectors can
// disagree on mixed-currency text; see the classifier tests for the pinned
// behavior.
func (c *Classifier) ParseTransaction(text string) *ParsedTransaction {
	result := c.ValidateInput(text)
	if !result.IsValid {
		return nil
	}

	// ValidateInput only says valid after finding an amount, but re-extraction
	// is what the caller gets, so bail out if it somehow comes up empty.
	amount, ok := c.ExtractAmount(text)
	if !ok {
		return nil
	}

	return &ParsedTransaction{
		Amount:    amount,
		Currency:  c.detectCurrency(text),
		Direction: c.InferDirection(text),
		Category:  c.InferCategory(text),
		RawText:   text,
	}
}

// detectCurrency is the second, simpler currency detector used only by
// ParseTransaction. Fixed priority chain, independent of CurrencyPatterns.
func (c *Classifier) detectCurrency(text string) string {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "USD") || strings.Contains(text, "$"):
		return "USD"
	case strings.Contains(upper, "AED"):
		return "AED"
	case strings.Contains(upper, "EUR") || strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(upper, "GBP") || strings.Contains(text, "£"):
		return "GBP"
	default:
		return c.cfg.DefaultCurrency
	}
}

func (c *Classifier) hasCurrencyToken(text string) bool {
	for _, re := range c.cfg.CurrencyPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func (c *Classifier) hasIncludeKeyword(lower string) bool {
	for _, kw := range c.cfg.IncludeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Categories returns the category names in priority order, with the fallback
// appended. Handed to the API and to the model prompt builder.
func (c *Classifier) Categories() []string {
	names := make([]string, 0, len(c.cfg.Categories)+1)
	for _, cat := range c.cfg.Categories {
		names = append(names, cat.Name)
	}
	return append(names, CategoryOther)
}
