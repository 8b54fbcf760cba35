package aiparse

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/masareef/brain/internal/domain"
)

// transformModelOutput converts raw model output into normalized domain
// transactions. Malformed fields fail the whole batch; an out-of-taxonomy
// category is not an error, it falls back to "Other" via the validator.
func transformModelOutput(rawOutput map[string]interface{}, req Request, validator *CategoryValidator) ([]*domain.Transaction, error) {
	txAny, ok := rawOutput["transactions"]
	if !ok {
		return nil, fmt.Errorf("transformModelOutput: missing 'transactions' key in model output")
	}

	txSlice, ok := txAny.([]interface{})
	if !ok {
		return nil, fmt.Errorf("transformModelOutput: 'transactions' is %T, want []interface{}", txAny)
	}

	result := make([]*domain.Transaction, 0, len(txSlice))

	for i, item := range txSlice {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("transformModelOutput: element %d is %T, want map[string]interface{}", i, item)
		}

		desc, err := getStringField(obj, "description", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}

		amount, err := getFloat64Field(obj, "amount")
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if amount == 0 {
			return nil, fmt.Errorf("transaction %d: amount is zero", i)
		}

		direction := domain.DirectionOut
		if amount > 0 {
			direction = domain.DirectionIn
		}

		currency, err := getStringField(obj, "currency", false)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if currency == "" {
			currency = "SAR"
		}

		category, err := getStringField(obj, "category", false)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		category = validator.Resolve(category)

		merchant, err := getOptionalStringField(obj, "merchant")
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}

		occurredAt := req.CurrentDateTime
		dateStr, err := getStringField(obj, "date", false)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if dateStr != "" {
			occurredAt, err = time.Parse("2006-01-02", dateStr)
			if err != nil {
				return nil, fmt.Errorf("transaction %d: invalid date %q: %w", i, dateStr, err)
			}
		}

		result = append(result, &domain.Transaction{
			OccurredAt:  occurredAt,
			Description: desc,
			Amount:      math.Abs(amount),
			Currency:    strings.ToUpper(currency),
			Direction:   direction,
			Category:    category,
			Merchant:    merchant,
			Source:      domain.SourceModel,
			RawText:     req.Text,
		})
	}

	return result, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	if required && strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("required field %q is empty", key)
	}
	return s, nil
}

func getOptionalStringField(m map[string]interface{}, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("field %q has type %T, want string", key, v)
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return &s, nil
}

func getFloat64Field(m map[string]interface{}, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
	return f, nil
}
