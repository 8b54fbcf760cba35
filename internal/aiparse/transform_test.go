package aiparse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/masareef/brain/internal/domain"
)

func testRequest() Request {
	return Request{
		Text:            "Coffee 25 SAR yesterday, salary SAR 9000",
		CurrentDateTime: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func testValidator() *CategoryValidator {
	return NewCategoryValidator([]string{"Food & Dining", "Transfer", "Other"}, nil)
}

func rawFromJSON(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return raw
}

func TestTransformModelOutput(t *testing.T) {
	raw := rawFromJSON(t, `{
		"transactions": [
			{
				"date": "2026-03-13",
				"description": "Coffee at Elixir",
				"amount": -25,
				"currency": "sar",
				"category": "food & dining",
				"merchant": "Elixir Bunn"
			},
			{
				"date": "2026-03-14",
				"description": "March salary",
				"amount": 9000,
				"currency": "SAR",
				"category": "Salary Stuff",
				"merchant": null
			}
		]
	}`)

	txs, err := transformModelOutput(raw, testRequest(), testValidator())
	if err != nil {
		t.Fatalf("transformModelOutput: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}

	coffee := txs[0]
	if coffee.Amount != 25 {
		t.Errorf("Amount = %v, want 25 (absolute value)", coffee.Amount)
	}
	if coffee.Direction != domain.DirectionOut {
		t.Errorf("Direction = %q, want out for negative amount", coffee.Direction)
	}
	if coffee.Currency != "SAR" {
		t.Errorf("Currency = %q, want SAR (uppercased)", coffee.Currency)
	}
	if coffee.Category != "Food & Dining" {
		t.Errorf("Category = %q, want canonical Food & Dining", coffee.Category)
	}
	if coffee.Merchant == nil || *coffee.Merchant != "Elixir Bunn" {
		t.Errorf("Merchant = %v, want Elixir Bunn", coffee.Merchant)
	}
	if coffee.OccurredAt != time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC) {
		t.Errorf("OccurredAt = %v", coffee.OccurredAt)
	}
	if coffee.Source != domain.SourceModel {
		t.Errorf("Source = %q, want model", coffee.Source)
	}
	if coffee.RawText != testRequest().Text {
		t.Errorf("RawText = %q, want original input", coffee.RawText)
	}

	salary := txs[1]
	if salary.Direction != domain.DirectionIn {
		t.Errorf("Direction = %q, want in for positive amount", salary.Direction)
	}
	if salary.Category != "Other" {
		t.Errorf("Category = %q, want Other for out-of-taxonomy model output", salary.Category)
	}
	if salary.Merchant != nil {
		t.Errorf("Merchant = %v, want nil", salary.Merchant)
	}
}

func TestTransformModelOutput_Defaults(t *testing.T) {
	raw := rawFromJSON(t, `{
		"transactions": [
			{"description": "Taxi", "amount": -40}
		]
	}`)

	req := testRequest()
	txs, err := transformModelOutput(raw, req, testValidator())
	if err != nil {
		t.Fatalf("transformModelOutput: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].Currency != "SAR" {
		t.Errorf("Currency = %q, want SAR default", txs[0].Currency)
	}
	if txs[0].Category != "Other" {
		t.Errorf("Category = %q, want Other default", txs[0].Category)
	}
	if !txs[0].OccurredAt.Equal(req.CurrentDateTime) {
		t.Errorf("OccurredAt = %v, want request time when date is missing", txs[0].OccurredAt)
	}
}

func TestTransformModelOutput_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "missing transactions key",
			raw:  `{"result": []}`,
		},
		{
			name: "transactions not an array",
			raw:  `{"transactions": "nope"}`,
		},
		{
			name: "element not an object",
			raw:  `{"transactions": [42]}`,
		},
		{
			name: "missing description",
			raw:  `{"transactions": [{"amount": -5}]}`,
		},
		{
			name: "missing amount",
			raw:  `{"transactions": [{"description": "x"}]}`,
		},
		{
			name: "zero amount",
			raw:  `{"transactions": [{"description": "x", "amount": 0}]}`,
		},
		{
			name: "bad date",
			raw:  `{"transactions": [{"description": "x", "amount": -5, "date": "14/03/2026"}]}`,
		},
		{
			name: "amount wrong type",
			raw:  `{"transactions": [{"description": "x", "amount": "five"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transformModelOutput(rawFromJSON(t, tt.raw), testRequest(), testValidator())
			if err == nil {
				t.Errorf("transformModelOutput succeeded, want error")
			}
		})
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "clean object untouched",
			raw:  `{"transactions": []}`,
			want: `{"transactions": []}`,
		},
		{
			name: "json fence",
			raw:  "```json\n{\"transactions\": []}\n```",
			want: `{"transactions": []}`,
		},
		{
			name: "bare fence",
			raw:  "```\n{\"transactions\": []}\n```",
			want: `{"transactions": []}`,
		},
		{
			name: "chatter around the object",
			raw:  "Here you go:\n{\"transactions\": []}\nHope that helps!",
			want: `{"transactions": []}`,
		},
		{
			name: "bare array",
			raw:  "```json\n[{\"amount\": -5}]\n```",
			want: `[{"amount": -5}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
