// Package aiparse calls the remote model that performs richer transaction
// extraction than the local classifier. The classifier (internal/brain) is
// the pre-filter; this package is the enrichment path the UI falls back to.
package aiparse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avast/retry-go"
	"google.golang.org/genai"
)

// parseTextWithModel sends the user text to Gemini and returns the parsed
// JSON output. The model is instructed to return a STRICT JSON object of the
// form {"transactions": [...]}.
func parseTextWithModel(ctx context.Context, req Request, model string, categories []string) (map[string]interface{}, error) {
	fullPrompt := buildPrompt(req, categories)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("parseTextWithModel: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: fullPrompt},
				{Text: "Input text:\n" + req.Text},
			},
		},
	}

	var resp *genai.GenerateContentResponse
	err = retry.Do(
		func() error {
			r, genErr := client.Models.GenerateContent(ctx, model, contents, nil)
			if genErr != nil {
				return genErr
			}
			resp = r
			return nil
		},
		retry.Attempts(maxModelAttempts),
		retry.Delay(modelRetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("parseTextWithModel: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("parseTextWithModel: empty response from model")
	}

	// Clean up Markdown fences / extra text if the model ignored instructions.
	clean := cleanModelJSON(rawText)

	var parsed interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("parseTextWithModel: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}

	switch v := parsed.(type) {
	case map[string]interface{}:
		return v, nil
	case []interface{}:
		// Model returned a bare array; wrap it under "transactions".
		return map[string]interface{}{"transactions": v}, nil
	default:
		return nil, fmt.Errorf("parseTextWithModel: unexpected top-level JSON %T", parsed)
	}
}

// cleanModelJSON strips Markdown code fences and any junk around the JSON
// payload. Handles both object and array top levels.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: keep only the outermost JSON value if there's still junk
	// around it.
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")

	switch {
	case objStart != -1 && (arrStart == -1 || objStart < arrStart):
		if end := strings.LastIndex(s, "}"); end > objStart {
			s = s[objStart : end+1]
		}
	case arrStart != -1:
		if end := strings.LastIndex(s, "]"); end > arrStart {
			s = s[arrStart : end+1]
		}
	}

	return strings.TrimSpace(s)
}
