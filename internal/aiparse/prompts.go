package aiparse

import (
	"strings"
	"time"
)

// buildPrompt assembles the full instruction block sent ahead of the user
// text: base task, allowed categories, output rules.
func buildPrompt(req Request, categories []string) string {
	basePrompt :=
		"You are a financial transaction extractor for a personal finance chat app.\n\n" +
			"Task:\n" +
			"- The user pastes free-form text: SMS bank alerts, notes like \"Coffee 25 SAR\", or several of these at once.\n" +
			"- Extract ALL financial transactions from the input text.\n" +
			"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
			"- Output a JSON object: {\"transactions\": [...]}.\n\n" +
			"Each transaction object must have these fields:\n" +
			"- \"date\": string, ISO format \"YYYY-MM-DD\" (resolve relative dates against the current date below; use the current date when unknown)\n" +
			"- \"description\": string\n" +
			"- \"amount\": number (positive for money IN, negative for money OUT)\n" +
			"- \"currency\": string (ISO code; use \"SAR\" when not stated)\n" +
			"- \"category\": string (one of the predefined categories below)\n" +
			"- \"merchant\": string or null\n\n" +
			"Current date and time: " + req.CurrentDateTime.Format(time.RFC3339) + "\n"

	rulesPrompt :=
		"Rules:\n" +
			"- Ignore OTP codes, promotional messages and balance-only notifications; they are not transactions.\n" +
			"- If the text contains no transactions, output {\"transactions\": []}.\n" +
			"Return ONLY valid raw JSON.\n" +
			"Do NOT wrap the response in code fences.\n" +
			"Do NOT use ```json or any Markdown.\n" +
			"Output must begin with \"{\" and end with \"}\".\n"

	return basePrompt + "\n" + buildCategoriesPrompt(categories, req.CustomCategories) + "\n\n" + rulesPrompt
}

// buildCategoriesPrompt lists the allowed categories (fixed set plus the
// user's custom ones) and constrains what the model may output.
func buildCategoriesPrompt(categories, custom []string) string {
	var b strings.Builder
	b.WriteString("Use ONLY the following categories:\n\n")

	for _, cat := range categories {
		b.WriteString("  - " + cat + "\n")
	}
	for _, cat := range custom {
		if strings.TrimSpace(cat) == "" {
			continue
		}
		b.WriteString("  - " + cat + " (user-defined)\n")
	}
	b.WriteString("\n")

	b.WriteString("CATEGORY ASSIGNMENT RULES:\n")
	b.WriteString("1. Category must be EXACTLY one of the names shown above.\n")
	b.WriteString("2. If you are unsure, use \"Other\".\n")
	b.WriteString("3. Never invent a category that is not in the list.\n")

	return b.String()
}
