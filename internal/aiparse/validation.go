package aiparse

import (
	"strings"
)

// CategoryValidator checks model-emitted categories against the allowed set:
// the app's fixed category list plus the request's custom categories.
// Comparison is case-insensitive but Resolve returns the canonical spelling.
type CategoryValidator struct {
	canonical map[string]string // normalized name -> canonical name
}

// NewCategoryValidator builds a validator from the fixed and custom category
// lists. Later duplicates do not override earlier entries, so the fixed list
// keeps its canonical spelling.
func NewCategoryValidator(categories, custom []string) *CategoryValidator {
	v := &CategoryValidator{
		canonical: make(map[string]string, len(categories)+len(custom)),
	}
	for _, name := range categories {
		v.add(name)
	}
	for _, name := range custom {
		v.add(name)
	}
	return v
}

func (v *CategoryValidator) add(name string) {
	norm := normalizeCategory(name)
	if norm == "" {
		return
	}
	if _, exists := v.canonical[norm]; !exists {
		v.canonical[norm] = strings.TrimSpace(name)
	}
}

// Resolve maps a model-emitted category to its canonical spelling, or to
// "Other" when it is not in the allowed set. Out-of-taxonomy output from the
// model is expected noise, not an error.
func (v *CategoryValidator) Resolve(category string) string {
	if canonical, ok := v.canonical[normalizeCategory(category)]; ok {
		return canonical
	}
	return "Other"
}

// normalizeCategory normalizes a category name for comparison: uppercase and
// trimmed, so matching is case- and whitespace-insensitive.
func normalizeCategory(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
