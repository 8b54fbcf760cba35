package aiparse

import "time"

// Defaults for the remote model parser.
const (
	// DefaultModelName is the Gemini model used for rich text parsing.
	DefaultModelName = "gemini-2.5-flash"

	// maxModelAttempts bounds retries of a single GenerateContent call.
	maxModelAttempts = 2

	// modelRetryDelay is the pause between attempts.
	modelRetryDelay = 2 * time.Second
)
