package brain

import "regexp"

// CategoryPattern pairs a category name with the regexes that select it.
// Categories are matched in declaration order and the first hit wins, so the
// position of an entry in Config.Categories is part of the contract.
type CategoryPattern struct {
	Name     string
	Patterns []*regexp.Regexp
}

// Config holds the keyword and pattern tables the classifier runs on.
// The tables are fixed data, not tunable state: build one Config (normally
// DefaultConfig) and hand it to New once. Nothing mutates it afterwards.
type Config struct {
	// ExcludeKeywords mark a message as security (OTP), promotional,
	// balance-only or account-notification noise. Checked before anything else.
	ExcludeKeywords []string

	// IncludeKeywords are verbs/nouns that indicate a transaction happened.
	IncludeKeywords []string

	// CurrencyPatterns match a currency code or symbol adjacent to a number.
	// Order matters: the first pattern that yields a parseable amount wins.
	CurrencyPatterns []*regexp.Regexp

	// Categories is the priority-ordered category table.
	Categories []CategoryPattern

	// IncomeKeywords flip the direction to "in".
	IncomeKeywords []string

	// DefaultCurrency is used when no currency token is found in the text.
	DefaultCurrency string

	// MinLength / MaxLength bound the input: shorter (after trimming) is
	// rejected outright, longer is almost certainly not an alert message.
	MinLength int
	MaxLength int

	// FallbackMin / FallbackMax bound the generic number scan used when no
	// currency-anchored amount is found.
	FallbackMin float64
	FallbackMax float64
}

// numberPattern matches a generic amount run: digits with optional thousands
// commas and at most one decimal point.
var numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// DefaultConfig returns the classifier tables used by the Masareef app.
func DefaultConfig() Config {
	return Config{
		ExcludeKeywords: []string{
			"otp",
			"verification code",
			"security code",
			"activation code",
			"login code",
			"pin code",
			"do not share",
			"promo",
			"special offer",
			"exclusive deal",
			"available balance",
			"balance inquiry",
			"account statement",
			"statement is ready",
			"has been blocked",
			"password",
			"unsubscribe",
		},
		IncludeKeywords: []string{
			"paid",
			"payment",
			"purchase",
			"spent",
			"transferred",
			"transfer",
			"debited",
			"credited",
			"withdrawn",
			"withdrawal",
			"deposit",
			"received",
			"invoice",
			"bill",
			"bought",
			"pos",
			"salary",
			"refund",
		},
		CurrencyPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)sar\s*\d[\d,]*(?:\.\d+)?`),
			regexp.MustCompile(`(?i)\d[\d,]*(?:\.\d+)?\s*sar`),
			regexp.MustCompile(`ريال\s*\d[\d,]*(?:\.\d+)?`),
			regexp.MustCompile(`\d[\d,]*(?:\.\d+)?\s*ريال`),
			regexp.MustCompile(`\$\s*\d[\d,]*(?:\.\d+)?`),
			regexp.MustCompile(`(?i)usd\s*\d[\d,]*(?:\.\d+)?`),
			regexp.MustCompile(`(?i)aed\s*\d[\d,]*(?:\.\d+)?`),
			regexp.MustCompile(`(?i)\d[\d,]*(?:\.\d+)?\s*aed`),
			regexp.MustCompile(`€\s*\d[\d,]*(?:\.\d+)?`),
			regexp.MustCompile(`(?i)eur\s*\d[\d,]*(?:\.\d+)?`),
			regexp.MustCompile(`£\s*\d[\d,]*(?:\.\d+)?`),
			regexp.MustCompile(`(?i)gbp\s*\d[\d,]*(?:\.\d+)?`),
		},
		Categories: []CategoryPattern{
			{
				Name: "Food & Dining",
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)coffee|cafe|caf[eé]|restaurant|resto`),
					regexp.MustCompile(`(?i)starbucks|mcdonald|kfc|burger|pizza|shawarma`),
					regexp.MustCompile(`(?i)talabat|hungerstation|jahez|deliveroo`),
					regexp.MustCompile(`(?i)lunch|dinner|breakfast|bakery|dining`),
				},
			},
			{
				Name: "Transportation",
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)uber|careem|bolt|taxi|cab`),
					regexp.MustCompile(`(?i)petrol|gas station|fuel|parking`),
					regexp.MustCompile(`(?i)metro|bus fare|train`),
				},
			},
			{
				Name: "Shopping",
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)amazon|noon|shein|aliexpress`),
					regexp.MustCompile(`(?i)mall|store|shop|retail`),
					regexp.MustCompile(`(?i)zara|ikea|jarir|extra\b`),
				},
			},
			{
				Name: "Bills & Utilities",
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)electricity|water bill|sewage`),
					regexp.MustCompile(`(?i)internet|stc|mobily|zain`),
					regexp.MustCompile(`(?i)\bbill\b|utility|subscription|netflix|spotify`),
				},
			},
			{
				Name: "Groceries",
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)grocery|groceries|supermarket|hypermarket`),
					regexp.MustCompile(`(?i)panda|carrefour|danube|tamimi|lulu`),
					regexp.MustCompile(`(?i)\bmarket\b`),
				},
			},
			{
				Name: "Health",
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)pharmacy|hospital|clinic|doctor|dental`),
					regexp.MustCompile(`(?i)nahdi|al dawaa|medical|lab test`),
				},
			},
			{
				Name: "Transfer",
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)transfer|iban|remittance`),
					regexp.MustCompile(`(?i)western union|moneygram|stc pay`),
				},
			},
		},
		IncomeKeywords: []string{
			"received",
			"credited",
			"deposit",
			"salary",
			"refund",
			"cashback",
			"earned",
			"income",
			"bonus",
		},
		DefaultCurrency: "SAR",
		MinLength:       5,
		MaxLength:       2000,
		FallbackMin:     1,
		FallbackMax:     1_000_000,
	}
}
