package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masareef/brain/internal/aiparse"
	"github.com/masareef/brain/internal/brain"
)

func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func textArg(c *cli.Context) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("requires the transaction text as an argument")
	}
	return strings.Join(c.Args().Slice(), " "), nil
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check whether text looks like a transaction",
		ArgsUsage: "<text>",
		Action: func(c *cli.Context) error {
			text, err := textArg(c)
			if err != nil {
				return err
			}

			result := brain.NewDefault().ValidateInput(text)

			if c.Bool("json") {
				return outputJSON(result)
			}

			fmt.Printf("Valid:      %t\n", result.IsValid)
			fmt.Printf("Confidence: %s\n", result.Confidence)
			if result.Reason != "" {
				fmt.Printf("Reason:     %s\n", result.Reason)
			}
			if result.SuggestedCategory != "" {
				fmt.Printf("Category:   %s\n", result.SuggestedCategory)
			}
			return nil
		},
	}
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse transaction text with the rule-based classifier",
		ArgsUsage: "<text>",
		Action: func(c *cli.Context) error {
			text, err := textArg(c)
			if err != nil {
				return err
			}

			classifier := brain.NewDefault()
			tx := classifier.ParseTransaction(text)
			if tx == nil {
				validation := classifier.ValidateInput(text)
				return fmt.Errorf("text did not validate as a transaction: %s", validation.Reason)
			}

			if c.Bool("json") {
				return outputJSON(tx)
			}

			fmt.Printf("Amount:    %.2f %s\n", tx.Amount, tx.Currency)
			fmt.Printf("Direction: %s\n", tx.Direction)
			fmt.Printf("Category:  %s\n", tx.Category)
			return nil
		},
	}
}

func aiParseCommand() *cli.Command {
	return &cli.Command{
		Name:      "ai-parse",
		Usage:     "Parse transaction text with the Gemini model",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "model",
				Usage:   "Gemini model name",
				EnvVars: []string{"BRAIN_MODEL_NAME"},
				Value:   aiparse.DefaultModelName,
			},
			&cli.StringSliceFlag{
				Name:  "category",
				Usage: "Extra custom category (repeatable)",
			},
		},
		Action: func(c *cli.Context) error {
			text, err := textArg(c)
			if err != nil {
				return err
			}

			parser := aiparse.NewGeminiParser(c.String("model"), brain.NewDefault().Categories())

			result, err := parser.ParseText(context.Background(), aiparse.Request{
				Text:             text,
				CurrentDateTime:  time.Now(),
				CustomCategories: c.StringSlice("category"),
			})
			if err != nil {
				return fmt.Errorf("failed to parse text: %w", err)
			}

			return outputJSON(result)
		},
	}
}

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List the built-in transaction categories",
		Action: func(c *cli.Context) error {
			categories := brain.NewDefault().Categories()

			if c.Bool("json") {
				return outputJSON(categories)
			}

			for _, category := range categories {
				fmt.Println(category)
			}
			return nil
		},
	}
}
