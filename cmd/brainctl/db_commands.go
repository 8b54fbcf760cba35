package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masareef/brain/internal/logger"
	"github.com/masareef/brain/internal/storage/postgres"
)

func getStore(c *cli.Context) (*postgres.Store, func(), error) {
	databaseURL := c.String("database-url")
	if databaseURL == "" {
		return nil, nil, fmt.Errorf("database URL is required (set --database-url or BRAIN_DATABASE_URL)")
	}

	log := logger.New()
	store, err := postgres.NewStore(context.Background(), databaseURL, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return store, store.Close, nil
}

func listTransactionsCommand() *cli.Command {
	return &cli.Command{
		Name:    "list-transactions",
		Usage:   "List stored transactions",
		Aliases: []string{"ls"},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "category",
				Aliases: []string{"c"},
				Usage:   "Filter by category",
			},
			&cli.StringFlag{
				Name:  "direction",
				Usage: "Filter by direction (in, out)",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of transactions to show",
				Value:   50,
			},
		},
		Action: func(c *cli.Context) error {
			store, closer, err := getStore(c)
			if err != nil {
				return err
			}
			defer closer()

			transactions, err := store.ListTransactions(context.Background(), postgres.ListFilter{
				Category:  c.String("category"),
				Direction: c.String("direction"),
				Limit:     c.Int("limit"),
			})
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			if c.Bool("json") {
				return outputJSON(transactions)
			}

			// Pretty table output
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "OCCURRED\tAMOUNT\tCURRENCY\tDIRECTION\tCATEGORY\tDESCRIPTION")
			for _, tx := range transactions {
				fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\t%s\t%s\n",
					tx.OccurredAt.Format(time.RFC3339),
					tx.Amount,
					tx.Currency,
					tx.Direction,
					tx.Category,
					tx.Description,
				)
			}
			w.Flush()

			fmt.Fprintf(os.Stderr, "\nTotal: %d transactions\n", len(transactions))
			return nil
		},
	}
}

func categoryTotalsCommand() *cli.Command {
	return &cli.Command{
		Name:  "category-totals",
		Usage: "Show aggregated totals per category",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "direction",
				Usage: "Filter by direction (in, out)",
			},
		},
		Action: func(c *cli.Context) error {
			store, closer, err := getStore(c)
			if err != nil {
				return err
			}
			defer closer()

			totals, err := store.CategoryTotals(context.Background(), time.Time{}, time.Time{}, c.String("direction"))
			if err != nil {
				return fmt.Errorf("failed to query category totals: %w", err)
			}

			if c.Bool("json") {
				return outputJSON(totals)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tCURRENCY\tTOTAL\tCOUNT")
			for _, t := range totals {
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\n", t.Category, t.Currency, t.Total, t.Count)
			}
			w.Flush()

			return nil
		},
	}
}
