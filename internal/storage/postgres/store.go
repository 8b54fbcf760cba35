// Package postgres provides PostgreSQL-backed storage for parsed transactions.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/masareef/brain/internal/domain"
)

// Store persists transactions in PostgreSQL.
// It is safe for concurrent use; all methods go through the connection pool.
type Store struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// ListFilter defines filtering criteria for listing transactions.
type ListFilter struct {
	// Start filters transactions occurring at or after this time.
	Start *time.Time

	// End filters transactions occurring before this time.
	End *time.Time

	// Category filters by exact category name.
	Category string

	// Direction filters by "in" or "out".
	Direction string

	// Limit limits the number of results. Zero means no limit.
	Limit int

	// Offset for pagination.
	Offset int
}

// CategoryTotal is an aggregated spend or income amount for one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

// NewStore creates a new Store connected to the given database URL.
// It verifies the connection with a ping before returning.
func NewStore(ctx context.Context, databaseURL string, logger zerolog.Logger) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("NewStore: failed to parse database URL: %w", err)
	}

	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("NewStore: failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("NewStore: failed to ping database: %w", err)
	}

	logger.Info().Msg("Connected to PostgreSQL")

	return &Store{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info().Msg("Closed PostgreSQL connection pool")
	}
}

// InsertTransaction inserts a single transaction.
// Missing ID and CreatedAt fields are filled in before the insert.
func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	if tx == nil {
		return fmt.Errorf("InsertTransaction: transaction is nil")
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (
			id, occurred_at, description, amount, currency,
			direction, category, merchant, source, raw_text, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		tx.ID,
		tx.OccurredAt,
		tx.Description,
		tx.Amount,
		tx.Currency,
		tx.Direction,
		tx.Category,
		tx.Merchant,
		tx.Source,
		tx.RawText,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertTransaction: failed to insert transaction: %w", err)
	}

	s.logger.Debug().
		Str("transaction_id", tx.ID).
		Str("category", tx.Category).
		Msg("Inserted transaction")

	return nil
}

// InsertTransactions inserts multiple transactions in a single batch.
func (s *Store) InsertTransactions(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	dbTx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("InsertTransactions: failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	batch := &pgx.Batch{}
	now := time.Now()
	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.New().String()
		}
		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = now
		}
		batch.Queue(`
			INSERT INTO transactions (
				id, occurred_at, description, amount, currency,
				direction, category, merchant, source, raw_text, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			tx.ID,
			tx.OccurredAt,
			tx.Description,
			tx.Amount,
			tx.Currency,
			tx.Direction,
			tx.Category,
			tx.Merchant,
			tx.Source,
			tx.RawText,
			tx.CreatedAt,
		)
	}

	results := dbTx.SendBatch(ctx, batch)
	for range txs {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("InsertTransactions: failed to insert batch: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("InsertTransactions: failed to close batch: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("InsertTransactions: failed to commit: %w", err)
	}

	s.logger.Info().Int("count", len(txs)).Msg("Inserted transaction batch")

	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *Store) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, occurred_at, description, amount, currency,
		       direction, category, merchant, source, raw_text, created_at
		FROM transactions
		WHERE id = $1
	`, id)

	tx, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("GetTransaction: transaction not found: %s", id)
		}
		return nil, fmt.Errorf("GetTransaction: failed to scan row: %w", err)
	}

	return tx, nil
}

// ListTransactions retrieves transactions matching the filter,
// ordered by occurrence time, newest first.
func (s *Store) ListTransactions(ctx context.Context, filter ListFilter) ([]*domain.Transaction, error) {
	query := `
		SELECT id, occurred_at, description, amount, currency,
		       direction, category, merchant, source, raw_text, created_at
		FROM transactions
		WHERE 1=1
	`
	var args []interface{}
	argIndex := 1

	if filter.Start != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", argIndex)
		args = append(args, *filter.Start)
		argIndex++
	}
	if filter.End != nil {
		query += fmt.Sprintf(" AND occurred_at < $%d", argIndex)
		args = append(args, *filter.End)
		argIndex++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, filter.Category)
		argIndex++
	}
	if filter.Direction != "" {
		query += fmt.Sprintf(" AND direction = $%d", argIndex)
		args = append(args, filter.Direction)
		argIndex++
	}

	query += " ORDER BY occurred_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: failed to query transactions: %w", err)
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: failed to scan row: %w", err)
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTransactions: failed to iterate rows: %w", err)
	}

	return result, nil
}

// CategoryTotals aggregates transaction amounts per category and currency
// within the given time window. Either bound may be zero to leave it open.
func (s *Store) CategoryTotals(ctx context.Context, start, end time.Time, direction string) ([]*CategoryTotal, error) {
	query := `
		SELECT category, currency, SUM(amount), COUNT(*)
		FROM transactions
		WHERE 1=1
	`
	var args []interface{}
	argIndex := 1

	if !start.IsZero() {
		query += fmt.Sprintf(" AND occurred_at >= $%d", argIndex)
		args = append(args, start)
		argIndex++
	}
	if !end.IsZero() {
		query += fmt.Sprintf(" AND occurred_at < $%d", argIndex)
		args = append(args, end)
		argIndex++
	}
	if direction != "" {
		query += fmt.Sprintf(" AND direction = $%d", argIndex)
		args = append(args, direction)
	}

	query += " GROUP BY category, currency ORDER BY SUM(amount) DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("CategoryTotals: failed to query totals: %w", err)
	}
	defer rows.Close()

	var result []*CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.Category, &t.Currency, &t.Total, &t.Count); err != nil {
			return nil, fmt.Errorf("CategoryTotals: failed to scan row: %w", err)
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CategoryTotals: failed to iterate rows: %w", err)
	}

	return result, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(
		&tx.ID,
		&tx.OccurredAt,
		&tx.Description,
		&tx.Amount,
		&tx.Currency,
		&tx.Direction,
		&tx.Category,
		&tx.Merchant,
		&tx.Source,
		&tx.RawText,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
