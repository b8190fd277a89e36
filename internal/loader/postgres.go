package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerdash/ledgerdash/internal/platform/db"
	"github.com/ledgerdash/ledgerdash/internal/title"
)

const titlesQuery = `
SELECT number,
       side,
       COALESCE(branch, 0),
       COALESCE(branch_name, ''),
       COALESCE(counterparty, ''),
       COALESCE(category, ''),
       COALESCE(document_type, ''),
       COALESCE(payment_method, ''),
       issue_date,
       due_date,
       actual_due_date,
       settlement_date,
       COALESCE(original_amount, 0),
       COALESCE(balance, 0),
       COALESCE(currency_rate, 0),
       COALESCE(interest, 0),
       COALESCE(penalty, 0),
       COALESCE(discount, 0),
       COALESCE(correction, 0),
       COALESCE(other_charges, 0)
FROM financial_titles
ORDER BY side, number`

// PostgresSource loads the ledger from the relational store. Numeric
// nulls are repaired to zero in the query itself to keep the coercion
// policy in one place.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource builds a source over a pgx pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Name identifies the source in logs and errors.
func (s *PostgresSource) Name() string { return "postgres" }

// Load queries the full title set inside one read-only transaction so
// both sides of the ledger come from a single consistent view.
func (s *PostgresSource) Load(ctx context.Context) ([]title.FinancialTitle, error) {
	var titles []title.FinancialTitle
	err := db.WithReadTx(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, titlesQuery)
		if err != nil {
			return describePGError(err)
		}
		defer rows.Close()

		for rows.Next() {
			var t title.FinancialTitle
			var side string
			var issue *time.Time
			if err := rows.Scan(
				&t.Number, &side, &t.Branch, &t.BranchName, &t.Counterparty,
				&t.Category, &t.DocumentType, &t.PaymentMethod,
				&issue, &t.DueDate, &t.ActualDueDate, &t.SettlementDate,
				&t.OriginalAmount, &t.Balance, &t.CurrencyRate,
				&t.Interest, &t.Penalty, &t.Discount, &t.Correction, &t.OtherCharges,
			); err != nil {
				return fmt.Errorf("loader: scan title: %w", err)
			}
			if issue != nil {
				t.IssueDate = *issue
			}
			if title.Side(side) == title.SideReceivable {
				t.Side = title.SideReceivable
			} else {
				t.Side = title.SidePayable
			}
			titles = append(titles, t)
		}
		if err := rows.Err(); err != nil {
			return describePGError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return titles, nil
}

func describePGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("loader: query titles (%s): %w", pgErr.Code, err)
	}
	return fmt.Errorf("loader: query titles: %w", err)
}
