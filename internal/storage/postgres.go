package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// Amounts are NUMERIC in Postgres and cross the driver as text so no float
// conversion happens on the way in or out.
const pgSelectExpense = `SELECT id, title, amount::text, category, date, description FROM expenses`

type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgresRepository migrates the schema and opens a connection pool.
func NewPostgresRepository(ctx context.Context, databaseURL string, logger *log.Logger) (*PostgresRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}

	if err := RunPostgresMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresRepository{
		pool:   pool,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *PostgresRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO expenses (title, amount, category, date, description)
		 VALUES ($1, $2::numeric, $3, $4::date, $5)
		 RETURNING id`,
		e.Title, e.Amount.String(), string(e.Category), e.Date.String(), e.Description,
	).Scan(&e.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	r.logger.InfoContext(ctx, "Expense saved to Postgres",
		log.FieldExpenseID, e.ID,
		log.FieldTitle, e.Title,
		log.FieldAmount, e.Amount.String())
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.pool.Query(ctx, pgSelectExpense+` ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	out := []core.Expense{}
	for rows.Next() {
		e, err := scanPgExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, e core.Expense) (core.Expense, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE expenses
		    SET title = $1, amount = $2::numeric, category = $3, date = $4::date, description = $5, updated_at = now()
		  WHERE id = $6`,
		e.Title, e.Amount.String(), string(e.Category), e.Date.String(), e.Description, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return core.Expense{}, ErrNotFound
	}
	e.ID = id
	return e, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	r.logger.InfoContext(ctx, "Expense deleted from Postgres", log.FieldExpenseID, id)
	return nil
}

func scanPgExpense(row pgx.Row) (core.Expense, error) {
	var (
		e        core.Expense
		amount   string
		category string
		date     time.Time
	)
	if err := row.Scan(&e.ID, &e.Title, &amount, &category, &date, &e.Description); err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	m, err := core.ParseAmount(amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d amount %q: %w", e.ID, amount, err)
	}
	e.Amount = m
	e.Category = core.Category(category)
	e.Date = core.DateOf(date)
	return e, nil
}
