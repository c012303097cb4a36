package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"expensetracker/internal/core"
	"expensetracker/internal/log"

	_ "modernc.org/sqlite"
)

const expenseColumns = `id, title, amount, category, date, description`

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// migrates it to the latest schema.
func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (title, amount, category, date, description) VALUES (?, ?, ?, ?, ?)`,
		e.Title, e.Amount.String(), string(e.Category), e.Date.String(), e.Description)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("read inserted id: %w", err)
	}
	e.ID = id

	r.logger.InfoContext(ctx, "Expense saved to SQLite",
		log.FieldExpenseID, id,
		log.FieldTitle, e.Title,
		log.FieldAmount, e.Amount.String())
	return e, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	out := []core.Expense{}
	for rows.Next() {
		e, err := scanSQLiteExpense(rows)
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

func (r *SQLiteRepository) Update(ctx context.Context, id int64, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		    SET title = ?, amount = ?, category = ?, date = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		  WHERE id = ?`,
		e.Title, e.Amount.String(), string(e.Category), e.Date.String(), e.Description, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}
	if n == 0 {
		return core.Expense{}, ErrNotFound
	}
	e.ID = id
	return e, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	r.logger.InfoContext(ctx, "Expense deleted from SQLite", log.FieldExpenseID, id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteExpense(s scanner) (core.Expense, error) {
	var (
		e        core.Expense
		amount   string
		category string
		date     string
	)
	if err := s.Scan(&e.ID, &e.Title, &amount, &category, &date, &e.Description); err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	m, err := core.ParseAmount(amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d amount %q: %w", e.ID, amount, err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d date %q: %w", e.ID, date, err)
	}
	e.Amount = m
	e.Category = core.Category(category)
	e.Date = d
	return e, nil
}
