package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expensetracker/internal/core"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("expense not found")

// Repository is the storage gateway for expense records.
type Repository interface {
	// Save inserts e when its ID is zero, otherwise upserts by ID.
	Save(ctx context.Context, e core.Expense) (core.Expense, error)
	// FindByID returns ErrNotFound when no record has the given id.
	FindByID(ctx context.Context, id int64) (core.Expense, error)
	// Delete removes the record; deleting a missing id is a no-op.
	Delete(ctx context.Context, id int64) error
	// FindAll returns every record ordered by a single field, id breaking ties.
	FindAll(ctx context.Context, key core.SortKey, order core.SortOrder) ([]core.Expense, error)
	FindByCategory(ctx context.Context, c core.Category) ([]core.Expense, error)
	FindByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error)
	SumByCategory(ctx context.Context) ([]core.CategoryTotal, error)
	// SumByMonth returns one row per month of year that has records, ascending.
	SumByMonth(ctx context.Context, year int) ([]core.MonthTotal, error)
	Ping(ctx context.Context) error
	Close() error
}

// SQLRepository implements Repository on database/sql for SQLite and Postgres.
type SQLRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ Repository = (*SQLRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the SQLite database at dbPath
// and applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunSQLiteMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, queries: New(db, sqliteDialect)}, nil
}

// NewPostgresRepository connects to Postgres at dsn and applies pending migrations.
func NewPostgresRepository(dsn string) (*SQLRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunPostgresMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, queries: New(db, postgresDialect)}, nil
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) Save(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	var (
		row ExpenseRow
		err error
	)
	if e.ID == 0 {
		row, err = r.queries.CreateExpense(ctx, CreateExpenseParams{
			AmountCents: e.Amount.Cents(),
			Category:    e.Category.String(),
			Date:        e.Date.Time,
			Description: e.Description,
		})
	} else {
		row, err = r.queries.UpsertExpense(ctx, UpsertExpenseParams{
			ID:          e.ID,
			AmountCents: e.Amount.Cents(),
			Category:    e.Category.String(),
			Date:        e.Date.Time,
			Description: e.Description,
		})
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	saved, err := toCore(row)
	if err != nil {
		return core.Expense{}, err
	}

	slog.DebugContext(ctx, "Expense saved",
		"id", saved.ID,
		"amount_cents", row.AmountCents,
		"category", row.Category,
		"date", saved.Date.String(),
		"backend", r.queries.dialect.name)

	return saved, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id int64) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return toCore(row)
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	if err := r.queries.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

func (r *SQLRepository) FindAll(ctx context.Context, key core.SortKey, order core.SortOrder) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx, orderByClause(key, order))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return toCoreSlice(rows)
}

func (r *SQLRepository) FindByCategory(ctx context.Context, c core.Category) ([]core.Expense, error) {
	rows, err := r.queries.ListExpensesByCategory(ctx, c.String())
	if err != nil {
		return nil, fmt.Errorf("list expenses by category: %w", err)
	}
	return toCoreSlice(rows)
}

func (r *SQLRepository) FindByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	rows, err := r.queries.ListExpensesByDateRange(ctx, start.Time, end.Time)
	if err != nil {
		return nil, fmt.Errorf("list expenses by date range: %w", err)
	}
	return toCoreSlice(rows)
}

func (r *SQLRepository) SumByCategory(ctx context.Context) ([]core.CategoryTotal, error) {
	sums, err := r.queries.GetCategorySums(ctx)
	if err != nil {
		return nil, fmt.Errorf("get category sums: %w", err)
	}
	out := make([]core.CategoryTotal, 0, len(sums))
	for _, s := range sums {
		c, err := core.ParseCategory(s.Category)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unknown category in storage", "category", s.Category)
			continue
		}
		out = append(out, core.CategoryTotal{Category: c, Total: core.MoneyFromCents(s.TotalAmount)})
	}
	return out, nil
}

func (r *SQLRepository) SumByMonth(ctx context.Context, year int) ([]core.MonthTotal, error) {
	sums, err := r.queries.GetMonthSums(ctx, int64(year))
	if err != nil {
		return nil, fmt.Errorf("get month sums (year=%d): %w", year, err)
	}
	out := make([]core.MonthTotal, 0, len(sums))
	for _, s := range sums {
		out = append(out, core.MonthTotal{Month: time.Month(s.Month), Total: core.MoneyFromCents(s.TotalAmount)})
	}
	return out, nil
}

// orderByClause maps a validated sort key to a column. Category falls back to
// date because the nominal category order is applied in memory.
func orderByClause(key core.SortKey, order core.SortOrder) string {
	column := "date"
	if key == core.SortByAmount {
		column = "amount_cents"
	}
	dir := "ASC"
	if order == core.Descending {
		dir = "DESC"
	}
	return strings.Join([]string{column + " " + dir, "id ASC"}, ", ")
}

func toCore(row ExpenseRow) (core.Expense, error) {
	c, err := core.ParseCategory(row.Category)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d: %w", row.ID, err)
	}
	return core.Expense{
		ID:          row.ID,
		Amount:      core.MoneyFromCents(row.AmountCents),
		Category:    c,
		Date:        core.Date{Time: row.Date},
		Description: row.Description,
	}, nil
}

func toCoreSlice(rows []ExpenseRow) ([]core.Expense, error) {
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := toCore(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
