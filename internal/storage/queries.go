package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// dialect captures the few places where SQLite and Postgres disagree.
type dialect struct {
	name         string
	monthExpr    string
	yearExpr     string
	numberedArgs bool
}

var (
	sqliteDialect = dialect{
		name:      "sqlite",
		monthExpr: "CAST(strftime('%m', date) AS INTEGER)",
		yearExpr:  "CAST(strftime('%Y', date) AS INTEGER)",
	}
	postgresDialect = dialect{
		name:         "postgres",
		monthExpr:    "CAST(EXTRACT(MONTH FROM date) AS INTEGER)",
		yearExpr:     "CAST(EXTRACT(YEAR FROM date) AS INTEGER)",
		numberedArgs: true,
	}
)

// rebind rewrites ? placeholders to $1..$n for dialects that need it.
func (d dialect) rebind(query string) string {
	if !d.numberedArgs {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type Queries struct {
	db      DBTX
	dialect dialect
}

func New(db DBTX, d dialect) *Queries {
	return &Queries{db: db, dialect: d}
}

// ExpenseRow mirrors a row of the expenses table.
type ExpenseRow struct {
	ID          int64
	AmountCents int64
	Category    string
	Date        time.Time
	Description string
}

type CategorySumRow struct {
	Category    string
	TotalAmount int64
}

type MonthSumRow struct {
	Month       int64
	TotalAmount int64
}

const expenseColumns = `id, amount_cents, category, date, description`

// dateValue scans a DATE column that SQLite returns as text and Postgres as time.Time.
type dateValue struct {
	t time.Time
}

func (d *dateValue) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.t = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("unsupported date type %T", src)
	}
}

func (d *dateValue) parse(s string) error {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.t = t
	return nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (ExpenseRow, error) {
	var (
		e ExpenseRow
		d dateValue
	)
	if err := row.Scan(&e.ID, &e.AmountCents, &e.Category, &d, &e.Description); err != nil {
		return ExpenseRow{}, err
	}
	e.Date = d.t
	return e, nil
}

func (q *Queries) scanExpenses(rows *sql.Rows) ([]ExpenseRow, error) {
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type CreateExpenseParams struct {
	AmountCents int64
	Category    string
	Date        time.Time
	Description string
}

const createExpense = `INSERT INTO expenses (amount_cents, category, date, description)
VALUES (?, ?, ?, ?)
RETURNING ` + expenseColumns

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (ExpenseRow, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.rebind(createExpense),
		arg.AmountCents, arg.Category, formatDate(arg.Date), arg.Description)
	return scanExpense(row)
}

type UpsertExpenseParams struct {
	ID          int64
	AmountCents int64
	Category    string
	Date        time.Time
	Description string
}

const upsertExpense = `INSERT INTO expenses (id, amount_cents, category, date, description)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    amount_cents = excluded.amount_cents,
    category     = excluded.category,
    date         = excluded.date,
    description  = excluded.description,
    updated_at   = CURRENT_TIMESTAMP
RETURNING ` + expenseColumns

func (q *Queries) UpsertExpense(ctx context.Context, arg UpsertExpenseParams) (ExpenseRow, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.rebind(upsertExpense),
		arg.ID, arg.AmountCents, arg.Category, formatDate(arg.Date), arg.Description)
	return scanExpense(row)
}

const getExpense = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (ExpenseRow, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.rebind(getExpense), id)
	return scanExpense(row)
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, q.dialect.rebind(deleteExpense), id)
	return err
}

// ListExpenses returns every row ordered by orderBy, which must be a trusted
// ORDER BY clause built by the caller.
func (q *Queries) ListExpenses(ctx context.Context, orderBy string) ([]ExpenseRow, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses ORDER BY ` + orderBy
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return q.scanExpenses(rows)
}

const listExpensesByCategory = `SELECT ` + expenseColumns + ` FROM expenses
WHERE category = ?
ORDER BY date, id`

func (q *Queries) ListExpensesByCategory(ctx context.Context, category string) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, q.dialect.rebind(listExpensesByCategory), category)
	if err != nil {
		return nil, err
	}
	return q.scanExpenses(rows)
}

const listExpensesByDateRange = `SELECT ` + expenseColumns + ` FROM expenses
WHERE date >= ? AND date <= ?
ORDER BY date, id`

func (q *Queries) ListExpensesByDateRange(ctx context.Context, start, end time.Time) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, q.dialect.rebind(listExpensesByDateRange), formatDate(start), formatDate(end))
	if err != nil {
		return nil, err
	}
	return q.scanExpenses(rows)
}

const getCategorySums = `SELECT category, SUM(amount_cents) AS total_amount
FROM expenses
GROUP BY category`

func (q *Queries) GetCategorySums(ctx context.Context) ([]CategorySumRow, error) {
	rows, err := q.db.QueryContext(ctx, getCategorySums)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategorySumRow
	for rows.Next() {
		var i CategorySumRow
		if err := rows.Scan(&i.Category, &i.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) GetMonthSums(ctx context.Context, year int64) ([]MonthSumRow, error) {
	query := q.dialect.rebind(`SELECT ` + q.dialect.monthExpr + ` AS month, SUM(amount_cents) AS total_amount
FROM expenses
WHERE ` + q.dialect.yearExpr + ` = ?
GROUP BY month
ORDER BY month`)
	rows, err := q.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthSumRow
	for rows.Next() {
		var i MonthSumRow
		if err := rows.Scan(&i.Month, &i.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
