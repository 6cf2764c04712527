// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/invoice-dashboard/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dateLayout = "2006-01-02"

var (
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvoiceNotFound возвращается, если счёт не найден.
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}

// GetUserByEmail возвращает пользователя по адресу электронной почты.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id::text, name, email, password FROM users WHERE email = $1`,
		email,
	)

	return scanUser(row)
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		hash string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.PasswordHash = []byte(hash)

	return &u, nil
}

// InsertInvoice сохраняет новый счёт. Идентификатор генерирует БД.
func (r *PostgresRepository) InsertInvoice(ctx context.Context, customerID string, amountCents int64, status model.InvoiceStatus, date string) error {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return fmt.Errorf("parse invoice date: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO invoices (customer_id, amount, status, date) VALUES ($1, $2, $3, $4)`,
		customerID, amountCents, string(status), d,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// UpdateInvoice изменяет клиента, сумму и статус счёта. Идентификатор и дата не меняются.
func (r *PostgresRepository) UpdateInvoice(ctx context.Context, id, customerID string, amountCents int64, status model.InvoiceStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE invoices SET customer_id = $2, amount = $3, status = $4 WHERE id = $1`,
		id, customerID, amountCents, string(status),
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// DeleteInvoice удаляет счёт. Отсутствие строки ошибкой не является.
func (r *PostgresRepository) DeleteInvoice(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// GetInvoice возвращает счёт по идентификатору.
func (r *PostgresRepository) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id::text, customer_id::text, amount, status, to_char(date, 'YYYY-MM-DD')
		 FROM invoices
		 WHERE id = $1`,
		id,
	)

	return scanInvoice(row)
}

// scanInvoice читает счёт из строки. Отсутствие строки и идентификатор,
// который БД не смогла разобрать как uuid, означают ErrInvoiceNotFound.
func scanInvoice(row pgx.Row) (*model.Invoice, error) {
	var (
		inv    model.Invoice
		status string
	)
	err := row.Scan(&inv.ID, &inv.CustomerID, &inv.Amount, &status, &inv.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.Status = model.InvoiceStatus(status)

	return &inv, nil
}

const invoiceSearch = `
	customers.name ILIKE $1 OR
	customers.email ILIKE $1 OR
	invoices.amount::text ILIKE $1 OR
	invoices.date::text ILIKE $1 OR
	invoices.status ILIKE $1`

// ListInvoices возвращает страницу счетов, подходящих под поисковую строку, от новых к старым.
func (r *PostgresRepository) ListInvoices(ctx context.Context, query string, limit, offset int) ([]model.InvoiceView, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT invoices.id::text, invoices.amount, to_char(invoices.date, 'YYYY-MM-DD'), invoices.status,
		        customers.name, customers.email, customers.image_url
		 FROM invoices
		 JOIN customers ON invoices.customer_id = customers.id
		 WHERE`+invoiceSearch+`
		 ORDER BY invoices.date DESC
		 LIMIT $2 OFFSET $3`,
		"%"+query+"%", limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("select invoices: %w", err)
	}
	defer rows.Close()

	res := make([]model.InvoiceView, 0, limit)
	for rows.Next() {
		var (
			v      model.InvoiceView
			status string
		)
		if err := rows.Scan(&v.ID, &v.Amount, &v.Date, &status, &v.Name, &v.Email, &v.ImageURL); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		v.Status = model.InvoiceStatus(status)
		res = append(res, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// CountInvoices возвращает количество счетов, подходящих под поисковую строку.
func (r *PostgresRepository) CountInvoices(ctx context.Context, query string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM invoices
		 JOIN customers ON invoices.customer_id = customers.id
		 WHERE`+invoiceSearch,
		"%"+query+"%",
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

// ListCustomers возвращает всех клиентов, упорядоченных по имени.
func (r *PostgresRepository) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, name, email, image_url FROM customers ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	var res []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		res = append(res, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// Summary возвращает сводку по счетам и клиентам.
func (r *PostgresRepository) Summary(ctx context.Context) (*model.Summary, error) {
	var s model.Summary

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&s.Invoices)
	if err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}

	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&s.Customers)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(CASE WHEN status = $1 THEN amount ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = $2 THEN amount ELSE 0 END), 0)
		 FROM invoices`,
		string(model.InvoiceStatusPaid), string(model.InvoiceStatusPending),
	).Scan(&s.PaidTotal, &s.PendingTotal)
	if err != nil {
		return nil, fmt.Errorf("sum invoices: %w", err)
	}

	return &s, nil
}
