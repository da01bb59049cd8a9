// Package storage persists transactions, users and report metadata in
// SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"finlog/internal/core"
	"finlog/internal/report"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist or belongs to a
// different owner.
var ErrNotFound = errors.New("record not found")

// User is a registered report recipient. Authentication lives upstream;
// this table only carries what the monthly batch needs.
type User struct {
	ID    string
	Email string
	Name  string
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction stores a validated transaction and returns it with
// the assigned id.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (owner_id, amount_cents, date_unix_nano, description, category, type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.Amount.Cents, t.Date.UTC().UnixNano(), t.Description, string(t.Category), string(t.Type))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"owner_id", t.OwnerID,
		"amount_cents", t.Amount.Cents,
		"category", string(t.Category),
		"type", string(t.Type))

	return t, nil
}

// FindTransactions implements report.TransactionSource: both bounds
// inclusive, results in ascending date order.
func (r *SQLiteRepository) FindTransactions(ctx context.Context, ownerID string, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, amount_cents, date_unix_nano, description, category, type
		FROM transactions
		WHERE owner_id = ? AND date_unix_nano BETWEEN ? AND ?
		ORDER BY date_unix_nano ASC, id ASC`,
		ownerID, start.UTC().UnixNano(), end.UTC().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListTransactions returns every transaction for an owner, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, amount_cents, date_unix_nano, description, category, type
		FROM transactions
		WHERE owner_id = ?
		ORDER BY date_unix_nano DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// DeleteTransaction removes one transaction, scoped to its owner.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			t        core.Transaction
			dateNano int64
			category string
			txType   string
		)
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Amount.Cents, &dateNano, &t.Description, &category, &txType); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date = time.Unix(0, dateNano).UTC()
		t.Category = core.Category(category)
		t.Type = core.TxType(txType)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// CreateReport implements report.MetadataStore. The record is written
// only after the artifact bytes are safely on disk; callers rely on
// that ordering.
func (r *SQLiteRepository) CreateReport(ctx context.Context, m report.Metadata) (report.Metadata, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.GeneratedAt.IsZero() {
		m.GeneratedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (id, owner_id, period, format, storage_location, size_bytes, generated_at_unix_nano)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.OwnerID, m.PeriodLabel, string(m.Format), m.StorageLocation, m.SizeBytes, m.GeneratedAt.UTC().UnixNano())
	if err != nil {
		return report.Metadata{}, fmt.Errorf("create report metadata: %w", err)
	}

	slog.InfoContext(ctx, "Report metadata saved",
		"report_id", m.ID,
		"owner_id", m.OwnerID,
		"format", string(m.Format),
		"size_bytes", m.SizeBytes)

	return m, nil
}

// GetReport returns the metadata record for id, mapping a missing row
// to report.ErrNotFound.
func (r *SQLiteRepository) GetReport(ctx context.Context, id string) (report.Metadata, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, period, format, storage_location, size_bytes, generated_at_unix_nano
		FROM reports WHERE id = ?`, id)
	m, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return report.Metadata{}, report.ErrNotFound
	}
	if err != nil {
		return report.Metadata{}, fmt.Errorf("get report: %w", err)
	}
	return m, nil
}

// ListReports returns an owner's report history, newest first.
func (r *SQLiteRepository) ListReports(ctx context.Context, ownerID string) ([]report.Metadata, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, period, format, storage_location, size_bytes, generated_at_unix_nano
		FROM reports
		WHERE owner_id = ?
		ORDER BY generated_at_unix_nano DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []report.Metadata
	for rows.Next() {
		m, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (report.Metadata, error) {
	var (
		m             report.Metadata
		format        string
		generatedNano int64
	)
	if err := row.Scan(&m.ID, &m.OwnerID, &m.PeriodLabel, &format, &m.StorageLocation, &m.SizeBytes, &generatedNano); err != nil {
		return report.Metadata{}, err
	}
	m.Format = report.Format(format)
	m.GeneratedAt = time.Unix(0, generatedNano).UTC()
	return m, nil
}

// UpsertUser registers or refreshes a report recipient.
func (r *SQLiteRepository) UpsertUser(ctx context.Context, u User) error {
	if u.ID == "" || u.Email == "" {
		return fmt.Errorf("user id and email are required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email, name = excluded.name`,
		u.ID, u.Email, u.Name)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser returns one user by id, ErrNotFound when unregistered.
func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, `SELECT id, email, name FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.Name)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListUsers returns every registered user, for the monthly batch.
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, email, name FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}
