package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finlog/internal/core"
	"finlog/internal/report"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedTx(t *testing.T, repo *SQLiteRepository, owner string, day int, cents int64, cat core.Category, typ core.TxType) core.Transaction {
	t.Helper()
	tx, err := repo.CreateTransaction(context.Background(), core.Transaction{
		OwnerID:     owner,
		Amount:      core.Money{Cents: cents},
		Date:        time.Date(2025, 1, day, 12, 0, 0, 0, time.UTC),
		Description: "seeded",
		Category:    cat,
		Type:        typ,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return tx
}

func TestTransactionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := seedTx(t, repo, "u1", 5, 50000, core.CategoryFood, core.Expense)
	if created.ID == 0 {
		t.Fatal("created transaction has no id")
	}

	listed, err := repo.ListTransactions(ctx, "u1")
	if err != nil || len(listed) != 1 {
		t.Fatalf("ListTransactions = %v, %v", listed, err)
	}
	got := listed[0]
	if got.Amount.Cents != 50000 || got.Category != core.CategoryFood || got.Type != core.Expense {
		t.Errorf("round-tripped transaction mismatch: %+v", got)
	}
	if !got.Date.Equal(created.Date) {
		t.Errorf("date mismatch: %v vs %v", got.Date, created.Date)
	}

	// Owner scoping on delete
	if err := repo.DeleteTransaction(ctx, "u2", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-owner delete = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, "u1", created.ID); err != nil {
		t.Errorf("owner delete: %v", err)
	}
}

func TestFindTransactionsRangeInclusive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedTx(t, repo, "u1", 1, 100, core.CategoryFood, core.Expense)
	seedTx(t, repo, "u1", 15, 200, core.CategoryBills, core.Expense)
	seedTx(t, repo, "u1", 31, 300, "", core.Income)
	seedTx(t, repo, "other", 15, 999, core.CategoryFood, core.Expense)

	start, end := report.NormalizeRange(
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))

	found, err := repo.FindTransactions(ctx, "u1", start, end)
	if err != nil {
		t.Fatalf("FindTransactions: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("got %d transactions, want 2 (end-of-day inclusive)", len(found))
	}
	// ascending date order
	if found[0].Amount.Cents != 200 || found[1].Amount.Cents != 300 {
		t.Errorf("wrong order or filtering: %+v", found)
	}
}

func TestReportMetadataLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.CreateReport(ctx, report.Metadata{
		OwnerID:         "u1",
		PeriodLabel:     "01 Jan 2025 → 31 Jan 2025",
		Format:          report.FormatPDF,
		StorageLocation: "report-u1-1.pdf",
		SizeBytes:       1234,
		GeneratedAt:     time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if first.ID == "" {
		t.Fatal("CreateReport did not assign an id")
	}

	second, err := repo.CreateReport(ctx, report.Metadata{
		OwnerID:         "u1",
		PeriodLabel:     "01 Feb 2025 → 28 Feb 2025",
		Format:          report.FormatCSV,
		StorageLocation: "report-u1-2.csv",
		SizeBytes:       99,
		GeneratedAt:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateReport second: %v", err)
	}

	got, err := repo.GetReport(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Format != report.FormatPDF || got.SizeBytes != 1234 || got.OwnerID != "u1" {
		t.Errorf("GetReport mismatch: %+v", got)
	}

	history, err := repo.ListReports(ctx, "u1")
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	// newest first
	if history[0].ID != second.ID {
		t.Errorf("history not ordered by recency: %+v", history)
	}

	if _, err := repo.GetReport(ctx, "does-not-exist"); !errors.Is(err, report.ErrNotFound) {
		t.Errorf("GetReport missing = %v, want report.ErrNotFound", err)
	}

	if other, err := repo.ListReports(ctx, "u2"); err != nil || len(other) != 0 {
		t.Errorf("foreign owner history = %v, %v; want empty", other, err)
	}
}

func TestUserRegistry(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertUser(ctx, User{ID: "u1", Email: "one@example.com", Name: "One"}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if err := repo.UpsertUser(ctx, User{ID: "u1", Email: "one+new@example.com", Name: "One"}); err != nil {
		t.Fatalf("UpsertUser update: %v", err)
	}
	if err := repo.UpsertUser(ctx, User{ID: "u2", Email: "two@example.com"}); err != nil {
		t.Fatalf("UpsertUser second: %v", err)
	}
	if err := repo.UpsertUser(ctx, User{ID: "", Email: "x@example.com"}); err == nil {
		t.Error("UpsertUser without id should fail")
	}

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].Email != "one+new@example.com" {
		t.Errorf("upsert did not update email: %+v", users[0])
	}
}
