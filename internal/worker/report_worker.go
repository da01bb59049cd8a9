// Package worker runs the scheduled monthly batch and delivers report
// emails triggered by queue events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"finlog/internal/amqp"
	"finlog/internal/core"
	"finlog/internal/insight"
	"finlog/internal/log"
	"finlog/internal/mail"
	"finlog/internal/report"
	"finlog/internal/storage"
)

// Generator is the slice of the report service the worker needs.
type Generator interface {
	GenerateMonthly(ctx context.Context, ownerID string) (report.Metadata, error)
	Fetch(ctx context.Context, reportID, ownerID string) (report.Metadata, []byte, error)
}

// UserDirectory resolves report owners to deliverable email addresses.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]storage.User, error)
	GetUser(ctx context.Context, id string) (storage.User, error)
}

// ReportWorker generates and delivers monthly reports. The commentator
// is optional; delivery never blocks on it.
type ReportWorker struct {
	reports     Generator
	users       UserDirectory
	txs         report.TransactionSource
	mailer      mail.Sender
	commentator insight.Commentator
	logger      *log.Logger
	concurrency int
	now         func() time.Time
}

func NewReportWorker(
	reports Generator,
	users UserDirectory,
	txs report.TransactionSource,
	mailer mail.Sender,
	commentator insight.Commentator,
	logger *log.Logger,
	concurrency int,
) *ReportWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ReportWorker{
		reports:     reports,
		users:       users,
		txs:         txs,
		mailer:      mailer,
		commentator: commentator,
		logger:      logger.WithComponent(log.ComponentWorker),
		concurrency: concurrency,
		now:         time.Now,
	}
}

// RunMonthlyBatch generates the previous-month PDF for every registered
// user and emails it. Users are processed concurrently but isolated: a
// failure for one user is logged and never aborts the rest. Users with
// no transactions in the window are skipped.
func (w *ReportWorker) RunMonthlyBatch(ctx context.Context) error {
	users, err := w.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		w.logger.InfoContext(ctx, "Monthly batch found no users")
		return nil
	}

	w.logger.InfoContext(ctx, "Starting monthly batch",
		log.FieldOperation, log.OpBatch,
		"users", len(users))

	var generated, skipped, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, u := range users {
		u := u
		g.Go(func() error {
			switch err := w.processUser(gctx, u); {
			case errors.Is(err, report.ErrNoData):
				skipped.Add(1)
				w.logger.InfoContext(gctx, "No transactions, skipping user",
					log.FieldOwnerID, u.ID)
			case err != nil:
				failed.Add(1)
				w.logger.ErrorContext(gctx, "Monthly report failed for user",
					log.FieldOwnerID, u.ID,
					log.FieldError, err)
			default:
				generated.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	w.logger.InfoContext(ctx, "Monthly batch completed",
		log.FieldOperation, log.OpBatch,
		"generated", generated.Load(),
		"skipped", skipped.Load(),
		"failed", failed.Load())
	return nil
}

func (w *ReportWorker) processUser(ctx context.Context, u storage.User) error {
	m, err := w.reports.GenerateMonthly(ctx, u.ID)
	if err != nil {
		return err
	}

	_, artifact, err := w.reports.Fetch(ctx, m.ID, u.ID)
	if err != nil {
		return fmt.Errorf("fetch artifact: %w", err)
	}

	comment := w.monthlyComment(ctx, u.ID)
	if err := w.mailer.SendReport(ctx, u.Email, u.Name, m, artifact, comment); err != nil {
		return fmt.Errorf("send report mail: %w", err)
	}

	w.logger.InfoContext(ctx, "Monthly report delivered",
		log.FieldOwnerID, u.ID,
		log.FieldReportID, m.ID)
	return nil
}

// monthlyComment builds the email commentary for the batch window. Any
// failure falls back to the canned line; the mail still goes out.
func (w *ReportWorker) monthlyComment(ctx context.Context, ownerID string) string {
	start, end := report.NormalizeRange(report.MonthlyRange(w.now()))
	txs, err := w.txs.FindTransactions(ctx, ownerID, start, end)
	if err != nil || len(txs) == 0 {
		return insight.FallbackComment(core.Summary{})
	}
	summary, err := core.Aggregate(txs)
	if err != nil {
		return insight.FallbackComment(core.Summary{})
	}

	if w.commentator == nil {
		return insight.FallbackComment(summary)
	}
	comment, err := w.commentator.MonthlyComment(ctx, summary, report.PeriodLabel(start, end))
	if err != nil {
		w.logger.WarnContext(ctx, "Commentary unavailable, using fallback",
			log.FieldOwnerID, ownerID,
			log.FieldError, err)
		return insight.FallbackComment(summary)
	}
	return comment
}

// HandleReportGenerated delivers a queue-announced report to its owner.
// Used as the AMQP consumer handler; a returned error requeues the
// message.
func (w *ReportWorker) HandleReportGenerated(ctx context.Context, msg *amqp.ReportGeneratedMessage) error {
	u, err := w.users.GetUser(ctx, msg.OwnerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			w.logger.WarnContext(ctx, "Report owner has no registered email, dropping event",
				log.FieldOwnerID, msg.OwnerID,
				log.FieldReportID, msg.ReportID)
			return nil
		}
		return fmt.Errorf("resolve owner: %w", err)
	}

	m, artifact, err := w.reports.Fetch(ctx, msg.ReportID, msg.OwnerID)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) || errors.Is(err, report.ErrArtifactMissing) {
			w.logger.WarnContext(ctx, "Announced report no longer available, dropping event",
				log.FieldReportID, msg.ReportID,
				log.FieldError, err)
			return nil
		}
		return fmt.Errorf("fetch report: %w", err)
	}

	comment := "Your requested report is attached."
	if err := w.mailer.SendReport(ctx, u.Email, u.Name, m, artifact, comment); err != nil {
		return fmt.Errorf("send report mail: %w", err)
	}

	w.logger.InfoContext(ctx, "Report delivered",
		log.FieldOwnerID, msg.OwnerID,
		log.FieldReportID, msg.ReportID)
	return nil
}
