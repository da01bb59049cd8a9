package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"finlog/internal/core"
	"finlog/internal/log"
	"finlog/internal/report/export"
)

// Service runs the report pipeline: fetch, aggregate, render, compose or
// export, then persist. Every collaborator is injected; events may be
// nil when no broker is configured.
type Service struct {
	txs       TransactionSource
	charts    ChartRenderer
	composer  Composer
	artifacts ArtifactStore
	meta      MetadataStore
	events    EventPublisher
	logger    *log.Logger
	now       func() time.Time
}

func NewService(
	txs TransactionSource,
	charts ChartRenderer,
	composer Composer,
	artifacts ArtifactStore,
	meta MetadataStore,
	events EventPublisher,
	logger *log.Logger,
) *Service {
	return &Service{
		txs:       txs,
		charts:    charts,
		composer:  composer,
		artifacts: artifacts,
		meta:      meta,
		events:    events,
		logger:    logger.WithComponent(log.ComponentReport),
		now:       time.Now,
	}
}

// Generate runs one full pipeline pass for an owner and date range and
// returns the persisted metadata. The precondition check (non-empty
// transaction set) happens before any generation work; fatal errors
// leave no artifact and no metadata behind.
func (s *Service) Generate(ctx context.Context, ownerID string, start, end time.Time, format Format) (Metadata, error) {
	format, err := ParseFormat(string(format))
	if err != nil {
		return Metadata{}, err
	}
	start, end = NormalizeRange(start, end)

	txs, err := s.txs.FindTransactions(ctx, ownerID, start, end)
	if err != nil {
		return Metadata{}, fmt.Errorf("find transactions: %w", err)
	}
	if len(txs) == 0 {
		return Metadata{}, ErrNoData
	}

	summary, err := core.Aggregate(txs)
	if err != nil {
		return Metadata{}, fmt.Errorf("aggregate transactions: %w", err)
	}

	s.logger.InfoContext(ctx, "Generating report",
		log.FieldOwnerID, ownerID,
		log.FieldFormat, string(format),
		log.FieldPeriod, PeriodLabel(start, end),
		log.FieldTxCount, len(txs))

	var artifact []byte
	switch format {
	case FormatPDF:
		// Chart failures degrade to a chart-less document, never abort.
		charts, chartErr := s.charts.Render(ctx, summary)
		if chartErr != nil {
			s.logger.WarnContext(ctx, "Chart rendering degraded",
				log.FieldOwnerID, ownerID,
				log.FieldError, chartErr)
		}
		artifact, err = s.composer.Compose(ctx, ComposeInput{
			OwnerID:      ownerID,
			Transactions: txs,
			Summary:      summary,
			Charts:       charts,
			PeriodStart:  start,
			PeriodEnd:    end,
		})
		if err != nil {
			return Metadata{}, fmt.Errorf("compose document: %w", err)
		}
	case FormatCSV:
		if artifact, err = export.CSV(txs); err != nil {
			return Metadata{}, fmt.Errorf("export csv: %w", err)
		}
	case FormatJSON:
		if artifact, err = export.JSON(txs); err != nil {
			return Metadata{}, fmt.Errorf("export json: %w", err)
		}
	}

	m, err := s.persist(ctx, ownerID, artifact, format, PeriodLabel(start, end))
	if err != nil {
		return Metadata{}, err
	}

	if s.events != nil {
		if err := s.events.PublishReportGenerated(ctx, m.ID, m.OwnerID); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish report event",
				log.FieldReportID, m.ID,
				log.FieldError, err)
		}
	}

	return m, nil
}

// GenerateMonthly produces the previous-month PDF used by the scheduled
// batch: first day of the previous month through now.
func (s *Service) GenerateMonthly(ctx context.Context, ownerID string) (Metadata, error) {
	start, end := MonthlyRange(s.now())
	return s.Generate(ctx, ownerID, start, end, FormatPDF)
}

// persist writes the artifact first and the metadata record only after
// the write is confirmed, so no record can ever point at a missing or
// corrupt file. A failed metadata insert removes the orphaned artifact.
func (s *Service) persist(ctx context.Context, ownerID string, artifact []byte, format Format, periodLabel string) (Metadata, error) {
	location := fmt.Sprintf("report-%s-%d.%s", ownerID, s.now().UnixMilli(), format.Ext())

	size, err := s.artifacts.Write(ctx, location, artifact)
	if err != nil {
		if errors.Is(err, ErrStorageWrite) {
			return Metadata{}, err
		}
		return Metadata{}, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	m, err := s.meta.CreateReport(ctx, Metadata{
		OwnerID:         ownerID,
		PeriodLabel:     periodLabel,
		Format:          format,
		StorageLocation: location,
		SizeBytes:       size,
		GeneratedAt:     s.now().UTC(),
	})
	if err != nil {
		if rmErr := s.artifacts.Remove(ctx, location); rmErr != nil {
			s.logger.ErrorContext(ctx, "Failed to remove orphaned artifact",
				log.FieldLocation, location,
				log.FieldError, rmErr)
		}
		return Metadata{}, fmt.Errorf("create report metadata: %w", err)
	}

	s.logger.InfoContext(ctx, "Report persisted",
		log.FieldReportID, m.ID,
		log.FieldOwnerID, ownerID,
		log.FieldLocation, location,
		log.FieldSizeBytes, size)

	return m, nil
}

// History returns the owner's report metadata, newest first.
func (s *Service) History(ctx context.Context, ownerID string) ([]Metadata, error) {
	return s.meta.ListReports(ctx, ownerID)
}

// Download returns the artifact bytes and a suggested filename after
// verifying ownership and that the stored file still exists. The three
// failure modes stay distinct: ErrNotFound (no record), ErrForbidden
// (foreign owner), ErrArtifactMissing (record without file).
func (s *Service) Download(ctx context.Context, reportID, ownerID string) ([]byte, string, error) {
	m, err := s.meta.GetReport(ctx, reportID)
	if err != nil {
		return nil, "", err
	}
	if m.OwnerID != ownerID {
		return nil, "", ErrForbidden
	}

	exists, err := s.artifacts.Exists(ctx, m.StorageLocation)
	if err != nil {
		return nil, "", fmt.Errorf("check artifact: %w", err)
	}
	if !exists {
		return nil, "", ErrArtifactMissing
	}

	data, err := s.artifacts.Read(ctx, m.StorageLocation)
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Base(m.StorageLocation), nil
}

// Fetch returns metadata plus artifact bytes for internal consumers
// (e.g. the mail worker attaching a freshly generated report).
func (s *Service) Fetch(ctx context.Context, reportID, ownerID string) (Metadata, []byte, error) {
	m, err := s.meta.GetReport(ctx, reportID)
	if err != nil {
		return Metadata{}, nil, err
	}
	if m.OwnerID != ownerID {
		return Metadata{}, nil, ErrForbidden
	}
	data, err := s.artifacts.Read(ctx, m.StorageLocation)
	if err != nil {
		return Metadata{}, nil, err
	}
	return m, data, nil
}
