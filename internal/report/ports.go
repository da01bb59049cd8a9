package report

import (
	"context"
	"time"

	"finlog/internal/core"
)

// Ports for the pipeline's collaborators. Every dependency is injected
// so tests can substitute fakes; nothing here is a package-level
// singleton.
type (
	// TransactionSource provides the owner's transactions for a date
	// range, both bounds inclusive (see NormalizeRange).
	TransactionSource interface {
		FindTransactions(ctx context.Context, ownerID string, start, end time.Time) ([]core.Transaction, error)
	}

	// ChartRenderer produces the pie and bar images for a summary. It
	// returns whatever it managed to render; a non-nil error wraps
	// ErrChartRender and the caller degrades to the partial set rather
	// than failing the report.
	ChartRenderer interface {
		Render(ctx context.Context, summary core.Summary) (ChartSet, error)
	}

	// Composer lays out the fixed-size PDF page and returns the
	// finalized byte buffer. It performs no storage I/O.
	Composer interface {
		Compose(ctx context.Context, in ComposeInput) ([]byte, error)
	}

	// ArtifactStore is a byte sink/source keyed by a location string.
	ArtifactStore interface {
		Write(ctx context.Context, location string, data []byte) (int64, error)
		Read(ctx context.Context, location string) ([]byte, error)
		Exists(ctx context.Context, location string) (bool, error)
		Remove(ctx context.Context, location string) error
	}

	// MetadataStore persists and queries report metadata records.
	MetadataStore interface {
		CreateReport(ctx context.Context, m Metadata) (Metadata, error)
		GetReport(ctx context.Context, id string) (Metadata, error)
		ListReports(ctx context.Context, ownerID string) ([]Metadata, error)
	}

	// EventPublisher announces a successfully persisted report, e.g. so
	// a worker can mail the owner. Failures are logged, never fatal.
	EventPublisher interface {
		PublishReportGenerated(ctx context.Context, reportID, ownerID string) error
	}
)
