package report

import "errors"

// Error taxonomy for the report pipeline. Fatal errors abort the request
// before any metadata is written; ErrChartRender is recoverable and only
// degrades the document to a chart-less layout.
var (
	// ErrNoData: no transactions in the requested range. Nothing is
	// generated and no metadata row is created.
	ErrNoData = errors.New("no transactions found for this period")

	// ErrInvalidFormat: requested format is not pdf, csv or json.
	ErrInvalidFormat = errors.New("invalid report format requested")

	// ErrFontResourceMissing: the TTF needed for the currency glyph is
	// absent or unreadable. Fatal for PDF composition only.
	ErrFontResourceMissing = errors.New("font resource missing")

	// ErrChartRender: chart image rendering failed. Non-fatal; the
	// composer proceeds without the affected image.
	ErrChartRender = errors.New("chart rendering failed")

	// ErrNotFound: no metadata record for the requested report id.
	ErrNotFound = errors.New("report not found")

	// ErrForbidden: the metadata record exists but belongs to a
	// different owner.
	ErrForbidden = errors.New("report belongs to another owner")

	// ErrArtifactMissing: metadata exists but the stored file is gone.
	ErrArtifactMissing = errors.New("report file missing from storage")

	// ErrStorageWrite: persisting the composed artifact failed. The
	// in-memory artifact is discarded and no metadata is written.
	ErrStorageWrite = errors.New("failed to persist report artifact")
)
