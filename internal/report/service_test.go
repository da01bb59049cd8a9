package report

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"finlog/internal/core"
	"finlog/internal/log"
)

type fakeSource struct {
	txs       []core.Transaction
	err       error
	lastStart time.Time
	lastEnd   time.Time
	calls     int
}

func (f *fakeSource) FindTransactions(ctx context.Context, ownerID string, start, end time.Time) ([]core.Transaction, error) {
	f.calls++
	f.lastStart, f.lastEnd = start, end
	return f.txs, f.err
}

type fakeRenderer struct {
	set ChartSet
	err error
}

func (f *fakeRenderer) Render(ctx context.Context, summary core.Summary) (ChartSet, error) {
	return f.set, f.err
}

type fakeComposer struct {
	out   []byte
	err   error
	input ComposeInput
	calls int
}

func (f *fakeComposer) Compose(ctx context.Context, in ComposeInput) ([]byte, error) {
	f.calls++
	f.input = in
	return f.out, f.err
}

type memArtifacts struct {
	files     map[string][]byte
	failWrite bool
}

func newMemArtifacts() *memArtifacts { return &memArtifacts{files: map[string][]byte{}} }

func (m *memArtifacts) Write(ctx context.Context, location string, data []byte) (int64, error) {
	if m.failWrite {
		return 0, fmt.Errorf("%w: disk full", ErrStorageWrite)
	}
	m.files[location] = data
	return int64(len(data)), nil
}

func (m *memArtifacts) Read(ctx context.Context, location string) ([]byte, error) {
	b, ok := m.files[location]
	if !ok {
		return nil, ErrArtifactMissing
	}
	return b, nil
}

func (m *memArtifacts) Exists(ctx context.Context, location string) (bool, error) {
	_, ok := m.files[location]
	return ok, nil
}

func (m *memArtifacts) Remove(ctx context.Context, location string) error {
	delete(m.files, location)
	return nil
}

type memMeta struct {
	records    map[string]Metadata
	failCreate bool
	nextID     int
}

func newMemMeta() *memMeta { return &memMeta{records: map[string]Metadata{}} }

func (m *memMeta) CreateReport(ctx context.Context, md Metadata) (Metadata, error) {
	if m.failCreate {
		return Metadata{}, errors.New("metadata store down")
	}
	m.nextID++
	md.ID = fmt.Sprintf("r%d", m.nextID)
	m.records[md.ID] = md
	return md, nil
}

func (m *memMeta) GetReport(ctx context.Context, id string) (Metadata, error) {
	md, ok := m.records[id]
	if !ok {
		return Metadata{}, ErrNotFound
	}
	return md, nil
}

func (m *memMeta) ListReports(ctx context.Context, ownerID string) ([]Metadata, error) {
	var out []Metadata
	for _, md := range m.records {
		if md.OwnerID == ownerID {
			out = append(out, md)
		}
	}
	return out, nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishReportGenerated(ctx context.Context, reportID, ownerID string) error {
	f.published = append(f.published, reportID)
	return f.err
}

type fixture struct {
	source    *fakeSource
	renderer  *fakeRenderer
	composer  *fakeComposer
	artifacts *memArtifacts
	meta      *memMeta
	events    *fakePublisher
	svc       *Service
}

func newFixture(txs []core.Transaction) *fixture {
	f := &fixture{
		source:    &fakeSource{txs: txs},
		renderer:  &fakeRenderer{set: ChartSet{Pie: []byte("pie"), Bar: []byte("bar")}},
		composer:  &fakeComposer{out: []byte("%PDF-stub")},
		artifacts: newMemArtifacts(),
		meta:      newMemMeta(),
		events:    &fakePublisher{},
	}
	f.svc = NewService(f.source, f.renderer, f.composer, f.artifacts, f.meta, f.events, log.New(log.DefaultConfig()))
	f.svc.now = func() time.Time { return time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC) }
	return f
}

func someTxs() []core.Transaction {
	return []core.Transaction{
		{
			ID:          1,
			OwnerID:     "u1",
			Amount:      core.Money{Cents: 50000},
			Date:        time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			Description: "dinner",
			Category:    core.CategoryFood,
			Type:        core.Expense,
		},
		{
			ID:      2,
			OwnerID: "u1",
			Amount:  core.Money{Cents: 200000},
			Date:    time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			Type:    core.Income,
		},
	}
}

var jan = func() (time.Time, time.Time) {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
}

func TestGenerateNoData(t *testing.T) {
	f := newFixture(nil)
	start, end := jan()

	_, err := f.svc.Generate(context.Background(), "u1", start, end, FormatPDF)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("got %v, want ErrNoData", err)
	}
	if len(f.artifacts.files) != 0 || len(f.meta.records) != 0 {
		t.Error("no artifact or metadata may be created for an empty range")
	}
	if f.composer.calls != 0 {
		t.Error("composer must not run for an empty range")
	}
}

func TestGenerateInvalidFormat(t *testing.T) {
	f := newFixture(someTxs())
	start, end := jan()

	_, err := f.svc.Generate(context.Background(), "u1", start, end, "xml")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("got %v, want ErrInvalidFormat", err)
	}
	if f.source.calls != 0 {
		t.Error("format must be rejected before any work begins")
	}
}

func TestGeneratePDF(t *testing.T) {
	f := newFixture(someTxs())
	start, end := jan()

	m, err := f.svc.Generate(context.Background(), "u1", start, end, FormatPDF)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if m.Format != FormatPDF || m.OwnerID != "u1" {
		t.Errorf("metadata mismatch: %+v", m)
	}
	if m.PeriodLabel != "01 Jan 2025 → 31 Jan 2025" {
		t.Errorf("period label = %q", m.PeriodLabel)
	}
	if m.SizeBytes != int64(len(f.composer.out)) {
		t.Errorf("size = %d, want %d", m.SizeBytes, len(f.composer.out))
	}
	if _, ok := f.artifacts.files[m.StorageLocation]; !ok {
		t.Error("artifact not stored at the recorded location")
	}
	if len(f.composer.input.Charts.Pie) == 0 || len(f.composer.input.Charts.Bar) == 0 {
		t.Error("composer should have received the rendered charts")
	}
	if len(f.events.published) != 1 || f.events.published[0] != m.ID {
		t.Errorf("event not published: %v", f.events.published)
	}
	// The source must see the normalized end-of-day bound.
	if f.source.lastEnd.Hour() != 23 || f.source.lastEnd.Minute() != 59 {
		t.Errorf("end bound not normalized to end of day: %v", f.source.lastEnd)
	}
}

func TestGenerateChartFailureDegrades(t *testing.T) {
	f := newFixture(someTxs())
	f.renderer.set = ChartSet{}
	f.renderer.err = fmt.Errorf("%w: engine down", ErrChartRender)
	start, end := jan()

	m, err := f.svc.Generate(context.Background(), "u1", start, end, FormatPDF)
	if err != nil {
		t.Fatalf("chart failure must not fail the request: %v", err)
	}
	if f.composer.calls != 1 {
		t.Fatal("composer should still run")
	}
	if f.composer.input.Charts.Pie != nil || f.composer.input.Charts.Bar != nil {
		t.Error("composer should receive an empty chart set on render failure")
	}
	if _, ok := f.meta.records[m.ID]; !ok {
		t.Error("metadata should still be created")
	}
}

func TestGenerateComposerFailureIsFatal(t *testing.T) {
	f := newFixture(someTxs())
	f.composer.err = fmt.Errorf("%w: no ttf", ErrFontResourceMissing)
	start, end := jan()

	_, err := f.svc.Generate(context.Background(), "u1", start, end, FormatPDF)
	if !errors.Is(err, ErrFontResourceMissing) {
		t.Fatalf("got %v, want ErrFontResourceMissing", err)
	}
	if len(f.artifacts.files) != 0 || len(f.meta.records) != 0 {
		t.Error("fatal composition must leave no artifact and no metadata")
	}
}

func TestGenerateCSVAndJSON(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			f := newFixture(someTxs())
			start, end := jan()

			m, err := f.svc.Generate(context.Background(), "u1", start, end, format)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if f.composer.calls != 0 {
				t.Error("composer must not run for interchange formats")
			}
			data := f.artifacts.files[m.StorageLocation]
			if len(data) == 0 {
				t.Fatal("empty artifact")
			}
			if m.SizeBytes != int64(len(data)) {
				t.Errorf("size mismatch: %d vs %d", m.SizeBytes, len(data))
			}
		})
	}
}

func TestGenerateStorageWriteFailure(t *testing.T) {
	f := newFixture(someTxs())
	f.artifacts.failWrite = true
	start, end := jan()

	_, err := f.svc.Generate(context.Background(), "u1", start, end, FormatCSV)
	if !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("got %v, want ErrStorageWrite", err)
	}
	if len(f.meta.records) != 0 {
		t.Error("no metadata may be written when the artifact write fails")
	}
}

func TestGenerateMetadataFailureRemovesArtifact(t *testing.T) {
	f := newFixture(someTxs())
	f.meta.failCreate = true
	start, end := jan()

	_, err := f.svc.Generate(context.Background(), "u1", start, end, FormatCSV)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(f.artifacts.files) != 0 {
		t.Error("orphaned artifact should have been removed")
	}
}

func TestDownloadOutcomes(t *testing.T) {
	f := newFixture(someTxs())
	start, end := jan()
	m, err := f.svc.Generate(context.Background(), "u1", start, end, FormatCSV)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	t.Run("success", func(t *testing.T) {
		data, filename, err := f.svc.Download(context.Background(), m.ID, "u1")
		if err != nil {
			t.Fatalf("Download: %v", err)
		}
		if len(data) == 0 {
			t.Error("no bytes returned")
		}
		if filename != m.StorageLocation {
			t.Errorf("filename = %q, want %q", filename, m.StorageLocation)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, _, err := f.svc.Download(context.Background(), "nope", "u1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("foreign owner", func(t *testing.T) {
		data, _, err := f.svc.Download(context.Background(), m.ID, "intruder")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
		if data != nil {
			t.Error("cross-owner download must never return bytes")
		}
	})

	t.Run("file gone", func(t *testing.T) {
		f.artifacts.Remove(context.Background(), m.StorageLocation)
		if _, _, err := f.svc.Download(context.Background(), m.ID, "u1"); !errors.Is(err, ErrArtifactMissing) {
			t.Errorf("got %v, want ErrArtifactMissing", err)
		}
	})
}

func TestGenerateMonthlyRange(t *testing.T) {
	f := newFixture(someTxs())

	if _, err := f.svc.GenerateMonthly(context.Background(), "u1"); err != nil {
		t.Fatalf("GenerateMonthly: %v", err)
	}
	wantStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !f.source.lastStart.Equal(wantStart) {
		t.Errorf("monthly start = %v, want %v", f.source.lastStart, wantStart)
	}
	if f.source.lastEnd.Before(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("monthly end = %v, want at least the batch time", f.source.lastEnd)
	}
}

func TestNormalizeRangeSameDay(t *testing.T) {
	d := time.Date(2025, 3, 15, 14, 30, 0, 0, time.FixedZone("X", 3600))
	start, end := NormalizeRange(d, d)
	if start.Hour() != 0 || start.Location() != time.UTC {
		t.Errorf("start = %v", start)
	}
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("end = %v", end)
	}
	if !end.After(start) {
		t.Error("same-day range must cover the whole day")
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"pdf", FormatPDF, true},
		{"CSV", FormatCSV, true},
		{" json ", FormatJSON, true},
		{"", FormatPDF, true},
		{"xlsx", "", false},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseFormat(%q) = %q, %v", tc.in, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("ParseFormat(%q) err = %v, want ErrInvalidFormat", tc.in, err)
		}
	}
}
