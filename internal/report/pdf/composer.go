// Package pdf lays out the fixed-page transaction report document.
package pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/signintech/gopdf"

	"finlog/internal/core"
	"finlog/internal/log"
	"finlog/internal/report"
)

// Page geometry in layout units. The document is a single fixed-size
// page regardless of transaction count; the table is truncated to
// rowLimit rows with an explicit "+K more" indicator.
const (
	pageWidth  = 600.0
	pageHeight = 800.0

	rowLimit = 25

	marginX     = 50.0
	titleY      = 40.0
	periodY     = 68.0
	tableHeadY  = 100.0
	tableRowY   = 118.0
	rowStep     = 14.0
	summaryGap  = 26.0
	summaryStep = 18.0

	colDate     = 50.0
	colDesc     = 140.0
	colCategory = 320.0
	colAmount   = 450.0

	chartY    = 560.0
	chartSize = 200.0
	pieX      = 60.0
	barX      = 330.0

	fontFamily = "report"
	maxDescLen = 38
)

// Composer builds the single-page PDF artifact. The TTF at fontPath must
// cover the currency glyph and all description text; its absence is
// fatal because the document cannot be produced correctly without it.
type Composer struct {
	fontPath string
	symbol   string
	logger   *log.Logger
}

func NewComposer(fontPath, currencySymbol string, logger *log.Logger) *Composer {
	return &Composer{
		fontPath: fontPath,
		symbol:   currencySymbol,
		logger:   logger.WithComponent(log.ComponentPDF),
	}
}

// Compose lays out the header, the bounded transaction table, the
// financial summary and the chart images, and returns the finalized
// byte buffer. Missing chart images are skipped without error; a missing
// or unreadable font aborts with report.ErrFontResourceMissing.
func (c *Composer) Compose(ctx context.Context, in report.ComposeInput) ([]byte, error) {
	fontBytes, err := os.ReadFile(c.fontPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", report.ErrFontResourceMissing, c.fontPath, err)
	}

	doc := &gopdf.GoPdf{}
	doc.Start(gopdf.Config{PageSize: gopdf.Rect{W: pageWidth, H: pageHeight}})
	doc.AddPage()

	if err := doc.AddTTFFontData(fontFamily, fontBytes); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", report.ErrFontResourceMissing, c.fontPath, err)
	}

	if err := c.drawHeader(doc, in); err != nil {
		return nil, err
	}
	tableEndY, err := c.drawTable(doc, in.Transactions)
	if err != nil {
		return nil, err
	}
	if err := c.drawSummary(doc, in.Summary, tableEndY); err != nil {
		return nil, err
	}
	c.embedCharts(ctx, doc, in.Charts)

	out, err := doc.GetBytesPdfReturnErr()
	if err != nil {
		return nil, fmt.Errorf("finalize pdf: %w", err)
	}
	return out, nil
}

func (c *Composer) drawHeader(doc *gopdf.GoPdf, in report.ComposeInput) error {
	if err := doc.SetFont(fontFamily, "", 18); err != nil {
		return fmt.Errorf("set title font: %w", err)
	}
	doc.SetTextColor(26, 26, 153)
	doc.SetXY(marginX, titleY)
	if err := doc.Cell(nil, "Finlog Transaction Report"); err != nil {
		return fmt.Errorf("draw title: %w", err)
	}

	if err := doc.SetFont(fontFamily, "", 12); err != nil {
		return fmt.Errorf("set period font: %w", err)
	}
	doc.SetTextColor(0, 0, 0)
	doc.SetXY(marginX, periodY)
	period := fmt.Sprintf("From: %s   To: %s",
		in.PeriodStart.Format("02 Jan 2006"),
		in.PeriodEnd.Format("02 Jan 2006"))
	if err := doc.Cell(nil, period); err != nil {
		return fmt.Errorf("draw period: %w", err)
	}
	return nil
}

// drawTable renders at most rowLimit rows in input order and returns the
// y coordinate just below the last drawn line.
func (c *Composer) drawTable(doc *gopdf.GoPdf, txs []core.Transaction) (float64, error) {
	if err := doc.SetFont(fontFamily, "", 12); err != nil {
		return 0, fmt.Errorf("set table header font: %w", err)
	}
	doc.SetTextColor(0, 0, 0)
	for _, col := range []struct {
		x     float64
		title string
	}{
		{colDate, "Date"},
		{colDesc, "Description"},
		{colCategory, "Category"},
		{colAmount, "Amount (" + c.symbol + ")"},
	} {
		doc.SetXY(col.x, tableHeadY)
		if err := doc.Cell(nil, col.title); err != nil {
			return 0, fmt.Errorf("draw column header: %w", err)
		}
	}
	doc.SetLineWidth(0.5)
	doc.Line(marginX, tableHeadY+13, pageWidth-marginX, tableHeadY+13)

	rows, truncated := truncateRows(txs)

	if err := doc.SetFont(fontFamily, "", 9); err != nil {
		return 0, fmt.Errorf("set row font: %w", err)
	}
	y := tableRowY
	for _, t := range rows {
		doc.SetXY(colDate, y)
		if err := doc.Cell(nil, t.Date.UTC().Format("2006-01-02")); err != nil {
			return 0, fmt.Errorf("draw row date: %w", err)
		}
		doc.SetXY(colDesc, y)
		if err := doc.Cell(nil, clampText(fallback(t.Description), maxDescLen)); err != nil {
			return 0, fmt.Errorf("draw row description: %w", err)
		}
		doc.SetXY(colCategory, y)
		if err := doc.Cell(nil, fallback(string(t.Category))); err != nil {
			return 0, fmt.Errorf("draw row category: %w", err)
		}
		doc.SetXY(colAmount, y)
		if err := doc.Cell(nil, t.Amount.Format(c.symbol)); err != nil {
			return 0, fmt.Errorf("draw row amount: %w", err)
		}
		y += rowStep
	}

	if truncated > 0 {
		doc.SetTextColor(120, 120, 120)
		doc.SetXY(colDate, y)
		if err := doc.Cell(nil, fmt.Sprintf("+%d more transactions in this period", truncated)); err != nil {
			return 0, fmt.Errorf("draw truncation note: %w", err)
		}
		doc.SetTextColor(0, 0, 0)
		y += rowStep
	}

	return y, nil
}

func (c *Composer) drawSummary(doc *gopdf.GoPdf, s core.Summary, tableEndY float64) error {
	if err := doc.SetFont(fontFamily, "", 12); err != nil {
		return fmt.Errorf("set summary font: %w", err)
	}
	doc.SetTextColor(0, 0, 0)

	lines := []string{
		"Total Income: " + s.TotalIncome.Format(c.symbol),
		"Total Expense: " + s.TotalExpense.Format(c.symbol),
		"Net Balance: " + s.NetBalance.Format(c.symbol),
	}
	y := tableEndY + summaryGap
	for _, line := range lines {
		doc.SetXY(marginX, y)
		if err := doc.Cell(nil, line); err != nil {
			return fmt.Errorf("draw summary line: %w", err)
		}
		y += summaryStep
	}
	return nil
}

// embedCharts places the pie and bar images side by side at fixed
// positions. Absent or unembeddable images are skipped; the document
// stays valid either way.
func (c *Composer) embedCharts(ctx context.Context, doc *gopdf.GoPdf, charts report.ChartSet) {
	c.embedImage(ctx, doc, charts.Pie, pieX, "pie")
	c.embedImage(ctx, doc, charts.Bar, barX, "bar")
}

func (c *Composer) embedImage(ctx context.Context, doc *gopdf.GoPdf, img []byte, x float64, name string) {
	if len(img) == 0 {
		c.logger.WarnContext(ctx, "Chart image absent, skipping embed", "chart", name)
		return
	}
	holder, err := gopdf.ImageHolderByBytes(img)
	if err != nil {
		c.logger.WarnContext(ctx, "Chart embedding skipped", "chart", name, log.FieldError, err)
		return
	}
	rect := gopdf.Rect{W: chartSize, H: chartSize}
	if err := doc.ImageByHolder(holder, x, chartY, &rect); err != nil {
		c.logger.WarnContext(ctx, "Chart embedding skipped", "chart", name, log.FieldError, err)
	}
}

// truncateRows applies the fixed single-page table policy: only the
// first rowLimit transactions are rendered, in input order, and the
// count of dropped rows is surfaced as the "+K more" indicator.
func truncateRows(txs []core.Transaction) ([]core.Transaction, int) {
	if len(txs) <= rowLimit {
		return txs, 0
	}
	return txs[:rowLimit], len(txs) - rowLimit
}

func fallback(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// clampText limits a cell to max runes so long descriptions never bleed
// into the next column.
func clampText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
