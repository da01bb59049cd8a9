package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finlog/internal/categorize"
	"finlog/internal/core"
	"finlog/internal/log"
	"finlog/internal/report"
)

const dateLayout = "2006-01-02"

type generateRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Format    string `json:"format"`
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date is before start_date")
		return
	}

	m, err := s.reports.Generate(r.Context(), owner, start, end, report.Format(req.Format))
	if err != nil {
		s.logGenerateFailure(r, owner, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, generateResponse{
		Report:      m,
		DownloadURL: "/api/reports/download/" + m.ID,
	})
}

type generateResponse struct {
	Report      report.Metadata `json:"report"`
	DownloadURL string          `json:"download_url"`
}

// logGenerateFailure keeps expected outcomes (empty period, bad format)
// at info level and real pipeline failures at error level.
func (s *Server) logGenerateFailure(r *http.Request, owner string, err error) {
	if errors.Is(err, report.ErrNoData) || errors.Is(err, report.ErrInvalidFormat) {
		s.logger.InfoContext(r.Context(), "Report not generated",
			log.FieldOwnerID, owner,
			log.FieldError, err)
		return
	}
	s.logger.ErrorContext(r.Context(), "Report generation failed",
		log.FieldOwnerID, owner,
		log.FieldError, err)
}

func (s *Server) handleReportHistory(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	history, err := s.reports.History(r.Context(), owner)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "History lookup failed",
			log.FieldOwnerID, owner,
			log.FieldError, err)
		writeServiceError(w, err)
		return
	}
	if history == nil {
		history = []report.Metadata{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	data, filename, err := s.reports.Download(r.Context(), r.PathValue("id"), owner)
	if err != nil {
		s.logger.InfoContext(r.Context(), "Download refused",
			log.FieldOwnerID, owner,
			log.FieldReportID, r.PathValue("id"),
			log.FieldError, err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(filename))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func contentTypeFor(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(filename, ".csv"):
		return "text/csv; charset=utf-8"
	case strings.HasSuffix(filename, ".json"):
		return "application/json; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

type transactionRequest struct {
	Amount      core.Money `json:"amount"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Type        string     `json:"type"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "unknown category")
		return
	}
	txType, err := core.ParseTxType(req.Type)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "type must be income or expense")
		return
	}

	tx := categorize.Apply(core.Transaction{
		OwnerID:     owner,
		Amount:      req.Amount,
		Date:        date,
		Description: strings.TrimSpace(req.Description),
		Category:    category,
		Type:        txType,
	})
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.txs.CreateTransaction(r.Context(), tx)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Transaction create failed",
			log.FieldOwnerID, owner,
			log.FieldError, err)
		writeServiceError(w, err)
		return
	}

	s.summaryCache.DeletePrefix(owner + "|")

	s.logger.InfoContext(r.Context(), "Transaction created",
		log.FieldOwnerID, owner,
		log.FieldOperation, log.OpCreate,
		log.FieldAmountCents, created.Amount.Cents,
		log.FieldCategory, string(created.Category))

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	txs, err := s.txs.ListTransactions(r.Context(), owner)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Transaction list failed",
			log.FieldOwnerID, owner,
			log.FieldError, err)
		writeServiceError(w, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.txs.DeleteTransaction(r.Context(), owner, id); err != nil {
		writeServiceError(w, err)
		return
	}

	s.summaryCache.DeletePrefix(owner + "|")
	w.WriteHeader(http.StatusNoContent)
}

type summaryResponse struct {
	Period       string                `json:"period"`
	TotalIncome  core.Money            `json:"total_income"`
	TotalExpense core.Money            `json:"total_expense"`
	NetBalance   core.Money            `json:"net_balance"`
	ByCategory   []categoryAmountEntry `json:"by_category"`
	TopCategory  string                `json:"top_category,omitempty"`
}

type categoryAmountEntry struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
}

// handleSummary aggregates one owner's transactions for a date range.
// Defaults to the current month so dashboards can call it bare. Results
// are cached per owner and range for a few minutes.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now

	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		start = parsed
	}
	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
			return
		}
		end = parsed
	}

	start, end = report.NormalizeRange(start, end)
	key := owner + "|" + start.Format(dateLayout) + "|" + end.Format(dateLayout)

	if cached, found := s.summaryCache.Get(key); found {
		s.logger.DebugContext(r.Context(), "Summary cache hit", log.FieldOwnerID, owner)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.txs.FindTransactions(r.Context(), owner, start, end)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Summary query failed",
			log.FieldOwnerID, owner,
			log.FieldError, err)
		writeServiceError(w, err)
		return
	}
	summary, err := core.Aggregate(txs)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Summary aggregation failed",
			log.FieldOwnerID, owner,
			log.FieldError, err)
		writeServiceError(w, err)
		return
	}

	resp := summaryResponse{
		Period:       report.PeriodLabel(start, end),
		TotalIncome:  summary.TotalIncome,
		TotalExpense: summary.TotalExpense,
		NetBalance:   summary.NetBalance,
		ByCategory:   []categoryAmountEntry{},
		TopCategory:  string(summary.TopCategory()),
	}
	for _, ca := range summary.ByCategory() {
		resp.ByCategory = append(resp.ByCategory, categoryAmountEntry{
			Category: string(ca.Name),
			Amount:   ca.Amount,
		})
	}

	s.summaryCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}
