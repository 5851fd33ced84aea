package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/store"
)

type transactionRequest struct {
	Amount      json.RawMessage `json:"amount"`
	Type        core.TxType     `json:"type"`
	CategoryID  string          `json:"categoryId"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
}

type transactionPatchRequest struct {
	Amount      json.RawMessage `json:"amount"`
	Type        *core.TxType    `json:"type"`
	CategoryID  *string         `json:"categoryId"`
	Date        *string         `json:"date"`
	Description *string         `json:"description"`
	Tags        *[]string       `json:"tags"`
}

type budgetRequest struct {
	CategoryID string            `json:"categoryId"`
	Amount     json.RawMessage   `json:"amount"`
	Period     core.BudgetPeriod `json:"period"`
	StartDate  string            `json:"startDate"`
}

type budgetPatchRequest struct {
	CategoryID *string            `json:"categoryId"`
	Amount     json.RawMessage    `json:"amount"`
	Period     *core.BudgetPeriod `json:"period"`
	StartDate  *string            `json:"startDate"`
}

// budgetResponse is a budget with its evaluation for the current period.
type budgetResponse struct {
	core.BudgetStatus
	CategoryName string `json:"categoryName,omitempty"`
}

// dateOrNow parses s, or returns now when s is empty.
func (s *Server) dateOrNow(v string) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return s.now().In(s.loc), nil
	}
	return parseDate(v, s.loc)
}

// Transactions

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query(), s.loc, s.now())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	txs := s.ledger.Transactions(q)
	if txs == nil {
		txs = []core.Transaction{}
	}
	OK(w, txs)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.ledger.Transaction(chi.URLParam(r, "id"))
	if !ok {
		NotFoundError("transaction not found").Write(w)
		return
	}
	OK(w, tx)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	date, err := s.dateOrNow(req.Date)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	tx, err := s.ledger.AddTransaction(r.Context(), core.Transaction{
		Amount:      amount,
		Type:        req.Type,
		CategoryID:  strings.TrimSpace(req.CategoryID),
		Date:        date,
		Description: sanitizeInput(req.Description),
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	Created(w, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}

	p := store.TransactionPatch{
		Type:       req.Type,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
	}
	if len(req.Amount) > 0 {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			writeError(w, r, log.OpUpdate, err)
			return
		}
		p.Amount = &amount
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date, s.loc)
		if err != nil {
			writeError(w, r, log.OpUpdate, err)
			return
		}
		p.Date = &date
	}
	if req.Description != nil {
		desc := sanitizeInput(*req.Description)
		p.Description = &desc
	}

	tx, err := s.ledger.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	OK(w, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NoContent(w)
}

// Categories

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var cats []core.Category
	if v := r.URL.Query().Get("type"); v != "" {
		t := core.TxType(strings.ToLower(v))
		if !t.Valid() {
			writeError(w, r, log.OpList, badRequest("invalid type %q", v))
			return
		}
		cats = s.ledger.CategoriesOf(t)
	} else {
		cats = s.ledger.Categories()
	}
	if cats == nil {
		cats = []core.Category{}
	}
	OK(w, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req core.Category
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	req.ID = ""
	req.Name = sanitizeInput(req.Name)

	c, err := s.ledger.AddCategory(r.Context(), req)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	Created(w, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var p store.CategoryPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	if p.Name != nil {
		name := sanitizeInput(*p.Name)
		p.Name = &name
	}

	c, err := s.ledger.UpdateCategory(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	OK(w, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NoContent(w)
}

func (s *Server) handleResetCategories(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.ResetCategories(r.Context()); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	OK(w, s.ledger.Categories())
}

// Budgets

func (s *Server) budgetView(st core.BudgetStatus) budgetResponse {
	out := budgetResponse{BudgetStatus: st}
	if c, ok := s.ledger.Reader().Category(st.Budget.CategoryID); ok {
		out.CategoryName = c.Name
	}
	return out
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	statuses := s.ledger.BudgetStatuses(time.Time{})
	out := make([]budgetResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, s.budgetView(st))
	}
	OK(w, out)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	st, ok := s.ledger.BudgetStatus(chi.URLParam(r, "id"), time.Time{})
	if !ok {
		NotFoundError("budget not found").Write(w)
		return
	}
	OK(w, s.budgetView(st))
}

func (s *Server) handleBudgetOverview(w http.ResponseWriter, r *http.Request) {
	OK(w, s.ledger.BudgetOverview(time.Time{}))
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	start, err := s.dateOrNow(req.StartDate)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	if req.Period == "" {
		req.Period = core.Monthly
	}

	b, err := s.ledger.AddBudget(r.Context(), core.Budget{
		CategoryID: strings.TrimSpace(req.CategoryID),
		Amount:     amount,
		Period:     req.Period,
		StartDate:  start,
	})
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	st, _ := s.ledger.BudgetStatus(b.ID, time.Time{})
	Created(w, s.budgetView(st))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}

	p := store.BudgetPatch{CategoryID: req.CategoryID, Period: req.Period}
	if len(req.Amount) > 0 {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			writeError(w, r, log.OpUpdate, err)
			return
		}
		p.Amount = &amount
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate, s.loc)
		if err != nil {
			writeError(w, r, log.OpUpdate, err)
			return
		}
		p.StartDate = &start
	}

	id := chi.URLParam(r, "id")
	if _, err := s.ledger.UpdateBudget(r.Context(), id, p); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	st, _ := s.ledger.BudgetStatus(id, time.Time{})
	OK(w, s.budgetView(st))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteBudget(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NoContent(w)
}
