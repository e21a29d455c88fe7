package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

// expenseList is the body of GET /api/expenses.
type expenseList struct {
	Expenses []core.Expense  `json:"expenses"`
	Count    int             `json:"count"`
	Total    core.Money      `json:"total"`
	Filter   core.FilterSpec `json:"filter"`
	Sort     core.SortField  `json:"sort"`
	Order    core.SortOrder  `json:"order"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	records, err := s.svc.Query(r.Context(), params.Filter, params.Field, params.Order)
	if err != nil {
		s.writeServiceError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Body(expenseList{
		Expenses: records,
		Count:    len(records),
		Total:    core.Total(records),
		Filter:   params.Filter,
		Sort:     params.Field,
		Order:    params.Order,
	}).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Body(e).Write(w)
}

// parseInput reads the expense fields from a JSON or form body. It writes
// the error response itself and returns false when the body is unusable.
func parseInput(w http.ResponseWriter, r *http.Request) (core.FormInput, bool) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		if errors.Is(err, ErrBodyTooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, err.Error()).Write(w)
		} else {
			BadRequestError("malformed request body").Write(w)
		}
		return core.FormInput{}, false
	}
	return p.FormInput(), true
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	in, ok := parseInput(w, r)
	if !ok {
		return
	}
	e, err := s.svc.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	s.invalidate()

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expense created",
		applog.FieldExpenseID, e.ID,
		applog.FieldCategory, e.Category,
		applog.FieldAmount, e.Amount.Cents)

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+e.ID).
		Body(e).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	in, ok := parseInput(w, r)
	if !ok {
		return
	}
	e, err := s.svc.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Body(e).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, applog.OpDelete, err)
		return
	}
	s.invalidate()
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expense deleted", applog.FieldExpenseID, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearAll(r.Context()); err != nil {
		s.writeServiceError(w, r, applog.OpClear, err)
		return
	}
	s.invalidate()
	applog.FromContext(r.Context()).InfoContext(r.Context(), "All expenses cleared")
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
