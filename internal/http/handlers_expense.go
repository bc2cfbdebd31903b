package http

import (
	"errors"
	"net/http"
	"strconv"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Rejected list query",
			applog.FieldQuery, r.URL.RawQuery,
			applog.FieldError, err)
		BadRequest().Write(w)
		return
	}

	items, err := s.svc.List(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, applog.OpList, err)
		return
	}
	if items == nil {
		items = []core.Expense{}
	}
	NewJSONResponse().JSON(items).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	e, ok := s.readExpense(w, r)
	if !ok {
		return
	}

	created, err := s.svc.Create(r.Context(), e)
	if err != nil {
		s.writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/expenses/"+strconv.FormatInt(created.ID, 10)).
		JSON(created).
		Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequest().Write(w)
		return
	}

	e, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().JSON(e).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequest().Write(w)
		return
	}
	e, ok := s.readExpense(w, r)
	if !ok {
		return
	}

	updated, err := s.svc.Update(r.Context(), id, e)
	if err != nil {
		s.writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().JSON(updated).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequest().Write(w)
		return
	}

	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, applog.OpDelete, err)
		return
	}
	NoContent().Write(w)
}

// readExpense parses and validates the payload, writing the 400 response
// itself when the payload is unusable.
func (s *Server) readExpense(w http.ResponseWriter, r *http.Request) (core.Expense, bool) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Malformed expense payload",
			applog.FieldErrorType, applog.ErrorTypeValidation,
			applog.FieldError, err)
		if errors.Is(err, ErrMalformedBody) {
			ValidationError(core.ValidationErrors{"body": "request body must be a JSON object or form data"}).Write(w)
		} else {
			BadRequest().Write(w)
		}
		return core.Expense{}, false
	}

	e, verrs := ParseExpense(p)
	if verrs != nil {
		ValidationError(verrs).Write(w)
		return core.Expense{}, false
	}
	return e, true
}
