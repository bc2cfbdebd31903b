package http

import (
	"errors"
	"fmt"
	"net/http"

	"expensetracker/internal/charts"
	applog "expensetracker/internal/log"
)

func (s *Server) handleSummaryByCategory(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.SummaryByCategory(r.Context())
	if err != nil {
		s.writeServiceError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().JSON(summary).Write(w)
}

// handleMonthlySummary totals the selected year, defaulting to the current one.
func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYear(r.URL.Query())
	if err != nil {
		BadRequest().Write(w)
		return
	}

	summary, err := s.svc.MonthlySummary(r.Context(), year)
	if err != nil {
		s.writeServiceError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().JSON(summary).Write(w)
}

// handleMonthlyChart renders the monthly summary as a bar chart. A year with
// no expenses yields 204.
func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYear(r.URL.Query())
	if err != nil {
		BadRequest().Write(w)
		return
	}
	if year == 0 {
		year = s.svc.CurrentYear()
	}

	summary, err := s.svc.MonthlySummary(r.Context(), year)
	if err != nil {
		s.writeServiceError(w, r, applog.OpSummary, err)
		return
	}
	if len(summary) == 0 {
		NoContent().Write(w)
		return
	}

	content, err := summary.MarshalJSON()
	if err != nil {
		s.writeServiceError(w, r, applog.OpRender, err)
		return
	}
	key := fmt.Sprintf("%d:%s", year, content)

	png, ok := s.chartCache.Get(key)
	if !ok {
		png, err = s.charts.MonthlyBarChart(summary, year)
		if errors.Is(err, charts.ErrNoData) {
			NoContent().Write(w)
			return
		}
		if err != nil {
			s.writeServiceError(w, r, applog.OpRender, err)
			return
		}
		s.chartCache.Set(key, png)
	}

	NewJSONResponse().Body(png, contentTypePNG).Write(w)
}
