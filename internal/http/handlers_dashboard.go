package http

import (
	"fmt"
	"net/http"
	"strconv"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
)

// maxDailyWindow bounds the days parameter of /api/daily.
const maxDailyWindow = 366

// dashboard returns the cached dashboard for the current store revision and
// calendar day. Concurrent misses share one computation.
func (s *Server) dashboard(r *http.Request) (services.Dashboard, error) {
	key := fmt.Sprintf("dashboard:%d:%s", s.svc.Revision(), s.svc.Now().Format(core.DateLayout))
	if d, ok := s.dashboards.Get(key); ok {
		return d, nil
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		d, err := s.svc.Dashboard(r.Context())
		if err != nil {
			return nil, err
		}
		s.dashboards.Set(key, d)
		return d, nil
	})
	if err != nil {
		return services.Dashboard{}, err
	}
	return v.(services.Dashboard), nil
}

// invalidate drops cached views after a mutation.
func (s *Server) invalidate() {
	s.dashboards.Purge()
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard(r)
	if err != nil {
		s.writeServiceError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().Body(d).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard(r)
	if err != nil {
		s.writeServiceError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().Body(d.Stats).Write(w)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard(r)
	if err != nil {
		s.writeServiceError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().Body(d.Categories).Write(w)
}

// handleDaily serves the trailing daily series. days overrides the
// configured window; dense=true fills missing days with zero.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := ParsePositiveInt(q.Get("days"), s.svc.DailyWindow(), maxDailyWindow)
	if err != nil {
		BadRequestError("days " + err.Error()).Write(w)
		return
	}
	dense := ParseBool(q.Get("dense"))

	var series []core.DailyAmount
	if days == s.svc.DailyWindow() {
		d, err := s.dashboard(r)
		if err != nil {
			s.writeServiceError(w, r, applog.OpSummary, err)
			return
		}
		series = d.Daily
	} else {
		records, err := s.svc.List(r.Context())
		if err != nil {
			s.writeServiceError(w, r, applog.OpSummary, err)
			return
		}
		series = core.DailySpending(records, s.svc.Now(), days)
	}
	if dense {
		series = core.FillDailyGaps(series, s.svc.Now(), days)
	}

	NewJSONResponse().Body(map[string]any{
		"days":   days,
		"dense":  dense,
		"series": series,
	}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(core.Categories()).Write(w)
}

// handleExportCSV streams the filtered, sorted ledger as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	records, err := s.svc.Query(r.Context(), params.Filter, params.Field, params.Order)
	if err != nil {
		s.writeServiceError(w, r, applog.OpExport, err)
		return
	}
	body, err := core.ExportCSV(records)
	if err != nil {
		s.writeServiceError(w, r, applog.OpExport, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+core.ExportFilename(s.svc.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expenses exported", applog.FieldCount, len(records))
}
