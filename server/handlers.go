package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/etnz/arr"
	"github.com/etnz/arr/date"
	"go.uber.org/zap"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// current returns the published result or writes a 503.
func (s *Server) current(w http.ResponseWriter) (*arr.Result, bool) {
	res, err := s.Result()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}
	return res, true
}

type healthResponse struct {
	Status        string    `json:"status"`
	Published     bool      `json:"published"`
	Authoritative bool      `json:"authoritative"`
	Through       date.Date `json:"through,omitzero"`
}

// health handles GET /health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if res := s.published.Load(); res != nil {
		resp.Published = true
		resp.Authoritative = res.Authoritative
		resp.Through = res.Through
	}
	writeJSON(w, http.StatusOK, resp)
}

// kpis handles GET /api/kpis
func (s *Server) kpis(w http.ResponseWriter, r *http.Request) {
	if res, ok := s.current(w); ok {
		writeJSON(w, http.StatusOK, res.KPIs)
	}
}

// waterfall handles GET /api/waterfall[?month=YYYY-MM]
func (s *Server) waterfall(w http.ResponseWriter, r *http.Request) {
	res, ok := s.current(w)
	if !ok {
		return
	}
	q := r.URL.Query().Get("month")
	if q == "" {
		writeJSON(w, http.StatusOK, res.Latest())
		return
	}
	month, err := date.ParseMonth(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be formatted as YYYY-MM")
		return
	}
	for _, b := range res.Chain {
		if b.Month == month {
			writeJSON(w, http.StatusOK, b)
			return
		}
	}
	writeError(w, http.StatusNotFound, "month is not covered by the rollforward")
}

// trend handles GET /api/trend[?months=N]
func (s *Server) trend(w http.ResponseWriter, r *http.Request) {
	res, ok := s.current(w)
	if !ok {
		return
	}
	summary := res.Summary
	if q := r.URL.Query().Get("months"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "months must be a positive integer")
			return
		}
		if len(summary) > n {
			summary = summary[len(summary)-n:]
		}
	}
	writeJSON(w, http.StatusOK, summary)
}

// segments handles GET /api/segments
func (s *Server) segments(w http.ResponseWriter, r *http.Request) {
	if res, ok := s.current(w); ok {
		writeJSON(w, http.StatusOK, res.Segments)
	}
}

// findings handles GET /api/findings[?kind=K]
func (s *Server) findings(w http.ResponseWriter, r *http.Request) {
	res, ok := s.current(w)
	if !ok {
		return
	}
	findings := res.Findings
	if kind := r.URL.Query().Get("kind"); kind != "" {
		findings = findings.Of(arr.FindingKind(kind))
	}
	if findings == nil {
		findings = arr.Findings{}
	}
	writeJSON(w, http.StatusOK, findings)
}

// rollforward handles GET /api/rollforward[?period=monthly|quarterly|yearly]
func (s *Server) rollforward(w http.ResponseWriter, r *http.Request) {
	res, ok := s.current(w)
	if !ok {
		return
	}
	period := date.Monthly
	if q := r.URL.Query().Get("period"); q != "" {
		p, err := date.ParsePeriod(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		period = p
	}
	writeJSON(w, http.StatusOK, arr.Rollup(res.Chain, period))
}

// result handles GET /api/result
func (s *Server) result(w http.ResponseWriter, r *http.Request) {
	if res, ok := s.current(w); ok {
		writeJSON(w, http.StatusOK, res)
	}
}

type refreshResponse struct {
	Published     bool      `json:"published"`
	Authoritative bool      `json:"authoritative"`
	Through       date.Date `json:"through"`
	Findings      int       `json:"findings"`
}

// refreshHandler handles POST /api/refresh[?force=true]
//
// A computed result that was not published is still reported with a 200.
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	res, published, err := s.Refresh(r.Context(), force)
	if err != nil {
		s.log.Error("refresh failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to refresh the ARR result")
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Published:     published,
		Authoritative: res.Authoritative,
		Through:       res.Through,
		Findings:      len(res.Findings),
	})
}
