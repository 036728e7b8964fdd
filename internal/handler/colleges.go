package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yogendram/career-compass/internal/college"
	"github.com/yogendram/career-compass/internal/session"
)

// CollegeHandler serves the catalog and its filtered search. Search counts
// toward the logged-in user's collegesSearched progress; for anonymous
// visitors the ledger call is a no-op.
type CollegeHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

func NewCollegeHandler(sessions *session.Manager, logger *slog.Logger) *CollegeHandler {
	return &CollegeHandler{sessions: sessions, logger: logger}
}

// HandleList returns the full catalog.
//
// HTTP: GET /api/colleges
func (h *CollegeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, college.Catalog())
}

// HandleSearch applies the query-parameter filters.
//
// HTTP: GET /api/colleges/search?q=&program=&tuition=&type=&maxRatio=&interests=&lat=&lon=&radius=
//
// interests=true filters by the logged-in user's interests. Every call is a
// search-affecting interaction and bumps the progress counter.
func (h *CollegeHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := college.Filter{
		Query:   q.Get("q"),
		Program: q.Get("program"),
		Tuition: q.Get("tuition"),
		Type:    q.Get("type"),
	}
	if n, err := strconv.Atoi(q.Get("maxRatio")); err == nil && n > 0 {
		f.MaxRatio = n
	}
	if lat, err := strconv.ParseFloat(q.Get("lat"), 64); err == nil {
		f.Lat = lat
	}
	if lon, err := strconv.ParseFloat(q.Get("lon"), 64); err == nil {
		f.Lon = lon
	}
	if radius, err := strconv.ParseFloat(q.Get("radius"), 64); err == nil && radius > 0 {
		f.RadiusKm = radius
	}
	if q.Get("interests") == "true" {
		if user, ok := h.sessions.Current(); ok {
			f.Interests = user.Interests
		}
	}

	results := college.Search(f)

	if _, err := h.sessions.BumpCollegesSearched(r.Context()); err != nil {
		// The search result is still good; log the progress failure.
		h.logger.Error("failed to bump collegesSearched", slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusOK, results)
}
