package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pbaille/soundbyte/internal/collections"
	"github.com/pbaille/soundbyte/internal/dashboard"
	"github.com/pbaille/soundbyte/internal/feed"
	"github.com/pbaille/soundbyte/internal/filter"
	"github.com/pbaille/soundbyte/internal/share"
	"github.com/pbaille/soundbyte/internal/sorting"
)

// Server exposes the dashboard views and the collection store over JSON
type Server struct {
	loader  *feed.Loader
	dash    *dashboard.Dashboard
	cols    *collections.Store
	addr    string
	siteURL string
	log     zerolog.Logger

	mu      sync.Mutex
	applied int
}

// Options holds the server settings
type Options struct {
	Addr    string
	SiteURL string
}

// New creates a new API server
func New(loader *feed.Loader, dash *dashboard.Dashboard, cols *collections.Store, opts Options, log zerolog.Logger) *Server {
	return &Server{
		loader:  loader,
		dash:    dash,
		cols:    cols,
		addr:    opts.Addr,
		siteURL: opts.SiteURL,
		log:     log.With().Str("component", "api").Logger(),
		applied: -1,
	}
}

// Refresh loads the entry set (or reloads it when reload is set) and hands it
// to the dashboard. Only settled results newer than the last applied one
// replace the dashboard entries.
func (s *Server) Refresh(ctx context.Context, reload bool) feed.Result {
	var res feed.Result
	if reload {
		res = s.loader.Reload(ctx)
	} else {
		res = s.loader.Load(ctx)
	}
	s.apply(res)
	return res
}

func (s *Server) apply(res feed.Result) {
	if !res.Settled() {
		s.log.Debug().Int("generation", res.Generation).Str("state", res.State.String()).Msg("skipping unsettled result")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Generation <= s.applied {
		return
	}
	s.applied = res.Generation
	s.dash.SetEntries(res.Entries)
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	// Entries
	r.HandleFunc("/entries", s.listEntries).Methods(http.MethodGet)
	r.HandleFunc("/entries/{id}", s.getEntry).Methods(http.MethodGet)
	r.HandleFunc("/entries/{id}/share", s.shareEntry).Methods(http.MethodGet)
	r.HandleFunc("/timeline", s.timeline).Methods(http.MethodGet)

	// Tags and trends
	r.HandleFunc("/tags", s.listTags).Methods(http.MethodGet)
	r.HandleFunc("/trends", s.trends).Methods(http.MethodGet)

	// Collections
	r.HandleFunc("/collections", s.listCollections).Methods(http.MethodGet)
	r.HandleFunc("/collections", s.createCollection).Methods(http.MethodPost)
	r.HandleFunc("/collections/{id}", s.getCollection).Methods(http.MethodGet)
	r.HandleFunc("/collections/{id}", s.renameCollection).Methods(http.MethodPatch)
	r.HandleFunc("/collections/{id}", s.deleteCollection).Methods(http.MethodDelete)
	r.HandleFunc("/collections/{id}/entries", s.collectionEntries).Methods(http.MethodGet)
	r.HandleFunc("/collections/{id}/entries/{entryID}", s.addToCollection).Methods(http.MethodPut)
	r.HandleFunc("/collections/{id}/entries/{entryID}", s.removeFromCollection).Methods(http.MethodDelete)

	// Data source
	r.HandleFunc("/reload", s.reload).Methods(http.MethodPost)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	return withCORS(r)
}

// Run loads the entries, then serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	res := s.Refresh(ctx, false)
	s.log.Info().Str("state", res.State.String()).Int("entries", len(res.Entries)).Msg("entries ready")

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// withCORS adds CORS headers for the frontend
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) status() string {
	if s.loader.Result().Unavailable() {
		return "unavailable"
	}
	return s.loader.State().String()
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "data": s.status()})
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	res := s.Refresh(r.Context(), true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  s.status(),
		"origin":  res.Origin,
		"entries": len(res.Entries),
	})
}

// parseState reads the view selection from the query string
func parseState(r *http.Request) (dashboard.State, error) {
	q := r.URL.Query()
	criteria, err := filter.ParseCriteria(q.Get("category"), q.Get("priority"), q.Get("time"))
	if err != nil {
		return dashboard.State{}, err
	}
	mode, err := sorting.ParseMode(q.Get("sort"))
	if err != nil {
		return dashboard.State{}, err
	}
	return dashboard.State{Query: q.Get("q"), Criteria: criteria, Sort: mode}, nil
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	state, err := parseState(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view := s.dash.View(state)
	limit := intParam(r, "limit", 0)
	offset := intParam(r, "offset", 0)
	entries := page(view.Entries, offset, limit)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   view.Count,
		"total":   view.Total,
		"sort":    view.EffectiveSort,
		"offset":  offset,
		"status":  s.status(),
	})
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.dash.Entry(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) timeline(w http.ResponseWriter, r *http.Request) {
	state, err := parseState(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view := s.dash.View(state)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"groups": dashboard.Timeline(view),
		"count":  view.Count,
		"status": s.status(),
	})
}

func (s *Server) shareEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.dash.Entry(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"post":   share.Post(entry, s.siteURL),
		"long":   share.Long(entry, s.siteURL),
		"intent": share.IntentURL(entry, s.siteURL),
		"link":   share.Link(entry, s.siteURL),
	})
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	if q, ok := r.URL.Query()["q"]; ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"suggestions": s.dash.Suggest(q[0], intParam(r, "limit", 10)),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tags": s.dash.Tags(),
	})
}

func (s *Server) trends(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Trends())
}

// CollectionRequest is the body for creating or renaming a collection
type CollectionRequest struct {
	Name string `json:"name"`
}

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"collections": s.cols.List(),
	})
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	var req CollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.cols.Create(req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if id == "" {
		// Blank names are ignored by the store; report the unchanged list
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"collections": s.cols.List(),
		})
		return
	}

	c, _ := s.cols.Get(id)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cols.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) renameCollection(w http.ResponseWriter, r *http.Request) {
	var req CollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mutateCollection(w, r, func(id string) error {
		return s.cols.Rename(id, req.Name)
	})
}

func (s *Server) deleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.cols.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addToCollection(w http.ResponseWriter, r *http.Request) {
	entryID := mux.Vars(r)["entryID"]
	s.mutateCollection(w, r, func(id string) error {
		return s.cols.AddEntry(id, entryID)
	})
}

func (s *Server) removeFromCollection(w http.ResponseWriter, r *http.Request) {
	entryID := mux.Vars(r)["entryID"]
	s.mutateCollection(w, r, func(id string) error {
		return s.cols.RemoveEntry(id, entryID)
	})
}

// mutateCollection applies fn and answers with the collection's new state.
// The store ignores unknown ids, so those come back as 404 after the no-op.
func (s *Server) mutateCollection(w http.ResponseWriter, r *http.Request, fn func(id string) error) {
	id := mux.Vars(r)["id"]
	if err := fn(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	c, ok := s.cols.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) collectionEntries(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, ok := s.cols.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"collection": c,
		"entries":    s.cols.Entries(id, s.dash.Entries()),
	})
}

func intParam(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// page slices out [offset, offset+limit); limit 0 means everything after offset
func page[T any](items []T, offset, limit int) []T {
	if offset > len(items) {
		offset = len(items)
	}
	end := len(items)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
