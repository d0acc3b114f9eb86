package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jmcarbo/clioscope/internal/results"
	"github.com/jmcarbo/clioscope/pkg/logger"
	"github.com/jmcarbo/clioscope/pkg/redis"
)

// ResultsHandler serves the persisted scoring output, with an optional
// cache layer in front of the results document.
type ResultsHandler struct {
	store  *results.Store
	cache  *redis.Cache
	logger *logger.Logger
}

// NewResultsHandler creates a results handler. cache may serve as a
// no-op when the cache backend is disabled.
func NewResultsHandler(store *results.Store, cache *redis.Cache, log *logger.Logger) *ResultsHandler {
	return &ResultsHandler{
		store:  store,
		cache:  cache,
		logger: log.WithField("handler", "results"),
	}
}

// GetLatest returns the full latest result document.
// GET /api/results
func (h *ResultsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var doc results.File
	if hit, err := h.cache.Get(ctx, redis.LatestResultsKey, &doc); err == nil && hit {
		writeJSON(w, http.StatusOK, doc)
		return
	}

	doc, ok, err := h.store.Latest()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load results")
		writeError(w, http.StatusInternalServerError, "failed to load results")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no results available yet")
		return
	}

	if err := h.cache.Set(ctx, redis.LatestResultsKey, doc, redis.TTLLong); err != nil {
		h.logger.WithError(err).Warn("Failed to cache results")
	}

	writeJSON(w, http.StatusOK, doc)
}

// GetEntity returns one entity's record.
// GET /api/results/{code}
func (h *ResultsHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := mux.Vars(r)["code"]

	var record results.EntityRecord
	if hit, err := h.cache.Get(ctx, redis.EntityResultKey(code), &record); err == nil && hit {
		writeJSON(w, http.StatusOK, record)
		return
	}

	found, ok, err := h.store.Entity(code)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load entity result")
		writeError(w, http.StatusInternalServerError, "failed to load entity result")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no result for entity")
		return
	}

	if err := h.cache.Set(ctx, redis.EntityResultKey(code), found, redis.TTLShort); err != nil {
		h.logger.WithError(err).Warn("Failed to cache entity result")
	}

	writeJSON(w, http.StatusOK, found)
}

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
