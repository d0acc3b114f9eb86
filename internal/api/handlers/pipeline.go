package handlers

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/jmcarbo/clioscope/internal/pipeline"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// PipelineHandler triggers on-demand pipeline runs.
type PipelineHandler struct {
	runner  *pipeline.Runner
	logger  *logger.Logger
	running atomic.Bool
}

// NewPipelineHandler creates a pipeline handler.
func NewPipelineHandler(runner *pipeline.Runner, log *logger.Logger) *PipelineHandler {
	return &PipelineHandler{
		runner: runner,
		logger: log.WithField("handler", "pipeline"),
	}
}

// Trigger starts a run in the background. Only one run may be in
// flight at a time; concurrent triggers are rejected.
// POST /api/pipeline/run
func (h *PipelineHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if !h.running.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "a run is already in progress")
		return
	}

	go func() {
		defer h.running.Store(false)
		if _, err := h.runner.Run(context.Background()); err != nil {
			h.logger.WithError(err).Error("Triggered run failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}
