package jobs

import (
	"context"

	"github.com/jmcarbo/clioscope/internal/pipeline"
)

// DefaultPipelineSchedule runs the daily refresh at 06:00 UTC, after
// the upstream annual-series providers publish their revisions.
const DefaultPipelineSchedule = "0 0 6 * * *"

// PipelineJob wraps the scoring pipeline as a scheduled job.
type PipelineJob struct {
	runner   *pipeline.Runner
	schedule string
}

// NewPipelineJob creates the daily pipeline job. An empty schedule
// falls back to the default.
func NewPipelineJob(runner *pipeline.Runner, schedule string) *PipelineJob {
	if schedule == "" {
		schedule = DefaultPipelineSchedule
	}
	return &PipelineJob{runner: runner, schedule: schedule}
}

// Name implements scheduler.Job.
func (j *PipelineJob) Name() string { return "pipeline_run" }

// Schedule implements scheduler.Job.
func (j *PipelineJob) Schedule() string { return j.schedule }

// Run implements scheduler.Job.
func (j *PipelineJob) Run(ctx context.Context) error {
	_, err := j.runner.Run(ctx)
	return err
}
