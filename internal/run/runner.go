package run

import (
	"context"

	"github.com/taskbrief/taskbrief/internal/project"
	"github.com/taskbrief/taskbrief/internal/report"
	"github.com/taskbrief/taskbrief/internal/task"
	"github.com/taskbrief/taskbrief/pkg/cerr"
)

// Runner executes one report generation end to end.
type Runner struct {
	projects   *project.Store
	classifier *task.Classifier
	archiver   *report.Archiver
	renderer   *report.Renderer
}

func New(projects *project.Store, classifier *task.Classifier, archiver *report.Archiver, renderer *report.Renderer) *Runner {
	return &Runner{
		projects:   projects,
		classifier: classifier,
		archiver:   archiver,
		renderer:   renderer,
	}
}

// GenerateReport refreshes the project cache, collects the task buckets,
// rotates the previous report pair plus sweeps old archives, and renders
// the new pair. A cache failure halts before any report work happens. Any
// returned error has already been logged; after rendering started it means
// the report may be incomplete.
func (r *Runner) GenerateReport(ctx context.Context) error {
	cache, err := r.projects.EnsureFresh(ctx)
	if err != nil {
		cerr.Log(ctx, err, "failed to ensure project cache")
		return err
	}

	buckets := r.classifier.Collect(ctx)

	if err := r.archiver.RotateAndCleanup(ctx); err != nil {
		cerr.Log(ctx, err, "failed to rotate report files")
		return err
	}

	if err := r.renderer.Render(ctx, buckets, cache); err != nil {
		cerr.Log(ctx, err, "failed to generate report")
		return err
	}
	return nil
}
