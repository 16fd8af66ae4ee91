// Package optimizer converts raster images under an asset root into resized
// WebP files written beside their sources. A derived file that is not older
// than its source is left alone, so an unchanged tree is a no-op.
package optimizer

import (
	"context"
	"fmt"
	"time"

	"club-la-victoria/internal/common/logger"
	"club-la-victoria/internal/common/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Runner struct {
	config   *Config
	executor *Executor
	logger   logger.Logger
}

func NewRunner(config *Config, encoder Encoder, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Runner{
		config:   config,
		executor: NewExecutor(encoder, log),
		logger:   log.WithFields(map[string]interface{}{"component": "optimizer"}),
	}
}

// Planner returns the planner Run uses for root.
func (r *Runner) Planner(root string) *Planner {
	return NewPlanner(root, NewPolicy(r.config.Rules, r.config.DefaultWidth), r.config.Quality)
}

// Run discovers and converts every supported image under root. Per file
// failures end up in the summary; the error is reserved for a root that
// cannot be walked.
func (r *Runner) Run(ctx context.Context, root string) (*Summary, error) {
	planner := r.Planner(root)
	b := r.newBatch(ctx)

	for path, err := range Discover(root) {
		if err != nil {
			if rootErr, ok := err.(*RootError); ok {
				b.wait()
				return nil, rootErr
			}
			b.addFailed(&Task{SourcePath: path, DerivedPath: DerivedPath(path)}, err.Error())
			continue
		}
		if task, ok := planner.Plan(path); ok {
			b.add(task)
		}
	}

	return b.finish(), nil
}

// RunTasks converts an explicit task list, e.g. from a manifest.
func (r *Runner) RunTasks(ctx context.Context, tasks []*Task) *Summary {
	b := r.newBatch(ctx)
	for _, task := range tasks {
		b.add(task)
	}
	return b.finish()
}

// batch runs tasks on a bounded pool and keeps results in submission order.
type batch struct {
	r       *Runner
	ctx     context.Context
	group   errgroup.Group
	slots   []*Result
	claimed map[string]string
	runID   string
	start   time.Time
}

func (r *Runner) newBatch(ctx context.Context) *batch {
	b := &batch{
		r:       r,
		ctx:     ctx,
		claimed: make(map[string]string),
		runID:   uuid.NewString(),
		start:   time.Now(),
	}
	b.group.SetLimit(r.config.Workers)
	r.logger.Info("optimizer run started", map[string]interface{}{
		"runId":   b.runID,
		"workers": r.config.Workers,
		"quality": r.config.Quality,
	})
	return b
}

func (b *batch) add(task *Task) {
	if first, taken := b.claimed[task.DerivedPath]; taken {
		b.addFailed(task, fmt.Sprintf("derived path %s already claimed by %s", task.DerivedPath, first))
		return
	}
	b.claimed[task.DerivedPath] = task.SourcePath

	slot := new(Result)
	b.slots = append(b.slots, slot)
	b.group.Go(func() error {
		*slot = b.r.executor.Execute(b.ctx, task)
		return nil
	})
}

func (b *batch) addFailed(task *Task, message string) {
	res := failed(task, message)
	b.slots = append(b.slots, &res)
}

func (b *batch) wait() {
	_ = b.group.Wait()
}

func (b *batch) finish() *Summary {
	b.wait()

	summary := &Summary{RunID: b.runID}
	for _, slot := range b.slots {
		summary.add(*slot)
		b.r.record(*slot)
	}
	summary.Duration = time.Since(b.start)

	metrics.ImageBytesSaved.Add(float64(summary.BytesSaved()))
	b.r.logger.Info("optimizer run finished", map[string]interface{}{
		"runId":     summary.RunID,
		"optimized": summary.Optimized,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
		"duration":  summary.Duration.String(),
	})
	return summary
}

func (r *Runner) record(res Result) {
	metrics.ImageTasks.WithLabelValues(string(res.Kind)).Inc()

	fields := map[string]interface{}{
		"source": res.Task.SourcePath,
		"kind":   string(res.Kind),
	}
	switch res.Kind {
	case KindOptimized:
		fields["originalBytes"] = res.OriginalBytes
		fields["newBytes"] = res.NewBytes
		fields["width"] = res.Width
		r.logger.Debug("image optimized", fields)
	case KindSkipped:
		fields["reason"] = string(res.Reason)
		r.logger.Debug("image skipped", fields)
	case KindFailed:
		fields["error"] = res.Message
		if res.Err != nil {
			fields["errorCode"] = string(res.Err.Code)
		}
		r.logger.Warn("image failed", fields)
	}
}
