package gaia

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jd-opensource/oxygent-go/config"
	"github.com/jd-opensource/oxygent-go/internal/metrics"
	"github.com/jd-opensource/oxygent-go/mas"
	"github.com/jd-opensource/oxygent-go/oxy"
)

// Result is one finished task, as written to the run's JSONL output.
type Result struct {
	RunID      string        `json:"run_id"`
	TaskID     string        `json:"task_id"`
	Level      int           `json:"level"`
	Question   string        `json:"question"`
	TrueAnswer string        `json:"true_answer"`
	Response   string        `json:"response"`
	Status     string        `json:"status"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
}

// Summary aggregates a suite run. Outcomes are recorded, not graded.
type Summary struct {
	RunID     string
	Total     int
	Ran       int
	Skipped   int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Runner executes benchmark tasks against an assembled space.
type Runner struct {
	space   *mas.MAS
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewRunner creates a benchmark runner.
func NewRunner(space *mas.MAS, cfg *config.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		space:   space,
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "gaia.runner")),
		metrics: metrics.Default(),
	}
}

// runTask executes one task through the master agent under the task timeout.
func (r *Runner) runTask(ctx context.Context, task Task) Result {
	taskCtx := ctx
	if r.cfg.Bench.TaskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, r.cfg.Bench.TaskTimeout)
		defer cancel()
	}

	args := map[string]any{"query": task.Question}
	if task.FileName != "" {
		args["file_name"] = task.FileName
	}

	start := time.Now()
	resp, err := r.space.ChatWithAgent(taskCtx, args)
	elapsed := time.Since(start)

	result := Result{
		TaskID:     task.TaskID,
		Level:      task.Level,
		Question:   task.Question,
		TrueAnswer: task.FinalAnswer,
		Duration:   elapsed,
	}
	switch {
	case err != nil && taskCtx.Err() == context.DeadlineExceeded:
		result.Status = StatusTimeout
		result.Error = err.Error()
	case err != nil:
		result.Status = StatusFailed
		result.Error = err.Error()
	case resp.State != oxy.StateCompleted:
		result.Status = StatusFailed
		result.Error = resp.Err
	default:
		result.Status = StatusSuccess
		result.Response = resp.Output
	}

	r.metrics.ObserveBenchTask(result.Status, elapsed)
	r.logger.Info("task finished",
		zap.String("task_id", task.TaskID),
		zap.String("status", result.Status),
		zap.Duration("duration", elapsed))
	return result
}

// RunSingle executes one task by ID, or an ad-hoc question when question
// is non-empty.
func (r *Runner) RunSingle(ctx context.Context, tasks []Task, taskID, question string) (Result, error) {
	var task Task
	if question != "" {
		task = Task{TaskID: "adhoc-" + uuid.NewString()[:8], Question: question}
	} else {
		var err error
		task, err = Find(tasks, taskID)
		if err != nil {
			return Result{}, err
		}
	}
	result := r.runTask(ctx, task)
	result.RunID = "single-" + uuid.NewString()[:8]
	return result, nil
}

// RunSuite executes the full task list with the configured worker count,
// appending each outcome to a checkpoint and the run's JSONL file, and
// persisting records to the store when one is provided. Succeeded tasks go
// to cp; failed and timed-out tasks go to failed, so the main checkpoint
// holds only work that never needs re-running. A nil failed routes
// everything to cp.
func (r *Runner) RunSuite(ctx context.Context, tasks []Task, cp, failed *Checkpoint, store *Store) (*Summary, error) {
	runID := time.Now().UTC().Format("20060102-150405") + "-" + uuid.NewString()[:8]
	summary := &Summary{RunID: runID, Total: len(tasks)}
	start := time.Now()

	outPath := filepath.Join(r.cfg.Output.Dir, fmt.Sprintf("run-%s.jsonl", runID))
	if err := os.MkdirAll(r.cfg.Output.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("create result file: %w", err)
	}
	defer out.Close()

	if failed == nil {
		failed = cp
	}

	var mu sync.Mutex
	writeResult := func(res Result) error {
		mu.Lock()
		defer mu.Unlock()

		target := cp
		if res.Status != StatusSuccess {
			target = failed
		}
		if err := target.Append(Record{
			TaskID:     res.TaskID,
			Question:   res.Question,
			TrueAnswer: res.TrueAnswer,
			Response:   res.Response,
			Status:     res.Status,
		}); err != nil {
			return err
		}
		line, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if _, err := out.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("write result: %w", err)
		}

		switch res.Status {
		case StatusSuccess:
			summary.Succeeded++
		default:
			summary.Failed++
		}
		summary.Ran++
		return nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.cfg.Bench.Concurrency)

	for _, task := range tasks {
		if r.cfg.Bench.Resume {
			if status, ok := cp.Processed(task.TaskID); ok && status == StatusSuccess {
				summary.Skipped++
				continue
			}
		}
		task := task
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			res := r.runTask(groupCtx, task)
			res.RunID = runID

			if store != nil {
				rec := &TaskRecord{
					RunID:      runID,
					TaskID:     res.TaskID,
					Level:      res.Level,
					Question:   res.Question,
					TrueAnswer: res.TrueAnswer,
					Response:   res.Response,
					Status:     res.Status,
					DurationMS: res.Duration.Milliseconds(),
				}
				if err := store.Save(groupCtx, rec); err != nil {
					r.logger.Warn("store save failed", zap.Error(err))
				}
			}
			return writeResult(res)
		})
	}

	err = group.Wait()
	summary.Elapsed = time.Since(start)
	r.logger.Info("suite finished",
		zap.String("run_id", runID),
		zap.Int("total", summary.Total),
		zap.Int("ran", summary.Ran),
		zap.Int("skipped", summary.Skipped),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed),
		zap.String("results", outPath))
	if err != nil {
		return summary, err
	}
	return summary, nil
}
