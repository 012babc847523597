package runner

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/logging"
)

// DefaultNamespace is the artifact namespace results are written to.
const DefaultNamespace = "results"

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Concurrency limits how many hints are in flight at once.
	Concurrency int
	// EventBufferSize sets channel buffering for results.
	EventBufferSize int
	// ArtifactStore receives one markdown document per successful hint.
	// Results are not persisted when nil.
	ArtifactStore core.ArtifactStore
	// Namespace is the artifact namespace for results.
	Namespace string
	// Logging services.
	Logger logging.Logger
}

// Result is the outcome of one hint.
type Result struct {
	Index    int
	Hint     string
	Reply    string
	Artifact string
	Err      error
	Duration time.Duration
}

// OK reports whether the hint succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Runner sends hints to a single target. Public methods are safe for
// concurrent use.
type Runner struct {
	sender core.Sender
	target core.Address

	concurrency     int
	eventBufferSize int
	artifactStore   core.ArtifactStore
	namespace       string
	logger          logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

// New constructs a Runner with optional overrides.
func New(sender core.Sender, target core.Address, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Concurrency:     1,
		EventBufferSize: 16,
		Namespace:       DefaultNamespace,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	return &Runner{
		sender:          sender,
		target:          target,
		concurrency:     opts.Concurrency,
		eventBufferSize: opts.EventBufferSize,
		artifactStore:   opts.ArtifactStore,
		namespace:       opts.Namespace,
		logger:          logging.With(opts.Logger, "runner"),
		activeRuns:      make(map[string]context.CancelFunc),
	}
}

// Run starts an asynchronous batch. Results are delivered as hints finish;
// the channel is closed once every hint has been processed or the run was
// cancelled.
func (r *Runner) Run(ctx context.Context, hints []string) (string, <-chan Result, error) {
	if len(hints) == 0 {
		return "", nil, errors.New("no hints given")
	}

	runID := core.NewID()
	resultsCh := make(chan Result, r.eventBufferSize)

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	r.logger.Info("Run started", "run_id", runID, "target", r.target.String(), "hints", len(hints), "concurrency", r.concurrency)

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.activeRuns, runID)
			r.mu.Unlock()
			cancel()
			close(resultsCh)
		}()

		sem := make(chan struct{}, r.concurrency)
		var wg sync.WaitGroup
		for i, hint := range hints {
			select {
			case <-ctx.Done():
				// Remaining hints are reported as cancelled.
				for j := i; j < len(hints); j++ {
					resultsCh <- Result{Index: j, Hint: hints[j], Err: ctx.Err()}
				}
				wg.Wait()
				return
			case sem <- struct{}{}:
			}

			wg.Add(1)
			go func(i int, hint string) {
				defer func() { <-sem; wg.Done() }()
				resultsCh <- r.runOne(ctx, i, hint)
			}(i, hint)
		}
		wg.Wait()
	}()

	return runID, resultsCh, nil
}

// RunAll processes hints and returns their results in input order. The
// returned error joins every per-hint failure.
func (r *Runner) RunAll(ctx context.Context, hints []string) ([]Result, error) {
	_, resultsCh, err := r.Run(ctx, hints)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(hints))
	for res := range resultsCh {
		results[res.Index] = res
	}

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Hint, res.Err))
		}
	}
	return results, errors.Join(errs...)
}

// Cancel cancels a running batch by ID.
func (r *Runner) Cancel(runID string) error {
	r.mu.RLock()
	cancel, exists := r.activeRuns[runID]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

func (r *Runner) runOne(ctx context.Context, index int, hint string) Result {
	res := Result{Index: index, Hint: hint}
	start := time.Now()

	reply, err := r.sender.Send(ctx, r.target, core.NewMessage(hint))
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		r.logger.Warn("Hint failed", "hint", hint, "duration", res.Duration, "error", err)
		return res
	}
	res.Reply = reply.Content
	r.logger.Info("Hint completed", "hint", hint, "duration", res.Duration)

	if r.artifactStore != nil {
		name := ResultName(hint)
		if err := r.artifactStore.Save(r.namespace, name, []byte(FormatResult(hint, reply.Content))); err != nil {
			r.logger.Warn("Failed to store result", "hint", hint, "error", err)
		} else {
			res.Artifact = name
		}
	}
	return res
}

// ResultName returns the artifact name for the result of hint.
func ResultName(hint string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(hint), "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base)) + "_result.md"
}

// FormatResult renders a reply as a markdown document titled after hint.
func FormatResult(hint, reply string) string {
	title := strings.TrimSuffix(ResultName(hint), "_result.md")
	return "# " + title + "\n\n" + reply
}
