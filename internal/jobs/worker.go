package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sjperalta/arrendamientos-api/pkg/logger"
)

var (
	// ErrJobRunning is returned when a job with the same name is still in flight
	ErrJobRunning = errors.New("job already running")
	// ErrQueueFull is returned when the submission queue has no room left
	ErrQueueFull = errors.New("job queue full")
	// ErrStopped is returned for submissions after Shutdown
	ErrStopped = errors.New("worker stopped")
)

// Job represents a background task
type Job func(ctx context.Context) error

type task struct {
	name string
	job  Job
}

// Worker runs named jobs on a fixed pool of goroutines. At most one run per
// job name is in flight, so a calendar sweep and an on-demand run of the same
// sweep never overlap.
type Worker struct {
	ctx       context.Context
	cancel    context.CancelFunc
	schedCtx  context.Context
	stopSched context.CancelFunc
	wg        sync.WaitGroup
	queue     chan task
	workers   int

	mu       sync.Mutex
	stopped  bool
	running  map[string]bool
	lastRuns map[string]JobRun
	stats    WorkerStats
}

// JobRun describes the latest finished run of a named job
type JobRun struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

// WorkerStats holds statistics about the worker. CompletedJobs counts every
// finished job; FailedJobs is the subset that returned an error or panicked.
type WorkerStats struct {
	ActiveJobs    int               `json:"active_jobs"`
	CompletedJobs int64             `json:"completed_jobs"`
	FailedJobs    int64             `json:"failed_jobs"`
	QueueLength   int               `json:"queue_length"`
	Workers       int               `json:"workers"`
	Running       []string          `json:"running"`
	LastRuns      map[string]JobRun `json:"last_runs"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	schedCtx, stopSched := context.WithCancel(ctx)

	w := &Worker{
		ctx:       ctx,
		cancel:    cancel,
		schedCtx:  schedCtx,
		stopSched: stopSched,
		queue:     make(chan task, 32),
		workers:   numWorkers,
		running:   make(map[string]bool),
		lastRuns:  make(map[string]JobRun),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Submit queues a named job. It fails with ErrJobRunning while another run
// of the same name is queued or executing.
func (w *Worker) Submit(name string, job Job) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrStopped
	}
	if w.running[name] {
		return ErrJobRunning
	}

	select {
	case w.queue <- task{name: name, job: job}:
		w.running[name] = true
		return nil
	default:
		logger.Warn("[Worker] Queue full, rejecting job", "job", name)
		return ErrQueueFull
	}
}

// process handles jobs from the queue until it is closed
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for t := range w.queue {
		logger.Debug("[Worker] Picked job", "worker", workerID, "job", t.name)
		w.execute(t.name, t.job)
	}
}

// ScheduleCalendar runs a job each time next says it is due. next receives
// the current time and returns the following run time. A due run is skipped
// when the previous one is still going.
func (w *Worker) ScheduleCalendar(name string, next NextRun, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			at := next(time.Now())
			logger.Info("[Scheduler] Next run", "job", name, "at", at)
			timer := time.NewTimer(time.Until(at))
			select {
			case <-w.schedCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
				if !w.claim(name) {
					logger.Warn("[Scheduler] Previous run still active, skipping", "job", name)
					continue
				}
				w.execute(name, job)
			}
		}
	}()
}

func (w *Worker) claim(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.running[name] {
		return false
	}
	w.running[name] = true
	return true
}

// execute runs job with panic recovery, stats and error reporting. The
// caller must have claimed name.
func (w *Worker) execute(name string, job Job) {
	run := JobRun{StartedAt: time.Now()}
	w.mu.Lock()
	w.stats.ActiveJobs++
	w.mu.Unlock()

	var err error
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Worker] Job panic", "job", name, "panic", fmt.Sprint(r))
			sentry.CurrentHub().Recover(r)
			err = fmt.Errorf("panic: %v", r)
		}
		w.finish(name, run, err)
	}()

	err = job(w.ctx)
	if err != nil {
		logger.Error("[Worker] Job error", "job", name, "error", err)
		sentry.CaptureException(fmt.Errorf("job %s: %w", name, err))
		return
	}
	logger.Info("[Worker] Job completed", "job", name, "elapsed", time.Since(run.StartedAt))
}

func (w *Worker) finish(name string, run JobRun, err error) {
	run.FinishedAt = time.Now()
	if err != nil {
		run.Error = err.Error()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
	if err != nil {
		w.stats.FailedJobs++
	}
	w.lastRuns[name] = run
	delete(w.running, name)
}

// Shutdown stops the schedulers and rejects new submissions, then waits for
// queued and in-flight jobs to finish.
func (w *Worker) Shutdown() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()

	w.stopSched()
	w.wg.Wait()
	w.cancel()
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.Workers = w.workers
	stats.Running = make([]string, 0, len(w.running))
	for name := range w.running {
		stats.Running = append(stats.Running, name)
	}
	sort.Strings(stats.Running)
	stats.LastRuns = make(map[string]JobRun, len(w.lastRuns))
	for name, run := range w.lastRuns {
		stats.LastRuns[name] = run
	}
	return stats
}
