package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"playden/internal/config"
	"playden/internal/logging"
	"playden/internal/media/ffprobe"
	"playden/internal/metrics"
	"playden/internal/services/ffmpeg"
	"playden/internal/store"
)

// Job is one unit of transcoding work. Info carries the probe result captured
// at upload time so workers never re-inspect the source.
type Job struct {
	VideoID    string
	SourcePath string
	Info       ffprobe.Info
}

// Pool runs transcoding jobs on a fixed set of workers over an unbounded
// FIFO queue. Jobs are never cancelled once a worker picks them up; Stop
// waits for in-flight work to finish.
type Pool struct {
	cfg       *config.Config
	store     *store.Store
	extractor ffmpeg.Extractor
	logger    *slog.Logger
	workers   int

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Job
	active  int
	running bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool constructs a pool sized from the configuration.
func NewPool(cfg *config.Config, st *store.Store, extractor ffmpeg.Extractor, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := cfg.Workers.Count
	if workers <= 0 {
		workers = 1
	}
	pool := &Pool{
		cfg:       cfg,
		store:     st,
		extractor: extractor,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		workers:   workers,
	}
	pool.cond = sync.NewCond(&pool.mu)
	return pool
}

// Start launches the worker goroutines. Calling Start on a running pool is
// a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx, i)
	}
	p.logger.Info("worker pool started", logging.Int("workers", p.workers))
}

// Stop shuts the pool down. Queued jobs are abandoned in the queue; jobs
// already running finish before Stop returns.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	p.cancel = nil
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
	if cancel != nil {
		cancel()
	}
	p.logger.Info("worker pool stopped")
}

// Enqueue appends a job to the queue. The queue is unbounded; Enqueue never
// blocks.
func (p *Pool) Enqueue(job Job) {
	p.mu.Lock()
	p.queue = append(p.queue, job)
	depth := len(p.queue)
	p.cond.Signal()
	p.mu.Unlock()

	metrics.QueuedJobs.Set(float64(depth))
	p.logger.Info("job enqueued",
		logging.String(logging.FieldVideoID, job.VideoID),
		logging.Int("queue_depth", depth))
}

// Active returns the number of jobs currently being processed.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// QueueDepth returns the number of jobs waiting for a worker.
func (p *Pool) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	logger := p.logger.With(logging.Int("worker", id))
	for {
		p.mu.Lock()
		for p.running && len(p.queue) == 0 {
			p.cond.Wait()
		}
		if !p.running {
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue = p.queue[1:]
		p.active++
		depth := len(p.queue)
		p.mu.Unlock()

		metrics.QueuedJobs.Set(float64(depth))
		metrics.ActiveJobs.Inc()
		logger.Info("job started", logging.String(logging.FieldVideoID, job.VideoID))

		p.process(ctx, job)

		p.mu.Lock()
		p.active--
		p.mu.Unlock()
		metrics.ActiveJobs.Dec()
	}
}
