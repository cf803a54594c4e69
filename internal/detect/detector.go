package detect

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Logger receives detector diagnostics.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Detector runs classification requests on a worker pool.
// Submit never blocks: a full queue drops the request.
type Detector struct {
	// Configuration
	classifier  Classifier
	logger      Logger
	queueSize   int
	workerCount int
	timeout     time.Duration

	// State
	mu      sync.Mutex // protects queue creation/destruction
	queue   chan Request
	results chan Response
	running atomic.Bool
	wg      sync.WaitGroup

	// Stats
	submitted   atomic.Uint64
	processed   atomic.Uint64
	prechecked  atomic.Uint64
	failed      atomic.Uint64
	panicked    atomic.Uint64
	dropped     atomic.Uint64
	lost        atomic.Uint64
	totalTimeNs atomic.Int64
}

// Option configures a Detector.
type Option func(*Detector)

// WithQueueSize sets the request queue size.
func WithQueueSize(size int) Option {
	return func(d *Detector) {
		if size > 0 {
			d.queueSize = size
		}
	}
}

// WithWorkers sets the number of worker goroutines.
func WithWorkers(count int) Option {
	return func(d *Detector) {
		if count > 0 {
			d.workerCount = count
		}
	}
}

// WithTimeout sets the per-request classification timeout.
// Zero disables the timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Detector) {
		d.timeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a stopped detector using classifier for content that
// Precheck does not answer.
func New(classifier Classifier, opts ...Option) *Detector {
	d := &Detector{
		classifier:  classifier,
		logger:      nopLogger{},
		queueSize:   64,
		workerCount: 2,
		timeout:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start starts the worker pool.
func (d *Detector) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return ErrAlreadyRunning
	}

	d.queue = make(chan Request, d.queueSize)
	d.results = make(chan Response, d.queueSize)
	d.running.Store(true)

	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return nil
}

// Stop stops accepting requests and waits for queued requests to finish
// or for ctx to end. The results channel is closed once all workers exit.
func (d *Detector) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running.Load() {
		d.mu.Unlock()
		return ErrNotRunning
	}
	d.running.Store(false)
	close(d.queue)
	results := d.results
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(results)
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues a request.
func (d *Detector) Submit(req Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return ErrNotRunning
	}
	select {
	case d.queue <- req:
		d.submitted.Add(1)
		return nil
	default:
		d.dropped.Add(1)
		return ErrQueueFull
	}
}

// Results returns the channel responses are delivered on. It is nil
// before the first Start.
func (d *Detector) Results() <-chan Response {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.results
}

// Detect classifies content on the calling goroutine.
func (d *Detector) Detect(ctx context.Context, content string) (Result, error) {
	if r, ok := Precheck(content); ok {
		d.prechecked.Add(1)
		return r, nil
	}
	if d.classifier == nil {
		return Result{}, nil
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return d.classifier.Classify(ctx, content)
}

func (d *Detector) worker() {
	defer d.wg.Done()

	for req := range d.queue {
		resp := d.process(req)
		select {
		case d.results <- resp:
		default:
			d.lost.Add(1)
			d.logger.Warn("detect: result for block %d dropped, results channel full", req.Block)
		}
	}
}

// process runs one request with panic recovery.
func (d *Detector) process(req Request) (resp Response) {
	d.processed.Add(1)
	start := time.Now()

	resp = Response{
		ID:         req.ID,
		Session:    req.Session,
		Generation: req.Generation,
		Block:      req.Block,
	}

	defer func() {
		if r := recover(); r != nil {
			d.panicked.Add(1)
			resp.Result = Result{}
			resp.Err = fmt.Errorf("classifier panic: %v", r)
			d.logger.Warn("detect: classifier panic: %v\n%s", r, debug.Stack())
		}
		d.totalTimeNs.Add(time.Since(start).Nanoseconds())
	}()

	result, err := d.Detect(context.Background(), req.Content)
	if err != nil {
		d.failed.Add(1)
		d.logger.Warn("detect: block %d: %v", req.Block, err)
		resp.Err = err
		return resp
	}
	resp.Result = result
	d.logger.Debug("detect: block %d -> %s", req.Block, result)
	return resp
}

// QueueDepth returns the number of requests waiting.
func (d *Detector) QueueDepth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return 0
	}
	return len(d.queue)
}

// IsRunning returns true if the detector is running.
func (d *Detector) IsRunning() bool {
	return d.running.Load()
}

// Stats contains detector statistics.
type Stats struct {
	// Submitted is the number of requests accepted into the queue.
	Submitted uint64

	// Processed is the number of requests handled by workers.
	Processed uint64

	// Prechecked is the number of answers that skipped the classifier.
	Prechecked uint64

	// Failed is the number of classifier errors.
	Failed uint64

	// Panicked is the number of classifier panics.
	Panicked uint64

	// Dropped is the number of requests rejected by a full queue.
	Dropped uint64

	// Lost is the number of responses dropped by a full results channel.
	Lost uint64

	// AvgDuration is the average processing time.
	AvgDuration time.Duration
}

// Stats returns detector statistics.
func (d *Detector) Stats() Stats {
	processed := d.processed.Load()
	var avg int64
	if processed > 0 {
		avg = d.totalTimeNs.Load() / int64(processed)
	}
	return Stats{
		Submitted:   d.submitted.Load(),
		Processed:   processed,
		Prechecked:  d.prechecked.Load(),
		Failed:      d.failed.Load(),
		Panicked:    d.panicked.Load(),
		Dropped:     d.dropped.Load(),
		Lost:        d.lost.Load(),
		AvgDuration: time.Duration(avg),
	}
}
