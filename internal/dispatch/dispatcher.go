package dispatch

import (
	"context"
	"sync"
	"time"
)

// Logger defines the logging interface used by the dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Default pool sizing.
const (
	DefaultWorkers   = 4
	DefaultQueueSize = 256

	// jobTimeout bounds one delivery attempt against a stuck provider.
	jobTimeout = 30 * time.Second
)

// Config contains dispatcher configuration options.
type Config struct {
	// Workers is the number of delivery goroutines.
	Workers int

	// QueueSize is the job queue capacity. A full queue drops new jobs.
	QueueSize int
}

// job is one unit of delivery work.
type job struct {
	kind string
	run  func(ctx context.Context) error
}

// Dispatcher works push and mail deliveries on a bounded queue.
type Dispatcher struct {
	push   PushSender
	mail   MailSender
	logger Logger

	jobs chan job
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a dispatcher. Zero config values fall back to defaults; nil
// senders fall back to log-only sinks.
func New(cfg Config, push PushSender, mail MailSender, logger Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = noopLogger{}
	}
	if push == nil {
		push = &LogPushSender{Logger: logger}
	}
	if mail == nil {
		mail = &LogMailSender{Logger: logger}
	}

	d := &Dispatcher{
		push:   push,
		mail:   mail,
		logger: logger,
		jobs:   make(chan job, cfg.QueueSize),
	}

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.worker()
	}
	return d
}

// worker drains the job queue until Close.
func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		if err := j.run(ctx); err != nil {
			d.logger.Error("delivery failed", "kind", j.kind, "error", err)
		}
		cancel()
	}
}

// EnqueuePush queues one push notification for delivery.
// Returns false when the queue is full or the dispatcher is closed; the
// job is dropped, not blocked on.
func (d *Dispatcher) EnqueuePush(deviceToken, message string) bool {
	return d.enqueue(job{
		kind: "push",
		run: func(ctx context.Context) error {
			return d.push.SendPush(ctx, deviceToken, message)
		},
	})
}

// EnqueueMail queues one email for delivery.
// Returns false when the queue is full or the dispatcher is closed.
func (d *Dispatcher) EnqueueMail(to, subject, body string) bool {
	return d.enqueue(job{
		kind: "mail",
		run: func(ctx context.Context) error {
			return d.mail.SendMail(ctx, to, subject, body)
		},
	})
}

func (d *Dispatcher) enqueue(j job) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("delivery dropped, dispatcher closed", "kind", j.kind)
		return false
	}

	select {
	case d.jobs <- j:
		d.mu.Unlock()
		return true
	default:
		d.mu.Unlock()
		d.logger.Warn("delivery dropped, queue full", "kind", j.kind)
		return false
	}
}

// Close stops accepting jobs and waits for in-flight deliveries to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}
