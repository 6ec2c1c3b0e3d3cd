// Package looper provides a UI thread for hosts that do not have one.
//
// A Looper runs posted tasks one at a time, in submission order, on a single
// goroutine. Posting never blocks and the queue is unbounded.
package looper

import (
	"sync"

	"mobileinput/internal/logging"
	"mobileinput/internal/metrics"
)

// Option configures a Looper.
type Option func(*Looper)

// WithPanicHandler sets a function called after a task panics. The looper
// keeps running either way.
func WithPanicHandler(fn func(logging.PanicReport)) Option {
	return func(l *Looper) { l.onPanic = fn }
}

// WithMetrics records the queue depth in m.
func WithMetrics(m *metrics.PluginMetrics) Option {
	return func(l *Looper) { l.depth = m.QueueDepth }
}

// Looper is a single-goroutine FIFO task runner.
type Looper struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}

	log     *logging.Logger
	depth   *metrics.Gauge
	onPanic func(logging.PanicReport)
}

// New starts a looper.
func New(log *logging.Logger, opts ...Option) *Looper {
	if log == nil {
		log = logging.Discard()
	}
	l := &Looper{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		log:  log.WithComponent("looper"),
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.run()
	return l
}

// Post queues task. It reports false, and drops the task, once the looper is
// closed.
func (l *Looper) Post(task func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.log.Warn("looper closed, dropping task")
		return false
	}
	l.queue = append(l.queue, task)
	l.setDepth(len(l.queue))
	l.mu.Unlock()

	l.signal()
	return true
}

// Sync waits until every task posted before it has run. It must not be
// called from a task.
func (l *Looper) Sync() {
	ch := make(chan struct{})
	if !l.Post(func() { close(ch) }) {
		<-l.done
		return
	}
	<-ch
}

// Len returns the number of queued tasks.
func (l *Looper) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Close stops accepting tasks, runs the ones already queued and waits for
// the goroutine to exit.
func (l *Looper) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.signal()
	<-l.done
}

// Done is closed once the looper has stopped.
func (l *Looper) Done() <-chan struct{} { return l.done }

func (l *Looper) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Looper) setDepth(n int) {
	if l.depth != nil {
		l.depth.Set(int64(n))
	}
}

func (l *Looper) run() {
	defer close(l.done)
	for {
		task, ok := l.next()
		if !ok {
			return
		}
		l.runTask(task)
	}
}

func (l *Looper) next() (func(), bool) {
	for {
		l.mu.Lock()
		if len(l.queue) > 0 {
			task := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.setDepth(len(l.queue))
			l.mu.Unlock()
			return task, true
		}
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return nil, false
		}
		<-l.wake
	}
}

func (l *Looper) runTask(task func()) {
	defer logging.Recover(l.log, "looper task", l.onPanic)
	task()
}
