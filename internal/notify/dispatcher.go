package notify

import (
	"context"
	"sync"
	"time"

	"hubcoin/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	Delivered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notify_delivered_total",
		Help: "Notifications delivered to the sender",
	})
	Failed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notify_failed_total",
		Help: "Notifications the sender rejected",
	})
	Dropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notify_dropped_total",
		Help: "Notifications dropped because the queue was full or closed",
	})
)

func init() {
	prometheus.MustRegister(Delivered, Failed, Dropped)
}

// Notification is a plain-text message for one chat
type Notification struct {
	ChatID int64
	Text   string
}

// Sender delivers a single notification
type Sender interface {
	SendNotification(ctx context.Context, n Notification) error
}

// Dispatcher delivers notifications in the background. Delivery is best effort:
// nothing waits on it and failures are only logged.
type Dispatcher struct {
	sender  Sender
	queue   chan Notification
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts workers goroutines reading from a queue of size queueSize
func NewDispatcher(sender Sender, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		sender:  sender,
		queue:   make(chan Notification, queueSize),
		timeout: 10 * time.Second,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue queues n without blocking. It reports false when n was dropped.
func (d *Dispatcher) Enqueue(n Notification) bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		Dropped.Inc()
		return false
	}
	select {
	case d.queue <- n:
		return true
	default:
		Dropped.Inc()
		logger.Warn("notification queue full, dropping", "chat_id", n.ChatID)
		return false
	}
}

// Close stops accepting notifications, drains the queue and waits for workers
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n Notification) {
	defer func() {
		if r := recover(); r != nil {
			Failed.Inc()
			logger.Error("notification sender panicked", "chat_id", n.ChatID, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sender.SendNotification(ctx, n); err != nil {
		Failed.Inc()
		logger.Warn("notification delivery failed", "chat_id", n.ChatID, "error", err)
		return
	}
	Delivered.Inc()
}
