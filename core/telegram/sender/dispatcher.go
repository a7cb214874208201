// Package sender executes outbound Telegram API calls on a bounded worker
// pool so handlers return quickly even when the API is slow or flaky.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"relaybot/core/logger"
	"relaybot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed reports an enqueue after the dispatcher was stopped.
	ErrQueueClosed = errors.New("sender: queue closed")
	// ErrQueueFull reports a saturated queue; the task was rejected.
	ErrQueueFull = errors.New("sender: queue full")

	botTokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options tunes the dispatcher. Zero values fall back to defaults.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the total time spent on one task, retries included.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type task struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher runs queued Telegram calls on a fixed worker pool, retrying
// transient failures with linear backoff.
type Dispatcher struct {
	opts    Options
	queue   chan task
	closed  chan struct{}
	closing sync.Once
	workers sync.WaitGroup
	failed  atomic.Uint64
}

// NewDispatcher builds the dispatcher and starts its workers.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		opts:   opts.withDefaults(),
		closed: make(chan struct{}),
	}
	d.queue = make(chan task, d.opts.QueueSize)

	d.workers.Add(d.opts.Workers)
	for i := 0; i < d.opts.Workers; i++ {
		go func() {
			defer d.workers.Done()
			for t := range d.queue {
				d.execute(t)
			}
		}()
	}
	return d
}

// Enqueue schedules run for asynchronous execution. The closure must be
// idempotent when retries are enabled. Enqueue never blocks: a full
// queue returns ErrQueueFull.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("sender: nil run function")
	}
	select {
	case <-d.closed:
		return ErrQueueClosed
	default:
	}

	select {
	case d.queue <- task{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns how many tasks exhausted their retries.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.failed.Load()
}

// Close rejects new tasks, drains the queue, and waits for the workers.
func (d *Dispatcher) Close() {
	d.closing.Do(func() {
		close(d.closed)
		close(d.queue)
		d.workers.Wait()
	})
}

func (d *Dispatcher) execute(t task) {
	ctx := t.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	budget, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	logger.Debug(ctx, "tg.sender", "send.start", t.attrs(ctx)...)

	attempts := d.opts.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := budget.Err(); err != nil {
			lastErr = err
			break
		}

		err := t.run()
		if err == nil {
			attrs := t.attrs(ctx)
			if attempt > 1 {
				attrs = append(attrs, slog.Int("attempt", attempt))
			}
			attrs = append(attrs, slog.Int("elapsed_ms", elapsedMS(start)))
			logger.Debug(ctx, "tg.sender", "send.success", attrs...)
			return
		}

		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == attempts {
			break
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-budget.Done():
			timer.Stop()
			lastErr = budget.Err()
		case <-timer.C:
			logger.Debug(ctx, "tg.sender", "send.retry.backoff",
				append(t.attrs(ctx),
					slog.Int("attempt", attempt),
					slog.Duration("delay", delay),
				)...,
			)
			continue
		}
		break
	}

	d.failed.Add(1)
	logger.Error(ctx, "tg.sender", "send.fail",
		append(t.attrs(ctx),
			slog.String("error", redactError(lastErr)),
			slog.String("error_kind", classifyError(lastErr)),
			slog.Int("attempts", attempts),
			slog.Int("elapsed_ms", elapsedMS(start)),
		)...,
	)
}

func (t task) attrs(ctx context.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", t.action)}
	if t.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", t.endpoint))
	}
	if rid := logger.RIDFrom(ctx); rid != "" {
		attrs = append(attrs, slog.String("rid", rid))
	}
	if chatID := logger.ChatIDFrom(ctx); chatID != 0 {
		attrs = append(attrs, slog.Int64("chat_id", chatID))
	}
	if userID := logger.UserIDFrom(ctx); userID != 0 {
		attrs = append(attrs, slog.Int64("user_id", userID))
	}
	return attrs
}

func elapsedMS(start time.Time) int {
	d := time.Since(start)
	if d <= 0 {
		return 0
	}
	return int(logger.RoundMS(d) / time.Millisecond)
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return "timeout"
		}
		if opErr.Op == "dial" {
			return "dial"
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "timeout"
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			if kind := classifyError(urlErr.Err); kind != "" && kind != "unknown" {
				return kind
			}
		}
	}

	switch status := httpStatusFromError(err); {
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}

	return "unknown"
}

// redactError masks bot tokens so API errors never leak credentials into logs.
func redactError(err error) string {
	if err == nil {
		return ""
	}
	return botTokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

func httpStatusFromError(err error) int {
	if err == nil {
		return 0
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return http.StatusTooManyRequests
	}

	// telebot formats API errors as "... (400)"; recover the code.
	msg := err.Error()
	from := strings.LastIndex(msg, "(")
	to := strings.LastIndex(msg, ")")
	if from >= 0 && to > from+1 {
		if code, convErr := strconv.Atoi(strings.TrimSpace(msg[from+1 : to])); convErr == nil {
			return code
		}
	}

	return 0
}
