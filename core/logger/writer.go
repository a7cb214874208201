package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// asyncWriter decouples log formatting from sink IO. Lines are queued and
// a single background goroutine fans them out to every sink, so a slow
// file or pipe never stalls a handler.
type asyncWriter struct {
	lines   chan []byte
	syncReq chan chan error

	mu      sync.Mutex
	outs    []*bufio.Writer
	failure error

	stopped  chan struct{}
	stopOnce sync.Once
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		lines:   make(chan []byte, 256),
		syncReq: make(chan chan error),
		stopped: make(chan struct{}),
	}
	for _, out := range writers {
		if out == nil {
			continue
		}
		w.outs = append(w.outs, bufio.NewWriterSize(out, bufSize))
	}
	go w.drain()
	return w
}

func (w *asyncWriter) drain() {
	for {
		select {
		case line, open := <-w.lines:
			if !open {
				w.syncAll()
				close(w.stopped)
				return
			}
			if len(line) > 0 {
				w.fanOut(line)
			}
		case ack := <-w.syncReq:
			ack <- w.syncAll()
		}
	}
}

// Write copies p and hands it to the drain goroutine. When the queue is
// saturated the call blocks instead of dropping the line.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.err(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	line := append([]byte(nil), p...)
	w.lines <- line
	return nil
}

// Flush blocks until every buffered line has reached its sinks.
func (w *asyncWriter) Flush() error {
	if err := w.err(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	w.syncReq <- ack
	return <-ack
}

// Close stops the drain goroutine after the queue is emptied and reports
// the first write error seen over the writer's lifetime.
func (w *asyncWriter) Close() error {
	w.stopOnce.Do(func() { close(w.lines) })
	<-w.stopped
	return w.err()
}

func (w *asyncWriter) fanOut(line []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, out := range w.outs {
		if _, err := out.Write(line); err != nil {
			w.recordErrLocked(err)
			return
		}
		if err := out.Flush(); err != nil {
			w.recordErrLocked(err)
			return
		}
	}
}

func (w *asyncWriter) syncAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, out := range w.outs {
		if err := out.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failure
}

func (w *asyncWriter) recordErrLocked(err error) {
	if w.failure == nil {
		w.failure = err
	}
}
