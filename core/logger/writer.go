package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// sink is one log destination. Error sinks receive ERROR lines only.
type sink struct {
	buf      *bufio.Writer
	errsOnly bool
}

type logLine struct {
	data  []byte
	isErr bool
}

// asyncWriter fans log lines out to its sinks from a single goroutine, so a
// slow file never blocks a handler unless the queue is full.
type asyncWriter struct {
	queue   chan logLine
	flushes chan chan error
	done    chan struct{}

	// gate keeps Write from sending on a closed queue.
	gate   sync.RWMutex
	closed bool

	mu    sync.Mutex
	sinks []sink
	err   error
}

// newAsyncWriter builds a writer for the regular outputs plus the error-only
// outputs. Nil writers are skipped.
func newAsyncWriter(outputs, errOutputs []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		queue:   make(chan logLine, 512),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
	}
	add := func(list []io.Writer, errsOnly bool) {
		for _, out := range list {
			if out != nil {
				w.sinks = append(w.sinks, sink{buf: bufio.NewWriterSize(out, bufSize), errsOnly: errsOnly})
			}
		}
	}
	add(outputs, false)
	add(errOutputs, true)
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				_ = w.flush()
				return
			}
			w.write(line)
		case ack := <-w.flushes:
			ack <- w.flush()
		}
	}
}

// Write queues a copy of p. isErr also routes the line to error sinks. When
// the queue is full the caller waits rather than losing the line.
func (w *asyncWriter) Write(p []byte, isErr bool) error {
	if err := w.lastErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.gate.RLock()
	defer w.gate.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.queue <- logLine{data: append([]byte(nil), p...), isErr: isErr}
	return nil
}

// Flush blocks until everything queued so far reached the sinks.
func (w *asyncWriter) Flush() error {
	if err := w.lastErr(); err != nil {
		return err
	}
	w.gate.RLock()
	defer w.gate.RUnlock()
	if w.closed {
		return nil
	}
	ack := make(chan error, 1)
	w.flushes <- ack
	return <-ack
}

// Close drains the queue and returns the first write error seen.
func (w *asyncWriter) Close() error {
	w.gate.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.gate.Unlock()
	<-w.done
	return w.lastErr()
}

func (w *asyncWriter) write(line logLine) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.sinks {
		if s.errsOnly && !line.isErr {
			continue
		}
		if _, err := s.buf.Write(line.data); err != nil {
			w.keep(err)
			continue
		}
		if err := s.buf.Flush(); err != nil {
			w.keep(err)
		}
	}
}

func (w *asyncWriter) flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, s := range w.sinks {
		if err := s.buf.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// keep records the first write error; the caller holds mu.
func (w *asyncWriter) keep(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *asyncWriter) lastErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
