// Package telemetry bridges engine spans to OpenTelemetry and to the renderer.
package telemetry

import (
	"bytes"
	"sync"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultSizeLimit is the buffered size that forces a flush.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the interval between periodic flushes.
	DefaultTimeLimit = 50 * time.Millisecond
)

var errBatcherClosed = zerr.New("line batcher is closed")

// LineBatcher buffers console output of a span and hands it on in batches of
// whole lines, after a size limit is reached or a time limit passes.
// A trailing partial line is held back until it is completed or the batcher
// is closed. It is safe for concurrent use.
type LineBatcher struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu     sync.Mutex
	buffer bytes.Buffer
	ticker *time.Ticker
	stopCh chan struct{}
	closed bool
}

// NewLineBatcher returns a running LineBatcher. Non-positive limits select
// the defaults. Close stops the background ticker.
func NewLineBatcher(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *LineBatcher {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	lb := &LineBatcher{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
		stopCh:    make(chan struct{}),
		ticker:    time.NewTicker(timeLimit),
	}
	go lb.run()
	return lb
}

// Write buffers p.
func (lb *LineBatcher) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if lb.closed {
		return 0, errBatcherClosed
	}

	n, _ := lb.buffer.Write(p)
	if lb.buffer.Len() >= lb.sizeLimit {
		// An overlong line is passed on whole rather than held forever.
		lb.flushLocked(lb.buffer.Len())
		lb.ticker.Reset(lb.timeLimit)
	}
	return n, nil
}

// Flush passes on every complete line buffered so far.
func (lb *LineBatcher) Flush() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lb.closed {
		return
	}
	lb.flushLocked(bytes.LastIndexByte(lb.buffer.Bytes(), '\n') + 1)
}

// Close stops the background flusher and passes on everything buffered,
// including a trailing partial line.
func (lb *LineBatcher) Close() error {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if lb.closed {
		return nil
	}
	lb.closed = true
	close(lb.stopCh)
	lb.flushLocked(lb.buffer.Len())
	return nil
}

func (lb *LineBatcher) run() {
	for {
		select {
		case <-lb.ticker.C:
			lb.Flush()
		case <-lb.stopCh:
			lb.ticker.Stop()
			return
		}
	}
}

// flushLocked passes on the first n buffered bytes. mu must be held.
func (lb *LineBatcher) flushLocked(n int) {
	if n <= 0 {
		return
	}
	data := make([]byte, n)
	copy(data, lb.buffer.Next(n))
	if lb.onFlush != nil {
		lb.onFlush(data)
	}
}
