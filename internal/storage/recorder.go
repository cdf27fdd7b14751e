package storage

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// recorderQueueDepth bounds how many blocks may wait for the database
// writer. The DSP path never blocks on storage: when the queue is full,
// blocks are dropped and counted.
const recorderQueueDepth = 64

// WithRecorderLogger sets the logger for the recorder.
func WithRecorderLogger(logger *slog.Logger) func(*Recorder) {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// Recorder persists a receiver's channelized stream in the background. Its
// Observe method is registered as a pre-demodulation observer and is safe
// to call from the pipeline goroutine.
type Recorder struct {
	store      *Store
	sessionID  int64
	sampleRate int
	logger     *slog.Logger

	queue   chan queuedBlock
	dropped atomic.Int64

	closeOnce sync.Once
	done      chan struct{}
}

type queuedBlock struct {
	timestamp time.Time
	iq        []complex64
}

// NewRecorder creates a recording session and starts the writer goroutine.
func NewRecorder(store *Store, receiver, modulation string, sampleRate int, options ...func(*Recorder)) (*Recorder, error) {
	sessionID, err := store.CreateSession(receiver, modulation, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("storage: creating session for %s: %w", receiver, err)
	}

	r := &Recorder{
		store:      store,
		sessionID:  sessionID,
		sampleRate: sampleRate,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		queue:      make(chan queuedBlock, recorderQueueDepth),
		done:       make(chan struct{}),
	}
	for _, option := range options {
		option(r)
	}

	go r.write()
	return r, nil
}

// SessionID returns the recording session this recorder writes to.
func (r *Recorder) SessionID() int64 { return r.sessionID }

// Observe enqueues a channelized block for persistence. It never blocks;
// blocks are dropped when the writer cannot keep up.
func (r *Recorder) Observe(block []complex64) {
	iq := make([]complex64, len(block))
	copy(iq, block)

	select {
	case r.queue <- queuedBlock{timestamp: time.Now(), iq: iq}:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns how many blocks were discarded due to writer
// backpressure.
func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

// Close stops the writer after draining queued blocks.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.queue)
		<-r.done
		if n := r.dropped.Load(); n > 0 {
			r.logger.Warn("recorder dropped blocks", slog.Int64("count", n))
		}
	})
}

func (r *Recorder) write() {
	defer close(r.done)
	for b := range r.queue {
		if err := r.store.InsertBlock(r.sessionID, b.timestamp, r.sampleRate, b.iq); err != nil {
			r.logger.Error(fmt.Sprintf("storing block: %s", err))
		}
	}
}
