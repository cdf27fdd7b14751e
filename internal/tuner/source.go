package tuner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// defaultBlockSize is the number of complex samples per delivered block:
// 20 ms of capture at 960 kHz, 8 ms at 2.4 MHz.
const defaultBlockSize = 19200

// restartDelay spaces out respawn attempts after the capture process dies.
const restartDelay = time.Second

// ErrAlreadyRunning is returned when Start is called on a running source.
var ErrAlreadyRunning = errors.New("tuner: source is already running")

// Handler builds the capture command for a concrete SDR frontend.
type Handler interface {
	// Cmd returns the command that streams raw unsigned 8-bit IQ on stdout
	// for the given center frequency.
	Cmd(ctx context.Context, centerHz int64) *exec.Cmd

	// Device names the frontend kind, e.g. "RTL-SDR".
	Device() string
}

// WithLogger sets the logger for the source.
func WithLogger(logger *slog.Logger) func(*Source) {
	return func(s *Source) {
		s.logger = logger.With(
			slog.String("tuner", s.name),
			slog.String("device", s.handler.Device()),
		)
	}
}

// WithBlockSize overrides the delivered block size in complex samples. The
// size must be a multiple of BlockAlign.
func WithBlockSize(size int) func(*Source) {
	return func(s *Source) {
		if size <= 0 || size%BlockAlign != 0 {
			panic(fmt.Sprintf("tuner: block size %d is not a positive multiple of %d", size, BlockAlign))
		}
		s.blockSize = size
	}
}

// Source acquires wideband IQ by running an external capture binary and
// reading its raw sample stream. It is the single producer feeding every
// attached consumer: blocks, retune notifications and ready-state changes
// are all dispatched synchronously, one at a time.
type Source struct {
	name       string
	sampleRate int
	handler    Handler
	blockSize  int
	logger     *slog.Logger

	// mu serializes dispatch to consumers against attach/detach and
	// retune/ready notifications, upholding the between-blocks
	// reconfiguration contract.
	mu        sync.Mutex
	consumers []Consumer

	centerHz atomic.Int64
	ready    atomic.Bool
	running  atomic.Bool

	retune chan int64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSource creates a source with a discard logger and default block size.
func NewSource(name string, sampleRate int, centerHz int64, h Handler, options ...func(*Source)) *Source {
	s := &Source{
		name:       name,
		sampleRate: sampleRate,
		handler:    h,
		blockSize:  defaultBlockSize,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		retune:     make(chan int64, 1),
	}
	s.centerHz.Store(centerHz)

	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Source) Name() string         { return s.name }
func (s *Source) SampleRate() int      { return s.sampleRate }
func (s *Source) CenterFrequency() int64 { return s.centerHz.Load() }
func (s *Source) IsReady() bool        { return s.ready.Load() }

// Attach registers a consumer for blocks and notifications.
func (s *Source) Attach(c Consumer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consumers = append(s.consumers, c)
}

// Detach removes a previously attached consumer. The consumer receives no
// callbacks after Detach returns.
func (s *Source) Detach(c Consumer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, have := range s.consumers {
		if have == c {
			s.consumers = append(s.consumers[:i], s.consumers[i+1:]...)
			return
		}
	}
}

// SetCenterFrequency retunes the capture to a new absolute center frequency.
// Attached consumers are notified synchronously before the capture process
// restarts at the new frequency.
func (s *Source) SetCenterFrequency(centerHz int64) {
	s.centerHz.Store(centerHz)

	s.mu.Lock()
	for _, c := range s.consumers {
		c.TunerFrequencyChanged(centerHz)
	}
	s.mu.Unlock()

	if s.running.Load() {
		select {
		case s.retune <- centerHz:
		default: // a restart is already queued
		}
	}
}

// Start launches the acquisition loop. It returns once the loop is running;
// the loop respawns the capture process on failure until ctx is cancelled
// or Stop is called.
func (s *Source) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
	return nil
}

// Stop terminates the capture process and waits for the loop to exit.
func (s *Source) Stop() {
	if !s.running.Load() {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.running.Store(false)
}

func (s *Source) run(ctx context.Context) {
	defer s.wg.Done()
	defer s.setReady(false)

	for {
		if err := s.capture(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error(fmt.Sprintf("capture stopped: %s", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(restartDelay):
		}
	}
}

// capture runs one incarnation of the external command, delivering blocks
// until the process exits, a retune arrives or ctx is cancelled.
func (s *Source) capture(ctx context.Context) error {
	cmdCtx, cmdCancel := context.WithCancel(ctx)
	defer cmdCancel()

	cmd := s.handler.Cmd(cmdCtx, s.centerHz.Load())

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}
	if err = cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", s.handler.Device(), err)
	}

	s.logger.Info("capture started",
		slog.Int64("centerHz", s.centerHz.Load()),
		slog.Int("sampleRate", s.sampleRate))

	go s.handleStderr(stderr)

	raw := make([]byte, s.blockSize*2)
	block := make([]complex64, s.blockSize)

	var readErr error
loop:
	for {
		select {
		case <-ctx.Done():
			readErr = ctx.Err()
			break loop
		case <-s.retune:
			s.logger.Info("restarting capture after retune",
				slog.Int64("centerHz", s.centerHz.Load()))
			break loop
		default:
		}

		if _, err := io.ReadFull(stdout, raw); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				readErr = fmt.Errorf("reading IQ stream: %w", err)
			}
			break loop
		}

		convertIQ(raw, block)
		s.setReady(true)
		s.dispatch(block)
	}

	s.setReady(false)
	cmdCancel()
	if err := cmd.Wait(); err != nil && readErr == nil && ctx.Err() == nil {
		return fmt.Errorf("%s exited: %w", s.handler.Device(), err)
	}
	return readErr
}

func (s *Source) dispatch(block []complex64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.consumers {
		c.IQReceived(block)
	}
}

func (s *Source) setReady(ready bool) {
	if s.ready.Swap(ready) == ready {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.consumers {
		c.ReadyStateChanged(ready)
	}
}

func (s *Source) handleStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.logger.Warn(fmt.Sprintf("%s >> %s", s.handler.Device(), line))
	}
}

// convertIQ turns interleaved unsigned 8-bit I/Q pairs into complex samples
// in [-1, 1].
func convertIQ(raw []byte, out []complex64) {
	for i := range out {
		out[i] = complex(
			(float32(raw[2*i])-127.5)/127.5,
			(float32(raw[2*i+1])-127.5)/127.5,
		)
	}
}
