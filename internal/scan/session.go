package scan

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the sampling re-arm interval. Sampling on a fixed timer
// instead of every display frame trades a little latency for battery and CPU
// on kiosk hardware; do not tighten it into a busy loop.
const DefaultInterval = 350 * time.Millisecond

// State is the session lifecycle position.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateScanning
	StateMatched
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateScanning:
		return "scanning"
	case StateMatched:
		return "matched"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sink receives accepted (debounced) decodes and drives whatever the mode
// needs: price display, cart insertion, field fill. Sinks run on the
// session's loop goroutine; a slow sink delays the next sample, never
// overlaps it.
type Sink interface {
	HandleScan(d Decoded)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(d Decoded)

// HandleScan implements Sink.
func (f SinkFunc) HandleScan(d Decoded) { f(d) }

// Config describes one scan session.
type Config struct {
	// Device is the preferred camera device; empty selects automatically.
	Device string

	// Interval between samples; defaults to DefaultInterval.
	Interval time.Duration

	// DebounceWindow for repeat suppression; defaults to
	// DefaultDebounceWindow.
	DebounceWindow time.Duration

	// AutoStopOnMatch releases the camera after the first accepted decode.
	// The admin barcode-fill flows set this; the public scanner does not.
	AutoStopOnMatch bool

	// Sink receives accepted decodes. Required.
	Sink Sink

	// Events optionally receives lifecycle events, best effort.
	Events chan<- Event

	// Open acquires the camera; defaults to OpenCamera. Tests inject
	// fakes here.
	Open OpenFunc

	// Chain overrides the decode chain; defaults to DefaultChain.
	Chain *Chain

	// Now overrides the clock for tests.
	Now func() time.Time
}

// Session is one active capture+decode loop. It owns its Source exclusively
// and its debounce state is private to it. All scheduling is cooperative on
// a single goroutine: acquire once, then sample / decode / sink / re-arm.
type Session struct {
	cfg   Config
	src   Source
	chain *Chain
	deb   *Debouncer

	state    atomic.Int32
	stopc    chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Start acquires the camera and begins the scan loop. Acquisition failures
// return a *CameraUnavailableError (and an EventFailed on the events
// channel); nothing is leaked in that case.
func Start(cfg Config) (*Session, error) {
	if cfg.Sink == nil {
		return nil, errors.New("scan: config requires a Sink")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Open == nil {
		cfg.Open = OpenCamera
	}
	if cfg.Chain == nil {
		cfg.Chain = DefaultChain()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Session{
		cfg:   cfg,
		chain: cfg.Chain,
		deb:   NewDebouncer(cfg.DebounceWindow),
		stopc: make(chan struct{}),
		done:  make(chan struct{}),
	}
	s.setState(StateStarting)

	src, err := cfg.Open(cfg.Device)
	if err != nil {
		s.setState(StateFailed)
		s.emit(Event{Kind: EventFailed, Err: err, At: cfg.Now()})
		close(s.done)
		var unavail *CameraUnavailableError
		if errors.As(err, &unavail) {
			return nil, err
		}
		return nil, &CameraUnavailableError{Device: cfg.Device, Reason: "acquisition failed", Err: err}
	}

	s.src = src
	s.setState(StateScanning)
	s.emit(Event{Kind: EventStarted, At: cfg.Now()})
	go s.run()
	return s, nil
}

// State reports the current lifecycle position.
func (s *Session) State() State { return State(s.state.Load()) }

// Stop requests cooperative shutdown. It is idempotent and returns without
// waiting; the camera is released by the next scheduled check, bounded by
// one sampling interval. Use Wait to block until release.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stopc) })
}

// Wait blocks until the loop has exited and the camera is released.
func (s *Session) Wait() { <-s.done }

// Done reports loop completion without blocking.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

func (s *Session) stopped() bool {
	select {
	case <-s.stopc:
		return true
	default:
		return false
	}
}

// emit delivers an event without ever blocking the loop.
func (s *Session) emit(ev Event) {
	if s.cfg.Events == nil {
		return
	}
	select {
	case s.cfg.Events <- ev:
	default:
	}
}

func (s *Session) run() {
	defer close(s.done)
	defer s.release()

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-s.stopc:
			s.finish(StateStopped, nil)
			return
		case <-timer.C:
		}

		// The stop flag is consulted at the top of every iteration so a
		// Stop racing the timer never takes another sample.
		if s.stopped() {
			s.finish(StateStopped, nil)
			return
		}

		if terminal := s.sample(); terminal {
			return
		}
		timer.Reset(s.cfg.Interval)
	}
}

// sample grabs one frame, runs the decode chain and delivers an accepted
// result. It reports true when the session reached a terminal state.
func (s *Session) sample() bool {
	frame, err := s.src.Frame()
	if err != nil {
		if errors.Is(err, ErrStreamEnded) {
			slog.Info("camera stream ended", "device", s.cfg.Device)
			s.finish(StateStopped, nil)
			return true
		}
		// Transient grab failure: skip this sample.
		slog.Debug("frame grab failed", "error", err)
		return false
	}

	w, h := frameSize(frame)
	if w == 0 || h == 0 {
		return false
	}

	d, ok := s.chain.Decode(frame)
	if !ok {
		return false
	}

	now := s.cfg.Now()
	if !s.deb.ShouldEmit(d.Payload, now) {
		return false
	}
	d.At = now

	s.emit(Event{Kind: EventMatched, Payload: d.Payload, At: now})
	s.cfg.Sink.HandleScan(d)

	if s.cfg.AutoStopOnMatch {
		s.finish(StateMatched, nil)
		return true
	}
	return false
}

func (s *Session) finish(st State, err error) {
	s.setState(st)
	kind := EventStopped
	if st == StateFailed {
		kind = EventFailed
	}
	s.emit(Event{Kind: kind, Err: err, At: s.cfg.Now()})
}

// release closes the source on every exit path. Source.Close is idempotent,
// so racing an external Stop is harmless.
func (s *Session) release() {
	if s.src == nil {
		return
	}
	if err := s.src.Close(); err != nil {
		slog.Warn("releasing camera", "device", s.cfg.Device, "error", err)
	}
}
