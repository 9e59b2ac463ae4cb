package capture

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pktwall/pktwall/metrics"
)

// Start status codes shared with external callers polling the boundary
// interface.
const (
	StatusStarted        = 0
	StatusAlreadyRunning = 1
	StatusLaunchFailure  = 2
)

var (
	// ErrAlreadyRunning is returned by Start while a capture loop is
	// active.
	ErrAlreadyRunning = errors.New("capture already running")
	// ErrLaunch wraps source open failures; the producer stays stopped.
	ErrLaunch = errors.New("capture launch failure")
)

// StartStatus maps a Start error to the boundary status code.
func StartStatus(err error) int {
	switch {
	case err == nil:
		return StatusStarted
	case errors.Is(err, ErrAlreadyRunning):
		return StatusAlreadyRunning
	default:
		return StatusLaunchFailure
	}
}

// Source yields per-packet features for the capture loop.
type Source interface {
	// Open prepares the source on the named interface.
	Open(ifaceName string) error
	// Next returns the features of the next packet. It may block up to
	// the source's own poll timeout.
	Next() (Record, error)
	Close() error
}

// Producer owns the capture loop. It publishes one Record per captured
// packet into a ring it does not own; the ring (and any shared region
// backing it) must outlive the running loop.
type Producer struct {
	source Source

	mu      sync.Mutex
	running bool
	done    chan struct{}

	stop atomic.Bool
	ring *Ring

	produced atomic.Uint64
	dropped  atomic.Uint64
}

// idleInterval is how long the loop sleeps when no sink is configured.
const idleInterval = 10 * time.Millisecond

// NewProducer creates a producer reading from source.
func NewProducer(source Source) *Producer {
	return &Producer{source: source}
}

// Start opens the source on ifaceName and launches the capture loop in
// its own goroutine, returning immediately. A nil ring is tolerated: the
// loop idles until stopped, so the lifecycle can begin before a sink is
// wired. Returns ErrAlreadyRunning if the loop is active, or a wrapped
// ErrLaunch if the source cannot be opened.
func (p *Producer) Start(ifaceName string, ring *Ring) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrAlreadyRunning
	}

	if err := p.source.Open(ifaceName); err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrLaunch, ifaceName, err)
	}

	p.ring = ring
	p.stop.Store(false)
	p.done = make(chan struct{})
	p.running = true

	go p.run(ifaceName)

	log.WithFields(log.Fields{
		"interface": ifaceName,
	}).Info("capture started")
	return nil
}

func (p *Producer) run(ifaceName string) {
	defer func() {
		if err := p.source.Close(); err != nil {
			log.WithError(err).Warn("error closing capture source")
		}
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(p.done)
		log.WithField("interface", ifaceName).Info("capture stopped")
	}()

	for !p.stop.Load() {
		if p.ring == nil {
			// No sink configured yet; idle instead of spinning.
			time.Sleep(idleInterval)
			continue
		}

		rec, err := p.source.Next()
		if err != nil {
			log.WithError(err).Debug("capture read error")
			continue
		}

		if p.ring.Push(rec) {
			p.produced.Add(1)
			metrics.PacketsCaptured.WithLabelValues(ifaceName).Inc()
		} else {
			// Full ring is expected under burst load; the packet is
			// dropped rather than blocking the capture path.
			p.dropped.Add(1)
			metrics.RingFullDrops.Inc()
		}
	}
}

// Stop signals the capture loop and returns immediately without waiting
// for it to exit. Safe to call at any time; stopping a stopped producer
// is a no-op.
func (p *Producer) Stop() {
	p.stop.Store(true)
}

// Wait blocks until the capture loop has exited. Optional: the default
// shutdown contract is signal-and-return, but tests and graceful
// shutdown paths can join here.
func (p *Producer) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running reports whether the capture loop is active.
func (p *Producer) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// WriteIndex returns the last index published to the ring, or zero when
// no ring is wired. Safe from any goroutine, including before Start.
func (p *Producer) WriteIndex() uint64 {
	p.mu.Lock()
	ring := p.ring
	p.mu.Unlock()
	if ring == nil {
		return 0
	}
	return ring.WriteIndex()
}

// Produced returns the number of records published so far.
func (p *Producer) Produced() uint64 {
	return p.produced.Load()
}

// Dropped returns the number of records discarded on a full ring.
func (p *Producer) Dropped() uint64 {
	return p.dropped.Load()
}
