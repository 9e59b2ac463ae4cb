package pipeline

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pktwall/pktwall/capture"
	"github.com/pktwall/pktwall/enforce"
	"github.com/pktwall/pktwall/format"
	"github.com/pktwall/pktwall/metrics"
	"github.com/pktwall/pktwall/transport"
)

// DecisionPipe drains the capture ring, classifies each record through
// the enforcement engine, and ships the outcome. It is the single
// consumer of the ring.
type DecisionPipe struct {
	stopper

	ring      *capture.Ring
	engine    enforce.Engine
	format    format.FormatInterface
	transport transport.TransportInterface

	pollInterval time.Duration
	wg           sync.WaitGroup
}

// PipeConfig wires ring, engine, formatter, and transport dependencies.
// Format and Transport may be nil to decide without exporting.
type PipeConfig struct {
	Ring      *capture.Ring
	Engine    enforce.Engine
	Format    format.FormatInterface
	Transport transport.TransportInterface

	// PollInterval is how long to sleep when the ring is empty. Zero
	// defaults to one millisecond.
	PollInterval time.Duration
}

// NewDecisionPipe creates a pipe from config.
func NewDecisionPipe(cfg *PipeConfig) *DecisionPipe {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &DecisionPipe{
		ring:         cfg.Ring,
		engine:       cfg.Engine,
		format:       cfg.Format,
		transport:    cfg.Transport,
		pollInterval: interval,
	}
}

// Start launches the drain loop. Returns ErrAlreadyStarted if running.
func (p *DecisionPipe) Start() error {
	if err := p.start(); err != nil {
		return err
	}
	stopCh := p.stopCh
	p.wg.Add(1)
	go p.run(stopCh)
	return nil
}

func (p *DecisionPipe) run(stopCh chan struct{}) {
	defer p.wg.Done()
	var rec capture.Record
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		if !p.ring.Pop(&rec) {
			// empty ring is expected when the producer is idle
			time.Sleep(p.pollInterval)
			continue
		}

		decision := p.engine.DecideRecord(rec)
		metrics.Decisions.WithLabelValues(decision.Action.String(), decision.RuleID).Inc()
		if rec.Alert {
			metrics.Alerts.Inc()
		}

		if p.format == nil {
			continue
		}
		event := NewDecisionEvent(rec, decision)
		key, data, err := p.format.Format(event)
		if err != nil {
			metrics.TransportErrors.WithLabelValues("format").Inc()
			log.WithError(err).Warn("error formatting decision event")
			continue
		}
		if p.transport == nil {
			continue
		}
		if err := p.transport.Send(key, data); err != nil {
			metrics.TransportErrors.WithLabelValues("send").Inc()
			log.WithError(err).Warn("error sending decision event")
		}
	}
}

// Shutdown stops the drain loop and waits for it to exit. Records still
// in the ring are left for a future consumer.
func (p *DecisionPipe) Shutdown() {
	p.stop()
	p.wg.Wait()
}
