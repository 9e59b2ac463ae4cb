package enforce

import (
	"sync"
	"time"

	"github.com/pktwall/pktwall/capture"
)

// RateLimiter wraps another Engine and converts passing verdicts into
// RATE_LIMIT for flows exceeding a count-per-interval budget. Flows the
// inner engine already drops or rejects are left untouched.
type RateLimiter struct {
	inner    Engine
	key      KeyFunc
	interval time.Duration
	max      int

	mu      sync.Mutex
	windows map[uint64]*rateWindow

	now func() time.Time
}

type rateWindow struct {
	start time.Time
	ctr   int
}

var _ Engine = (*RateLimiter)(nil)

// NewRateLimiter creates a rate-limiting engine allowing max packets per
// flow per interval before throttling. A nil key function gets the FNV
// digest.
func NewRateLimiter(inner Engine, interval time.Duration, max int, key KeyFunc) *RateLimiter {
	if key == nil {
		key = DefaultKeyFunc
	}
	return &RateLimiter{
		inner:    inner,
		key:      key,
		interval: interval,
		max:      max,
		windows:  make(map[uint64]*rateWindow),
		now:      time.Now,
	}
}

// exceeded counts one packet for the flow and reports whether the flow
// is over budget in the current window.
func (r *RateLimiter) exceeded(flow uint64) bool {
	if r.max <= 0 || r.interval <= 0 {
		return false
	}
	t := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[flow]
	if !ok {
		w = &rateWindow{start: t}
		r.windows[flow] = w
	}
	if t.Sub(w.start) > r.interval {
		w.start = t
		w.ctr = 0
	}
	w.ctr++
	return w.ctr > r.max
}

func (r *RateLimiter) throttle(flow uint64, d Decision) Decision {
	over := r.exceeded(flow)
	if d.Action != ActionPass {
		return d
	}
	if over {
		return Decision{Action: ActionRateLimit, RuleID: RuleRateLimit}
	}
	return d
}

// Decide classifies the packet through the inner engine, then applies
// the flow budget.
func (r *RateLimiter) Decide(data []byte, length uint16) Decision {
	d := r.inner.Decide(data, length)
	if int(length) > MaxFrameSize {
		// jumbo frames never count against the flow budget
		return d
	}
	return r.throttle(r.key(data), d)
}

// DecideRecord classifies a captured record, then applies the flow
// budget.
func (r *RateLimiter) DecideRecord(rec capture.Record) Decision {
	d := r.inner.DecideRecord(rec)
	if rec.Length > MaxFrameSize {
		return d
	}
	return r.throttle(rec.FlowID, d)
}

// EnforceFlowPolicy delegates to the inner engine.
func (r *RateLimiter) EnforceFlowPolicy(flow uint64, action Action) error {
	return r.inner.EnforceFlowPolicy(flow, action)
}

// DefaultAction delegates to the inner engine.
func (r *RateLimiter) DefaultAction() Action {
	return r.inner.DefaultAction()
}

// SetDefaultAction delegates to the inner engine.
func (r *RateLimiter) SetDefaultAction(action Action) {
	r.inner.SetDefaultAction(action)
}
