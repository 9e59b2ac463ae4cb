package capture

import (
	"math/rand"
	"time"
)

// SimSource synthesizes packet features at a fixed rate, for running the
// pipeline without a capture device. Lengths are uniform in [100, 1500],
// flow identities are a monotonic counter, and every 50th packet raises
// the alert flag.
type SimSource struct {
	rng      *rand.Rand
	interval time.Duration
	flow     uint64
}

// NewSimSource creates a synthetic source emitting one packet per
// interval. A zero interval defaults to 5ms.
func NewSimSource(interval time.Duration) *SimSource {
	if interval <= 0 {
		interval = 5 * time.Millisecond
	}
	return &SimSource{
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		interval: interval,
	}
}

// Open implements Source. The interface name is ignored.
func (s *SimSource) Open(string) error { return nil }

// Next returns the next synthetic record after the configured interval.
func (s *SimSource) Next() (Record, error) {
	time.Sleep(s.interval)
	s.flow++
	return Record{
		Timestamp: float64(time.Now().UnixMicro()) / 1e6,
		Length:    uint32(100 + s.rng.Intn(1401)),
		FlowID:    s.flow,
		Alert:     s.flow%50 == 0,
	}, nil
}

// Close implements Source.
func (s *SimSource) Close() error { return nil }
