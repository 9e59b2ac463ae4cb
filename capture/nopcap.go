//go:build !pcap
// +build !pcap

package capture

import (
	"errors"
	"time"
)

// ErrNotCompiled is returned when live capture support was not built in.
var ErrNotCompiled = errors.New("pcap support not compiled in")

// PcapSource is a stub used when building without the pcap tag.
type PcapSource struct{}

var _ Source = (*PcapSource)(nil)

func NewPcapSource(timeout time.Duration, filter string) (*PcapSource, error) {
	return nil, ErrNotCompiled
}

func (s *PcapSource) Open(string) error {
	return ErrNotCompiled
}

func (s *PcapSource) Next() (Record, error) {
	return Record{}, ErrNotCompiled
}

func (s *PcapSource) Close() error {
	return ErrNotCompiled
}
