//go:build pcap
// +build pcap

package capture

import (
	"hash/fnv"
	"time"

	"github.com/gopacket/gopacket/pcap"
)

// PcapSource captures packet features from a live interface through
// libpcap. Flow identities are a digest of the leading packet bytes;
// callers needing a real 5-tuple key should post-process records with
// their own derivation.
type PcapSource struct {
	handle  *pcap.Handle
	timeout time.Duration
	filter  string
}

var _ Source = (*PcapSource)(nil)

// NewPcapSource creates a live capture source. A zero timeout defaults
// to one second.
func NewPcapSource(timeout time.Duration, filter string) (*PcapSource, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &PcapSource{timeout: timeout, filter: filter}, nil
}

// Open starts live capture on the named interface.
func (s *PcapSource) Open(ifaceName string) error {
	handle, err := pcap.OpenLive(ifaceName, MaxSnapLen, true, s.timeout)
	if err != nil {
		return err
	}
	if s.filter != "" {
		if err := handle.SetBPFFilter(s.filter); err != nil {
			handle.Close()
			return err
		}
	}
	s.handle = handle
	return nil
}

// Next reads one packet and reduces it to its feature record. The alert
// flag is raised for frames exceeding the standard MTU.
func (s *PcapSource) Next() (Record, error) {
	data, ci, err := s.handle.ReadPacketData()
	if err != nil {
		return Record{}, err
	}

	h := fnv.New64a()
	n := len(data)
	if n > 64 {
		n = 64
	}
	h.Write(data[:n])

	return Record{
		Timestamp: float64(ci.Timestamp.UnixMicro()) / 1e6,
		Length:    uint32(ci.Length),
		FlowID:    h.Sum64(),
		Alert:     ci.Length > 1500,
	}, nil
}

// Close releases the pcap handle.
func (s *PcapSource) Close() error {
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	return nil
}
