// Package pipeline connects the capture ring to the enforcement engine
// and ships decision events to a transport.
package pipeline

import (
	"errors"
)

// ErrAlreadyStarted is returned when a routine is started twice.
var ErrAlreadyStarted = errors.New("already started")

// stopper provides a reusable stop-channel lifecycle for goroutine
// loops.
type stopper struct {
	stopCh chan struct{}
}

func (s *stopper) start() error {
	if s.stopCh != nil {
		return ErrAlreadyStarted
	}
	s.stopCh = make(chan struct{})
	return nil
}

func (s *stopper) stop() {
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
}
