package internal

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// GPSStep is one scripted answer of a DummyGPSSource.
// Ready false makes Wait report no data; ReadErr makes the following Read fail.
type GPSStep struct {
	Ready   bool
	WaitErr error
	Report  []byte
	ReadErr error
}

// ErrScriptExhausted is returned once every scripted step was consumed
var ErrScriptExhausted = errors.New("gps script exhausted")

// DummyGPSSource replays a scripted sequence of polls and reads
type DummyGPSSource struct {
	mutex  sync.Mutex
	steps  []GPSStep
	pos    int
	waits  int
	reads  int
	closed bool
	// Delay is slept by every Wait, bounded by its timeout
	Delay time.Duration
	// Loop replays the script from the start once it ends
	Loop bool
}

func NewDummyGPSSource(steps ...GPSStep) *DummyGPSSource {
	return &DummyGPSSource{steps: steps}
}

func (s *DummyGPSSource) current() (GPSStep, bool) {
	if s.pos >= len(s.steps) && s.Loop {
		s.pos = 0
	}
	if s.pos >= len(s.steps) {
		return GPSStep{}, false
	}
	return s.steps[s.pos], true
}

func (s *DummyGPSSource) Wait(timeout time.Duration) (bool, error) {
	if s.Delay > 0 {
		d := s.Delay
		if timeout < d {
			d = timeout
		}
		time.Sleep(d)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.waits++
	step, ok := s.current()
	if !ok {
		return false, ErrScriptExhausted
	}
	if step.WaitErr != nil || !step.Ready {
		s.pos++
		return false, step.WaitErr
	}
	return true, nil
}

func (s *DummyGPSSource) Read() ([]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.reads++
	step, ok := s.current()
	if !ok {
		return nil, ErrScriptExhausted
	}
	s.pos++
	if step.ReadErr != nil {
		return nil, step.ReadErr
	}
	return step.Report, nil
}

func (s *DummyGPSSource) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closed = true
	return nil
}

func (s *DummyGPSSource) Closed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}

// Counts returns how many times Wait and Read were called
func (s *DummyGPSSource) Counts() (waits int, reads int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.waits, s.reads
}
