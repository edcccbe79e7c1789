package internal

import (
	"sync"

	"github.com/TechGeek001/jhu-capstone/pkg/models"
)

// SentEvent is one successful delivery reported to a listener
type SentEvent struct {
	Transport string
	Kind      models.MessageKind
	Counter   uint8
}

// RecordingListener collects transmission and gps events
type RecordingListener struct {
	mutex           sync.Mutex
	Sent            []SentEvent
	EncodeErrors    []models.MessageKind
	TransportErrors []string
	Fixes           int
	WaitRetries     []int
	ReadRetries     []int
	Terminated      []error
}

func (l *RecordingListener) OnSent(transport string, kind models.MessageKind, counter uint8) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.Sent = append(l.Sent, SentEvent{transport, kind, counter})
}

func (l *RecordingListener) OnEncodeError(kind models.MessageKind, _ error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.EncodeErrors = append(l.EncodeErrors, kind)
}

func (l *RecordingListener) OnTransportError(transport string, _ models.MessageKind, _ error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.TransportErrors = append(l.TransportErrors, transport)
}

func (l *RecordingListener) OnFix() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.Fixes++
}

func (l *RecordingListener) OnWaitRetry(attempt int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.WaitRetries = append(l.WaitRetries, attempt)
}

func (l *RecordingListener) OnReadRetry(attempt int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.ReadRetries = append(l.ReadRetries, attempt)
}

func (l *RecordingListener) OnTerminated(err error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.Terminated = append(l.Terminated, err)
}

// SentKinds returns the kinds delivered on transport, in order
func (l *RecordingListener) SentKinds(transport string) []models.MessageKind {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	kinds := []models.MessageKind{}
	for _, e := range l.Sent {
		if e.Transport == transport {
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}
