package internal

import (
	"sync"
)

// SentMessage is one payload handed to a dummy transport
type SentMessage struct {
	Payload []byte
	Counter uint8
	Pack    bool
}

// DummyTransport records every message it is asked to send
type DummyTransport struct {
	TransportName string
	// Fail, when set, decides whether a send fails
	Fail   func(payload []byte) error
	mutex  *sync.Mutex
	sent   []SentMessage
	closed bool
}

func NewDummyTransport(name string) *DummyTransport {
	return &DummyTransport{TransportName: name, mutex: &sync.Mutex{}}
}

func (t *DummyTransport) Name() string { return t.TransportName }

func (t *DummyTransport) Send(msg []byte, counter uint8) error {
	return t.record(msg, counter, false)
}

func (t *DummyTransport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.closed = true
	return nil
}

func (t *DummyTransport) record(payload []byte, counter uint8, pack bool) error {
	if t.Fail != nil {
		if err := t.Fail(payload); err != nil {
			return err
		}
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	cp := append([]byte{}, payload...)
	t.sent = append(t.sent, SentMessage{cp, counter, pack})
	return nil
}

// Messages returns a copy of everything sent so far
func (t *DummyTransport) Messages() []SentMessage {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return append([]SentMessage{}, t.sent...)
}

func (t *DummyTransport) Closed() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.closed
}

// DummyPackTransport is a DummyTransport that also accepts message packs
type DummyPackTransport struct {
	*DummyTransport
}

func NewDummyPackTransport(name string) *DummyPackTransport {
	return &DummyPackTransport{NewDummyTransport(name)}
}

func (t *DummyPackTransport) SendPack(pack []byte, counter uint8) error {
	return t.record(pack, counter, true)
}
