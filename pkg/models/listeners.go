package models

// MessageKind identifies a broadcast message type (and its sequence counter)
type MessageKind int

const (
	KindBasicID MessageKind = iota
	KindLocation
	KindAuth
	KindSelfID
	KindSystem
	KindOperatorID
	KindPacked
	numKinds
)

// NumMessageKinds is the number of distinct message kinds
const NumMessageKinds = int(numKinds)

func (k MessageKind) String() string {
	if k < 0 || k >= numKinds {
		return "Unknown"
	}
	return []string{"BasicID", "Location", "Auth", "SelfID", "System", "OperatorID", "Packed"}[k]
}

// TransmitListener receives events from the transmission loop
type TransmitListener interface {
	OnSent(transport string, kind MessageKind, counter uint8)
	OnEncodeError(kind MessageKind, err error)
	OnTransportError(transport string, kind MessageKind, err error)
}

// GPSListener receives events from the gps refresh task
type GPSListener interface {
	OnFix()
	OnWaitRetry(attempt int)
	OnReadRetry(attempt int)
	OnTerminated(err error)
}

// NopTransmitListener ignores every event
type NopTransmitListener struct{}

func (NopTransmitListener) OnSent(string, MessageKind, uint8)           {}
func (NopTransmitListener) OnEncodeError(MessageKind, error)            {}
func (NopTransmitListener) OnTransportError(string, MessageKind, error) {}

// NopGPSListener ignores every event
type NopGPSListener struct{}

func (NopGPSListener) OnFix()             {}
func (NopGPSListener) OnWaitRetry(int)    {}
func (NopGPSListener) OnReadRetry(int)    {}
func (NopGPSListener) OnTerminated(error) {}
