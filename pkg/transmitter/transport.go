package transmitter

import (
	"github.com/TechGeek001/jhu-capstone/pkg/models"
)

// Transport broadcasts encoded messages on one wireless link
type Transport interface {
	Name() string
	Send(msg []byte, counter uint8) error
	Close() error
}

// PackTransport can broadcast a whole message pack as one unit
type PackTransport interface {
	Transport
	SendPack(pack []byte, counter uint8) error
}

// Encoder turns record blocks into wire messages
type Encoder interface {
	EncodeBasicID(*models.BasicID) ([]byte, error)
	EncodeLocation(*models.Location) ([]byte, error)
	EncodeAuth(*models.AuthPage) ([]byte, error)
	EncodeSelfID(*models.SelfID) ([]byte, error)
	EncodeSystem(*models.System) ([]byte, error)
	EncodeOperatorID(*models.OperatorID) ([]byte, error)
	EncodePack([][]byte) ([]byte, error)
}
