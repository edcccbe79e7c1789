package ble

import (
	"sync"

	"github.com/TechGeek001/jhu-capstone/pkg/transmitter"
	"github.com/go-ble/ble/linux/hci"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// serviceUUID is the ASTM Remote ID 16 bit service UUID
	serviceUUID         = 0xFFFA
	adTypeServiceData16 = 0x16
	// appCode marks Open Drone ID service data
	appCode = 0x0D
)

// Adapter is one HCI controller shared by every bluetooth transport of a run
type Adapter struct {
	methods    coreMethods
	logger     *zap.Logger
	mutex      *sync.Mutex
	transports []transmitter.Transport
}

// Open initializes the controller hci<deviceID> and the transports cfg enables on it
func Open(cfg *transmitter.Config, deviceID int, logger *zap.Logger) (*Adapter, error) {
	m, err := newRealCoreMethods(deviceID)
	if err != nil {
		return nil, err
	}
	return newAdapter(m, cfg, logger), nil
}

func newAdapter(m coreMethods, cfg *transmitter.Config, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{methods: m, logger: logger, mutex: &sync.Mutex{}}
	if cfg.Uses(transmitter.BluetoothLegacy) {
		a.transports = append(a.transports, &Legacy{adapter: a})
	}
	if cfg.Uses(transmitter.Bluetooth4) {
		a.transports = append(a.transports, &Extended{adapter: a, name: transmitter.Bluetooth4.String(), handle: cfg.HandleBT4, phy: PHY1M})
	}
	if cfg.Uses(transmitter.Bluetooth5) {
		a.transports = append(a.transports, &Extended{adapter: a, name: transmitter.Bluetooth5.String(), handle: cfg.HandleBT5, phy: PHYCoded})
	}
	return a
}

// Transports returns the bluetooth transports in legacy, bt4, bt5 order
func (a *Adapter) Transports() []transmitter.Transport { return a.transports }

// Close stops advertising on every transport and releases the controller
func (a *Adapter) Close() error {
	var first error
	for _, t := range a.transports {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := a.methods.Stop(); err != nil && first == nil {
		first = errors.Wrap(err, "Stop issue")
	}
	return first
}

func (a *Adapter) send(method string, c hci.Command) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return send(a.methods, a.logger, method, c)
}

// serviceData builds the AD structure [len][0x16][0xFFFA][app code][counter][payload]
func serviceData(counter uint8, payload []byte) []byte {
	ad := make([]byte, 0, 6+len(payload))
	ad = append(ad, byte(5+len(payload)), adTypeServiceData16, serviceUUID&0xFF, serviceUUID>>8, appCode, counter)
	return append(ad, payload...)
}
