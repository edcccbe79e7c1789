package lifecycle

import (
	"context"
	"io"

	"github.com/TechGeek001/jhu-capstone/pkg/auth"
	"github.com/TechGeek001/jhu-capstone/pkg/beacon"
	"github.com/TechGeek001/jhu-capstone/pkg/ble"
	"github.com/TechGeek001/jhu-capstone/pkg/gps"
	"github.com/TechGeek001/jhu-capstone/pkg/transmitter"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Options locate the external collaborators of a run
type Options struct {
	HostapdCtrl string
	HCIDevice   int
	GPSAddr     string
}

// Factory builds the collaborators of a run; tests substitute fakes
type Factory struct {
	// Beacon blocks until the beacon transport is ready
	Beacon func(ctx context.Context) (transmitter.Transport, error)
	// Bluetooth opens the bluetooth transports cfg enables. The closer releases the controller.
	Bluetooth func(cfg *transmitter.Config) ([]transmitter.Transport, io.Closer, error)
	GPS       func(ctx context.Context) (gps.Source, error)
	Key       func() (*auth.KeyPair, error)
	Signer    func(key *auth.KeyPair, logger *zap.Logger) *auth.Signer
}

// NewFactory returns the hardware backed factory
func NewFactory(opts Options, logger *zap.Logger) Factory {
	return Factory{
		Beacon: func(ctx context.Context) (transmitter.Transport, error) {
			ready, failed := beacon.Start(ctx, opts.HostapdCtrl, logger)
			select {
			case b := <-ready:
				return b, nil
			case err := <-failed:
				return nil, err
			}
		},
		Bluetooth: func(cfg *transmitter.Config) ([]transmitter.Transport, io.Closer, error) {
			adapter, err := ble.Open(cfg, opts.HCIDevice, logger)
			if err != nil {
				return nil, nil, errors.Wrap(err, "bluetooth init issue")
			}
			return adapter.Transports(), adapter, nil
		},
		GPS: func(ctx context.Context) (gps.Source, error) {
			return gps.DialGPSD(ctx, opts.GPSAddr)
		},
		Key:    auth.GenerateKeyPair,
		Signer: auth.NewSigner,
	}
}
