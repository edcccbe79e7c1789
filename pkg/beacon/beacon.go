package beacon

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/TechGeek001/jhu-capstone/pkg/odid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	maxElementInfo = 255
	startInterval  = 500 * time.Millisecond
	startAttempts  = 20
)

var (
	errPackTooLong = errors.New("Message pack does not fit a vendor element")
	// ErrHostapdUnavailable is returned when hostapd never answered the startup ping
	ErrHostapdUnavailable = errors.New("hostapd control interface unavailable")
)

// Beacon broadcasts message packs in the vendor elements of hostapd beacons
type Beacon struct {
	ctrl   Requester
	logger *zap.Logger
	mutex  *sync.Mutex
	dirty  bool
}

// New returns a transport driving hostapd through ctrl
func New(ctrl Requester, logger *zap.Logger) *Beacon {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Beacon{ctrl: ctrl, logger: logger, mutex: &sync.Mutex{}}
}

func (b *Beacon) Name() string { return "beacon" }

// Send wraps a single message in a one message pack
func (b *Beacon) Send(msg []byte, counter uint8) error {
	pack, err := odid.EncodePack([][]byte{msg})
	if err != nil {
		return err
	}
	return b.SendPack(pack, counter)
}

func (b *Beacon) SendPack(pack []byte, counter uint8) error {
	if len(pack) > maxElementInfo-5 {
		return errPackTooLong
	}
	ie, err := BuildVendorElement(counter, pack)
	if err != nil {
		return errors.Wrap(err, "BuildVendorElement issue")
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if err := b.setElements(hex.EncodeToString(ie)); err != nil {
		return err
	}
	b.dirty = true
	return nil
}

func (b *Beacon) setElements(value string) error {
	if _, err := b.ctrl.Request("SET vendor_elements " + value); err != nil {
		return err
	}
	_, err := b.ctrl.Request("UPDATE_BEACON")
	return err
}

// Close removes the vendor elements from the beacon and closes the control socket
func (b *Beacon) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	var err error
	if b.dirty {
		err = b.setElements("")
		b.dirty = false
	}
	if cerr := b.ctrl.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Start connects to hostapd in the background. Exactly one of the channels delivers once
// hostapd answers PING, the attempts run out or ctx is done.
func Start(ctx context.Context, path string, logger *zap.Logger) (<-chan *Beacon, <-chan error) {
	return start(ctx, func() (Requester, error) { return DialCtrl(path) }, startInterval, logger)
}

func start(ctx context.Context, dial func() (Requester, error), interval time.Duration, logger *zap.Logger) (<-chan *Beacon, <-chan error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ready := make(chan *Beacon, 1)
	failed := make(chan error, 1)
	go func() {
		for attempt := 1; ; attempt++ {
			ctrl, err := ping(dial)
			if err == nil {
				logger.Info("hostapd control interface ready", zap.Int("attempt", attempt))
				ready <- New(ctrl, logger)
				return
			}
			logger.Debug("hostapd not ready", zap.Int("attempt", attempt), zap.Error(err))
			if attempt >= startAttempts {
				failed <- errors.Wrap(ErrHostapdUnavailable, err.Error())
				return
			}
			t := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				t.Stop()
				failed <- ctx.Err()
				return
			case <-t.C:
			}
		}
	}()
	return ready, failed
}

func ping(dial func() (Requester, error)) (Requester, error) {
	ctrl, err := dial()
	if err != nil {
		return nil, err
	}
	reply, err := ctrl.Request("PING")
	if err == nil && reply != "PONG" {
		err = errors.New("unexpected PING reply " + reply)
	}
	if err != nil {
		ctrl.Close()
		return nil, err
	}
	return ctrl, nil
}
