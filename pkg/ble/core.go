package ble

import (
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/go-ble/ble/linux/hci"
	"github.com/pkg/errors"
)

type coreMethods interface {
	Send(hci.Command, hci.CommandRP) error
	Stop() error
}

type realCoreMethods struct {
	device *linux.Device
}

func newRealCoreMethods(deviceID int) (*realCoreMethods, error) {
	var device *linux.Device
	err := util.CatchErrs(func() error {
		d, e := linux.NewDevice(ble.OptDeviceID(deviceID))
		device = d
		return e
	})
	if err != nil {
		return nil, errors.Wrap(err, "newLinuxDevice issue")
	}
	return &realCoreMethods{device}, nil
}

func (bc *realCoreMethods) Send(c hci.Command, r hci.CommandRP) error {
	return util.CatchErrs(func() error {
		return bc.device.HCI.Send(c, r)
	})
}

func (bc *realCoreMethods) Stop() error {
	return util.CatchErrs(func() error {
		return bc.device.Stop()
	})
}
