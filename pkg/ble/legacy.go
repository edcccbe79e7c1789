package ble

import (
	"github.com/go-ble/ble/linux/hci/cmd"
	"github.com/pkg/errors"
)

const (
	maxLegacyAdvBytes = 31
	advNonConnInd     = 0x03
)

var (
	errLegacyTooLong    = errors.New("Message does not fit a legacy advertising PDU")
	errPacksOnLegacyPDU = errors.New("Message packs need the coded PHY advertising set")
)

// Legacy advertises single messages with the pre bluetooth 5 advertising commands
type Legacy struct {
	adapter    *Adapter
	configured bool
	enabled    bool
}

func (l *Legacy) Name() string { return "bt-legacy" }

// Send replaces the advertising data with msg
func (l *Legacy) Send(msg []byte, counter uint8) error {
	ad := serviceData(counter, msg)
	if len(ad) > maxLegacyAdvBytes {
		return errLegacyTooLong
	}
	if !l.configured {
		err := l.adapter.send("LESetAdvertisingParameters", &cmd.LESetAdvertisingParameters{
			AdvertisingIntervalMin: advInterval,
			AdvertisingIntervalMax: advInterval,
			AdvertisingType:        advNonConnInd,
			AdvertisingChannelMap:  allChannels,
		})
		if err != nil {
			return err
		}
		l.configured = true
	}
	data := &cmd.LESetAdvertisingData{AdvertisingDataLength: uint8(len(ad))}
	copy(data.AdvertisingData[:], ad)
	if err := l.adapter.send("LESetAdvertisingData", data); err != nil {
		return err
	}
	if l.enabled {
		return nil
	}
	if err := l.adapter.send("LESetAdvertiseEnable", &cmd.LESetAdvertiseEnable{AdvertisingEnable: 1}); err != nil {
		return err
	}
	l.enabled = true
	return nil
}

// Close disables advertising
func (l *Legacy) Close() error {
	if !l.enabled {
		return nil
	}
	l.enabled = false
	return l.adapter.send("LESetAdvertiseEnable", &cmd.LESetAdvertiseEnable{AdvertisingEnable: 0})
}
