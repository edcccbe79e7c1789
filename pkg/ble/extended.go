package ble

// Extended advertises on one advertising set with the bluetooth 5 extended advertising commands.
// On the 1M PHY it uses legacy PDUs (bt4). On the coded PHY it uses long range extended PDUs (bt5).
type Extended struct {
	adapter    *Adapter
	name       string
	handle     uint8
	phy        PHY
	configured bool
	enabled    bool
}

func (e *Extended) Name() string { return e.name }

// Handle is the advertising set number owned by the transport
func (e *Extended) Handle() uint8 { return e.handle }

func (e *Extended) params() *setExtAdvParams {
	p := &setExtAdvParams{
		Handle:       e.handle,
		IntervalMin:  advInterval,
		IntervalMax:  advInterval,
		ChannelMap:   allChannels,
		TxPower:      noTxPreference,
		PrimaryPHY:   e.phy,
		SecondaryPHY: e.phy,
		SID:          e.handle,
	}
	if e.phy == PHY1M {
		p.EventProperties = propLegacy
	}
	return p
}

// Send advertises a single message
func (e *Extended) Send(msg []byte, counter uint8) error {
	return e.advertise(serviceData(counter, msg))
}

// SendPack advertises a whole message pack. Only the coded PHY set carries packs.
func (e *Extended) SendPack(pack []byte, counter uint8) error {
	if e.phy != PHYCoded {
		return errPacksOnLegacyPDU
	}
	return e.advertise(serviceData(counter, pack))
}

func (e *Extended) advertise(ad []byte) error {
	if e.phy == PHY1M && len(ad) > maxLegacyAdvBytes {
		return errLegacyTooLong
	}
	if !e.configured {
		if err := e.adapter.send("SetExtendedAdvertisingParameters", e.params()); err != nil {
			return err
		}
		e.configured = true
	}
	data := &setExtAdvData{Handle: e.handle, Operation: operationComplete, Fragment: noFragmentation, Data: ad}
	if err := e.adapter.send("SetExtendedAdvertisingData", data); err != nil {
		return err
	}
	if e.enabled {
		return nil
	}
	if err := e.adapter.send("SetExtendedAdvertisingEnable", &setExtAdvEnable{Enable: true, Handles: []uint8{e.handle}}); err != nil {
		return err
	}
	e.enabled = true
	return nil
}

// Close disables and removes the advertising set
func (e *Extended) Close() error {
	if !e.configured {
		return nil
	}
	if e.enabled {
		e.enabled = false
		if err := e.adapter.send("SetExtendedAdvertisingEnable", &setExtAdvEnable{Handles: []uint8{e.handle}}); err != nil {
			return err
		}
	}
	e.configured = false
	return e.adapter.send("RemoveAdvertisingSet", &removeAdvSet{Handle: e.handle})
}
