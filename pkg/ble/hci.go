package ble

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// LE extended advertising commands (OGF 0x08) that go-ble does not ship
const (
	opSetExtAdvParams  = 0x2036
	opSetExtAdvData    = 0x2037
	opSetExtAdvEnable  = 0x2039
	opRemoveAdvSet     = 0x203C
	maxExtAdvDataBytes = 251
)

// PHY is an LE physical layer
type PHY uint8

const (
	PHY1M    PHY = 0x01
	PHYCoded PHY = 0x03
)

const (
	// propLegacy selects legacy advertising PDUs. Zero properties mean non-connectable, non-scannable.
	propLegacy = 0x0010
	// advInterval is the advertising interval in 0.625ms units
	advInterval = 0x00A0
	allChannels = 0x07
)

const (
	// operationComplete sends the data in a single fragment
	operationComplete = 0x03
	// noFragmentation asks the controller not to fragment the data
	noFragmentation = 0x01
	noTxPreference  = 0x7F
)

var errAdvDataTooLong = errors.New("Advertising data exceeds the extended advertising data limit")

type setExtAdvParams struct {
	Handle           uint8
	EventProperties  uint16
	IntervalMin      uint32
	IntervalMax      uint32
	ChannelMap       uint8
	OwnAddressType   uint8
	PeerAddressType  uint8
	PeerAddress      [6]byte
	FilterPolicy     uint8
	TxPower          uint8
	PrimaryPHY       PHY
	SecondaryMaxSkip uint8
	SecondaryPHY     PHY
	SID              uint8
	ScanReqNotify    uint8
}

func (c *setExtAdvParams) OpCode() int { return opSetExtAdvParams }
func (c *setExtAdvParams) Len() int    { return 25 }
func (c *setExtAdvParams) Marshal(b []byte) error {
	b[0] = c.Handle
	binary.LittleEndian.PutUint16(b[1:], c.EventProperties)
	putUint24(b[3:], c.IntervalMin)
	putUint24(b[6:], c.IntervalMax)
	b[9] = c.ChannelMap
	b[10] = c.OwnAddressType
	b[11] = c.PeerAddressType
	copy(b[12:18], c.PeerAddress[:])
	b[18] = c.FilterPolicy
	b[19] = c.TxPower
	b[20] = byte(c.PrimaryPHY)
	b[21] = c.SecondaryMaxSkip
	b[22] = byte(c.SecondaryPHY)
	b[23] = c.SID
	b[24] = c.ScanReqNotify
	return nil
}

type setExtAdvData struct {
	Handle    uint8
	Operation uint8
	Fragment  uint8
	Data      []byte
}

func (c *setExtAdvData) OpCode() int { return opSetExtAdvData }
func (c *setExtAdvData) Len() int    { return 4 + len(c.Data) }
func (c *setExtAdvData) Marshal(b []byte) error {
	if len(c.Data) > maxExtAdvDataBytes {
		return errAdvDataTooLong
	}
	b[0] = c.Handle
	b[1] = c.Operation
	b[2] = c.Fragment
	b[3] = uint8(len(c.Data))
	copy(b[4:], c.Data)
	return nil
}

type setExtAdvEnable struct {
	Enable  bool
	Handles []uint8
}

func (c *setExtAdvEnable) OpCode() int { return opSetExtAdvEnable }
func (c *setExtAdvEnable) Len() int    { return 2 + 4*len(c.Handles) }
func (c *setExtAdvEnable) Marshal(b []byte) error {
	b[0] = 0
	if c.Enable {
		b[0] = 1
	}
	b[1] = uint8(len(c.Handles))
	for i, h := range c.Handles {
		// zero duration and zero max events advertise until disabled
		off := 2 + 4*i
		b[off] = h
		b[off+1], b[off+2], b[off+3] = 0, 0, 0
	}
	return nil
}

type removeAdvSet struct {
	Handle uint8
}

func (c *removeAdvSet) OpCode() int { return opRemoveAdvSet }
func (c *removeAdvSet) Len() int    { return 1 }
func (c *removeAdvSet) Marshal(b []byte) error {
	b[0] = c.Handle
	return nil
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}
