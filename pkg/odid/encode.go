// Package odid encodes Remote ID data into the ASTM F3411 broadcast wire format (protocol version 2).
package odid

import (
	"encoding/binary"
	"math"

	"github.com/TechGeek001/jhu-capstone/pkg/models"
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/pkg/errors"
)

// ProtocolVersion is written into the low nibble of every message header
const ProtocolVersion = 2

// MessageType is the high nibble of a message header
type MessageType uint8

const (
	TypeBasicID    MessageType = 0x0
	TypeLocation   MessageType = 0x1
	TypeAuth       MessageType = 0x2
	TypeSelfID     MessageType = 0x3
	TypeSystem     MessageType = 0x4
	TypeOperatorID MessageType = 0x5
	TypePacked     MessageType = 0xF
)

const (
	speedDiv0     = 0.25
	speedDiv1     = 0.75
	maxSpeedH     = 254.25
	vSpeedDiv     = 0.5
	latLonMult    = 1e7
	altDiv        = 0.5
	altOffset     = 1000
	maxAltitude   = 31767.5
	areaRadiusDiv = 10
	maxTimestamp  = 60 * 60
)

var (
	ErrLatitude  = errors.New("latitude out of range")
	ErrLongitude = errors.New("longitude out of range")
	ErrAltitude  = errors.New("altitude out of range")
	ErrDirection = errors.New("direction out of range")
	ErrSpeed     = errors.New("speed out of range")
	ErrTimestamp = errors.New("timestamp out of range")
	ErrEnum      = errors.New("enumerated value out of range")
	ErrPage      = errors.New("auth page index out of range")
	ErrPack      = errors.New("invalid message pack contents")
)

// Header returns the first byte of a message of type t
func Header(t MessageType) byte { return byte(t)<<4 | ProtocolVersion }

// Type returns the message type of an encoded message
func Type(msg []byte) MessageType {
	if len(msg) == 0 {
		return 0
	}
	return MessageType(msg[0] >> 4)
}

// Encoder is the stateless message encoding collaborator of the transmitter
type Encoder struct{}

func (Encoder) EncodeBasicID(b *models.BasicID) ([]byte, error)       { return EncodeBasicID(b) }
func (Encoder) EncodeLocation(l *models.Location) ([]byte, error)     { return EncodeLocation(l) }
func (Encoder) EncodeAuth(a *models.AuthPage) ([]byte, error)         { return EncodeAuth(a) }
func (Encoder) EncodeSelfID(s *models.SelfID) ([]byte, error)         { return EncodeSelfID(s) }
func (Encoder) EncodeSystem(s *models.System) ([]byte, error)         { return EncodeSystem(s) }
func (Encoder) EncodeOperatorID(o *models.OperatorID) ([]byte, error) { return EncodeOperatorID(o) }
func (Encoder) EncodePack(msgs [][]byte) ([]byte, error)              { return EncodePack(msgs) }

func newMessage(t MessageType) []byte {
	b := make([]byte, util.MessageSize)
	b[0] = Header(t)
	return b
}

func EncodeBasicID(b *models.BasicID) ([]byte, error) {
	if b.IDType > 15 || b.UAType > 15 {
		return nil, errors.Wrap(ErrEnum, "basic id")
	}
	msg := newMessage(TypeBasicID)
	msg[1] = byte(b.IDType)<<4 | byte(b.UAType)
	copy(msg[2:22], b.UASID[:])
	return msg, nil
}

func EncodeLocation(l *models.Location) ([]byte, error) {
	if l.Status > 15 || l.HeightType > 1 || l.HorizAccuracy > 15 || l.VertAccuracy > 15 ||
		l.BaroAccuracy > 15 || l.SpeedAccuracy > 15 || l.TSAccuracy > 15 {
		return nil, errors.Wrap(ErrEnum, "location")
	}
	dir, ew, err := encodeDirection(l.Direction)
	if err != nil {
		return nil, err
	}
	speed, mult, err := encodeSpeedHorizontal(l.SpeedHorizontal)
	if err != nil {
		return nil, err
	}
	lat, err := encodeLatLon(l.Latitude, 90, ErrLatitude)
	if err != nil {
		return nil, err
	}
	lon, err := encodeLatLon(l.Longitude, 180, ErrLongitude)
	if err != nil {
		return nil, err
	}
	baro, err := encodeAltitude(l.AltitudeBaro)
	if err != nil {
		return nil, errors.Wrap(err, "baro")
	}
	geo, err := encodeAltitude(l.AltitudeGeo)
	if err != nil {
		return nil, errors.Wrap(err, "geo")
	}
	height, err := encodeAltitude(l.Height)
	if err != nil {
		return nil, errors.Wrap(err, "height")
	}
	ts, err := encodeTimestamp(l.TimeStamp)
	if err != nil {
		return nil, err
	}
	msg := newMessage(TypeLocation)
	msg[1] = byte(l.Status)<<4 | byte(l.HeightType)<<2 | ew<<1 | mult
	msg[2] = dir
	msg[3] = speed
	msg[4] = byte(encodeSpeedVertical(l.SpeedVertical))
	binary.LittleEndian.PutUint32(msg[5:9], uint32(lat))
	binary.LittleEndian.PutUint32(msg[9:13], uint32(lon))
	binary.LittleEndian.PutUint16(msg[13:15], baro)
	binary.LittleEndian.PutUint16(msg[15:17], geo)
	binary.LittleEndian.PutUint16(msg[17:19], height)
	msg[19] = byte(l.VertAccuracy)<<4 | byte(l.HorizAccuracy)
	msg[20] = byte(l.BaroAccuracy)<<4 | byte(l.SpeedAccuracy)
	binary.LittleEndian.PutUint16(msg[21:23], ts)
	msg[23] = byte(l.TSAccuracy) & 0x0F
	return msg, nil
}

// EncodeAuth encodes one authentication page. Page 0 carries the page count, length and timestamp.
func EncodeAuth(a *models.AuthPage) ([]byte, error) {
	if a.AuthType > 15 {
		return nil, errors.Wrap(ErrEnum, "auth type")
	}
	if a.DataPage >= models.AuthMaxPages {
		return nil, errors.Wrapf(ErrPage, "page %d", a.DataPage)
	}
	msg := newMessage(TypeAuth)
	msg[1] = byte(a.AuthType)<<4 | a.DataPage
	if a.DataPage == 0 {
		if a.LastPageIndex >= models.AuthMaxPages {
			return nil, errors.Wrapf(ErrPage, "last page %d", a.LastPageIndex)
		}
		msg[2] = a.LastPageIndex
		msg[3] = a.Length
		binary.LittleEndian.PutUint32(msg[4:8], a.Timestamp)
		copy(msg[8:], a.AuthData[:util.AuthFirstPageCapacity])
		return msg, nil
	}
	copy(msg[2:], a.AuthData[:util.AuthPageCapacity])
	return msg, nil
}

func EncodeSelfID(s *models.SelfID) ([]byte, error) {
	msg := newMessage(TypeSelfID)
	msg[1] = byte(s.DescType)
	copy(msg[2:], s.Desc[:])
	return msg, nil
}

func EncodeSystem(s *models.System) ([]byte, error) {
	if s.OperatorLocationType > 3 || s.ClassificationType > 7 || s.CategoryEU > 15 || s.ClassEU > 15 {
		return nil, errors.Wrap(ErrEnum, "system")
	}
	lat, err := encodeLatLon(s.OperatorLatitude, 90, ErrLatitude)
	if err != nil {
		return nil, err
	}
	lon, err := encodeLatLon(s.OperatorLongitude, 180, ErrLongitude)
	if err != nil {
		return nil, err
	}
	ceiling, err := encodeAltitude(s.AreaCeiling)
	if err != nil {
		return nil, errors.Wrap(err, "area ceiling")
	}
	floor, err := encodeAltitude(s.AreaFloor)
	if err != nil {
		return nil, errors.Wrap(err, "area floor")
	}
	opAlt, err := encodeAltitude(s.OperatorAltitudeGeo)
	if err != nil {
		return nil, errors.Wrap(err, "operator altitude")
	}
	msg := newMessage(TypeSystem)
	msg[1] = byte(s.ClassificationType)<<2 | byte(s.OperatorLocationType)
	binary.LittleEndian.PutUint32(msg[2:6], uint32(lat))
	binary.LittleEndian.PutUint32(msg[6:10], uint32(lon))
	binary.LittleEndian.PutUint16(msg[10:12], s.AreaCount)
	msg[12] = encodeAreaRadius(s.AreaRadius)
	binary.LittleEndian.PutUint16(msg[13:15], ceiling)
	binary.LittleEndian.PutUint16(msg[15:17], floor)
	msg[17] = byte(s.CategoryEU)<<4 | byte(s.ClassEU)
	binary.LittleEndian.PutUint16(msg[18:20], opAlt)
	binary.LittleEndian.PutUint32(msg[20:24], s.Timestamp)
	return msg, nil
}

func EncodeOperatorID(o *models.OperatorID) ([]byte, error) {
	msg := newMessage(TypeOperatorID)
	msg[1] = byte(o.OperatorIDType)
	copy(msg[2:22], o.OperatorID[:])
	return msg, nil
}

// EncodePack bundles already encoded messages into one message pack
func EncodePack(msgs [][]byte) ([]byte, error) {
	if len(msgs) == 0 || len(msgs) > util.MaxPackMessages {
		return nil, errors.Wrapf(ErrPack, "%d messages", len(msgs))
	}
	pack := make([]byte, 3, 3+len(msgs)*util.MessageSize)
	pack[0] = Header(TypePacked)
	pack[1] = util.MessageSize
	pack[2] = byte(len(msgs))
	for i, m := range msgs {
		if len(m) != util.MessageSize {
			return nil, errors.Wrapf(ErrPack, "message %d is %d bytes", i, len(m))
		}
		if Type(m) == TypePacked {
			return nil, errors.Wrapf(ErrPack, "message %d is a pack", i)
		}
		pack = append(pack, m...)
	}
	return pack, nil
}

func encodeDirection(d float32) (byte, byte, error) {
	if d == models.InvalidDirection {
		return byte(models.InvalidDirection - 180), 1, nil
	}
	if d < 0 || d > 360 || math.IsNaN(float64(d)) {
		return 0, 0, errors.Wrapf(ErrDirection, "%v", d)
	}
	v := int(d)
	if v == 360 {
		v = 0
	}
	if v < 180 {
		return byte(v), 0, nil
	}
	return byte(v - 180), 1, nil
}

func encodeSpeedHorizontal(s float32) (byte, byte, error) {
	if s == models.InvalidSpeed {
		return 255, 1, nil
	}
	if s < 0 || math.IsNaN(float64(s)) {
		return 0, 0, errors.Wrapf(ErrSpeed, "%v", s)
	}
	if s <= 255*speedDiv0 {
		return byte(s / speedDiv0), 0, nil
	}
	if s < maxSpeedH {
		return byte((s - 255*speedDiv0) / speedDiv1), 1, nil
	}
	return 254, 1, nil
}

func encodeSpeedVertical(s float32) int8 {
	v := int(s / vSpeedDiv)
	if v > models.InvalidSpeedVertical {
		v = models.InvalidSpeedVertical
	}
	if v < -models.InvalidSpeedVertical {
		v = -models.InvalidSpeedVertical
	}
	return int8(v)
}

func encodeLatLon(v float64, limit float64, rangeErr error) (int32, error) {
	if v < -limit || v > limit || math.IsNaN(v) {
		return 0, errors.Wrapf(rangeErr, "%v", v)
	}
	return int32(v * latLonMult), nil
}

func encodeAltitude(a float32) (uint16, error) {
	if a < -altOffset || a > maxAltitude || math.IsNaN(float64(a)) {
		return 0, errors.Wrapf(ErrAltitude, "%v", a)
	}
	return uint16((a + altOffset) / altDiv), nil
}

func encodeTimestamp(s float32) (uint16, error) {
	if s < 0 || s > maxTimestamp || math.IsNaN(float64(s)) {
		return 0, errors.Wrapf(ErrTimestamp, "%v", s)
	}
	return uint16(math.Round(float64(s) * 10)), nil
}

func encodeAreaRadius(r uint16) byte {
	v := r / areaRadiusDiv
	if v > 255 {
		v = 255
	}
	return byte(v)
}
