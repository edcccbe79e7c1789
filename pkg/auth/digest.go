package auth

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"github.com/TechGeek001/jhu-capstone/pkg/models"
)

// MessageSize is the length of the serialized digest input
const MessageSize = 2*models.IDSize + 9*4 + models.StrSize + 3*4 + 4 + models.IDSize

// Message serializes the signed subset of d in fixed order.
// Floating point fields are truncated to integers so the result survives wire quantization.
func Message(d *models.UASData) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, MessageSize))
	buf.Write(d.BasicID[models.SerialSlot].UASID[:])
	buf.Write(d.BasicID[models.SessionSlot].UASID[:])

	l := &d.Location
	for _, v := range []float64{
		float64(l.Direction),
		float64(l.SpeedHorizontal),
		float64(l.SpeedVertical),
		l.Latitude,
		l.Longitude,
		float64(l.AltitudeBaro),
		float64(l.AltitudeGeo),
		float64(l.Height),
		float64(l.TimeStamp),
	} {
		writeInt(buf, v)
	}

	buf.Write(d.SelfID.Desc[:])

	s := &d.System
	writeInt(buf, s.OperatorLatitude)
	writeInt(buf, s.OperatorLongitude)
	writeInt(buf, float64(s.OperatorAltitudeGeo))
	binary.Write(buf, binary.LittleEndian, s.Timestamp)

	buf.Write(d.OperatorID.OperatorID[:])
	return buf.Bytes()
}

// Digest is the SHA-256 of Message(d)
func Digest(d *models.UASData) [sha256.Size]byte {
	return sha256.Sum256(Message(d))
}

func writeInt(buf *bytes.Buffer, v float64) {
	binary.Write(buf, binary.LittleEndian, int32(v))
}
