package models

const (
	// IDSize is the storage bound of UAS and operator identifiers
	IDSize = 20
	// StrSize is the storage bound of the self-id description
	StrSize = 23
	// AuthMaxPages is the number of authentication pages a record can hold (4 bit page index)
	AuthMaxPages = 16
	// AuthPageDataSize is the raw payload capacity of an authentication page
	AuthPageDataSize = 23
	// BasicIDSlots is the number of basic identifier slots in a record
	BasicIDSlots = 2
)

const (
	// SerialSlot holds the serial number basic id
	SerialSlot = 0
	// SessionSlot holds the session / CAA basic id
	SessionSlot = 1
)

type UAType uint8

const (
	UATypeNone UAType = iota
	UATypeAeroplane
	UATypeHelicopterOrMultirotor
	UATypeGyroplane
	UATypeHybridLift
	UATypeOrnithopter
	UATypeGlider
	UATypeKite
	UATypeFreeBalloon
	UATypeCaptiveBalloon
	UATypeAirship
	UATypeFreeFallParachute
	UATypeRocket
	UATypeTetheredPoweredAircraft
	UATypeGroundObstacle
	UATypeOther
)

type IDType uint8

const (
	IDTypeNone IDType = iota
	IDTypeSerialNumber
	IDTypeCAARegistrationID
	IDTypeUTMAssignedUUID
	IDTypeSpecificSessionID
)

type Status uint8

const (
	StatusUndeclared Status = iota
	StatusGround
	StatusAirborne
	StatusEmergency
	StatusRemoteIDSystemFailure
)

type HeightReference uint8

const (
	HeightOverTakeoff HeightReference = iota
	HeightOverGround
)

// HorizontalAccuracy is the enumerated horizontal position accuracy
type HorizontalAccuracy uint8

// VerticalAccuracy is the enumerated geodetic or barometric altitude accuracy
type VerticalAccuracy uint8

// SpeedAccuracy is the enumerated horizontal speed accuracy
type SpeedAccuracy uint8

// TimestampAccuracy is the timestamp accuracy in tenths of a second (0 = unknown)
type TimestampAccuracy uint8

type DescType uint8

const (
	DescTypeText DescType = iota
	DescTypeEmergency
	DescTypeExtendedStatus
)

type OperatorLocationType uint8

const (
	OperatorLocationTakeoff OperatorLocationType = iota
	OperatorLocationLiveGNSS
	OperatorLocationFixed
)

type ClassificationType uint8

const (
	ClassificationUndeclared ClassificationType = iota
	ClassificationEU
)

type CategoryEU uint8

const (
	CategoryEUUndeclared CategoryEU = iota
	CategoryEUOpen
	CategoryEUSpecific
	CategoryEUCertified
)

type ClassEU uint8

const (
	ClassEUUndeclared ClassEU = iota
	ClassEUClass0
	ClassEUClass1
	ClassEUClass2
	ClassEUClass3
	ClassEUClass4
	ClassEUClass5
	ClassEUClass6
)

type OperatorIDType uint8

const (
	OperatorIDTypeOperatorID OperatorIDType = 0
)

type AuthType uint8

const (
	AuthNone AuthType = iota
	AuthUASIDSignature
	AuthOperatorIDSignature
	AuthMessageSetSignature
	AuthNetworkRemoteID
	AuthSpecificMethod
)

// BasicID is one basic identifier slot
type BasicID struct {
	UAType UAType
	IDType IDType
	UASID  [IDSize]byte
}

// SetUASID stores id, truncated to the storage bound
func (b *BasicID) SetUASID(id string) {
	b.UASID = [IDSize]byte{}
	copy(b.UASID[:], id)
}

// ID returns the identifier without trailing padding
func (b *BasicID) ID() string { return trimmed(b.UASID[:]) }

// Location is the live telemetry block of a record
type Location struct {
	Status          Status
	Direction       float32 // degrees from true north, 361 = invalid
	SpeedHorizontal float32 // m/s
	SpeedVertical   float32 // m/s, up positive
	Latitude        float64
	Longitude       float64
	AltitudeBaro    float32 // m
	AltitudeGeo     float32 // m, WGS-84
	HeightType      HeightReference
	Height          float32 // m
	HorizAccuracy   HorizontalAccuracy
	VertAccuracy    VerticalAccuracy
	BaroAccuracy    VerticalAccuracy
	SpeedAccuracy   SpeedAccuracy
	TSAccuracy      TimestampAccuracy
	TimeStamp       float32 // seconds after the full hour
}

type SelfID struct {
	DescType DescType
	Desc     [StrSize]byte
}

// SetDesc stores desc, truncated to the storage bound
func (s *SelfID) SetDesc(desc string) {
	s.Desc = [StrSize]byte{}
	copy(s.Desc[:], desc)
}

type System struct {
	OperatorLocationType OperatorLocationType
	ClassificationType   ClassificationType
	OperatorLatitude     float64
	OperatorLongitude    float64
	AreaCount            uint16
	AreaRadius           uint16 // m
	AreaCeiling          float32
	AreaFloor            float32
	CategoryEU           CategoryEU
	ClassEU              ClassEU
	OperatorAltitudeGeo  float32
	Timestamp            uint32 // seconds since 2019-01-01T00:00:00Z
}

type OperatorID struct {
	OperatorIDType OperatorIDType
	OperatorID     [IDSize]byte
}

// SetOperatorID stores id, truncated to the storage bound
func (o *OperatorID) SetOperatorID(id string) {
	o.OperatorID = [IDSize]byte{}
	copy(o.OperatorID[:], id)
}

// AuthPage is one fragment of the authentication payload.
// LastPageIndex, Length and Timestamp are only meaningful on page 0.
type AuthPage struct {
	AuthType      AuthType
	DataPage      uint8
	LastPageIndex uint8
	Length        uint8
	Timestamp     uint32
	AuthData      [AuthPageDataSize]byte
}

// UASData is the aggregate of every broadcast field for one run
type UASData struct {
	BasicID    [BasicIDSlots]BasicID
	Location   Location
	Auth       [AuthMaxPages]AuthPage
	SelfID     SelfID
	System     System
	OperatorID OperatorID
}

// NewUASData returns a record with invalid/unknown markers where zero is a valid value
func NewUASData() *UASData {
	d := &UASData{}
	d.Location.Direction = InvalidDirection
	d.Location.SpeedHorizontal = InvalidSpeed
	d.Location.SpeedVertical = InvalidSpeedVertical
	d.Location.AltitudeBaro = InvalidAltitude
	d.Location.AltitudeGeo = InvalidAltitude
	d.Location.Height = InvalidAltitude
	d.System.AreaCount = 1
	d.System.AreaCeiling = InvalidAltitude
	d.System.AreaFloor = InvalidAltitude
	d.System.OperatorAltitudeGeo = InvalidAltitude
	return d
}

// AuthPageCount is the number of populated auth pages (0 when unsigned)
func (d *UASData) AuthPageCount() int {
	if d.Auth[0].AuthType == AuthNone {
		return 0
	}
	return int(d.Auth[0].LastPageIndex) + 1
}

const (
	InvalidDirection     = 361
	InvalidSpeed         = 255
	InvalidSpeedVertical = 63
	InvalidAltitude      = -1000
)

func trimmed(b []byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}
