package gps

import (
	"encoding/json"
	"math"
	"time"

	"github.com/TechGeek001/jhu-capstone/pkg/models"
	"github.com/TechGeek001/jhu-capstone/pkg/odid"
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/pkg/errors"
)

const (
	classTPV = "TPV"
	// mode2D is the lowest gpsd mode carrying a position
	mode2D = 2
)

// Fix is a gpsd time-position-velocity report. Optional fields are nil when gpsd omits them.
type Fix struct {
	Class  string     `json:"class"`
	Mode   int        `json:"mode"`
	Time   *time.Time `json:"time"`
	Lat    *float64   `json:"lat"`
	Lon    *float64   `json:"lon"`
	Alt    *float64   `json:"alt"`
	AltHAE *float64   `json:"altHAE"`
	Track  *float64   `json:"track"`
	Speed  *float64   `json:"speed"`
	Climb  *float64   `json:"climb"`
	EPH    *float64   `json:"eph"`
	EPX    *float64   `json:"epx"`
	EPY    *float64   `json:"epy"`
	EPV    *float64   `json:"epv"`
	EPS    *float64   `json:"eps"`
	EPT    *float64   `json:"ept"`
}

// ParseReport decodes one gpsd report. ok is false for reports that are not TPV.
func ParseReport(report []byte) (*Fix, bool, error) {
	fix := &Fix{}
	if err := json.Unmarshal(report, fix); err != nil {
		return nil, false, errors.Wrap(err, "gpsd report issue")
	}
	if fix.Class != classTPV {
		return nil, false, nil
	}
	return fix, true, nil
}

// HasPosition reports whether the receiver had at least a 2D fix
func (f *Fix) HasPosition() bool {
	return f.Mode >= mode2D && f.Lat != nil && f.Lon != nil
}

// Apply writes the fix into l. A fix without position leaves l untouched.
func (f *Fix) Apply(l *models.Location) {
	if !f.HasPosition() {
		return
	}
	l.Latitude = *f.Lat
	l.Longitude = *f.Lon
	if f.AltHAE != nil {
		l.AltitudeGeo = float32(*f.AltHAE)
	} else if f.Alt != nil {
		l.AltitudeGeo = float32(*f.Alt)
	}
	l.Direction = models.InvalidDirection
	if f.Track != nil {
		l.Direction = float32(*f.Track)
	}
	if f.Speed != nil {
		l.SpeedHorizontal = float32(*f.Speed)
	}
	if f.Climb != nil {
		l.SpeedVertical = float32(*f.Climb)
	}
	if h, ok := f.horizontalError(); ok {
		l.HorizAccuracy = odid.HorizontalAccuracy(h)
	}
	if f.EPV != nil {
		l.VertAccuracy = odid.VerticalAccuracy(*f.EPV)
	}
	if f.EPS != nil {
		l.SpeedAccuracy = odid.SpeedAccuracy(*f.EPS)
	}
	if f.EPT != nil {
		l.TSAccuracy = odid.TimestampAccuracy(*f.EPT)
	}
	if f.Time != nil {
		l.TimeStamp = util.SecondsAfterHour(*f.Time)
	}
}

func (f *Fix) horizontalError() (float64, bool) {
	if f.EPH != nil {
		return *f.EPH, true
	}
	if f.EPX != nil && f.EPY != nil {
		return math.Max(*f.EPX, *f.EPY), true
	}
	return 0, false
}
