package models

const (
	ExampleSerialNumber = "112624150A90E3AE1EC0"
	ExampleSessionID    = "FD3454B778E565C24B70"
	ExampleDescription  = "This is a test of a spoofed drone id"
	ExampleOperatorID   = "Not Real"
)

// FillExampleData populates identity, self-id, system and operator blocks with static test values.
// Operator coordinates are derived from the current location, so fill location first when it is static.
func FillExampleData(d *UASData) {
	d.BasicID[SerialSlot].UAType = UATypeHelicopterOrMultirotor
	d.BasicID[SerialSlot].IDType = IDTypeSerialNumber
	d.BasicID[SerialSlot].SetUASID(ExampleSerialNumber)

	d.BasicID[SessionSlot].UAType = UATypeHelicopterOrMultirotor
	d.BasicID[SessionSlot].IDType = IDTypeSpecificSessionID
	d.BasicID[SessionSlot].SetUASID(ExampleSessionID)

	d.SelfID.DescType = DescTypeText
	d.SelfID.SetDesc(ExampleDescription)

	d.System.OperatorLocationType = OperatorLocationTakeoff
	d.System.ClassificationType = ClassificationEU
	d.System.OperatorLatitude = d.Location.Latitude + 0.001
	d.System.OperatorLongitude = d.Location.Longitude - 0.001
	d.System.AreaCount = 1
	d.System.AreaRadius = 0
	d.System.AreaCeiling = 0
	d.System.AreaFloor = 0
	d.System.CategoryEU = CategoryEUOpen
	d.System.ClassEU = ClassEUClass1
	d.System.OperatorAltitudeGeo = 20.5
	d.System.Timestamp = 28056789

	d.OperatorID.OperatorIDType = OperatorIDTypeOperatorID
	d.OperatorID.SetOperatorID(ExampleOperatorID)
}

// FillExampleLocation populates the location block with a static airborne fix.
// Accuracy enums are given directly: <10 m horizontal, <10 m vertical, <1 m baro, <1 m/s speed, 0.1 s.
func FillExampleLocation(d *UASData) {
	d.Location.Status = StatusAirborne
	d.Location.Direction = 361
	d.Location.SpeedHorizontal = 0
	d.Location.SpeedVertical = 0.35
	d.Location.Latitude = 51.4791
	d.Location.Longitude = -0.0013
	d.Location.AltitudeBaro = 100
	d.Location.AltitudeGeo = 110
	d.Location.HeightType = HeightOverGround
	d.Location.Height = 80
	d.Location.HorizAccuracy = 10
	d.Location.VertAccuracy = 4
	d.Location.BaroAccuracy = 6
	d.Location.SpeedAccuracy = 3
	d.Location.TSAccuracy = 1
	d.Location.TimeStamp = 360.52
}
