package gps

// Status is an enum for the conditions of the gps refresh task
type Status int32

const (
	Idle Status = iota
	WaitingForData
	Processing
	Terminated
)

func (s Status) String() string {
	return []string{"Idle", "WaitingForData", "Processing", "Terminated"}[s]
}
