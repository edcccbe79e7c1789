package transmitter

// Status is an enum for all possible conditions of the transmission loop
type Status int32

const (
	// Idle indicates the loop has not started yet
	Idle Status = iota
	// Running indicates the loop is broadcasting
	Running
	// Stopped indicates the loop returned after cancellation or a finished static cycle
	Stopped
)

func (s Status) String() string {
	return []string{"Idle", "Running", "Stopped"}[s]
}
