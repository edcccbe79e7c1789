package util

import "time"

const (
	// MessageSize is the size in bytes of one encoded Remote ID message
	MessageSize = 25
	// AuthFirstPageCapacity is the number of signature bytes carried by auth page 0
	AuthFirstPageCapacity = 17
	// AuthPageCapacity is the number of signature bytes carried by every auth page after page 0
	AuthPageCapacity = 23
	// MaxPackMessages is the maximum number of messages in one message pack
	MaxPackMessages = 9
	// AuthPagesPerPack is the number of auth pages carried by one message pack
	AuthPagesPerPack = 3
)

const (
	// MessageDelay is the pause after each single message
	MessageDelay = 100 * time.Millisecond
	// PackDelay is the pause after each message pack
	PackDelay = 4 * time.Second
	// PackRepeats is the number of packs sent per transmission cycle
	PackRepeats = 10
)

const (
	// GPSWaitTimeout bounds a single poll of the gps source
	GPSWaitTimeout = 3 * time.Second
	// MaxGPSWaitRetries is the number of consecutive not-ready polls tolerated
	MaxGPSWaitRetries = 3
	// MaxGPSReadRetries is the number of consecutive failed reads tolerated
	MaxGPSReadRetries = 3
	// DefaultGPSDAddr is where gpsd listens by default
	DefaultGPSDAddr = "localhost:2947"
	// DefaultHostapdCtrl is the hostapd control socket of the beacon interface
	DefaultHostapdCtrl = "/var/run/hostapd/wlan0"
)

const (
	// CloseTimeout bounds closing a transport at shutdown
	CloseTimeout = 5 * time.Second
)
