package transmitter

import (
	"time"

	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/bradfitz/slice"
	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"
)

const (
	errLegacyAndExtended = "Cannot use both old API and Extended Advertising API at the same time"
	errPacksUnsupported  = "BT4 cannot use message packs"
	errNoTransport       = "No transport selected"
)

var (
	// ErrLegacyAndExtended rejects legacy advertising combined with an extended advertising transport
	ErrLegacyAndExtended = errors.New(errLegacyAndExtended)
	// ErrPacksUnsupported rejects message packs on a BT4 transport
	ErrPacksUnsupported = errors.New(errPacksUnsupported)
	// ErrNoTransport means nothing would be transmitted
	ErrNoTransport = errors.New(errNoTransport)
)

// Kind is a wireless transport
type Kind int

const (
	// Beacon is Wi-Fi Beacon vendor elements via hostapd
	Beacon Kind = iota
	// BluetoothLegacy is BT4 legacy advertising with the non-extended HCI commands
	BluetoothLegacy
	// Bluetooth4 is BT4 legacy advertising with the extended advertising HCI commands
	Bluetooth4
	// Bluetooth5 is BT5 long range extended advertising
	Bluetooth5
)

func (k Kind) String() string {
	return []string{"beacon", "bt-legacy", "bt4", "bt5"}[k]
}

// Flag is the single letter command line option for the transport
func (k Kind) Flag() byte {
	return []byte{'b', 'l', '4', '5'}[k]
}

// KindFromFlag returns the transport selected by a command line letter
func KindFromFlag(f byte) (Kind, bool) {
	for _, k := range []Kind{Beacon, BluetoothLegacy, Bluetooth4, Bluetooth5} {
		if k.Flag() == f {
			return k, true
		}
	}
	return 0, false
}

// Config is the transmission configuration of one run
type Config struct {
	Transports   mapset.Set
	UsePacks     bool
	UseGPS       bool
	Repeat       bool
	MessageDelay time.Duration
	PackDelay    time.Duration
	PackRepeats  int
	// HandleBT4 and HandleBT5 are the extended advertising set numbers owned by each transport
	HandleBT4 uint8
	HandleBT5 uint8
}

// NewConfig returns a config with default pacing and the given transports enabled
func NewConfig(kinds ...Kind) *Config {
	c := &Config{
		Transports:   mapset.NewSet(),
		MessageDelay: util.MessageDelay,
		PackDelay:    util.PackDelay,
		PackRepeats:  util.PackRepeats,
		HandleBT4:    0,
		HandleBT5:    1,
	}
	for _, k := range kinds {
		c.Enable(k)
	}
	return c
}

// Enable adds a transport
func (c *Config) Enable(k Kind) { c.Transports.Add(k) }

// Uses reports whether k is enabled
func (c *Config) Uses(k Kind) bool { return c.Transports.Contains(k) }

// UsesBluetooth reports whether any bluetooth transport is enabled
func (c *Config) UsesBluetooth() bool {
	return c.Uses(BluetoothLegacy) || c.Uses(Bluetooth4) || c.Uses(Bluetooth5)
}

// Kinds returns the enabled transports in a stable order
func (c *Config) Kinds() []Kind {
	kinds := []Kind{}
	for _, v := range c.Transports.ToSlice() {
		kinds = append(kinds, v.(Kind))
	}
	slice.Sort(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Validate rejects transport and mode combinations that cannot work
func (c *Config) Validate() error {
	if c.Transports.Cardinality() == 0 {
		return ErrNoTransport
	}
	if c.Uses(BluetoothLegacy) && (c.Uses(Bluetooth4) || c.Uses(Bluetooth5)) {
		return ErrLegacyAndExtended
	}
	if (c.Uses(BluetoothLegacy) || c.Uses(Bluetooth4)) && c.UsePacks {
		return ErrPacksUnsupported
	}
	return nil
}

// Warnings are operator reminders for valid but fragile configurations
func (c *Config) Warnings() []string {
	w := []string{}
	if c.Uses(Beacon) {
		w = append(w, "Reminder: Wi-Fi Beacon only works when hostapd is running with the beacon configuration")
	}
	if c.Uses(Bluetooth4) && c.Uses(Bluetooth5) {
		w = append(w, "Warning: Doing simultaneous BT4 and BT5 will not necessarily work")
	}
	if c.UseGPS {
		w = append(w, "Warning: Fetching GPS data requires a configured GPS sensor")
	}
	return w
}

// ComplianceWarnings lists the standards violations of the configuration.
// Receivers may drop single messages on Beacon and BT5.
func (c *Config) ComplianceWarnings() []string {
	w := []string{}
	if c.UsePacks {
		return w
	}
	if c.Uses(Beacon) {
		w = append(w, "Warning: Transmitting single messages on Wi-Fi beacon is violating the standards. Enable message packs.")
	}
	if c.Uses(Bluetooth5) {
		w = append(w, "Warning: Transmitting single messages on Bluetooth 5 Long Range is violating the standards. Enable message packs.")
	}
	return w
}
