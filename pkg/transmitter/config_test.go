package transmitter

import (
	"testing"

	"gotest.tools/assert"
)

func TestConfigValidate(t *testing.T) {
	assert.Equal(t, NewConfig().Validate(), ErrNoTransport)
	assert.Equal(t, NewConfig(BluetoothLegacy, Bluetooth4).Validate(), ErrLegacyAndExtended)
	assert.Equal(t, NewConfig(BluetoothLegacy, Bluetooth5).Validate(), ErrLegacyAndExtended)

	c := NewConfig(Bluetooth4)
	c.UsePacks = true
	assert.Equal(t, c.Validate(), ErrPacksUnsupported)
	c = NewConfig(BluetoothLegacy)
	c.UsePacks = true
	assert.Equal(t, c.Validate(), ErrPacksUnsupported)

	c = NewConfig(Beacon, Bluetooth5)
	c.UsePacks = true
	assert.NilError(t, c.Validate())
	assert.NilError(t, NewConfig(Bluetooth4, Bluetooth5).Validate())
}

func TestConfigDefaults(t *testing.T) {
	c := NewConfig(Bluetooth5, Beacon, Bluetooth5)
	assert.Equal(t, c.Transports.Cardinality(), 2)
	assert.DeepEqual(t, c.Kinds(), []Kind{Beacon, Bluetooth5})
	all := NewConfig(Bluetooth5, Bluetooth4, BluetoothLegacy, Beacon)
	assert.DeepEqual(t, all.Kinds(), []Kind{Beacon, BluetoothLegacy, Bluetooth4, Bluetooth5})
	assert.Equal(t, c.HandleBT4, uint8(0))
	assert.Equal(t, c.HandleBT5, uint8(1))
	assert.Equal(t, c.PackRepeats, 10)
	assert.Assert(t, c.UsesBluetooth())
	assert.Assert(t, !NewConfig(Beacon).UsesBluetooth())
}

func TestConfigWarnings(t *testing.T) {
	c := NewConfig(Beacon, Bluetooth4, Bluetooth5)
	c.UseGPS = true
	assert.Equal(t, len(c.Warnings()), 3)
	assert.Equal(t, len(c.ComplianceWarnings()), 2)
	c.UsePacks = true
	assert.Equal(t, len(c.ComplianceWarnings()), 0)
	assert.Equal(t, len(NewConfig(Bluetooth4).Warnings()), 0)
}

func TestKindFlags(t *testing.T) {
	for _, k := range []Kind{Beacon, BluetoothLegacy, Bluetooth4, Bluetooth5} {
		got, ok := KindFromFlag(k.Flag())
		assert.Assert(t, ok)
		assert.Equal(t, got, k)
	}
	_, ok := KindFromFlag('x')
	assert.Assert(t, !ok)
	assert.Equal(t, Bluetooth5.String(), "bt5")
}
