package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/TechGeek001/jhu-capstone/pkg/lifecycle"
	"github.com/TechGeek001/jhu-capstone/pkg/transmitter"
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"gotest.tools/assert"
)

type testApp struct {
	App
	out   bytes.Buffer
	err   bytes.Buffer
	opts  *lifecycle.Options
	coord *lifecycle.Coordinator
	runs  int
}

func newTestApp(t *testing.T, runErr error) *testApp {
	a := &testApp{}
	a.App = App{
		Out:    &a.out,
		Err:    &a.err,
		Logger: zaptest.NewLogger(t),
		NewFactory: func(opts lifecycle.Options, logger *zap.Logger) lifecycle.Factory {
			a.opts = &opts
			return lifecycle.Factory{}
		},
		Run: func(ctx context.Context, c *lifecycle.Coordinator) error {
			a.runs++
			a.coord = c
			return runErr
		},
	}
	return a
}

func TestParseArgs(t *testing.T) {
	cfg := ParseArgs([]string{"bx", "4", "", "q", "p"})
	assert.DeepEqual(t, cfg.Kinds(), []transmitter.Kind{transmitter.Beacon, transmitter.Bluetooth4})
	assert.Assert(t, cfg.UsePacks)
	assert.Assert(t, !cfg.UseGPS)

	cfg = ParseArgs([]string{"5", "g", "l"})
	assert.DeepEqual(t, cfg.Kinds(), []transmitter.Kind{transmitter.BluetoothLegacy, transmitter.Bluetooth5})
	assert.Assert(t, cfg.UseGPS)
	assert.Assert(t, !cfg.UsePacks)
}

func TestNoTransportPrintsHelp(t *testing.T) {
	a := newTestApp(t, nil)
	assert.Equal(t, a.Execute(context.Background(), []string{}), 0)
	assert.Equal(t, a.runs, 0)
	assert.Assert(t, bytes.Contains(a.out.Bytes(), []byte("Use message packs instead of single messages")))

	a = newTestApp(t, nil)
	assert.Equal(t, a.Execute(context.Background(), []string{"p", "g"}), 0)
	assert.Equal(t, a.runs, 0)
	assert.Assert(t, bytes.Contains(a.out.Bytes(), []byte("transmit [b|l|4|5|p|g]...")))
}

func TestInvalidCombinationFails(t *testing.T) {
	for _, args := range [][]string{{"l", "p"}, {"4", "p"}, {"l", "5"}} {
		a := newTestApp(t, nil)
		assert.Equal(t, a.Execute(context.Background(), args), 1)
		assert.Equal(t, a.runs, 0)
		assert.Assert(t, a.opts == nil)
		assert.Assert(t, a.err.Len() > 0)
	}
	a := newTestApp(t, nil)
	a.Execute(context.Background(), []string{"4", "p"})
	assert.Equal(t, a.err.String(), "Error: BT4 cannot use message packs\n")
}

func TestDefaults(t *testing.T) {
	a := newTestApp(t, nil)
	assert.Equal(t, a.Execute(context.Background(), []string{"b", "p"}), 0)
	assert.Equal(t, a.runs, 1)

	cfg := a.coord.Config
	assert.DeepEqual(t, cfg.Kinds(), []transmitter.Kind{transmitter.Beacon})
	assert.Assert(t, cfg.UsePacks)
	assert.Assert(t, !cfg.Repeat)
	assert.Equal(t, cfg.MessageDelay, util.MessageDelay)
	assert.Equal(t, cfg.PackDelay, util.PackDelay)
	assert.Equal(t, cfg.PackRepeats, util.PackRepeats)
	assert.Equal(t, *a.opts, lifecycle.Options{
		HostapdCtrl: util.DefaultHostapdCtrl,
		HCIDevice:   0,
		GPSAddr:     util.DefaultGPSDAddr,
	})
	assert.Assert(t, a.coord.Metrics == nil)
	assert.Equal(t, a.coord.SessionID, "")
}

func TestFlags(t *testing.T) {
	a := newTestApp(t, nil)
	code := a.Execute(context.Background(), []string{
		"5", "p", "g",
		"--gps-addr", "10.0.0.1:2947",
		"--hci-device", "1",
		"--metrics-addr", "127.0.0.1:0",
		"--repeat",
		"--session-id", "random",
		"--pack-delay", "1s",
		"--pack-repeats", "3",
	})
	assert.Equal(t, code, 0)
	cfg := a.coord.Config
	assert.Assert(t, cfg.UseGPS)
	assert.Assert(t, cfg.Repeat)
	assert.Equal(t, cfg.PackDelay, time.Second)
	assert.Equal(t, cfg.PackRepeats, 3)
	assert.Equal(t, a.opts.GPSAddr, "10.0.0.1:2947")
	assert.Equal(t, a.opts.HCIDevice, 1)
	assert.Equal(t, a.coord.MetricsAddr, "127.0.0.1:0")
	assert.Assert(t, a.coord.Metrics != nil)
	assert.Equal(t, a.coord.SessionID, lifecycle.RandomSessionID)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("RID_GPS_ADDR", "gps.local:2947")
	t.Setenv("RID_MESSAGE_DELAY", "250ms")
	a := newTestApp(t, nil)
	assert.Equal(t, a.Execute(context.Background(), []string{"4"}), 0)
	assert.Equal(t, a.opts.GPSAddr, "gps.local:2947")
	assert.Equal(t, a.coord.Config.MessageDelay, 250*time.Millisecond)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transmit.yaml")
	err := os.WriteFile(path, []byte("session-id: SESSION42\npack-repeats: 2\nhostapd-ctrl: /tmp/hostapd/wlan1\n"), 0o600)
	assert.NilError(t, err)

	a := newTestApp(t, nil)
	assert.Equal(t, a.Execute(context.Background(), []string{"b", "p", "--config", path}), 0)
	assert.Equal(t, a.coord.SessionID, "SESSION42")
	assert.Equal(t, a.coord.Config.PackRepeats, 2)
	assert.Equal(t, a.opts.HostapdCtrl, "/tmp/hostapd/wlan1")

	a = newTestApp(t, nil)
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	assert.Equal(t, a.Execute(context.Background(), []string{"b", "--config", missing}), 1)
	assert.Equal(t, a.runs, 0)
}

func TestBadValues(t *testing.T) {
	a := newTestApp(t, nil)
	assert.Equal(t, a.Execute(context.Background(), []string{"b", "p", "--pack-repeats", "0"}), 1)
	assert.Equal(t, a.runs, 0)

	a = newTestApp(t, nil)
	a.Logger = nil
	assert.Equal(t, a.Execute(context.Background(), []string{"b", "p", "--log-level", "loud"}), 1)
	assert.Equal(t, a.runs, 0)
}

func TestRunFailureExitStatus(t *testing.T) {
	a := newTestApp(t, errors.New("gps init issue"))
	assert.Equal(t, a.Execute(context.Background(), []string{"5", "p", "g"}), 1)
	assert.Equal(t, a.runs, 1)
	assert.Equal(t, a.err.String(), "Error: gps init issue\n")
}

func TestWarningsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := newTestApp(t, nil)
	a.Logger = zap.New(core)
	assert.Equal(t, a.Execute(context.Background(), []string{"b", "4", "5", "g"}), 0)
	assert.Equal(t, logs.Len(), 3)
	assert.Equal(t, logs.FilterMessageSnippet("hostapd").Len(), 1)
	assert.Equal(t, logs.FilterMessageSnippet("BT4 and BT5").Len(), 1)
	assert.Equal(t, logs.FilterMessageSnippet("GPS sensor").Len(), 1)
}
