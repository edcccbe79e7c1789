package lifecycle

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/TechGeek001/jhu-capstone/internal"
	"github.com/TechGeek001/jhu-capstone/pkg/auth"
	"github.com/TechGeek001/jhu-capstone/pkg/gps"
	"github.com/TechGeek001/jhu-capstone/pkg/metrics"
	"github.com/TechGeek001/jhu-capstone/pkg/models"
	"github.com/TechGeek001/jhu-capstone/pkg/odid"
	"github.com/TechGeek001/jhu-capstone/pkg/transmitter"
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gotest.tools/assert"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testCloser stands in for the bluetooth adapter, which closes the transports it handed out
type testCloser struct {
	mutex      sync.Mutex
	transports []transmitter.Transport
	closed     bool
}

func (c *testCloser) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, t := range c.transports {
		if err := t.Close(); err != nil {
			return err
		}
	}
	c.closed = true
	return nil
}

func (c *testCloser) Closed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.closed
}

type testRig struct {
	factory   Factory
	beacon    *DummyPackTransport
	bt        *DummyPackTransport
	adapter   *testCloser
	gpsSource *DummyGPSSource
	opened    []string
}

func getTestRig(steps ...GPSStep) *testRig {
	r := &testRig{
		beacon:    NewDummyPackTransport("beacon"),
		bt:        NewDummyPackTransport("bt5"),
		gpsSource: NewDummyGPSSource(steps...),
	}
	r.adapter = &testCloser{transports: []transmitter.Transport{r.bt}}
	r.factory = Factory{
		Beacon: func(context.Context) (transmitter.Transport, error) {
			r.opened = append(r.opened, "beacon")
			return r.beacon, nil
		},
		Bluetooth: func(*transmitter.Config) ([]transmitter.Transport, io.Closer, error) {
			r.opened = append(r.opened, "bluetooth")
			return []transmitter.Transport{r.bt}, r.adapter, nil
		},
		GPS: func(context.Context) (gps.Source, error) {
			r.opened = append(r.opened, "gps")
			return r.gpsSource, nil
		},
		Key:    auth.GenerateKeyPair,
		Signer: auth.NewSigner,
	}
	return r
}

func getPackConfig() *transmitter.Config {
	cfg := transmitter.NewConfig(transmitter.Beacon, transmitter.Bluetooth5)
	cfg.UsePacks = true
	cfg.PackRepeats = 2
	cfg.PackDelay = 0
	return cfg
}

func TestStaticPacksRun(t *testing.T) {
	r := getTestRig()
	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	assert.NilError(t, err)
	c := &Coordinator{Config: getPackConfig(), Factory: r.factory, Logger: zaptest.NewLogger(t), Metrics: collector}
	assert.NilError(t, c.Run(context.Background()))

	assert.DeepEqual(t, r.opened, []string{"beacon", "bluetooth"})
	for _, tr := range []*DummyPackTransport{r.beacon, r.bt} {
		packs := tr.Messages()
		assert.Equal(t, len(packs), 2)
		for k, p := range packs {
			assert.Assert(t, p.Pack)
			assert.Equal(t, p.Counter, uint8(k))
			assert.Equal(t, int(p.Payload[2]), util.MaxPackMessages)
		}
		assert.Assert(t, tr.Closed())
	}
	assert.Assert(t, r.adapter.Closed())
	assert.Equal(t, testutil.ToFloat64(collector.MessagesSent.WithLabelValues("beacon", "Packed")), float64(2))
	assert.Assert(t, testutil.ToFloat64(collector.AuthPages) >= 3)
}

func TestSignedPagesAreBroadcast(t *testing.T) {
	r := getTestRig()
	cfg := transmitter.NewConfig(transmitter.Bluetooth4)
	cfg.MessageDelay = 0
	var key *auth.KeyPair
	r.factory.Key = func() (*auth.KeyPair, error) {
		k, err := auth.GenerateKeyPair()
		key = k
		return k, err
	}
	c := &Coordinator{Config: cfg, Factory: r.factory, Logger: zaptest.NewLogger(t)}
	assert.NilError(t, c.Run(context.Background()))

	d := models.NewUASData()
	pages := 0
	for _, m := range r.bt.Messages() {
		if odid.Type(m.Payload) != odid.TypeAuth {
			continue
		}
		page := m.Payload[1] & 0x0F
		a := &d.Auth[page]
		a.AuthType = models.AuthType(m.Payload[1] >> 4)
		a.DataPage = page
		if page == 0 {
			a.LastPageIndex = m.Payload[2]
			a.Length = m.Payload[3]
			copy(a.AuthData[:], m.Payload[8:])
		} else {
			copy(a.AuthData[:], m.Payload[2:])
		}
		pages++
	}
	assert.Equal(t, pages, d.AuthPageCount())
	sig, err := auth.ExtractSignature(d)
	assert.NilError(t, err)
	assert.Equal(t, len(sig), int(d.Auth[0].Length))

	expected := models.NewUASData()
	models.FillExampleLocation(expected)
	models.FillExampleData(expected)
	digest := auth.Digest(expected)
	parsed, err := ecdsa.ParseDERSignature(sig)
	assert.NilError(t, err)
	assert.Assert(t, parsed.Verify(digest[:], key.Public))
}

func TestInvalidConfigStartsNothing(t *testing.T) {
	r := getTestRig()
	cfg := transmitter.NewConfig(transmitter.BluetoothLegacy, transmitter.Bluetooth4)
	c := &Coordinator{Config: cfg, Factory: r.factory}
	assert.Equal(t, c.Run(context.Background()), transmitter.ErrLegacyAndExtended)
	assert.Equal(t, len(r.opened), 0)
}

func TestSigningFailureIsFatal(t *testing.T) {
	r := getTestRig()
	r.factory.Signer = func(key *auth.KeyPair, logger *zap.Logger) *auth.Signer {
		s := auth.NewSigner(key, logger)
		s.MaxPages = 1
		return s
	}
	c := &Coordinator{Config: getPackConfig(), Factory: r.factory, Logger: zaptest.NewLogger(t)}
	err := c.Run(context.Background())
	_, ok := errors.Cause(err).(*util.PageBudgetError)
	assert.Assert(t, ok)
	assert.DeepEqual(t, r.opened, []string{"beacon"})
	assert.Equal(t, len(r.beacon.Messages()), 0)
	assert.Assert(t, r.beacon.Closed())
}

func TestBeaconStartupFailure(t *testing.T) {
	r := getTestRig()
	r.factory.Beacon = func(context.Context) (transmitter.Transport, error) {
		return nil, errors.New("hostapd down")
	}
	c := &Coordinator{Config: getPackConfig(), Factory: r.factory}
	err := c.Run(context.Background())
	assert.ErrorContains(t, err, "beacon startup issue")
	assert.Equal(t, len(r.opened), 0)
}

func TestGPSFailureStopsRun(t *testing.T) {
	steps := []GPSStep{{Ready: true, Report: []byte(`{"class":"TPV","mode":3,"lat":10.5,"lon":20.25}`)}}
	for i := 0; i < util.MaxGPSWaitRetries+1; i++ {
		steps = append(steps, GPSStep{Ready: false})
	}
	r := getTestRig(steps...)
	cfg := transmitter.NewConfig(transmitter.Bluetooth5)
	cfg.UseGPS = true
	cfg.UsePacks = true
	cfg.PackDelay = 5 * time.Millisecond
	c := &Coordinator{Config: cfg, Factory: r.factory, Logger: zaptest.NewLogger(t)}
	err := c.Run(context.Background())
	assert.Equal(t, err, gps.ErrWaitRetriesExhausted)
	assert.DeepEqual(t, r.opened, []string{"bluetooth", "gps"})
	assert.Assert(t, r.gpsSource.Closed())
	assert.Assert(t, r.adapter.Closed())
}

func TestInterruptIsCleanShutdown(t *testing.T) {
	r := getTestRig(GPSStep{Ready: false}, GPSStep{Ready: true, Report: []byte(`{"class":"TPV","mode":3,"lat":10.5,"lon":20.25}`)})
	r.gpsSource.Loop = true
	r.gpsSource.Delay = time.Millisecond
	cfg := transmitter.NewConfig(transmitter.Bluetooth4)
	cfg.UseGPS = true
	cfg.MessageDelay = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{Config: cfg, Factory: r.factory, Logger: zaptest.NewLogger(t)}
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.NilError(t, <-done)
	assert.Assert(t, len(r.bt.Messages()) > 0)
	assert.Assert(t, r.gpsSource.Closed())
}

func TestSessionID(t *testing.T) {
	r := getTestRig()
	cfg := transmitter.NewConfig(transmitter.Bluetooth4)
	cfg.MessageDelay = 0
	c := &Coordinator{Config: cfg, Factory: r.factory, SessionID: "SESSION-42"}
	assert.NilError(t, c.Run(context.Background()))
	session := r.bt.Messages()[1].Payload
	assert.Equal(t, odid.Type(session), odid.TypeBasicID)
	assert.Assert(t, strings.HasPrefix(string(session[2:22]), "SESSION-42"))

	id := newSessionID()
	assert.Equal(t, len(id), models.IDSize)
	assert.Equal(t, strings.ToUpper(id), id)
	assert.Assert(t, id != newSessionID())
}
