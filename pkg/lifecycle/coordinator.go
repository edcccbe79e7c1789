package lifecycle

import (
	"context"
	"io"
	"strings"

	"github.com/TechGeek001/jhu-capstone/pkg/gps"
	"github.com/TechGeek001/jhu-capstone/pkg/metrics"
	"github.com/TechGeek001/jhu-capstone/pkg/models"
	"github.com/TechGeek001/jhu-capstone/pkg/odid"
	"github.com/TechGeek001/jhu-capstone/pkg/transmitter"
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RandomSessionID asks for a fresh session id in basic id slot 1
const RandomSessionID = "random"

// Coordinator runs one transmission session from startup to shutdown
type Coordinator struct {
	Config  *transmitter.Config
	Factory Factory
	Logger  *zap.Logger
	// Metrics is optional; MetricsAddr serves it when set
	Metrics     *metrics.Collector
	MetricsAddr string
	// SessionID replaces the example session id; RandomSessionID generates one
	SessionID string
}

type closer struct {
	name string
	c    io.Closer
}

// Run starts the transports, signs the record and transmits until the orchestrator finishes,
// ctx is done or the gps task fails. Transports are always closed before Run returns.
func (c *Coordinator) Run(ctx context.Context) (err error) {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run", uuid.New().String()[:8]))

	var closers []closer
	defer func() {
		if cerr := closeAll(closers, logger); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var beaconTransport transmitter.Transport
	if c.Config.Uses(transmitter.Beacon) {
		logger.Info("waiting for hostapd")
		b, err := c.Factory.Beacon(ctx)
		if err != nil {
			return errors.Wrap(err, "beacon startup issue")
		}
		beaconTransport = b
		closers = append(closers, closer{b.Name(), b})
	}

	d, err := c.buildRecord(logger)
	if err != nil {
		return err
	}
	store := models.NewStore(d)

	transports := []transmitter.Transport{}
	if c.Config.UsesBluetooth() {
		ts, adapter, err := c.Factory.Bluetooth(c.Config)
		if err != nil {
			return err
		}
		closers = append(closers, closer{"bluetooth", adapter})
		transports = append(transports, ts...)
	}
	if beaconTransport != nil {
		transports = append(transports, beaconTransport)
	}

	var txListener models.TransmitListener = models.NopTransmitListener{}
	var gpsListener models.GPSListener = models.NopGPSListener{}
	if c.Metrics != nil {
		txListener, gpsListener = c.Metrics, c.Metrics
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)
	if c.Metrics != nil && c.MetricsAddr != "" {
		g.Go(func() error { return c.Metrics.Serve(gctx, c.MetricsAddr, logger) })
	}
	if c.Config.UseGPS {
		source, err := c.Factory.GPS(ctx)
		if err != nil {
			return errors.Wrap(err, "gps init issue")
		}
		closers = append(closers, closer{"gps", source})
		refresher := gps.NewRefresher(source, store, gpsListener, logger)
		g.Go(func() error { return refresher.Run(gctx) })
	}
	orchestrator := transmitter.NewOrchestrator(store, odid.Encoder{}, transports, c.Config, txListener, logger)
	g.Go(func() error {
		defer stop()
		return orchestrator.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("run failed", zap.Error(err))
		return err
	}
	logger.Info("run finished")
	return nil
}

// buildRecord fills and signs the record. Nothing is transmitted when signing fails.
func (c *Coordinator) buildRecord(logger *zap.Logger) (*models.UASData, error) {
	d := models.NewUASData()
	if !c.Config.UseGPS {
		models.FillExampleLocation(d)
	}
	models.FillExampleData(d)
	switch c.SessionID {
	case "":
	case RandomSessionID:
		d.BasicID[models.SessionSlot].SetUASID(newSessionID())
	default:
		d.BasicID[models.SessionSlot].SetUASID(c.SessionID)
	}

	key, err := c.Factory.Key()
	if err != nil {
		return nil, err
	}
	logger.Info("Public key", zap.String("compressed", key.PublicKeyHex()))
	res, err := c.Factory.Signer(key, logger).Sign(d)
	if err != nil {
		return nil, errors.Wrap(err, "signing issue")
	}
	if c.Metrics != nil {
		c.Metrics.AuthPages.Set(float64(res.Pages))
	}
	return d, nil
}

// newSessionID returns a 20 character upper case hex id
func newSessionID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:models.IDSize]
}

// closeAll closes in reverse order of opening, each bounded by util.CloseTimeout
func closeAll(closers []closer, logger *zap.Logger) error {
	var first error
	for i := len(closers) - 1; i >= 0; i-- {
		cl := closers[i]
		err := util.Timeout(cl.c.Close, util.CloseTimeout)
		if err != nil {
			logger.Warn("close failed", zap.String("component", cl.name), zap.Error(err))
			if first == nil {
				first = errors.Wrap(err, cl.name+" close issue")
			}
		}
	}
	return first
}
