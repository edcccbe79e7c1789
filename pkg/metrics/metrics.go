package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/TechGeek001/jhu-capstone/pkg/models"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 2 * time.Second

// Collector exports transmission and gps events as Prometheus metrics.
// It implements models.TransmitListener and models.GPSListener.
type Collector struct {
	gatherer prometheus.Gatherer

	MessagesSent    *prometheus.CounterVec
	EncodeErrors    *prometheus.CounterVec
	TransportErrors *prometheus.CounterVec
	GPSFixes        prometheus.Counter
	GPSRetries      *prometheus.CounterVec
	GPSUp           prometheus.Gauge
	AuthPages       prometheus.Gauge
}

// NewCollector registers the metrics against reg, the default registry when nil
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	c := &Collector{
		gatherer: gatherer,
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rid_messages_sent_total",
			Help: "Messages delivered to a transport, labeled by transport and message kind.",
		}, []string{"transport", "kind"}),
		EncodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rid_encode_errors_total",
			Help: "Messages skipped because they failed to encode.",
		}, []string{"kind"}),
		TransportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rid_transport_errors_total",
			Help: "Failed transport sends, labeled by transport and message kind.",
		}, []string{"transport", "kind"}),
		GPSFixes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rid_gps_fixes_total",
			Help: "Position fixes applied to the location block.",
		}),
		GPSRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rid_gps_retries_total",
			Help: "GPS retries, labeled by stage (wait or read).",
		}, []string{"stage"}),
		GPSUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rid_gps_up",
			Help: "1 while the gps refresh task is healthy.",
		}),
		AuthPages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rid_auth_pages",
			Help: "Authentication pages holding the current signature.",
		}),
	}
	for _, m := range []prometheus.Collector{c.MessagesSent, c.EncodeErrors, c.TransportErrors, c.GPSFixes, c.GPSRetries, c.GPSUp, c.AuthPages} {
		if err := reg.Register(m); err != nil {
			return nil, errors.Wrap(err, "Register issue")
		}
	}
	return c, nil
}

func (c *Collector) OnSent(transport string, kind models.MessageKind, _ uint8) {
	c.MessagesSent.WithLabelValues(transport, kind.String()).Inc()
}

func (c *Collector) OnEncodeError(kind models.MessageKind, _ error) {
	c.EncodeErrors.WithLabelValues(kind.String()).Inc()
}

func (c *Collector) OnTransportError(transport string, kind models.MessageKind, _ error) {
	c.TransportErrors.WithLabelValues(transport, kind.String()).Inc()
}

func (c *Collector) OnFix() {
	c.GPSUp.Set(1)
	c.GPSFixes.Inc()
}

func (c *Collector) OnWaitRetry(int) { c.GPSRetries.WithLabelValues("wait").Inc() }
func (c *Collector) OnReadRetry(int) { c.GPSRetries.WithLabelValues("read").Inc() }

func (c *Collector) OnTerminated(error) { c.GPSUp.Set(0) }

// Handler serves the registered metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done
func (c *Collector) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "metrics listen issue")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()
	select {
	case err := <-done:
		return errors.Wrap(err, "metrics serve issue")
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(sctx)
		<-done
		return nil
	}
}
