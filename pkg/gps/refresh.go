package gps

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/TechGeek001/jhu-capstone/pkg/models"
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrWaitRetriesExhausted means the source stayed silent for too many polls in a row
	ErrWaitRetriesExhausted = errors.New("No GPS data after maximum wait retries")
	// ErrReadRetriesExhausted means too many reads in a row failed
	ErrReadRetriesExhausted = errors.New("GPS read failed after maximum read retries")
)

// Refresher keeps the location block of a store current from a gps source
type Refresher struct {
	Source         Source
	Store          *models.Store
	WaitTimeout    time.Duration
	MaxWaitRetries int
	MaxReadRetries int
	Listener       models.GPSListener
	Logger         *zap.Logger
	status         int32
}

// NewRefresher returns a refresher with the default timeout and retry budgets
func NewRefresher(source Source, store *models.Store, listener models.GPSListener, logger *zap.Logger) *Refresher {
	if listener == nil {
		listener = models.NopGPSListener{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		Source:         source,
		Store:          store,
		WaitTimeout:    util.GPSWaitTimeout,
		MaxWaitRetries: util.MaxGPSWaitRetries,
		MaxReadRetries: util.MaxGPSReadRetries,
		Listener:       listener,
		Logger:         logger,
	}
}

// State returns the current condition; safe from any goroutine
func (r *Refresher) State() Status { return Status(atomic.LoadInt32(&r.status)) }

func (r *Refresher) setState(s Status) { atomic.StoreInt32(&r.status, int32(s)) }

// Run polls the source until ctx is done or a retry budget is exhausted.
// Cancellation is checked between polls and returns nil.
func (r *Refresher) Run(ctx context.Context) error {
	waitRetries, readRetries := 0, 0
	for {
		if ctx.Err() != nil {
			return r.terminate(nil)
		}
		r.setState(WaitingForData)
		ready, err := r.Source.Wait(r.WaitTimeout)
		if err != nil || !ready {
			waitRetries++
			r.Logger.Debug("no gps data", zap.Int("retry", waitRetries), zap.Error(err))
			r.Listener.OnWaitRetry(waitRetries)
			if waitRetries > r.MaxWaitRetries {
				return r.terminate(ErrWaitRetriesExhausted)
			}
			continue
		}
		waitRetries = 0

		r.setState(Processing)
		report, err := r.Source.Read()
		if err != nil {
			readRetries++
			r.Logger.Warn("gps read failed", zap.Int("retry", readRetries), zap.Error(err))
			r.Listener.OnReadRetry(readRetries)
			if readRetries > r.MaxReadRetries {
				return r.terminate(ErrReadRetriesExhausted)
			}
			continue
		}
		readRetries = 0
		r.apply(report)
	}
}

func (r *Refresher) apply(report []byte) {
	fix, ok, err := ParseReport(report)
	if err != nil {
		r.Logger.Debug("gps report ignored", zap.Error(err))
		return
	}
	if !ok || !fix.HasPosition() {
		return
	}
	r.Store.UpdateLocation(fix.Apply)
	r.Listener.OnFix()
}

func (r *Refresher) terminate(err error) error {
	r.setState(Terminated)
	if err != nil {
		r.Logger.Error("gps task terminated", zap.Error(err))
	} else {
		r.Logger.Info("gps task stopped")
	}
	r.Listener.OnTerminated(err)
	return err
}
