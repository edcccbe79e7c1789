package transmitter

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/TechGeek001/jhu-capstone/pkg/models"
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Orchestrator encodes the current record and fans every message out to the enabled transports
type Orchestrator struct {
	store      *models.Store
	encoder    Encoder
	transports []Transport
	config     *Config
	counters   *Counters
	listener   models.TransmitListener
	logger     *zap.Logger
	status     int32
	packIndex  int
}

// NewOrchestrator wires a transmission loop. Transports receive messages in slice order.
func NewOrchestrator(store *models.Store, encoder Encoder, transports []Transport, config *Config, listener models.TransmitListener, logger *zap.Logger) *Orchestrator {
	if listener == nil {
		listener = models.NopTransmitListener{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store: store, encoder: encoder, transports: transports, config: config,
		counters: &Counters{}, listener: listener, logger: logger,
	}
}

// Counters exposes the sequence counters. Read them only after Run returns.
func (o *Orchestrator) Counters() *Counters { return o.counters }

// Status returns the current loop condition; safe from any goroutine
func (o *Orchestrator) Status() Status { return Status(atomic.LoadInt32(&o.status)) }

func (o *Orchestrator) setStatus(s Status) {
	atomic.StoreInt32(&o.status, int32(s))
	o.logger.Debug("transmitter status changed", zap.Stringer("status", s))
}

// Run transmits cycles until ctx is done. Without gps and without repeat exactly one cycle is sent.
// Cancellation is a clean stop and returns nil.
func (o *Orchestrator) Run(ctx context.Context) error {
	if len(o.transports) == 0 {
		return ErrNoTransport
	}
	for _, w := range o.config.ComplianceWarnings() {
		o.logger.Warn(w)
	}
	o.setStatus(Running)
	defer o.setStatus(Stopped)
	for {
		o.logger.Info("Transmitting...")
		var err error
		if o.config.UsePacks {
			err = o.packCycle(ctx)
		} else {
			err = o.singlesCycle(ctx)
		}
		if err != nil || ctx.Err() != nil {
			o.logger.Info("transmission cancelled")
			return nil
		}
		if !o.config.UseGPS && !o.config.Repeat {
			o.logger.Info("static transmission cycle finished")
			return nil
		}
	}
}

type single struct {
	kind   models.MessageKind
	encode func() ([]byte, error)
}

func (o *Orchestrator) singles(d *models.UASData) []single {
	e := o.encoder
	list := []single{}
	for i := range d.BasicID {
		b := &d.BasicID[i]
		list = append(list, single{models.KindBasicID, func() ([]byte, error) { return e.EncodeBasicID(b) }})
	}
	list = append(list, single{models.KindLocation, func() ([]byte, error) { return e.EncodeLocation(&d.Location) }})
	for i := 0; i < d.AuthPageCount(); i++ {
		p := &d.Auth[i]
		list = append(list, single{models.KindAuth, func() ([]byte, error) { return e.EncodeAuth(p) }})
	}
	list = append(list,
		single{models.KindSelfID, func() ([]byte, error) { return e.EncodeSelfID(&d.SelfID) }},
		single{models.KindSystem, func() ([]byte, error) { return e.EncodeSystem(&d.System) }},
		single{models.KindOperatorID, func() ([]byte, error) { return e.EncodeOperatorID(&d.OperatorID) }},
	)
	return list
}

// singlesCycle sends one round of single messages encoded from one snapshot
func (o *Orchestrator) singlesCycle(ctx context.Context) error {
	d := o.store.Snapshot()
	for _, s := range o.singles(&d) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := s.encode()
		if err != nil {
			o.encodeFailed(s.kind, err)
			continue
		}
		o.dispatch(s.kind, msg, false)
		if err := sleep(ctx, o.config.MessageDelay); err != nil {
			return err
		}
	}
	return nil
}

// packCycle sends PackRepeats packs, each built from a fresh snapshot
func (o *Orchestrator) packCycle(ctx context.Context) error {
	for i := 0; i < o.config.PackRepeats; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		d := o.store.Snapshot()
		pack, kind, err := o.buildPack(&d)
		if err != nil {
			o.encodeFailed(kind, err)
		} else {
			o.dispatch(models.KindPacked, pack, true)
		}
		if err := sleep(ctx, o.config.PackDelay); err != nil {
			return err
		}
	}
	return nil
}

// buildPack encodes two basic ids, the location, a window of auth pages, self id, system and operator id.
// The first message that fails to encode fails the whole pack and its kind is returned with the error.
func (o *Orchestrator) buildPack(d *models.UASData) ([]byte, models.MessageKind, error) {
	e := o.encoder
	parts := make([]single, 0, util.MaxPackMessages)
	for i := range d.BasicID {
		b := &d.BasicID[i]
		parts = append(parts, single{models.KindBasicID, func() ([]byte, error) { return e.EncodeBasicID(b) }})
	}
	parts = append(parts, single{models.KindLocation, func() ([]byte, error) { return e.EncodeLocation(&d.Location) }})
	for _, page := range AuthWindow(d.AuthPageCount(), o.packIndex) {
		p := &d.Auth[page]
		parts = append(parts, single{models.KindAuth, func() ([]byte, error) { return e.EncodeAuth(p) }})
	}
	o.packIndex++
	parts = append(parts,
		single{models.KindSelfID, func() ([]byte, error) { return e.EncodeSelfID(&d.SelfID) }},
		single{models.KindSystem, func() ([]byte, error) { return e.EncodeSystem(&d.System) }},
		single{models.KindOperatorID, func() ([]byte, error) { return e.EncodeOperatorID(&d.OperatorID) }},
	)

	msgs := make([][]byte, 0, len(parts))
	for _, p := range parts {
		msg, err := p.encode()
		if err != nil {
			return nil, p.kind, errors.Wrap(err, "pack skipped")
		}
		msgs = append(msgs, msg)
	}
	pack, err := e.EncodePack(msgs)
	if err != nil {
		return nil, models.KindPacked, err
	}
	return pack, models.KindPacked, nil
}

// AuthWindow returns the auth pages carried by the pack with index k when the record holds n pages.
// Records with more pages than fit rotate through them so every page is broadcast.
func AuthWindow(n, k int) []int {
	if n <= util.AuthPagesPerPack {
		w := make([]int, n)
		for i := range w {
			w[i] = i
		}
		return w
	}
	start := (k * util.AuthPagesPerPack) % n
	w := make([]int, util.AuthPagesPerPack)
	for i := range w {
		w[i] = (start + i) % n
	}
	return w
}

// dispatch hands msg to every transport in order. A failing transport never blocks the others.
// The counter for kind advances once when at least one transport took the message.
func (o *Orchestrator) dispatch(kind models.MessageKind, msg []byte, pack bool) int {
	counter := o.counters.Next(kind)
	delivered := 0
	for _, t := range o.transports {
		var err error
		if pack {
			pt, ok := t.(PackTransport)
			if !ok {
				continue
			}
			err = pt.SendPack(msg, counter)
		} else {
			err = t.Send(msg, counter)
		}
		if err != nil {
			o.logger.Warn("transport send failed", zap.String("transport", t.Name()), zap.Stringer("kind", kind), zap.Error(err))
			o.listener.OnTransportError(t.Name(), kind, err)
			continue
		}
		delivered++
		o.listener.OnSent(t.Name(), kind, counter)
	}
	if delivered > 0 {
		o.counters.Advance(kind)
	}
	return delivered
}

func (o *Orchestrator) encodeFailed(kind models.MessageKind, err error) {
	o.logger.Warn("encoding failed, message skipped", zap.Stringer("kind", kind), zap.Error(err))
	o.listener.OnEncodeError(kind, err)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
