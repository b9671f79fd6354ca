package scanner

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/srg/advscan/internal/device"
	"github.com/srg/advscan/internal/devicefactory"
	"github.com/srg/advscan/internal/groutine"
	"github.com/srg/advscan/internal/queue"
)

// State is the lifecycle phase of a session's background scanner
type State int32

const (
	StateStarting State = iota // acquiring the adapter
	StateRunning               // forwarding advertisements
	StateDraining              // releasing the adapter
	StateStopped               // background goroutine has exited
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// backgroundScanner owns the observer for one session. It runs in its own
// goroutine, moves raw advertisements from the observer callback through a
// staging queue into the filter, and pushes accepted Results to the session queue.
type backgroundScanner struct {
	adapter  int
	allowDup bool
	control  *ControlState
	filter   advFilter
	staging  *queue.Queue[device.Advertisement]
	results  *queue.Queue[Result]
	stats    *counters
	logger   *logrus.Logger

	state atomic.Int32
	err   error // observer failure; written before the goroutine exits
}

func newBackgroundScanner(adapter int, opts *ScanOptions, control *ControlState, results *queue.Queue[Result], logger *logrus.Logger) *backgroundScanner {
	return &backgroundScanner{
		adapter:  adapter,
		allowDup: opts.AllowDuplicates,
		control:  control,
		filter:   advFilter{control: control},
		staging:  queue.New[device.Advertisement](),
		results:  results,
		stats:    &counters{},
		logger:   logger,
	}
}

func (b *backgroundScanner) setState(s State) {
	b.state.Store(int32(s))
}

func (b *backgroundScanner) getState() State {
	return State(b.state.Load())
}

// run drives the scanner through its whole lifecycle. The start-up outcome is
// reported on started exactly once; nil means the observer is scanning.
func (b *backgroundScanner) run(ctx context.Context, started chan<- error) {
	defer b.setState(StateStopped)
	b.setState(StateStarting)

	logger := b.logger.WithFields(logrus.Fields{
		"adapter":   device.AdapterName(b.adapter),
		"goroutine": groutine.GetName(ctx),
	})

	obs, err := devicefactory.ObserverFactory(b.adapter)
	if err != nil {
		started <- adapterError(b.adapter, err)
		return
	}

	scanCtx, cancelScan := context.WithCancel(ctx)
	scanDone := make(chan error, 1)
	groutine.Go(scanCtx, "adv-observer-"+device.AdapterName(b.adapter), func(ctx context.Context) {
		scanDone <- obs.Scan(ctx, b.allowDup, b.stage)
	})

	scanExited := false
	defer func() {
		b.setState(StateDraining)
		cancelScan()
		if !scanExited {
			<-scanDone
		}
		if err := obs.Stop(); err != nil {
			logger.WithError(err).Warn("Failed to release adapter")
		}
		logger.WithField("stats", b.stats.snapshot()).Info("Stopped receiving broadcasts")
	}()

	b.setState(StateRunning)
	started <- nil
	logger.Info("Start receiving broadcasts")

	for {
		select {
		case <-ctx.Done():
			// Interrupts end the scan like a stop request
			logger.WithError(ctx.Err()).Debug("Scan context done")
			return
		case <-b.control.Stopped():
			return
		case err := <-scanDone:
			scanExited = true
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				b.err = fmt.Errorf("scan failed: %w", err)
				logger.WithError(err).Error("Observer stopped unexpectedly")
			}
			// Forward whatever the observer delivered before it exited
			b.processStaged()
			return
		case <-b.staging.Ready():
			if !b.processStaged() {
				return
			}
		}
	}
}

// stage is the observer callback. It must not block the radio.
func (b *backgroundScanner) stage(adv device.Advertisement) {
	b.stats.addReceived()
	b.staging.Push(adv)
}

// processStaged handles every staged advertisement. It returns false if stop
// was requested, leaving the remaining events unprocessed.
func (b *backgroundScanner) processStaged() bool {
	for {
		if b.control.ShouldStop() {
			return false
		}
		adv, ok := b.staging.TryPop()
		if !ok {
			return true
		}
		b.process(adv)
	}
}

// process filters one advertisement and queues the Result. Failures affect only this event.
func (b *backgroundScanner) process(adv device.Advertisement) {
	defer func() {
		if r := recover(); r != nil {
			b.stats.addFailed()
			b.logger.WithField("panic", r).Warn("Advertisement processing failed, skipping event")
		}
	}()

	res, v, err := b.filter.apply(adv)
	if err != nil {
		b.stats.addFailed()
		b.logger.WithError(err).Info("Skipping advertisement")
		return
	}

	switch v {
	case verdictBlacklisted:
		b.stats.addBlacklisted()
	case verdictNoPayload:
		b.stats.addNoPayload()
	default:
		b.stats.addAccepted()
		if b.logger.IsLevelEnabled(logrus.TraceLevel) {
			b.traceAccepted(adv, res)
		}
		if dropped := b.results.Push(res); dropped > 0 {
			b.stats.addDropped(dropped)
			b.logger.WithField("dropped", dropped).Debug("Result queue full, discarded oldest")
		}
	}
}

func (b *backgroundScanner) traceAccepted(adv device.Advertisement, res Result) {
	fields := logrus.Fields{
		"address": res.Address,
		"payload": res.Payload,
		"rssi":    adv.RSSI(),
	}
	if name := adv.LocalName(); name != "" {
		fields["name"] = name
	}
	if raw, err := hex.DecodeString(res.Payload); err == nil {
		if id, err := device.CompanyID(raw); err == nil {
			fields["company_id"] = fmt.Sprintf("0x%04X", id)
		}
	}
	b.logger.WithFields(fields).Trace("Advertisement accepted")
}

// adapterError wraps an acquisition failure so that it always matches one of
// the radio sentinels and carries the adapter index.
func adapterError(adapter int, err error) error {
	if !errors.Is(err, device.ErrBluetoothOff) && !errors.Is(err, device.ErrAdapterUnavailable) {
		err = fmt.Errorf("%w: %v", device.ErrAdapterUnavailable, err)
	}
	return &device.AdapterError{Index: adapter, Err: err}
}
