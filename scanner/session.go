package scanner

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/advscan/internal/device"
	"github.com/srg/advscan/internal/groutine"
	"github.com/srg/advscan/internal/queue"
)

// Session is one run of the scan pipeline on one adapter.
//
// A background goroutine owns the adapter for the lifetime of the session and
// feeds an unbounded (or, with MaxPending, drop-oldest) FIFO queue that the
// caller drains through Results. Results accumulate until consumed or until
// the session is stopped, so callers should consume promptly or stop.
//
// Stop always waits for the background goroutine to release the adapter, so a
// new session on the same adapter can be started as soon as Stop returns.
type Session struct {
	adapter      int
	pollInterval time.Duration
	control      *ControlState
	results      *queue.Queue[Result]
	scanner      *backgroundScanner
	done         <-chan struct{}
	logger       *logrus.Logger
}

// Start opens the adapter selected by opts and starts observing in the background.
//
// It returns once the adapter has been acquired and scanning has begun, without
// waiting for any Result. An invalid adapter selector or an adapter that cannot
// be opened is reported here; there is no retry. A Scan call that fails after
// the adapter was acquired is not: Start has already returned, and the failure
// ends the session like any observer failure (see Done and Err). Cancelling ctx
// ends the scan like Stop does, except that nothing waits for the teardown.
func Start(ctx context.Context, opts *ScanOptions, logger *logrus.Logger) (*Session, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if opts == nil {
		opts = DefaultScanOptions()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	adapter, err := device.ParseAdapterIndex(opts.Adapter)
	if err != nil {
		return nil, err
	}

	results, err := newResultQueue(opts.MaxPending)
	if err != nil {
		return nil, err
	}

	control := NewControlState(opts.BlockList)
	bg := newBackgroundScanner(adapter, opts, control, results, logger)

	logger.WithFields(logrus.Fields{
		"adapter":    device.AdapterName(adapter),
		"block_list": control.Blacklist(),
		"duplicates": opts.AllowDuplicates,
	}).Info("Starting BLE observer...")

	started := make(chan error, 1)
	done := groutine.Go(ctx, "adv-scanner-"+device.AdapterName(adapter), func(ctx context.Context) {
		bg.run(ctx, started)
	})

	if err := <-started; err != nil {
		<-done
		logger.WithError(err).Error("Failed to start BLE observer")
		return nil, fmt.Errorf("failed to start scan: %w", err)
	}

	return &Session{
		adapter:      adapter,
		pollInterval: opts.pollInterval(),
		control:      control,
		results:      results,
		scanner:      bg,
		done:         done,
		logger:       logger,
	}, nil
}

func newResultQueue(maxPending uint32) (*queue.Queue[Result], error) {
	if maxPending == 0 {
		return queue.New[Result](), nil
	}
	q, err := queue.NewBounded[Result](maxPending)
	if err != nil {
		return nil, fmt.Errorf("invalid max pending: %w", err)
	}
	return q, nil
}

// Results returns a lazy sequence of the session's Results in arrival order.
//
// Each call returns a new sequence over the same queue. The sequence waits for
// new Results, checking at least every PollInterval, and runs until one of:
//   - the consumer stops ranging (break/return): the session is stopped;
//   - ctx is done: the session is stopped;
//   - the scanner exited on its own: remaining Results are delivered first.
//
// Stopping here has the same guarantee as Stop: the adapter is released before
// the range loop is left.
func (s *Session) Results(ctx context.Context) iter.Seq[Result] {
	if ctx == nil {
		ctx = context.Background()
	}

	return func(yield func(Result) bool) {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			for r, ok := s.results.TryPop(); ok; r, ok = s.results.TryPop() {
				if !yield(r) {
					s.Stop()
					return
				}
			}

			select {
			case <-ctx.Done():
				s.Stop()
				return
			case <-s.done:
				if s.results.Len() == 0 {
					return
				}
			case <-s.results.Ready():
			case <-ticker.C:
			}
		}
	}
}

// Stop requests the scanner to stop and waits until it has exited and released
// the adapter. It is safe to call more than once and from several goroutines.
func (s *Session) Stop() {
	if s.control.SetStop() {
		s.logger.WithField("adapter", device.AdapterName(s.adapter)).Debug("Stopping BLE observer...")
	}
	<-s.done
}

// Done returns a channel closed once the background scanner has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the observer failure that ended the scan, if any. It is nil
// while the session is running and after a requested stop.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.scanner.err
	default:
		return nil
	}
}

// State returns the background scanner's lifecycle phase.
func (s *Session) State() State {
	return s.scanner.getState()
}

// Stats returns a snapshot of the scanner counters.
func (s *Session) Stats() Stats {
	return s.scanner.stats.snapshot()
}

// Pending returns the number of Results waiting to be consumed.
func (s *Session) Pending() int {
	return s.results.Len()
}

// Block adds addresses to the running session's blacklist.
func (s *Session) Block(addrs ...string) {
	s.control.Block(addrs...)
}

// Adapter returns the index of the adapter the session scans on.
func (s *Session) Adapter() int {
	return s.adapter
}
