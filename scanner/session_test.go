package scanner_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/advscan/internal/device"
	"github.com/srg/advscan/internal/testutils"
	"github.com/srg/advscan/scanner"
	suitelib "github.com/stretchr/testify/suite"
)

type SessionTestSuite struct {
	testutils.ObserverSuite
}

func TestSessionTestSuite(t *testing.T) {
	suitelib.Run(t, new(SessionTestSuite))
}

// start opens a session and registers a Stop on cleanup
func (suite *SessionTestSuite) start(opts *scanner.ScanOptions) *scanner.Session {
	s, err := scanner.Start(context.Background(), opts, suite.Logger)
	suite.Require().NoError(err, "session start MUST succeed")
	suite.T().Cleanup(s.Stop)
	return s
}

// collect reads n results or fails after TestTimeout
func (suite *SessionTestSuite) collect(s *scanner.Session, n int) []scanner.Result {
	ctx, cancel := context.WithTimeout(context.Background(), suite.TestTimeout)
	defer cancel()

	got := make([]scanner.Result, 0, n)
	for r := range s.Results(ctx) {
		got = append(got, r)
		if len(got) == n {
			break
		}
	}
	suite.Require().Len(got, n, "expected results MUST arrive before timeout")
	return got
}

func adv(addr string, payload ...byte) device.Advertisement {
	return testutils.CreateMockAdvertisement(addr, payload).Build()
}

func (suite *SessionTestSuite) TestDefaultScanOptions() {
	opts := scanner.DefaultScanOptions()

	suite.Equal("", opts.Adapter)
	suite.Nil(opts.BlockList)
	suite.True(opts.AllowDuplicates)
	suite.Equal(100*time.Millisecond, opts.PollInterval)
	suite.Equal(uint32(0), opts.MaxPending)
}

func (suite *SessionTestSuite) TestStartWithDefaults() {
	s, err := scanner.Start(context.Background(), nil, nil)
	suite.Require().NoError(err)

	suite.Equal(scanner.StateRunning, s.State())
	suite.Equal(0, s.Adapter())
	suite.Equal([]int{0}, suite.RequestedAdapters())

	<-suite.Observer.ScanStarted()
	suite.True(suite.Observer.AllowDup(), "duplicates MUST be reported by default")

	s.Stop()
	suite.Equal(scanner.StateStopped, s.State())
	suite.True(suite.Observer.Released(), "adapter MUST be released when Stop returns")
}

func (suite *SessionTestSuite) TestAdapterSelector() {
	tests := []struct {
		selector string
		expected int
	}{
		{selector: "", expected: 0},
		{selector: "hci1", expected: 1},
		{selector: "2", expected: 2},
	}

	for _, tt := range tests {
		suite.Run(fmt.Sprintf("selector %q", tt.selector), func() {
			s, err := scanner.Start(context.Background(), &scanner.ScanOptions{Adapter: tt.selector}, suite.Logger)
			suite.Require().NoError(err)
			defer s.Stop()

			suite.Equal(tt.expected, s.Adapter())
			adapters := suite.RequestedAdapters()
			suite.Equal(tt.expected, adapters[len(adapters)-1])
		})
	}
}

func (suite *SessionTestSuite) TestInvalidAdapter() {
	s, err := scanner.Start(context.Background(), &scanner.ScanOptions{Adapter: "usb0"}, suite.Logger)

	suite.Nil(s)
	suite.ErrorIs(err, device.ErrInvalidAdapter)
	suite.Empty(suite.RequestedAdapters(), "factory MUST NOT be called for an invalid selector")
}

func (suite *SessionTestSuite) TestStartFailure() {
	suite.Run("unknown failure is reported as unavailable adapter", func() {
		suite.FactoryErr = errors.New("hci socket refused")

		s, err := scanner.Start(context.Background(), &scanner.ScanOptions{Adapter: "hci1"}, suite.Logger)

		suite.Nil(s)
		suite.ErrorIs(err, device.ErrAdapterUnavailable)
		suite.ErrorContains(err, "hci socket refused")
		idx, ok := device.AdapterIndex(err)
		suite.True(ok)
		suite.Equal(1, idx)
	})

	suite.Run("radio sentinels are preserved", func() {
		suite.FactoryErr = device.ErrBluetoothOff

		_, err := scanner.Start(context.Background(), nil, suite.Logger)

		suite.ErrorIs(err, device.ErrBluetoothOff)
		suite.NotErrorIs(err, device.ErrAdapterUnavailable)
	})

	suite.Equal(0, suite.Observer.ScanCount(), "no scan MUST start after a failed acquisition")
}

func (suite *SessionTestSuite) TestInvalidMaxPending() {
	_, err := scanner.Start(context.Background(), &scanner.ScanOptions{MaxPending: 1 << 30}, suite.Logger)

	suite.ErrorContains(err, "invalid max pending")
	suite.Empty(suite.RequestedAdapters())
}

func (suite *SessionTestSuite) TestResultsFiltering() {
	suite.WithAdvertisements(
		adv("AA:BB:CC:DD:EE:FF", 0x02, 0x01, 0x06),
		adv("11:22:33:44:55:66", 0xde, 0xad),
		testutils.NewAdvertisementBuilder().WithAddress("99:88:77:66:55:44").Build(),
		testutils.NewAdvertisementBuilder().WithManufacturerData([]byte{0x01}).Build(),
		adv("AA:BB:CC:DD:EE:FF", 0x03),
	)
	s := suite.start(&scanner.ScanOptions{BlockList: []string{"11:22:33:44:55:66"}})

	got := suite.collect(s, 3)

	suite.Equal([]scanner.Result{
		{Address: "AA:BB:CC:DD:EE:FF", Payload: "020106"},
		{Address: "", Payload: "01"},
		{Address: "AA:BB:CC:DD:EE:FF", Payload: "03"},
	}, got)

	// Leaving the range loop stops the session and releases the adapter
	suite.True(suite.Observer.Released())
	suite.Equal(scanner.StateStopped, s.State())

	stats := s.Stats()
	suite.Equal(int64(5), stats.Received)
	suite.Equal(int64(3), stats.Accepted)
	suite.Equal(int64(1), stats.Blacklisted)
	suite.Equal(int64(1), stats.NoPayload)
	suite.Equal(int64(0), stats.Failed)
}

func (suite *SessionTestSuite) TestResultsPreserveOrder() {
	const total = 500
	s := suite.start(nil)

	go func() {
		for i := 0; i < total; i++ {
			suite.Observer.Emit(adv("AA:BB:CC:DD:EE:FF", byte(i>>8), byte(i)))
		}
	}()

	got := suite.collect(s, total)
	for i, r := range got {
		suite.Require().Equal(fmt.Sprintf("%02x%02x", byte(i>>8), byte(i)), r.Payload, "result %d out of order", i)
	}
}

func (suite *SessionTestSuite) TestStopJoinsBackground() {
	s := suite.start(nil)
	<-suite.Observer.ScanStarted()
	suite.True(suite.Observer.Scanning())

	s.Stop()

	suite.True(suite.Observer.Released(), "adapter MUST be released when Stop returns")
	suite.Equal(1, suite.Observer.StopCount())
	select {
	case <-s.Done():
	default:
		suite.Fail("background goroutine MUST have exited")
	}

	suite.NotPanics(s.Stop, "repeated Stop MUST be safe")
	suite.Equal(1, suite.Observer.StopCount(), "adapter MUST be released once")

	// The adapter can be reused immediately
	next := suite.start(nil)
	suite.Equal(scanner.StateRunning, next.State())
}

func (suite *SessionTestSuite) TestStopWithoutConsumer() {
	s := suite.start(nil)
	for i := 0; i < 50; i++ {
		suite.Observer.Emit(adv("AA:BB:CC:DD:EE:FF", byte(i)))
	}

	suite.WaitFor(func() bool { return s.Pending() == 50 }, "results MUST accumulate without a consumer")
	s.Stop()

	suite.True(suite.Observer.Released())
	suite.Equal(50, s.Pending())
	suite.NoError(s.Err())
}

func (suite *SessionTestSuite) TestResultsContextCancel() {
	s := suite.start(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	count := 0
	for range s.Results(ctx) {
		count++
	}

	suite.Equal(0, count)
	suite.True(suite.Observer.Released(), "cancelling the consumer MUST tear the session down")
	suite.Equal(scanner.StateStopped, s.State())
}

func (suite *SessionTestSuite) TestParentContextCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	s, err := scanner.Start(ctx, nil, suite.Logger)
	suite.Require().NoError(err)

	cancel()

	select {
	case <-s.Done():
	case <-time.After(suite.TestTimeout):
		suite.FailNow("scanner MUST exit on parent cancellation")
	}
	suite.True(suite.Observer.Released())
	suite.NoError(s.Err(), "interrupts are not errors")

	count := 0
	for range s.Results(context.Background()) {
		count++
	}
	suite.Equal(0, count, "sequence MUST end once the scanner has exited")
}

func (suite *SessionTestSuite) TestObserverFailure() {
	suite.WithAdvertisements(adv("AA:BB:CC:DD:EE:FF", 0x01)).
		WithScanError(errors.New("hci device removed"))
	s := suite.start(nil)

	var got []scanner.Result
	for r := range s.Results(context.Background()) {
		got = append(got, r)
	}

	suite.Equal([]scanner.Result{{Address: "AA:BB:CC:DD:EE:FF", Payload: "01"}}, got,
		"results received before the failure MUST be delivered")
	suite.ErrorContains(s.Err(), "hci device removed")
	suite.True(suite.Observer.Released())
}

func (suite *SessionTestSuite) TestScanFailsRightAfterStart() {
	suite.Observer.WithScanError(errors.New("operation not permitted"))

	s, err := scanner.Start(context.Background(), nil, suite.Logger)
	suite.Require().NoError(err, "a Scan failure after acquisition MUST NOT fail Start")

	select {
	case <-s.Done():
	case <-time.After(suite.TestTimeout):
		suite.FailNow("session did not end after the scan failed")
	}

	suite.ErrorContains(s.Err(), "scan failed")
	suite.ErrorContains(s.Err(), "operation not permitted")
	suite.Equal(scanner.StateStopped, s.State())

	var got []scanner.Result
	for r := range s.Results(context.Background()) {
		got = append(got, r)
	}
	suite.Empty(got)
	suite.True(suite.Observer.Released())
}

func (suite *SessionTestSuite) TestFailingEventIsSkipped() {
	suite.WithAdvertisements(
		testutils.NewAdvertisementBuilder().WithPanic("corrupt report").Build(),
		nil,
		adv("AA:BB:CC:DD:EE:FF", 0x42),
	)
	s := suite.start(nil)

	got := suite.collect(s, 1)

	suite.Equal("42", got[0].Payload)
	suite.Equal(int64(2), s.Stats().Failed)
}

func (suite *SessionTestSuite) TestBlockWhileRunning() {
	s := suite.start(nil)

	suite.Observer.Emit(adv("AA:BB:CC:DD:EE:FF", 0x01))
	ctx, cancel := context.WithTimeout(context.Background(), suite.TestTimeout)
	defer cancel()

	var got []scanner.Result
	for r := range s.Results(ctx) {
		got = append(got, r)
		if len(got) == 1 {
			s.Block("AA:BB:CC:DD:EE:FF")
			suite.Observer.Emit(adv("AA:BB:CC:DD:EE:FF", 0x02), adv("11:22:33:44:55:66", 0x03))
		}
		if len(got) == 2 {
			break
		}
	}

	suite.Equal([]scanner.Result{
		{Address: "AA:BB:CC:DD:EE:FF", Payload: "01"},
		{Address: "11:22:33:44:55:66", Payload: "03"},
	}, got)
}

func (suite *SessionTestSuite) TestBoundedQueue() {
	const total = 20
	for _, maxPending := range []int{1, 4, 5} {
		suite.Run(fmt.Sprintf("max pending %d", maxPending), func() {
			suite.Observer = testutils.NewFakeObserver()
			s := suite.start(&scanner.ScanOptions{MaxPending: uint32(maxPending)})
			for i := 0; i < total; i++ {
				suite.Observer.Emit(adv("AA:BB:CC:DD:EE:FF", byte(i)))
			}
			suite.WaitFor(func() bool { return s.Stats().Accepted == total }, "all events MUST be processed")

			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			var got []string
			for r := range s.Results(ctx) {
				got = append(got, r.Payload)
			}

			var expected []string
			for i := total - maxPending; i < total; i++ {
				expected = append(expected, fmt.Sprintf("%02x", i))
			}
			suite.Equal(expected, got, "exactly the newest results MUST be retained")
			suite.Equal(int64(total-maxPending), s.Stats().Dropped)
		})
	}
}

func (suite *SessionTestSuite) TestResultsPerCall() {
	s := suite.start(nil)
	suite.Observer.Emit(adv("AA", 0x01), adv("BB", 0x02), adv("CC", 0x03))
	suite.WaitFor(func() bool { return s.Pending() == 3 }, "results MUST be queued")

	first := suite.collect(s, 1)
	suite.Equal("01", first[0].Payload)
	suite.True(suite.Observer.Released(), "breaking out MUST stop the session")

	// A new sequence over the stopped session drains what is left and ends
	var rest []scanner.Result
	for r := range s.Results(context.Background()) {
		rest = append(rest, r)
	}
	suite.Equal([]scanner.Result{{Address: "BB", Payload: "02"}, {Address: "CC", Payload: "03"}}, rest)
}

func (suite *SessionTestSuite) TestStopReleaseError() {
	suite.Observer = testutils.NewFakeObserver().WithStopError(errors.New("close failed"))
	s := suite.start(nil)

	s.Stop()

	suite.Equal(1, suite.Observer.StopCount())
	suite.NoError(s.Err(), "release failures are logged, not reported")
}

func (suite *SessionTestSuite) TestStateString() {
	suite.Equal("starting", scanner.StateStarting.String())
	suite.Equal("running", scanner.StateRunning.String())
	suite.Equal("draining", scanner.StateDraining.String())
	suite.Equal("stopped", scanner.StateStopped.String())
	suite.Equal("State(9)", scanner.State(9).String())
}

func (suite *SessionTestSuite) TestTraceLogsCompany() {
	suite.WithAdvertisements(testutils.CreateMockAdvertisement("AA:BB:CC:DD:EE:FF", []byte{0x4c, 0x00, 0x02, 0x15}).
		WithName("Ruuvi 1234").
		WithRSSI(-61).
		Build())
	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)
	logger.SetLevel(logrus.TraceLevel)

	s, err := scanner.Start(context.Background(), nil, logger)
	suite.Require().NoError(err)
	suite.collect(s, 1)
	select {
	case <-s.Done():
	case <-time.After(suite.TestTimeout):
		suite.FailNow("session did not stop after the observer finished")
	}

	out := logs.String()
	suite.Contains(out, "company_id=0x004C")
	suite.Contains(out, "rssi=-61")
	suite.Contains(out, `name="Ruuvi 1234"`)
	suite.Contains(out, "goroutine=adv-scanner-hci0")
	suite.Contains(out, "Stopped receiving broadcasts")
}
