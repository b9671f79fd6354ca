package testutils

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/advscan/internal/device"
	"github.com/srg/advscan/internal/devicefactory"
	"github.com/stretchr/testify/suite"
)

// ObserverSuite provides a reusable test suite with a scripted BLE observer.
//
// The suite swaps devicefactory.ObserverFactory for one that hands out the
// suite's FakeObserver (or FactoryErr) and restores the original after each test.
//
// Basic usage:
//
//	type ScanSuite struct {
//	    testutils.ObserverSuite
//	}
//
//	func (s *ScanSuite) SetupTest() {
//	    // Configure scan advertisements first
//	    s.WithAdvertisements(
//	        testutils.CreateMockAdvertisement("AA:BB:CC:DD:EE:FF", []byte{0x02, 0x01, 0x06}).Build(),
//	    )
//
//	    s.ObserverSuite.SetupTest() // Call parent last to apply configuration
//	}
//
//	func TestScanSuite(t *testing.T) {
//	    suite.Run(t, new(ScanSuite))
//	}
type ObserverSuite struct {
	suite.Suite

	// Core test utilities
	Helper      *TestHelper    // Test helper with logging
	Logger      *logrus.Logger // Structured logger for test output
	TestTimeout time.Duration  // Upper bound for waits in tests

	// Observer handed out by the factory; FactoryErr takes precedence when set
	Observer   *FakeObserver
	FactoryErr error

	originalFactory func(adapter int) (device.Observer, error)
	mu              sync.Mutex
	adapters        []int
}

// SetupSuite initializes shared test utilities.
// Called once before all tests in the suite.
func (s *ObserverSuite) SetupSuite() {
	s.Helper = NewTestHelper(s.T())
	s.Logger = s.Helper.Logger
	s.TestTimeout = 5 * time.Second
}

// SetupTest installs the fake observer factory.
// Called before each test method.
func (s *ObserverSuite) SetupTest() {
	if s.Observer == nil {
		s.Observer = NewFakeObserver()
	}

	s.originalFactory = devicefactory.ObserverFactory
	devicefactory.ObserverFactory = func(adapter int) (device.Observer, error) {
		s.mu.Lock()
		s.adapters = append(s.adapters, adapter)
		s.mu.Unlock()

		if s.FactoryErr != nil {
			return nil, s.FactoryErr
		}
		return s.Observer, nil
	}
}

// TearDownTest restores the observer factory and resets per-test configuration.
// Called after each test method.
func (s *ObserverSuite) TearDownTest() {
	if s.originalFactory != nil {
		devicefactory.ObserverFactory = s.originalFactory
	}
	s.Observer = nil
	s.FactoryErr = nil

	s.mu.Lock()
	s.adapters = nil
	s.mu.Unlock()
}

// WithAdvertisements replaces the observer with one replaying advs.
func (s *ObserverSuite) WithAdvertisements(advs ...device.Advertisement) *FakeObserver {
	s.Observer = NewFakeObserver(advs...)
	return s.Observer
}

// RequestedAdapters returns the adapter indices the factory was called with.
func (s *ObserverSuite) RequestedAdapters() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.adapters...)
}

// WaitFor fails the test unless cond becomes true within TestTimeout.
func (s *ObserverSuite) WaitFor(cond func() bool, msg string) {
	s.Require().Eventually(cond, s.TestTimeout, 5*time.Millisecond, msg)
}
