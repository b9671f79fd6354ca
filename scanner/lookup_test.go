package scanner_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/srg/advscan/internal/device"
	"github.com/srg/advscan/scanner"
)

func (suite *SessionTestSuite) TestLookupFound() {
	var advs []device.Advertisement
	for i := 0; i < 100; i++ {
		advs = append(advs, adv(fmt.Sprintf("00:00:00:00:00:%02X", i), byte(i)))
	}
	advs = append(advs, adv("AA:BB:CC:DD:EE:FF", 0x02, 0x01, 0x06), adv("AA:BB:CC:DD:EE:FF", 0x07))
	suite.WithAdvertisements(advs...)

	ctx, cancel := context.WithTimeout(context.Background(), suite.TestTimeout)
	defer cancel()
	payload, found, err := scanner.Lookup(ctx, "AA:BB:CC:DD:EE:FF", nil, suite.Logger)

	suite.Require().NoError(err)
	suite.True(found)
	suite.Equal("020106", payload, "first matching advertisement MUST win")
	suite.True(suite.Observer.Released(), "adapter MUST be released before Lookup returns")
}

func (suite *SessionTestSuite) TestLookupIgnoresBlockList() {
	suite.WithAdvertisements(adv("AA:BB:CC:DD:EE:FF", 0x01))

	ctx, cancel := context.WithTimeout(context.Background(), suite.TestTimeout)
	defer cancel()
	opts := &scanner.ScanOptions{BlockList: []string{"AA:BB:CC:DD:EE:FF"}}
	payload, found, err := scanner.Lookup(ctx, "AA:BB:CC:DD:EE:FF", opts, suite.Logger)

	suite.Require().NoError(err)
	suite.True(found)
	suite.Equal("01", payload)
	suite.Equal([]string{"AA:BB:CC:DD:EE:FF"}, opts.BlockList, "caller options MUST NOT be modified")
}

func (suite *SessionTestSuite) TestLookupExactMatch() {
	suite.WithAdvertisements(
		adv("aa:bb:cc:dd:ee:ff", 0x01),
		adv("AA:BB:CC:DD:EE:F", 0x02),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	payload, found, err := scanner.Lookup(ctx, "AA:BB:CC:DD:EE:FF", nil, suite.Logger)

	suite.NoError(err)
	suite.False(found)
	suite.Empty(payload)
}

func (suite *SessionTestSuite) TestLookupNotFound() {
	suite.WithAdvertisements(adv("11:22:33:44:55:66", 0x01))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	payload, found, err := scanner.Lookup(ctx, "AA:BB:CC:DD:EE:FF", nil, suite.Logger)

	suite.NoError(err, "a missing device is not an error")
	suite.False(found)
	suite.Empty(payload)
	suite.True(suite.Observer.Released())
}

func (suite *SessionTestSuite) TestLookupEmptyAddress() {
	_, found, err := scanner.Lookup(context.Background(), "", nil, suite.Logger)

	suite.ErrorIs(err, scanner.ErrEmptyAddress)
	suite.False(found)
	suite.Empty(suite.RequestedAdapters(), "no scan MUST start")
}

func (suite *SessionTestSuite) TestLookupStartFailure() {
	suite.FactoryErr = errors.New("no such device")

	_, found, err := scanner.Lookup(context.Background(), "AA:BB:CC:DD:EE:FF", &scanner.ScanOptions{Adapter: "hci3"}, suite.Logger)

	suite.ErrorIs(err, device.ErrAdapterUnavailable)
	suite.False(found)
	suite.Equal([]int{3}, suite.RequestedAdapters())
}
