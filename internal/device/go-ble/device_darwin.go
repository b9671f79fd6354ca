//go:build darwin

package goble

import (
	"fmt"

	ble "github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"
	"github.com/srg/advscan/internal/device"
)

// DeviceFactory opens the CoreBluetooth central manager. macOS exposes a single
// radio, so only adapter 0 is accepted.
// This is a variable so that it can be overridden in tests.
var DeviceFactory = func(adapter int) (ble.Device, error) {
	if adapter != 0 {
		return nil, fmt.Errorf("%w: macOS exposes only adapter 0", device.ErrAdapterUnavailable)
	}
	return darwin.NewDevice()
}
