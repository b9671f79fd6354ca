//go:build !linux && !darwin

package goble

import (
	"fmt"
	"runtime"

	ble "github.com/go-ble/ble"
	"github.com/srg/advscan/internal/device"
)

// DeviceFactory reports that no go-ble backend exists for this platform.
// This is a variable so that it can be overridden in tests.
var DeviceFactory = func(adapter int) (ble.Device, error) {
	return nil, fmt.Errorf("%w: no BLE backend for %s", device.ErrAdapterUnavailable, runtime.GOOS)
}
