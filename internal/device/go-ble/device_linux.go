//go:build linux

package goble

import (
	ble "github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

// DeviceFactory opens the HCI adapter with the given index.
// This is a variable so that it can be overridden in tests.
var DeviceFactory = func(adapter int) (ble.Device, error) {
	return linux.NewDevice(ble.OptDeviceID(adapter))
}
