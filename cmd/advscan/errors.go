package main

import (
	"errors"
	"fmt"

	"github.com/srg/advscan/internal/device"
)

// Command-level errors
var (
	// ErrDeviceNotFound indicates a lookup ended before the device advertised.
	ErrDeviceNotFound = errors.New("device not found")
)

// DeviceNotFoundError names the device a lookup did not find. It matches ErrDeviceNotFound.
type DeviceNotFoundError struct {
	Address string
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("device %s not found", e.Address)
}

func (e *DeviceNotFoundError) Is(target error) bool {
	return target == ErrDeviceNotFound
}

// FormatUserError turns an error into a message for the terminal.
func FormatUserError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, device.ErrBluetoothOff):
		return "Bluetooth is turned off or not permitted. Turn it on and try again"
	case errors.Is(err, device.ErrAdapterUnavailable):
		if idx, ok := device.AdapterIndex(err); ok {
			return fmt.Sprintf("Bluetooth adapter %s is not available. Check that it exists and that you may use it (%v)",
				device.AdapterName(idx), err)
		}
		return fmt.Sprintf("Bluetooth adapter is not available (%v)", err)
	default:
		return err.Error()
	}
}
