package goble

import (
	"errors"
	"fmt"
	"strings"

	"github.com/srg/advscan/internal/device"
)

// NormalizeError maps known go-ble error strings to the device package sentinels.
// It ensures consistent handling even if the upstream library changes messages slightly.
// Returns wrapped errors to preserve original context.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, device.ErrBluetoothOff) || errors.Is(err, device.ErrAdapterUnavailable) {
		return err
	}

	msg := err.Error()
	switch {
	case msg == "central manager has invalid state: have=4 want=5: is Bluetooth turned on?":
		return fmt.Errorf("%w: %v", device.ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "bluetooth is turned off"):
		return fmt.Errorf("%w: %v", device.ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "can't init hci"),
		containsIgnoreCase(msg, "no such device"),
		containsIgnoreCase(msg, "operation not permitted"),
		containsIgnoreCase(msg, "can't create socket"):
		return fmt.Errorf("%w: %v", device.ErrAdapterUnavailable, err)
	default:
		return err
	}
}

// containsIgnoreCase checks the substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
