package devicefactory

import (
	"github.com/srg/advscan/internal/device"
	"github.com/srg/advscan/internal/device/go-ble"
)

// ObserverFactory opens the adapter with the given index and returns a device.Observer for it.
// This is a variable so that it can be overridden in tests.
var ObserverFactory = func(adapter int) (device.Observer, error) {
	return goble.NewObserver(adapter)
}
