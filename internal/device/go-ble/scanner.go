package goble

import (
	"context"
	"errors"

	ble "github.com/go-ble/ble"
	"github.com/srg/advscan/internal/device"
)

// bleObserver wraps ble.Device to implement the device.Observer interface
type bleObserver struct {
	dev ble.Device
}

// Scan wraps the raw ble.Device.Scan to convert ble.Advertisement to the device.Advertisement
func (o *bleObserver) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	// Adapter: convert a handler expecting a device.Advertisement to the one expecting ble.Advertisement
	bleHandler := func(adv ble.Advertisement) {
		handler(NewBLEAdvertisement(adv))
	}
	err := o.dev.Scan(ctx, allowDup, bleHandler)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return NormalizeError(err)
	}
	return err
}

// Stop closes the underlying device and releases the adapter
func (o *bleObserver) Stop() error {
	return NormalizeError(o.dev.Stop())
}

// NewObserver opens the adapter with the given index and returns a device.Observer for it.
func NewObserver(adapter int) (device.Observer, error) {
	dev, err := DeviceFactory(adapter)
	if err != nil {
		return nil, NormalizeError(err)
	}
	return &bleObserver{dev: dev}, nil
}
