package device

import (
	"errors"
	"fmt"
)

// Radio errors
var (
	// ErrBluetoothOff indicates the radio is present but powered off or not permitted.
	ErrBluetoothOff = errors.New("bluetooth is turned off")
	// ErrAdapterUnavailable indicates the requested adapter could not be opened.
	ErrAdapterUnavailable = errors.New("bluetooth adapter unavailable")
	// ErrInvalidAdapter indicates an adapter selector that does not resolve to an index.
	ErrInvalidAdapter = errors.New("invalid adapter")
)

// AdapterError reports a failure to acquire a specific adapter.
type AdapterError struct {
	Index int
	Err   error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("adapter %d: %v", e.Index, e.Err)
}

// Unwrap allows errors.Is to see the underlying sentinel
func (e *AdapterError) Unwrap() error {
	return e.Err
}

// AdapterIndex reports the adapter index carried by err, if any
func AdapterIndex(err error) (int, bool) {
	var aerr *AdapterError
	if errors.As(err, &aerr) {
		return aerr.Index, true
	}
	return 0, false
}
