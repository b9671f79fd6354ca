package device

import "context"

// Observer is a passive BLE scanner bound to one radio adapter.
//
// Scan blocks and delivers every received advertisement to handler until ctx is
// done or the radio fails. Stop releases the adapter; it is called once, after
// Scan has returned.
type Observer interface {
	Scan(ctx context.Context, allowDup bool, handler func(Advertisement)) error
	Stop() error
}

// Advertisement is a single advertisement packet as reported by the platform.
type Advertisement interface {
	// Addr returns the advertiser address, or "" when the platform does not report one.
	Addr() string
	// ManufacturerData returns the manufacturer-specific payload, or nil when absent.
	ManufacturerData() []byte
	LocalName() string
	RSSI() int
}

// ManufacturerDataElement is one company-tagged manufacturer data entry.
type ManufacturerDataElement struct {
	CompanyID uint16
	Data      []byte
}

// ManufacturerDataElements is implemented by advertisements from backends that
// report manufacturer data split by company identifier instead of as the raw
// AD structure body. Only consulted when ManufacturerData returns nil.
type ManufacturerDataElements interface {
	ManufacturerDataElements() []ManufacturerDataElement
}
