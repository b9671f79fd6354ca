package testutils

import (
	"github.com/srg/advscan/internal/device"
)

// MockAdvertisement is a device.Advertisement with fixed values.
type MockAdvertisement struct {
	addr     string
	name     string
	rssi     int
	mdata    []byte
	elements []device.ManufacturerDataElement
	panicMsg string
}

func (a *MockAdvertisement) Addr() string {
	if a.panicMsg != "" {
		panic(a.panicMsg)
	}
	return a.addr
}

func (a *MockAdvertisement) ManufacturerData() []byte { return a.mdata }
func (a *MockAdvertisement) LocalName() string        { return a.name }
func (a *MockAdvertisement) RSSI() int                { return a.rssi }

// ManufacturerDataElements reports company-tagged manufacturer data, if configured.
func (a *MockAdvertisement) ManufacturerDataElements() []device.ManufacturerDataElement {
	return a.elements
}

// AdvertisementBuilder builds mocked BLE advertisements for testing.
// It provides a fluent API; unset fields keep their zero values, so an
// advertisement built without WithAddress has no address and one built without
// WithManufacturerData carries no payload.
type AdvertisementBuilder struct {
	adv MockAdvertisement
}

// NewAdvertisementBuilder creates a new AdvertisementBuilder.
func NewAdvertisementBuilder() *AdvertisementBuilder {
	return &AdvertisementBuilder{}
}

// WithAddress sets the device address for the advertisement.
func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	b.adv.addr = addr
	return b
}

// WithName sets the local name for the advertisement.
func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.adv.name = name
	return b
}

// WithRSSI sets the signal strength for the advertisement.
func (b *AdvertisementBuilder) WithRSSI(rssi int) *AdvertisementBuilder {
	b.adv.rssi = rssi
	return b
}

// WithManufacturerData sets the manufacturer-specific data. A nil slice means no payload.
func (b *AdvertisementBuilder) WithManufacturerData(data []byte) *AdvertisementBuilder {
	b.adv.mdata = data
	return b
}

// WithManufacturerDataElement reports the payload split by company identifier,
// the way some platforms deliver it.
func (b *AdvertisementBuilder) WithManufacturerDataElement(companyID uint16, data []byte) *AdvertisementBuilder {
	b.adv.elements = append(b.adv.elements, device.ManufacturerDataElement{CompanyID: companyID, Data: data})
	return b
}

// WithPanic makes the advertisement panic with msg when its address is read.
func (b *AdvertisementBuilder) WithPanic(msg string) *AdvertisementBuilder {
	b.adv.panicMsg = msg
	return b
}

// Build returns the configured advertisement.
func (b *AdvertisementBuilder) Build() device.Advertisement {
	adv := b.adv
	return &adv
}
