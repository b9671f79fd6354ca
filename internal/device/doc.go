// Package device defines the radio-facing abstractions used by the scan pipeline:
// the Observer capability that delivers raw advertisements for one adapter, the
// Advertisement view of a single received packet, adapter selector parsing, and
// the sentinel errors backends map their failures onto.
//
// Concrete backends live in subpackages (see go-ble).
package device
