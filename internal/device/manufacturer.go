package device

import (
	"encoding/binary"
	"fmt"
)

// EncodeManufacturerData lays out manufacturer-specific data the way it appears
// in an AD structure: the company identifier (little-endian) followed by the data.
func EncodeManufacturerData(companyID uint16, data []byte) []byte {
	out := make([]byte, 2, 2+len(data))
	binary.LittleEndian.PutUint16(out, companyID)
	return append(out, data...)
}

// CompanyID extracts the company identifier from manufacturer data in AD structure layout.
func CompanyID(raw []byte) (uint16, error) {
	if len(raw) < 2 {
		return 0, fmt.Errorf("manufacturer data too short: %d bytes", len(raw))
	}
	return binary.LittleEndian.Uint16(raw[0:2]), nil
}
