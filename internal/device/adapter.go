package device

import (
	"fmt"
	"strconv"
	"strings"
)

// legacyAdapterPrefix is the BlueZ device-name prefix accepted for compatibility ("hci0").
const legacyAdapterPrefix = "hci"

// ParseAdapterIndex resolves an adapter selector to an index.
//
// Accepted forms are "" (first adapter), a non-negative integer ("1"), or a
// BlueZ device name ("hci1"). Surrounding whitespace is ignored.
func ParseAdapterIndex(selector string) (int, error) {
	sel := strings.TrimSpace(selector)
	if sel == "" {
		return 0, nil
	}

	num := strings.TrimPrefix(strings.ToLower(sel), legacyAdapterPrefix)
	idx, err := strconv.Atoi(num)
	if err != nil {
		return 0, fmt.Errorf("%w %q: expected an index or hciN", ErrInvalidAdapter, selector)
	}
	if idx < 0 {
		return 0, fmt.Errorf("%w %q: index must not be negative", ErrInvalidAdapter, selector)
	}
	return idx, nil
}

// AdapterName returns the BlueZ-style name for an adapter index.
func AdapterName(index int) string {
	return legacyAdapterPrefix + strconv.Itoa(index)
}
