package scanner

import (
	"encoding/hex"
	"errors"

	"github.com/srg/advscan/internal/device"
)

// ErrMalformedAdvertisement marks a raw event that cannot be turned into a Result.
var ErrMalformedAdvertisement = errors.New("malformed advertisement")

// verdict is the outcome of filtering one advertisement
type verdict int

const (
	verdictAccepted verdict = iota
	verdictBlacklisted
	verdictNoPayload
)

func (v verdict) String() string {
	switch v {
	case verdictAccepted:
		return "accepted"
	case verdictBlacklisted:
		return "blacklisted"
	case verdictNoPayload:
		return "no_payload"
	default:
		return "unknown"
	}
}

// advFilter turns raw advertisements into Results, discarding blacklisted
// senders and advertisements without manufacturer data.
type advFilter struct {
	control *ControlState
}

// apply filters and normalizes a single advertisement. The Result is only
// meaningful when the verdict is verdictAccepted and err is nil.
func (f advFilter) apply(adv device.Advertisement) (Result, verdict, error) {
	if adv == nil {
		return Result{}, verdictAccepted, ErrMalformedAdvertisement
	}

	addr := adv.Addr()
	if f.control.IsBlacklisted(addr) {
		return Result{}, verdictBlacklisted, nil
	}

	payload := canonicalPayload(adv)
	if payload == nil {
		return Result{}, verdictNoPayload, nil
	}

	return Result{Address: addr, Payload: hex.EncodeToString(payload)}, verdictAccepted, nil
}

// canonicalPayload returns the manufacturer data as a detached byte slice in
// AD structure layout (little-endian company identifier followed by the data),
// or nil when the advertisement carries none.
//
// Backends that split manufacturer data by company identifier are reassembled
// here so every platform yields the same bytes; when several entries are
// present only the first is used, matching what a single AD structure carries.
func canonicalPayload(adv device.Advertisement) []byte {
	if raw := adv.ManufacturerData(); raw != nil {
		out := make([]byte, len(raw))
		copy(out, raw)
		return out
	}

	split, ok := adv.(device.ManufacturerDataElements)
	if !ok {
		return nil
	}
	elems := split.ManufacturerDataElements()
	if len(elems) == 0 {
		return nil
	}
	return device.EncodeManufacturerData(elems[0].CompanyID, elems[0].Data)
}
