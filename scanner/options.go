package scanner

import (
	"time"

	"github.com/mcuadros/go-defaults"
)

// DefaultPollInterval bounds how long Results waits between queue checks.
const DefaultPollInterval = 100 * time.Millisecond

// ScanOptions configures a scan session
type ScanOptions struct {
	// Adapter selects the radio: "" for the first adapter, an index ("1"), or a BlueZ name ("hci1").
	Adapter string
	// BlockList holds addresses whose advertisements are discarded.
	BlockList []string
	// AllowDuplicates reports every advertisement instead of the first per device.
	AllowDuplicates bool `default:"true"`
	// PollInterval bounds the consumer wait between queue checks.
	PollInterval time.Duration `default:"100ms"`
	// MaxPending bounds the result queue, discarding the oldest results when full. 0 means unbounded.
	MaxPending uint32 `default:"0"`
}

// DefaultScanOptions returns default scanning options
func DefaultScanOptions() *ScanOptions {
	opts := &ScanOptions{}
	defaults.SetDefaults(opts)
	return opts
}

func (o *ScanOptions) pollInterval() time.Duration {
	if o.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return o.PollInterval
}
