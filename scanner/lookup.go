package scanner

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrEmptyAddress is returned by Lookup when no address is given.
var ErrEmptyAddress = errors.New("address must not be empty")

// Lookup scans until an advertisement from address arrives and returns its payload.
//
// The session uses opts with an empty blacklist and is fully torn down before
// Lookup returns. The address must match exactly. Lookup has no timeout of its
// own: it returns ("", false, nil) only when ctx ends first. Errors are limited
// to start-up failures.
func Lookup(ctx context.Context, address string, opts *ScanOptions, logger *logrus.Logger) (string, bool, error) {
	if address == "" {
		return "", false, ErrEmptyAddress
	}
	if logger == nil {
		logger = logrus.New()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	lookupOpts := *DefaultScanOptions()
	if opts != nil {
		lookupOpts = *opts
	}
	lookupOpts.BlockList = nil

	session, err := Start(ctx, &lookupOpts, logger)
	if err != nil {
		return "", false, err
	}
	defer session.Stop()

	for r := range session.Results(ctx) {
		if r.Address == address {
			logger.WithField("address", address).Info("Data found")
			return r.Payload, true, nil
		}
	}

	logger.WithField("address", address).Debug("Lookup ended without a match")
	return "", false, nil
}
