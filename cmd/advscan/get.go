package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/srg/advscan/scanner"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <address>",
	Short: "Print the manufacturer data of one device",
	Long: `Scan until the device with the given address advertises and print its
manufacturer data as hex. The address must match exactly as the adapter
reports it. Block lists do not apply.`,
	Example: `  advscan get AA:BB:CC:DD:EE:FF --timeout 10s`,
	Args:    cobra.ExactArgs(1),
	RunE:    runGet,
}

var (
	getAdapter string
	getTimeout time.Duration
)

func init() {
	addGetFlags(getCmd)
}

func addGetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&getAdapter, "adapter", "a", "", "Adapter to scan on (index or hciN, default first adapter)")
	cmd.Flags().DurationVarP(&getTimeout, "timeout", "t", 0, "Give up after this long (default lookup_timeout from config, 30s)")
}

func runGet(cmd *cobra.Command, args []string) error {
	address := strings.TrimSpace(args[0])

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("adapter") {
		cfg.Adapter = getAdapter
	}
	if getTimeout > 0 {
		cfg.LookupTimeout = getTimeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctx, stop := withInterrupt(cmd.Context(), cmd.ErrOrStderr())
	defer stop()
	if cfg.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.LookupTimeout)
		defer cancel()
	}

	payload, found, err := scanner.Lookup(ctx, address, cfg.ScanOptions(), logger)
	if err != nil {
		return err
	}
	if !found {
		if errors.Is(ctx.Err(), context.Canceled) {
			return context.Canceled
		}
		return &DeviceNotFoundError{Address: address}
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), payload)
	return err
}
