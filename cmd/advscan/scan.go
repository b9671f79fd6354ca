package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/srg/advscan/pkg/config"
	"github.com/srg/advscan/scanner"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Stream manufacturer data from nearby BLE devices",
	Long: `Listen for Bluetooth Low Energy advertisements and print the manufacturer
data of each one as hex, in arrival order.

Advertisements without manufacturer data and those from blocked addresses
are skipped. The scan runs until --duration elapses or Ctrl+C is pressed.`,
	Example: `  advscan scan --adapter hci1 --block AA:BB:CC:DD:EE:FF
  advscan scan --duration 30s --latest --format json`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var (
	scanAdapter      string
	scanBlockList    []string
	scanDuration     time.Duration
	scanFormat       string
	scanLatest       bool
	scanMaxPending   uint32
	scanNoDuplicates bool
)

func init() {
	addScanFlags(scanCmd)
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&scanAdapter, "adapter", "a", "", "Adapter to scan on (index or hciN, default first adapter)")
	cmd.Flags().StringSliceVar(&scanBlockList, "block", nil, "Hide advertisements from these addresses")
	cmd.Flags().DurationVarP(&scanDuration, "duration", "d", 0, "Scan duration (0 for until Ctrl+C)")
	cmd.Flags().StringVarP(&scanFormat, "format", "f", config.FormatTable, "Output format (table, json)")
	cmd.Flags().BoolVar(&scanLatest, "latest", false, "Print only the newest payload per address when the scan ends")
	cmd.Flags().Uint32Var(&scanMaxPending, "max-pending", 0, "Bound pending results, dropping the oldest (0 for unbounded)")
	cmd.Flags().BoolVar(&scanNoDuplicates, "no-duplicates", false, "Report only the first advertisement of each device")
}

// applyScanFlags overrides config values with explicitly set flags
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("adapter") {
		cfg.Adapter = scanAdapter
	}
	if flags.Changed("format") {
		cfg.OutputFormat = scanFormat
	}
	if flags.Changed("max-pending") {
		cfg.MaxPending = scanMaxPending
	}
	if scanNoDuplicates {
		cfg.AllowDuplicates = false
	}
	cfg.BlockList = append(cfg.BlockList, scanBlockList...)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyScanFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Configure logger based on --log-level, --verbose and --config
	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctx, stop := withInterrupt(cmd.Context(), cmd.ErrOrStderr())
	defer stop()
	if scanDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, scanDuration)
		defer cancel()
	}

	session, err := scanner.Start(ctx, cfg.ScanOptions(), logger)
	if err != nil {
		return err
	}
	defer session.Stop()

	printer := newResultPrinter(cmd.OutOrStdout(), cfg.OutputFormat)
	latest := orderedmap.New[string, string]()

	for r := range session.Results(ctx) {
		if scanLatest {
			latest.Set(r.Address, r.Payload)
			continue
		}
		if err := printer.Print(r); err != nil {
			return err
		}
	}

	// Results has already stopped the session; this only waits for the teardown
	session.Stop()
	logger.WithField("stats", session.Stats()).Debug("Scan finished")
	if err := session.Err(); err != nil {
		return err
	}

	if scanLatest {
		return printer.PrintLatest(latest)
	}
	return printer.Finish()
}
