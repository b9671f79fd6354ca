package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/srg/advscan/internal/device"
	"github.com/srg/advscan/internal/testutils"
)

// Test device addresses for consistent mock device identification
const (
	TestDeviceAddress1 = "00:00:00:00:00:01"
	TestDeviceAddress2 = "00:00:00:00:00:02"
)

// CommandTestSuite extends ObserverSuite with command testing utilities.
// All cmd/advscan test suites should embed this instead of ObserverSuite.
type CommandTestSuite struct {
	testutils.ObserverSuite
}

// SetupTest restores every command flag to its default before the observer is installed.
func (s *CommandTestSuite) SetupTest() {
	resetFlags()
	s.ObserverSuite.SetupTest()
}

// ExecuteCommand runs the root command with args, returns output and error.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// WriteConfig writes a YAML config file and returns its path.
func (s *CommandTestSuite) WriteConfig(content string) string {
	path := filepath.Join(s.T().TempDir(), "advscan.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600), "config file MUST be written")
	return path
}

// Advertisement builds an advertisement carrying payload from address.
func (s *CommandTestSuite) Advertisement(address string, payload ...byte) device.Advertisement {
	return testutils.CreateMockAdvertisement(address, payload).Build()
}

func resetFlags() {
	rootCmd.ResetFlags()
	addGlobalFlags(rootCmd)

	scanAdapter, scanBlockList, scanDuration, scanFormat = "", nil, 0, ""
	scanLatest, scanMaxPending, scanNoDuplicates = false, 0, false
	scanCmd.ResetFlags()
	addScanFlags(scanCmd)

	getAdapter, getTimeout = "", 0
	getCmd.ResetFlags()
	addGetFlags(getCmd)
}
