package main

import (
	"bytes"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/blescan/internal/device"
	"github.com/srg/blescan/internal/devicefactory"
	"github.com/srg/blescan/internal/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// Test device addresses for consistent mock device identification
const (
	TestDeviceAddress1 = "AA:BB:CC:DD:EE:01"
	TestDeviceAddress2 = "AA:BB:CC:DD:EE:02"
)

// CommandTestSuite swaps the radio factory for a mock radio that delivers
// Reports when the scan starts, and resets command flags between tests.
type CommandTestSuite struct {
	suite.Suite

	originalFactory func(*logrus.Logger) (device.RadioStack, error)
	Radio           *testutils.MockRadio
	Reports         []device.Report
}

func (s *CommandTestSuite) SetupTest() {
	s.Reports = nil
	s.Radio = testutils.NewMockRadio()
	s.Radio.On("SetScanParameter", mock.Anything, mock.Anything).Return(nil).Maybe()
	s.Radio.On("RequestScanStart").Run(func(mock.Arguments) {
		s.Radio.Deliver(s.Reports...)
	}).Return(nil).Maybe()
	s.Radio.On("RequestScanStop").Return(nil).Maybe()

	s.originalFactory = devicefactory.RadioFactory
	devicefactory.RadioFactory = func(*logrus.Logger) (device.RadioStack, error) {
		return s.Radio, nil
	}

	s.ResetFlags()
}

// ResetFlags re-registers command flags so values from a previous run do not leak.
func (s *CommandTestSuite) ResetFlags() {
	scanCmd.ResetFlags()
	addScanFlags(scanCmd)
	decodeCmd.ResetFlags()
	addDecodeFlags(decodeCmd)
}

func (s *CommandTestSuite) TearDownTest() {
	devicefactory.RadioFactory = s.originalFactory
}

// ExecuteCommand runs blescan with args and returns stdout; stderr is
// returned separately so log output does not mix with reports.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (stdout string, stderr string, err error) {
	root := &cobra.Command{Use: "blescan", SilenceErrors: true}
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.AddCommand(scanCmd, decodeCmd)

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(args)

	err = root.Execute()
	return out.String(), errOut.String(), err
}

func (s *CommandTestSuite) AssertText(actual, expected string) {
	s.T().Helper()
	testutils.NewTextAsserter(s.T()).Assert(actual, expected)
}
