package scanner

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/blescan/internal/device"
	"github.com/srg/blescan/internal/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// ControllerTestSuite runs every test against a fresh controller and mock radio.
type ControllerTestSuite struct {
	suite.Suite
	helper *testutils.TestHelper
	radio  *testutils.MockRadio
	ctrl   *Controller
	sleeps []time.Duration
}

func (s *ControllerTestSuite) SetupTest() {
	s.helper = testutils.NewTestHelper(s.T())
	s.radio = testutils.NewMockRadio()
	s.sleeps = nil
	s.ctrl = NewController(s.radio, s.helper.Logger)
	s.ctrl.sleep = func(d time.Duration) { s.sleeps = append(s.sleeps, d) }
}

func (s *ControllerTestSuite) TestNewController_Defaults() {
	// GOAL: Verify a new controller is idle with the default configuration
	//
	// TEST SCENARIO: Create controller → not scanning → default config → handler installed

	s.Assert().False(s.ctrl.IsScanning(), "new controller MUST be idle")
	s.Assert().Equal(DefaultScanConfig(), s.ctrl.Config(), "new controller MUST use the default configuration")
	s.Assert().Zero(s.ctrl.PeerCount())
	s.Assert().Zero(s.ctrl.DroppedEvents())
}

func (s *ControllerTestSuite) TestSetScanInterval_AllValidValues() {
	// GOAL: Verify every in-range interval is stored as ms*1000/625 units
	//
	// TEST SCENARIO: For ms in [3, 10240] → set interval → stored units match truncating conversion

	for ms := MinScanMs; ms <= MaxScanMs; ms++ {
		s.ctrl.SetScanInterval(ms)
		if got := s.ctrl.Config().IntervalUnits; int(got) != ms*1000/625 {
			s.Failf("interval conversion", "SetScanInterval(%d) MUST store %d units, got %d", ms, ms*1000/625, got)
			return
		}
	}
}

func (s *ControllerTestSuite) TestSetScanInterval_OutOfRangeIsNoOp() {
	// GOAL: Verify out-of-range intervals leave the previous value untouched
	//
	// TEST SCENARIO: Set 100 ms → set 2, 0, -5, 10241 → interval still 160 units

	s.ctrl.SetScanInterval(100)

	for _, ms := range []int{2, 0, -5, 10241, 65535} {
		s.ctrl.SetScanInterval(ms)
		s.Assert().Equal(uint16(160), s.ctrl.Config().IntervalUnits, "SetScanInterval(%d) MUST be ignored", ms)
	}
}

func (s *ControllerTestSuite) TestSetScanInterval_BelowWindowIsAccepted() {
	// GOAL: Verify the interval setter only range-checks, leaving the window untouched
	//
	// TEST SCENARIO: Defaults (window 48 units) → interval 10 ms → interval 16 units, window still 48

	s.ctrl.SetScanInterval(10)

	cfg := s.ctrl.Config()
	s.Assert().Equal(uint16(16), cfg.IntervalUnits, "in-range interval MUST be stored")
	s.Assert().Equal(uint16(48), cfg.WindowUnits, "window MUST NOT be adjusted by the interval setter")
}

func (s *ControllerTestSuite) TestSetScanWindow() {
	// GOAL: Verify window validation order and conversion
	//
	// TEST SCENARIO: Interval 100 ms → window 50 ok → window 200 InvalidParameter → window 2 ignored → window 20000 InvalidParameter

	s.ctrl.SetScanInterval(100)

	s.Require().NoError(s.ctrl.SetScanWindow(50))
	s.Assert().Equal(uint16(80), s.ctrl.Config().WindowUnits)

	s.Require().NoError(s.ctrl.SetScanWindow(100), "window equal to the interval MUST be accepted")
	s.Assert().Equal(uint16(160), s.ctrl.Config().WindowUnits)

	err := s.ctrl.SetScanWindow(200)
	s.Require().ErrorIs(err, ErrInvalidParameter, "window larger than interval MUST fail")
	s.Assert().Equal(uint16(160), s.ctrl.Config().WindowUnits, "rejected window MUST NOT change the config")
	s.Assert().Contains(s.helper.Messages(logrus.ErrorLevel), "Scan window should be less than or equal to scan interval",
		"rejected window MUST be logged as an error")

	s.Require().NoError(s.ctrl.SetScanWindow(2), "too small window MUST be silently ignored")
	s.Assert().Equal(uint16(160), s.ctrl.Config().WindowUnits)

	s.Require().ErrorIs(s.ctrl.SetScanWindow(20000), ErrInvalidParameter,
		"window larger than interval MUST fail even when out of range")
}

func (s *ControllerTestSuite) TestSetScanMode() {
	s.ctrl.SetScanMode(ScanModePassive)
	s.Assert().Equal(ScanModePassive, s.ctrl.Config().Mode)

	s.ctrl.SetScanMode(ScanMode(7))
	s.Assert().Equal(ScanModePassive, s.ctrl.Config().Mode, "unknown mode MUST be ignored")

	s.ctrl.SetScanMode(ScanModeActive)
	s.Assert().Equal(ScanModeActive, s.ctrl.Config().Mode)
}

func (s *ControllerTestSuite) TestSetDuplicateFilter() {
	s.ctrl.SetDuplicateFilter(false)
	s.Assert().Equal(DuplicateFilterDisabled, s.ctrl.Config().DuplicateFilter)

	s.ctrl.SetDuplicateFilter(true)
	s.Assert().Equal(DuplicateFilterEnabled, s.ctrl.Config().DuplicateFilter)
}

func (s *ControllerTestSuite) TestApplyScanParams_PushesAllParameters() {
	// GOAL: Verify ApplyScanParams pushes the five parameters in order with current values
	//
	// TEST SCENARIO: Configure passive/100/50/no-dup → apply → radio receives each param once in order

	s.ctrl.SetScanMode(ScanModePassive)
	s.ctrl.SetScanInterval(100)
	s.Require().NoError(s.ctrl.SetScanWindow(50))
	s.ctrl.SetDuplicateFilter(false)

	var order []device.ScanParam
	s.radio.On("SetScanParameter", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { order = append(order, args.Get(0).(device.ScanParam)) }).
		Return(nil)

	s.Require().NoError(s.ctrl.ApplyScanParams())

	s.Assert().Equal([]device.ScanParam{
		device.ParamScanMode,
		device.ParamScanInterval,
		device.ParamScanWindow,
		device.ParamScanFilterPolicy,
		device.ParamScanFilterDuplicates,
	}, order, "parameters MUST be pushed in protocol order")

	s.Assert().Equal(map[device.ScanParam]uint16{
		device.ParamScanMode:             0,
		device.ParamScanInterval:         160,
		device.ParamScanWindow:           80,
		device.ParamScanFilterPolicy:     0,
		device.ParamScanFilterDuplicates: 0,
	}, s.radio.ParamValues())
}

func (s *ControllerTestSuite) TestApplyScanParams_RadioFailure() {
	boom := errors.New("hci: command disallowed")
	s.radio.On("SetScanParameter", device.ParamScanMode, mock.Anything).Return(nil)
	s.radio.On("SetScanParameter", device.ParamScanInterval, mock.Anything).Return(boom)

	err := s.ctrl.ApplyScanParams()
	s.Require().ErrorIs(err, boom)
	s.Assert().Contains(err.Error(), "failed to set scan_interval")
	s.radio.AssertNotCalled(s.T(), "SetScanParameter", device.ParamScanWindow, mock.Anything)
}

func (s *ControllerTestSuite) TestStart_AppliesParamsOnlyWhenChanged() {
	// GOAL: Verify Start pushes parameters when the config changed since the last push
	//
	// TEST SCENARIO: Start/Stop twice without changes → params pushed once → change mode → Start pushes again

	s.radio.AllowAll()

	s.Require().NoError(s.ctrl.Start())
	s.Require().NoError(s.ctrl.Stop())
	s.Require().NoError(s.ctrl.Start())
	s.Require().NoError(s.ctrl.Stop())
	s.radio.AssertNumberOfCalls(s.T(), "SetScanParameter", 5)

	s.ctrl.SetScanMode(ScanModePassive)
	s.Require().NoError(s.ctrl.Start())
	s.radio.AssertNumberOfCalls(s.T(), "SetScanParameter", 10)
	s.Assert().Equal(uint16(ScanModePassive), s.radio.ParamValues()[device.ParamScanMode])
}

func (s *ControllerTestSuite) TestStart_Twice() {
	// GOAL: Verify a second Start fails and leaves the session active
	//
	// TEST SCENARIO: Start → Start again → AlreadyScanning → still scanning → radio started once

	s.radio.AllowAll()

	s.Require().NoError(s.ctrl.Start())
	err := s.ctrl.Start()

	s.Require().ErrorIs(err, ErrAlreadyScanning, "second Start MUST fail with AlreadyScanning")
	s.Assert().True(s.ctrl.IsScanning(), "session MUST remain active")
	s.radio.AssertNumberOfCalls(s.T(), "RequestScanStart", 1)
}

func (s *ControllerTestSuite) TestStop_WhenIdle() {
	err := s.ctrl.Stop()

	s.Require().ErrorIs(err, ErrNotScanning, "Stop while idle MUST fail with NotScanning")
	s.Assert().False(s.ctrl.IsScanning())
	s.radio.AssertNotCalled(s.T(), "RequestScanStop")
}

func (s *ControllerTestSuite) TestStart_RadioRejects() {
	// GOAL: Verify a radio start rejection rolls the session back to idle
	//
	// TEST SCENARIO: Radio fails start → Start returns RadioStartFailure wrapping the cause → idle → Start retried succeeds

	cause := errors.New("le_scan_start failed")
	s.radio.On("SetScanParameter", mock.Anything, mock.Anything).Return(nil)
	s.radio.On("RequestScanStart").Return(cause).Once()
	s.radio.On("RequestScanStart").Return(nil).Once()

	err := s.ctrl.Start()
	s.Require().ErrorIs(err, ErrRadioStartFailure)
	s.Require().ErrorIs(err, cause, "the radio error MUST be reachable with errors.Is")
	s.Assert().False(s.ctrl.IsScanning(), "rejected Start MUST leave the controller idle")

	s.Require().NoError(s.ctrl.Start(), "Start MUST be retryable after a rejection")
	s.Assert().True(s.ctrl.IsScanning())
}

func (s *ControllerTestSuite) TestStart_BluetoothOff() {
	s.radio.On("SetScanParameter", mock.Anything, mock.Anything).Return(nil)
	s.radio.On("RequestScanStart").Return(errors.New("can't init hci: is Bluetooth turned on?"))

	err := s.ctrl.Start()
	s.Require().ErrorIs(err, ErrRadioStartFailure)
	s.Assert().True(device.IsRadioState(err, device.BluetoothOff), "radio errors MUST be normalized")
}

func (s *ControllerTestSuite) TestStart_ApplyFailure() {
	s.radio.On("SetScanParameter", mock.Anything, mock.Anything).Return(errors.New("busy"))

	err := s.ctrl.Start()
	s.Require().ErrorIs(err, ErrRadioStartFailure)
	s.Assert().False(s.ctrl.IsScanning())
	s.radio.AssertNotCalled(s.T(), "RequestScanStart")
}

func (s *ControllerTestSuite) TestStop_RadioErrorStillStops() {
	s.radio.On("SetScanParameter", mock.Anything, mock.Anything).Return(nil)
	s.radio.On("RequestScanStart").Return(nil)
	s.radio.On("RequestScanStop").Return(errors.New("timeout"))

	s.Require().NoError(s.ctrl.Start())
	s.Require().NoError(s.ctrl.Stop(), "radio stop errors MUST only be logged")
	s.Assert().False(s.ctrl.IsScanning())
}

func (s *ControllerTestSuite) TestLifecycleSequence() {
	// GOAL: Verify IsScanning tracks Start/Stop for an arbitrary call sequence
	//
	// TEST SCENARIO: Alternate Start/Stop with repeats → each result matches the state model

	s.radio.AllowAll()

	steps := []struct {
		start  bool
		err    error
		active bool
	}{
		{false, ErrNotScanning, false},
		{true, nil, true},
		{true, ErrAlreadyScanning, true},
		{false, nil, false},
		{false, ErrNotScanning, false},
		{true, nil, true},
		{false, nil, false},
	}

	for i, step := range steps {
		var err error
		if step.start {
			err = s.ctrl.Start()
		} else {
			err = s.ctrl.Stop()
		}
		if step.err == nil {
			s.Require().NoError(err, "step %d", i)
		} else {
			s.Require().ErrorIs(err, step.err, "step %d", i)
		}
		s.Require().Equal(step.active, s.ctrl.IsScanning(), "step %d", i)
	}
}

func (s *ControllerTestSuite) TestStartFor() {
	// GOAL: Verify StartFor starts, waits the duration, stops and waits the settle delay
	//
	// TEST SCENARIO: StartFor(5s) → radio started and stopped → sleeps are [5s, 100ms] → idle

	var calls []string
	s.radio.On("SetScanParameter", mock.Anything, mock.Anything).Return(nil)
	s.radio.On("RequestScanStart").Run(func(mock.Arguments) { calls = append(calls, "start") }).Return(nil)
	s.radio.On("RequestScanStop").Run(func(mock.Arguments) { calls = append(calls, "stop") }).Return(nil)

	s.Require().NoError(s.ctrl.StartFor(5 * time.Second))

	s.Assert().Equal([]string{"start", "stop"}, calls)
	s.Assert().Equal([]time.Duration{5 * time.Second, SettleDelay}, s.sleeps)
	s.Assert().False(s.ctrl.IsScanning())
}

func (s *ControllerTestSuite) TestStartFor_WhileScanning() {
	// GOAL: Verify StartFor on an active session reports AlreadyScanning and still stops it
	//
	// TEST SCENARIO: Start → StartFor → error is AlreadyScanning → session stopped afterwards

	s.radio.AllowAll()
	s.Require().NoError(s.ctrl.Start())

	err := s.ctrl.StartFor(time.Second)

	s.Require().ErrorIs(err, ErrAlreadyScanning)
	s.Assert().False(s.ctrl.IsScanning(), "StartFor MUST always stop the session")
	s.Assert().Equal([]time.Duration{time.Second, SettleDelay}, s.sleeps)
}

func (s *ControllerTestSuite) TestStartFor_StartRejected() {
	s.radio.On("SetScanParameter", mock.Anything, mock.Anything).Return(nil)
	s.radio.On("RequestScanStart").Return(errors.New("no adapter"))

	err := s.ctrl.StartFor(time.Second)

	s.Require().ErrorIs(err, ErrRadioStartFailure)
	s.Require().ErrorIs(err, ErrNotScanning, "the failed Stop MUST be joined into the result")
	s.Assert().Equal([]time.Duration{time.Second, SettleDelay}, s.sleeps)
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}
