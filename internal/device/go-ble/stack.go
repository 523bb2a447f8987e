package goble

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux/hci/cmd"
	"github.com/sirupsen/logrus"
	"github.com/srg/blescan/internal/device"
	"github.com/srg/blescan/internal/groutine"
)

const (
	// StartGrace is how long RequestScanStart waits for the backend to reject
	// the scan before reporting success.
	StartGrace = 50 * time.Millisecond

	// StopTimeout bounds how long RequestScanStop waits for the scan goroutine.
	StopTimeout = 5 * time.Second
)

// DeviceFactory creates ble.Device instances (can be overridden in tests)
//
//nolint:revive // DeviceFactory name is intentional for test mocking
var DeviceFactory = newDevice

// Stack is a device.RadioStack backed by a go-ble device.
//
// Scan parameters are collected by SetScanParameter and handed to the device
// when it is opened. A parameter change while the device is open reopens it
// on the next RequestScanStart.
type Stack struct {
	mu       sync.Mutex
	logger   *logrus.Logger
	params   cmd.LESetScanParameters
	allowDup bool

	dev       ble.Device
	devParams cmd.LESetScanParameters

	cancel context.CancelFunc
	done   <-chan struct{}
	errCh  chan error

	handler atomic.Pointer[device.ReportHandler]
}

// NewStack creates a Stack with the HCI default scan parameters. No device is
// opened until the first scan.
func NewStack(logger *logrus.Logger) *Stack {
	if logger == nil {
		logger = logrus.New()
	}
	return &Stack{
		logger: logger,
		params: cmd.LESetScanParameters{
			LEScanType:     0x01,
			LEScanInterval: 0x0040,
			LEScanWindow:   0x0030,
		},
	}
}

// SetScanParameter records one scan parameter.
func (s *Stack) SetScanParameter(param device.ScanParam, value uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch param {
	case device.ParamScanMode:
		s.params.LEScanType = uint8(value)
	case device.ParamScanInterval:
		s.params.LEScanInterval = value
	case device.ParamScanWindow:
		s.params.LEScanWindow = value
	case device.ParamScanFilterPolicy:
		s.params.ScanningFilterPolicy = uint8(value)
	case device.ParamScanFilterDuplicates:
		s.allowDup = value == 0
	default:
		return fmt.Errorf("%w: %s", device.ErrUnsupported, param)
	}
	return nil
}

// SetReportHandler installs the callback for advertisement reports.
func (s *Stack) SetReportHandler(handler device.ReportHandler) {
	s.handler.Store(&handler)
}

// RequestScanStart opens the device if needed and starts scanning on a
// background goroutine. Errors the backend reports within StartGrace are
// returned; later ones are reported by RequestScanStop.
func (s *Stack) RequestScanStart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return fmt.Errorf("%w: scan already running", device.ErrBusy)
	}

	dev, err := s.openLocked()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	allowDup := s.allowDup

	done := groutine.Go(ctx, "ble-scan", func(ctx context.Context) {
		errCh <- dev.Scan(ctx, allowDup, s.onAdvertisement)
	})

	select {
	case err := <-errCh:
		cancel()
		<-done
		if err == nil || errors.Is(err, context.Canceled) {
			err = errors.New("scan ended immediately")
		}
		s.logger.WithError(err).Error("BLE scan rejected")
		return NormalizeError(err)
	case <-time.After(StartGrace):
	}

	s.cancel, s.done, s.errCh = cancel, done, errCh
	s.logger.WithFields(logrus.Fields{
		"scan_type":  s.params.LEScanType,
		"interval":   s.params.LEScanInterval,
		"window":     s.params.LEScanWindow,
		"allow_dups": allowDup,
	}).Debug("BLE scan started")
	return nil
}

// RequestScanStop cancels the running scan and waits for it to wind down.
// Stopping when no scan is running is a no-op.
func (s *Stack) RequestScanStop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

// Close stops any running scan and releases the device.
func (s *Stack) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stopErr := s.stopLocked()
	var closeErr error
	if s.dev != nil {
		closeErr = s.dev.Stop()
		s.dev = nil
	}
	return errors.Join(stopErr, closeErr)
}

func (s *Stack) stopLocked() error {
	if s.cancel == nil {
		return nil
	}

	s.cancel()
	done, errCh := s.done, s.errCh
	s.cancel, s.done, s.errCh = nil, nil, nil

	select {
	case <-done:
	case <-time.After(StopTimeout):
		return fmt.Errorf("timed out after %s waiting for the scan to stop", StopTimeout)
	}

	err := <-errCh
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Debug("BLE scan stopped")
		return nil
	}
	return NormalizeError(err)
}

// openLocked returns the device, reopening it when the scan parameters
// changed since it was opened.
func (s *Stack) openLocked() (ble.Device, error) {
	if s.dev != nil && s.devParams == s.params {
		return s.dev, nil
	}

	if s.dev != nil {
		if err := s.dev.Stop(); err != nil {
			s.logger.WithError(err).Warn("Failed to release BLE device before reopening")
		}
		s.dev = nil
	}

	dev, err := DeviceFactory(s.params)
	if err != nil {
		s.logger.WithError(err).Error("Failed to create BLE device")
		return nil, NormalizeError(err)
	}
	s.dev, s.devParams = dev, s.params
	return dev, nil
}

func (s *Stack) onAdvertisement(adv ble.Advertisement) {
	h := s.handler.Load()
	if h == nil || *h == nil {
		return
	}
	for _, r := range ToReports(adv) {
		(*h)(r)
	}
}
