package scanner

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"
	"github.com/srg/blescan/internal/device"
	"github.com/srg/blescan/internal/ringchan"
)

// SettleDelay is how long StartFor waits after stopping so the radio stack can
// finish tearing down the scan before the next call.
const SettleDelay = 100 * time.Millisecond

// DefaultEventBuffer is the capacity of the report event channel.
const DefaultEventBuffer = 100

// Controller drives a radio stack through the scan lifecycle.
//
// State machine: Idle -> Scanning via a successful Start; Scanning -> Idle via
// Stop, or via Start when the radio rejects the request. Configuration setters
// never touch the session state.
//
// Lifecycle calls and setters are serialized by an internal mutex. Reports are
// delivered on the radio's goroutine and published through Events.
type Controller struct {
	mu     sync.Mutex
	config ScanConfig
	dirty  bool // config changed since the last ApplyScanParams
	active atomic.Bool

	radio  device.RadioStack
	logger *logrus.Logger

	filter     atomic.Pointer[ReportFilter]
	peers      atomic.Pointer[hashmap.Map[string, time.Time]]
	events     *ringchan.RingChannel[ReportEvent]
	logReports bool

	// sleep suspends the calling goroutine; replaced in tests.
	sleep func(time.Duration)
}

// Option configures a Controller
type Option func(*Controller)

// WithEventBuffer sets the capacity of the report event channel.
func WithEventBuffer(size int) Option {
	return func(c *Controller) {
		c.events = ringchan.New[ReportEvent](size)
	}
}

// WithReportLogging logs every report and its decoded fields at Info level.
func WithReportLogging(enabled bool) Option {
	return func(c *Controller) {
		c.logReports = enabled
	}
}

// WithReportFilter installs the initial report filter.
func WithReportFilter(f *ReportFilter) Option {
	return func(c *Controller) {
		c.filter.Store(f)
	}
}

// NewController creates a Controller in the Idle state with DefaultScanConfig
// and installs itself as the radio's report handler.
func NewController(radio device.RadioStack, logger *logrus.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = logrus.New()
	}

	c := &Controller{
		config: DefaultScanConfig(),
		dirty:  true,
		radio:  radio,
		logger: logger,
		events: ringchan.New[ReportEvent](DefaultEventBuffer),
		sleep:  time.Sleep,
	}
	c.peers.Store(hashmap.New[string, time.Time]())

	for _, opt := range opts {
		opt(c)
	}

	radio.SetReportHandler(c.handleReport)
	return c
}

// Config returns a copy of the current scan configuration.
func (c *Controller) Config() ScanConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// SetScanMode sets passive or active scanning. Any other value is ignored and
// the current mode is kept.
func (c *Controller) SetScanMode(mode ScanMode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mode != ScanModePassive && mode != ScanModeActive {
		c.logger.WithField("mode", mode).Debug("Ignoring unknown scan mode")
		return
	}
	c.config.Mode = mode
	c.dirty = true
}

// SetScanInterval sets the scan interval. Values outside [3, 10240] ms are
// ignored and the previous interval is kept.
func (c *Controller) SetScanInterval(ms int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !inScanRange(ms) {
		c.logger.WithField("interval_ms", ms).Debug("Ignoring out of range scan interval")
		return
	}
	c.config.IntervalUnits = uint16(MsToUnits(ms))
	c.dirty = true
}

// SetScanWindow sets the scan window. A window longer than the configured
// interval is rejected with ErrInvalidParameter; this check runs before the
// range check, so it also fires for out of range values. Values outside
// [3, 10240] ms are otherwise ignored.
func (c *Controller) SetScanWindow(ms int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	units := MsToUnits(ms)
	if units > int(c.config.IntervalUnits) {
		msg := fmt.Sprintf("scan window (%d units) should be less than or equal to scan interval (%d units)",
			units, c.config.IntervalUnits)
		c.logger.WithFields(logrus.Fields{
			"window_ms":      ms,
			"interval_units": c.config.IntervalUnits,
		}).Error("Scan window should be less than or equal to scan interval")
		return &ScanError{State: InvalidParameter, Msg: msg}
	}

	if !inScanRange(ms) {
		c.logger.WithField("window_ms", ms).Debug("Ignoring out of range scan window")
		return nil
	}
	c.config.WindowUnits = uint16(units)
	c.dirty = true
	return nil
}

// SetDuplicateFilter enables or disables duplicate suppression in the radio.
func (c *Controller) SetDuplicateFilter(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if enabled {
		c.config.DuplicateFilter = DuplicateFilterEnabled
	} else {
		c.config.DuplicateFilter = DuplicateFilterDisabled
	}
	c.dirty = true
}

// SetReportFilter replaces the filter applied to reports before they are
// published. A nil filter publishes every report.
func (c *Controller) SetReportFilter(f *ReportFilter) {
	c.filter.Store(f)
}

// ApplyScanParams pushes the five scan parameters to the radio stack. Start
// calls it implicitly when the configuration changed since the last push.
func (c *Controller) ApplyScanParams() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked()
}

func (c *Controller) applyLocked() error {
	params := []struct {
		param device.ScanParam
		value uint16
	}{
		{device.ParamScanMode, uint16(c.config.Mode)},
		{device.ParamScanInterval, c.config.IntervalUnits},
		{device.ParamScanWindow, c.config.WindowUnits},
		{device.ParamScanFilterPolicy, uint16(c.config.FilterPolicy)},
		{device.ParamScanFilterDuplicates, uint16(c.config.DuplicateFilter)},
	}

	for _, p := range params {
		if err := c.radio.SetScanParameter(p.param, p.value); err != nil {
			return fmt.Errorf("failed to set %s: %w", p.param, err)
		}
	}
	c.dirty = false

	c.logger.WithFields(logrus.Fields{
		"mode":             c.config.Mode,
		"interval_units":   c.config.IntervalUnits,
		"window_units":     c.config.WindowUnits,
		"filter_policy":    c.config.FilterPolicy,
		"duplicate_filter": c.config.DuplicateFilter,
	}).Debug("Scan parameters applied")
	return nil
}

// Start begins a scan session. It fails with ErrAlreadyScanning if a session
// is active. The session is marked active before the radio is asked to start
// and rolled back to Idle if the radio rejects the request (ErrRadioStartFailure).
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active.Load() {
		c.logger.Error("Scan is processing, please stop it first")
		return ErrAlreadyScanning
	}

	if c.dirty {
		if err := c.applyLocked(); err != nil {
			c.logger.WithError(err).Error("Scan error")
			return &ScanError{State: RadioStartFailure, Msg: "failed to apply scan parameters", Err: err}
		}
	}

	c.active.Store(true)
	c.peers.Store(hashmap.New[string, time.Time]())
	c.events.Drain()

	if err := c.radio.RequestScanStart(); err != nil {
		c.active.Store(false)
		c.logger.WithError(err).Error("Scan error")
		return &ScanError{State: RadioStartFailure, Err: device.NormalizeError(err)}
	}

	c.logger.WithFields(logrus.Fields{
		"mode":        c.config.Mode,
		"interval_ms": UnitsToMs(c.config.IntervalUnits),
		"window_ms":   UnitsToMs(c.config.WindowUnits),
	}).Info("Starting BLE scan...")
	return nil
}

// Stop ends the active scan session. It fails with ErrNotScanning when idle.
// The session is marked inactive even if the radio reports an error while
// stopping; that error is only logged.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active.Load() {
		c.logger.Error("There is no scan")
		return ErrNotScanning
	}

	if err := c.radio.RequestScanStop(); err != nil {
		c.logger.WithError(err).Warn("Radio reported an error while stopping the scan")
	}
	c.active.Store(false)

	c.logger.WithFields(logrus.Fields{
		"device_count":    c.peers.Load().Len(),
		"buffered_events": c.events.Len(),
	}).Info("BLE scan completed")
	return nil
}

// StartFor starts a scan, blocks the caller for d, stops the scan and waits
// SettleDelay. It always runs to completion; use Start and Stop directly for a
// cancellable scan. The returned error joins the Start and Stop failures.
func (c *Controller) StartFor(d time.Duration) error {
	startErr := c.Start()
	c.sleep(d)
	stopErr := c.Stop()
	c.sleep(SettleDelay)
	return errors.Join(startErr, stopErr)
}

// IsScanning reports whether a scan session is active.
func (c *Controller) IsScanning() bool {
	return c.active.Load()
}

// Events returns a read-only channel of decoded report events. The channel is
// bounded; the oldest events are dropped when the consumer falls behind.
func (c *Controller) Events() <-chan ReportEvent {
	return c.events.C()
}

// DroppedEvents returns how many events were overwritten before being consumed.
func (c *Controller) DroppedEvents() int64 {
	return c.events.Stats().Dropped
}

// PeerCount returns the number of distinct peers seen in the current (or last) session.
func (c *Controller) PeerCount() int {
	return c.peers.Load().Len()
}
