package device

import (
	"errors"
	"fmt"
	"strings"
)

// RadioState represents the specific kind of radio failure
type RadioState string

const (
	BluetoothOff RadioState = "bluetooth_off"
	Unsupported  RadioState = "unsupported"
	Busy         RadioState = "busy"
)

// RadioError represents any radio-related problem reported by an adapter
type RadioError struct {
	State RadioState
	Msg   string
}

// Error implements the error interface
func (e *RadioError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return strings.ReplaceAll(string(e.State), "_", " ")
	}
	return fmt.Sprintf("%s: %s", strings.ReplaceAll(string(e.State), "_", " "), e.Msg)
}

// Is allows errors.Is to compare RadioError values by State
func (e *RadioError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*RadioError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Predefined sentinel errors for radio states
var (
	ErrBluetoothOff = &RadioError{State: BluetoothOff, Msg: "bluetooth is turned off"}
	ErrUnsupported  = &RadioError{State: Unsupported}
	ErrBusy         = &RadioError{State: Busy}
)

// NormalizeError maps known radio stack error strings to structured RadioError types.
// Returns wrapped errors to preserve original context.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case errors.Is(err, ErrBluetoothOff), errors.Is(err, ErrUnsupported), errors.Is(err, ErrBusy):
		return err
	case containsIgnoreCase(msg, "is Bluetooth turned on"):
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "bluetooth is turned off"):
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "not supported"), containsIgnoreCase(msg, "unsupported"):
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	case containsIgnoreCase(msg, "device or resource busy"):
		return fmt.Errorf("%w: %v", ErrBusy, err)
	default:
		return err
	}
}

// containsIgnoreCase checks substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// IsRadioState reports whether err is a RadioError with the given state
func IsRadioState(err error, state RadioState) bool {
	var rerr *RadioError
	if errors.As(err, &rerr) {
		return rerr.State == state
	}
	return false
}

// ScanParam identifies one of the scan parameters pushed to a radio stack
type ScanParam int

const (
	ParamScanMode ScanParam = iota
	ParamScanInterval
	ParamScanWindow
	ParamScanFilterPolicy
	ParamScanFilterDuplicates
)

func (p ScanParam) String() string {
	switch p {
	case ParamScanMode:
		return "scan_mode"
	case ParamScanInterval:
		return "scan_interval"
	case ParamScanWindow:
		return "scan_window"
	case ParamScanFilterPolicy:
		return "scan_filter_policy"
	case ParamScanFilterDuplicates:
		return "scan_filter_duplicates"
	default:
		return fmt.Sprintf("scan_param(%d)", int(p))
	}
}

// ReportHandler receives advertisement reports from a radio stack.
// It is invoked from the stack's event delivery goroutine, one report at a time.
type ReportHandler func(Report)

// RadioStack is the link-layer collaborator driven by the scan controller.
//
// Parameters set through SetScanParameter take effect on the next
// RequestScanStart. RequestScanStart returns a non-nil error when the stack
// rejects the request; reports are delivered asynchronously to the handler
// installed with SetReportHandler until RequestScanStop is called.
type RadioStack interface {
	SetScanParameter(param ScanParam, value uint16) error
	RequestScanStart() error
	RequestScanStop() error
	SetReportHandler(handler ReportHandler)
}
