package main

import (
	"errors"

	"github.com/srg/blescan/internal/device"
	"github.com/srg/blescan/scanner"
)

// FormatUserError turns scan and radio errors into a message with a hint on
// what to do about them. Other errors are returned verbatim.
func FormatUserError(err error) string {
	switch {
	case err == nil:
		return ""
	case device.IsRadioState(err, device.BluetoothOff):
		return "Bluetooth is turned off; enable it and try again"
	case device.IsRadioState(err, device.Unsupported):
		return "no usable Bluetooth adapter found (" + err.Error() + ")"
	case device.IsRadioState(err, device.Busy):
		return "the Bluetooth adapter is busy; stop other scanners and try again"
	case errors.Is(err, scanner.ErrInvalidParameter):
		return err.Error() + "; increase --interval or decrease --window"
	default:
		return err.Error()
	}
}
