package scanner

import "fmt"

// ScanState represents the specific kind of scan lifecycle failure
type ScanState string

const (
	AlreadyScanning   ScanState = "already_scanning"
	NotScanning       ScanState = "not_scanning"
	InvalidParameter  ScanState = "invalid_parameter"
	RadioStartFailure ScanState = "radio_start_failure"
)

// ScanError represents any scan lifecycle or configuration problem
type ScanError struct {
	State ScanState
	Msg   string
	Err   error // underlying radio error, if any
}

// Error implements the error interface
func (e *ScanError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.State)
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", e.State, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is allows errors.Is to compare ScanError values by State
func (e *ScanError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ScanError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Unwrap exposes the radio error behind a RadioStartFailure.
func (e *ScanError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Predefined sentinel errors for scan states
var (
	ErrAlreadyScanning   = &ScanError{State: AlreadyScanning, Msg: "scan is processing, please stop it first"}
	ErrNotScanning       = &ScanError{State: NotScanning, Msg: "there is no scan"}
	ErrInvalidParameter  = &ScanError{State: InvalidParameter}
	ErrRadioStartFailure = &ScanError{State: RadioStartFailure}
)
