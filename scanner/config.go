package scanner

import (
	"fmt"
	"strings"
)

// Scan parameter limits. Interval and window are given in milliseconds and
// converted to link-layer units of 625 µs.
const (
	MinScanMs      = 3
	MaxScanMs      = 10240
	ScanUnitMicros = 625

	DefaultIntervalUnits uint16 = 0x0040
	DefaultWindowUnits   uint16 = 0x0030
)

// ScanMode selects passive or active scanning. Values match the HCI LE_Scan_Type.
type ScanMode uint8

const (
	ScanModePassive ScanMode = 0x00
	ScanModeActive  ScanMode = 0x01
)

func (m ScanMode) String() string {
	switch m {
	case ScanModePassive:
		return "passive"
	case ScanModeActive:
		return "active"
	default:
		return fmt.Sprintf("scan_mode(%d)", uint8(m))
	}
}

// ParseScanMode parses "passive" or "active" (case-insensitive).
func ParseScanMode(s string) (ScanMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passive":
		return ScanModePassive, nil
	case "active":
		return ScanModeActive, nil
	default:
		return 0, fmt.Errorf("invalid scan mode '%s': must be passive or active", s)
	}
}

// FilterPolicy is the scanner filter policy. Values match the HCI Scanning_Filter_Policy.
type FilterPolicy uint8

// No setter changes the policy, so FilterAcceptAll is always pushed.
const (
	FilterAcceptAll     FilterPolicy = 0x00
	filterWhitelistOnly FilterPolicy = 0x01
)

func (p FilterPolicy) String() string {
	if p == filterWhitelistOnly {
		return "whitelist_only"
	}
	return "accept_all"
}

// DuplicateFilter controls duplicate suppression in the radio stack. Values
// match the HCI Filter_Duplicates.
type DuplicateFilter uint8

const (
	DuplicateFilterDisabled DuplicateFilter = 0x00
	DuplicateFilterEnabled  DuplicateFilter = 0x01
)

func (d DuplicateFilter) String() string {
	if d == DuplicateFilterEnabled {
		return "enabled"
	}
	return "disabled"
}

// ScanConfig holds the scan parameters in protocol units.
// SetScanWindow never stores a window longer than the interval, but a later
// SetScanInterval may shrink the interval below the stored window.
type ScanConfig struct {
	Mode            ScanMode
	IntervalUnits   uint16
	WindowUnits     uint16
	FilterPolicy    FilterPolicy
	DuplicateFilter DuplicateFilter
}

// DefaultScanConfig returns the configuration a new Controller starts with:
// active scanning, 40 ms interval, 30 ms window, no whitelist, duplicates filtered.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Mode:            ScanModeActive,
		IntervalUnits:   DefaultIntervalUnits,
		WindowUnits:     DefaultWindowUnits,
		FilterPolicy:    FilterAcceptAll,
		DuplicateFilter: DuplicateFilterEnabled,
	}
}

// MsToUnits converts milliseconds to 625 µs units, truncating.
func MsToUnits(ms int) int {
	return ms * 1000 / ScanUnitMicros
}

// UnitsToMs converts 625 µs units back to milliseconds, truncating.
func UnitsToMs(units uint16) int {
	return int(units) * ScanUnitMicros / 1000
}

func inScanRange(ms int) bool {
	return ms >= MinScanMs && ms <= MaxScanMs
}
