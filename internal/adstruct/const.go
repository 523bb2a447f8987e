package adstruct

import "github.com/srg/blescan/internal/device"

// MaxPayloadLength is the frame budget a single AD structure must fit in.
const MaxPayloadLength = device.MaxAdvertisingDataLength

// Type is the one-octet AD type tag of an AD structure.
type Type uint8

// Advertising data types, Supplement to the Bluetooth Core Specification, Part A.
const (
	TypeFlags             Type = 0x01 // Flags
	TypeSomeUUID16        Type = 0x02 // Incomplete List of 16-bit Service Class UUIDs
	TypeAllUUID16         Type = 0x03 // Complete List of 16-bit Service Class UUIDs
	TypeSomeUUID32        Type = 0x04 // Incomplete List of 32-bit Service Class UUIDs
	TypeAllUUID32         Type = 0x05 // Complete List of 32-bit Service Class UUIDs
	TypeSomeUUID128       Type = 0x06 // Incomplete List of 128-bit Service Class UUIDs
	TypeAllUUID128        Type = 0x07 // Complete List of 128-bit Service Class UUIDs
	TypeShortName         Type = 0x08 // Shortened Local Name
	TypeCompleteName      Type = 0x09 // Complete Local Name
	TypeTxPower           Type = 0x0A // Tx Power Level
	TypeConnIntervalRange Type = 0x12 // Peripheral Connection Interval Range
	TypeServiceData16     Type = 0x16 // Service Data - 16-bit UUID
	TypeAppearance        Type = 0x19 // Appearance
	TypeManufacturerData  Type = 0xFF // Manufacturer Specific Data
)

func (t Type) String() string {
	switch t {
	case TypeFlags:
		return "Flags"
	case TypeSomeUUID16:
		return "Incomplete 16-bit UUIDs"
	case TypeAllUUID16:
		return "Complete 16-bit UUIDs"
	case TypeSomeUUID32:
		return "Incomplete 32-bit UUIDs"
	case TypeAllUUID32:
		return "Complete 32-bit UUIDs"
	case TypeSomeUUID128:
		return "Incomplete 128-bit UUIDs"
	case TypeAllUUID128:
		return "Complete 128-bit UUIDs"
	case TypeShortName:
		return "Short Local Name"
	case TypeCompleteName:
		return "Complete Local Name"
	case TypeTxPower:
		return "TX Power Level"
	case TypeConnIntervalRange:
		return "Peripheral Connection Interval Range"
	case TypeServiceData16:
		return "Service Data"
	case TypeAppearance:
		return "Appearance"
	case TypeManufacturerData:
		return "Manufacturer Specific Data"
	default:
		return "Unknown"
	}
}

// Flags is the value of a Flags AD structure.
type Flags uint8

const (
	FlagLimitedDiscoverable           Flags = 0x01 // LE Limited Discoverable Mode
	FlagGeneralDiscoverable           Flags = 0x02 // LE General Discoverable Mode
	FlagBREDRNotSupported             Flags = 0x04 // BR/EDR Not Supported
	FlagSimultaneousLEBREDRController Flags = 0x08 // Simultaneous LE and BR/EDR to Same Device Capable (Controller)
	FlagSimultaneousLEBREDRHost       Flags = 0x10 // Simultaneous LE and BR/EDR to Same Device Capable (Host)
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagLimitedDiscoverable, "LE Limited Discoverable"},
	{FlagGeneralDiscoverable, "LE General Discoverable"},
	{FlagBREDRNotSupported, "BR/EDR Not Supported"},
	{FlagSimultaneousLEBREDRController, "LE and BR/EDR Controller"},
	{FlagSimultaneousLEBREDRHost, "LE and BR/EDR Host"},
}

// Names returns the meaning of every defined bit set in f, lowest bit first.
func (f Flags) Names() []string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

// Has reports whether all bits of flag are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}
