package device

import (
	"fmt"
	"net"
	"strings"
)

// MaxAdvertisingDataLength is the largest legacy advertising payload (and scan
// response payload) a peripheral may send.
const MaxAdvertisingDataLength = 31

// Address is a 48-bit device address in over-the-air order (least significant
// byte first), as carried by HCI LE Advertising Report events.
type Address [6]byte

// ParseAddress parses the colon separated, most significant byte first form
// ("AA:BB:CC:DD:EE:FF").
func ParseAddress(s string) (Address, error) {
	var a Address
	hw, err := net.ParseMAC(s)
	if err != nil {
		return a, err
	}
	if len(hw) != len(a) {
		return a, fmt.Errorf("invalid BLE address %q: expected 6 bytes, got %d", s, len(hw))
	}
	for i := range a {
		a[i] = hw[len(hw)-1-i]
	}
	return a, nil
}

// String formats the address most significant byte first.
func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[5], a[4], a[3], a[2], a[1], a[0])
}

// IsZero reports whether the address is all zeroes (unknown).
func (a Address) IsZero() bool {
	return a == Address{}
}

// AddressType describes how the peer address was generated
type AddressType uint8

const (
	AddressPublic AddressType = iota
	AddressRandom
	AddressUnknown
)

func (t AddressType) String() string {
	switch t {
	case AddressPublic:
		return "public"
	case AddressRandom:
		return "random"
	default:
		return "unknown"
	}
}

// ParseAddressType maps a raw HCI address type value to an AddressType.
func ParseAddressType(v uint8) AddressType {
	if v <= uint8(AddressRandom) {
		return AddressType(v)
	}
	return AddressUnknown
}

// EventType is the advertising event type of a report
type EventType uint8

// Values match the HCI LE Advertising Report Event_Type field.
const (
	EventConnectableUndirected EventType = 0x00
	EventConnectableDirected   EventType = 0x01
	EventScannableUndirected   EventType = 0x02
	EventNonConnectable        EventType = 0x03
	EventScanResponse          EventType = 0x04
	EventUnknown               EventType = 0xFF
)

func (t EventType) String() string {
	switch t {
	case EventConnectableUndirected:
		return "CON_UNDIRECT"
	case EventConnectableDirected:
		return "CON_DIRECT"
	case EventScannableUndirected:
		return "SCAN_UNDIRECT"
	case EventNonConnectable:
		return "NON_CONNECTABLE"
	case EventScanResponse:
		return "SCAN_RSP"
	default:
		return "unknown"
	}
}

// ParseEventType maps a raw HCI event type value to an EventType.
func ParseEventType(v uint8) EventType {
	if v <= uint8(EventScanResponse) {
		return EventType(v)
	}
	return EventUnknown
}

// Report is a single advertisement report as delivered by a radio stack.
// Reports are transient; nothing retains them past the handler call.
type Report struct {
	Address     Address
	AddressType AddressType
	EventType   EventType
	RSSI        int

	// Data holds the raw AD payload; Length is the payload length announced by
	// the stack and may be smaller than len(Data).
	Data   []byte
	Length int

	// PeerID identifies the peer on stacks that do not expose the address
	// (CoreBluetooth hands out opaque identifiers instead).
	PeerID string
}

// Payload returns the announced portion of the AD payload, never more than
// the bytes actually present.
func (r Report) Payload() []byte {
	n := r.Length
	if n < 0 || n > len(r.Data) {
		n = len(r.Data)
	}
	return r.Data[:n]
}

// Key returns a stable identifier for the reporting peer.
func (r Report) Key() string {
	if r.Address.IsZero() && r.PeerID != "" {
		return strings.ToLower(r.PeerID)
	}
	return r.Address.String()
}
