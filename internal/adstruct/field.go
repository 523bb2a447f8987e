package adstruct

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-ble/ble"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind classifies a decoded field
type Kind int

const (
	KindFlags Kind = iota
	KindUUID
	KindLocalName
	KindTxPower
	KindConnIntervalRange
	KindServiceData
	KindAppearance
	KindManufacturerData
	KindUnhandled
)

func (k Kind) String() string {
	switch k {
	case KindFlags:
		return "flags"
	case KindUUID:
		return "uuid"
	case KindLocalName:
		return "local_name"
	case KindTxPower:
		return "tx_power"
	case KindConnIntervalRange:
		return "conn_interval_range"
	case KindServiceData:
		return "service_data"
	case KindAppearance:
		return "appearance"
	case KindManufacturerData:
		return "manufacturer_data"
	case KindUnhandled:
		return "unhandled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field is one decoded value of an AD structure. Type is the tag of the
// structure the field came from; which of the remaining members is meaningful
// depends on Kind.
type Field struct {
	Type Type
	Kind Kind

	Flags Flags

	// UUID is kept in over-the-air (little-endian) order, 2, 4 or 16 bytes.
	// Service data fields carry their 16-bit service UUID here as well.
	UUID ble.UUID

	Name    string
	TxPower int8

	IntervalMin uint16
	IntervalMax uint16

	Appearance uint16
	CompanyID  uint16

	// Data is the opaque remainder of service data and manufacturer specific
	// data; DataLen is its length.
	Data    []byte
	DataLen int

	// Byte is the raw octet of an unhandled field.
	Byte byte
}

// UUIDString formats UUID as hex, most significant word first. 128-bit UUIDs are
// printed as four little-endian 32-bit words.
func (f Field) UUIDString() string {
	u := f.UUID
	switch len(u) {
	case 2:
		return fmt.Sprintf("0x%04X", binary.LittleEndian.Uint16(u))
	case 4:
		return fmt.Sprintf("0x%08X", binary.LittleEndian.Uint32(u))
	case 16:
		return fmt.Sprintf("0x%08X%08X%08X%08X",
			binary.LittleEndian.Uint32(u[12:]),
			binary.LittleEndian.Uint32(u[8:]),
			binary.LittleEndian.Uint32(u[4:]),
			binary.LittleEndian.Uint32(u[0:]))
	default:
		return fmt.Sprintf("0x%X", []byte(ble.Reverse(u)))
	}
}

func (f Field) String() string {
	switch f.Kind {
	case KindFlags:
		if names := f.Flags.Names(); len(names) > 0 {
			return fmt.Sprintf("Flags: 0x%X [%s]", uint8(f.Flags), strings.Join(names, ", "))
		}
		return fmt.Sprintf("Flags: 0x%X", uint8(f.Flags))
	case KindUUID:
		return fmt.Sprintf("UUID%d: %s", len(f.UUID)*8, f.UUIDString())
	case KindLocalName:
		return fmt.Sprintf("Local Name: %s", f.Name)
	case KindTxPower:
		return fmt.Sprintf("TX Power: %d dBm", f.TxPower)
	case KindConnIntervalRange:
		return fmt.Sprintf("Conn Interval Range: 0x%X - 0x%X", f.IntervalMin, f.IntervalMax)
	case KindServiceData:
		return fmt.Sprintf("Service Data: UUID %s, len %d", f.UUIDString(), f.DataLen)
	case KindAppearance:
		return fmt.Sprintf("Appearance: %d", f.Appearance)
	case KindManufacturerData:
		return fmt.Sprintf("Manufacturer: company_id 0x%X, len %d", f.CompanyID, f.DataLen)
	case KindUnhandled:
		return fmt.Sprintf("Unhandled(0x%02X): 0x%X", uint8(f.Type), f.Byte)
	default:
		return f.Kind.String()
	}
}

// MarshalJSON encodes the field with a stable key order: type, kind, then the
// kind specific values.
func (f Field) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, any]()
	om.Set("type", fmt.Sprintf("0x%02X", uint8(f.Type)))
	om.Set("kind", f.Kind.String())

	switch f.Kind {
	case KindFlags:
		om.Set("value", uint8(f.Flags))
		om.Set("names", f.Flags.Names())
	case KindUUID:
		om.Set("uuid", f.UUIDString())
	case KindLocalName:
		om.Set("name", f.Name)
	case KindTxPower:
		om.Set("dbm", f.TxPower)
	case KindConnIntervalRange:
		om.Set("min", f.IntervalMin)
		om.Set("max", f.IntervalMax)
	case KindServiceData:
		om.Set("uuid", f.UUIDString())
		om.Set("len", f.DataLen)
		om.Set("data", hex.EncodeToString(f.Data))
	case KindAppearance:
		om.Set("value", f.Appearance)
	case KindManufacturerData:
		om.Set("company_id", f.CompanyID)
		om.Set("len", f.DataLen)
		om.Set("data", hex.EncodeToString(f.Data))
	case KindUnhandled:
		om.Set("value", f.Byte)
	}

	return json.Marshal(om)
}
