package adstruct

import (
	"encoding/binary"

	"github.com/go-ble/ble"
)

// Packet is a utility to craft advertising payloads.
type Packet []byte

// AppendField appends an AD structure of type typ carrying b.
func (p Packet) AppendField(typ Type, b []byte) Packet {
	p = append(p, byte(len(b)+1), byte(typ))
	return append(p, b...)
}

// AppendFlags appends a Flags structure.
func (p Packet) AppendFlags(f Flags) Packet {
	return p.AppendField(TypeFlags, []byte{byte(f)})
}

// AppendUUID16s appends a list of 16-bit service UUIDs.
func (p Packet) AppendUUID16s(complete bool, uuids ...uint16) Packet {
	b := make([]byte, 0, 2*len(uuids))
	for _, u := range uuids {
		b = binary.LittleEndian.AppendUint16(b, u)
	}
	return p.AppendField(pick(complete, TypeAllUUID16, TypeSomeUUID16), b)
}

// AppendUUID32s appends a list of 32-bit service UUIDs.
func (p Packet) AppendUUID32s(complete bool, uuids ...uint32) Packet {
	b := make([]byte, 0, 4*len(uuids))
	for _, u := range uuids {
		b = binary.LittleEndian.AppendUint32(b, u)
	}
	return p.AppendField(pick(complete, TypeAllUUID32, TypeSomeUUID32), b)
}

// AppendUUID128 appends a single 128-bit service UUID. u must be 16 bytes in
// over-the-air order, as returned by ble.Parse.
func (p Packet) AppendUUID128(complete bool, u ble.UUID) Packet {
	return p.AppendField(pick(complete, TypeAllUUID128, TypeSomeUUID128), u)
}

// AppendShortName appends a Shortened Local Name structure.
func (p Packet) AppendShortName(n string) Packet {
	return p.AppendField(TypeShortName, []byte(n))
}

// AppendCompleteName appends a Complete Local Name structure.
func (p Packet) AppendCompleteName(n string) Packet {
	return p.AppendField(TypeCompleteName, []byte(n))
}

// AppendTxPower appends a TX Power Level structure.
func (p Packet) AppendTxPower(dbm int8) Packet {
	return p.AppendField(TypeTxPower, []byte{byte(dbm)})
}

// AppendConnIntervalRange appends a Peripheral Connection Interval Range structure.
func (p Packet) AppendConnIntervalRange(lo, hi uint16) Packet {
	b := binary.LittleEndian.AppendUint16(nil, lo)
	b = binary.LittleEndian.AppendUint16(b, hi)
	return p.AppendField(TypeConnIntervalRange, b)
}

// AppendServiceData16 appends a Service Data structure for a 16-bit service UUID.
func (p Packet) AppendServiceData16(uuid uint16, data []byte) Packet {
	b := binary.LittleEndian.AppendUint16(nil, uuid)
	return p.AppendField(TypeServiceData16, append(b, data...))
}

// AppendAppearance appends an Appearance structure.
func (p Packet) AppendAppearance(v uint16) Packet {
	return p.AppendField(TypeAppearance, binary.LittleEndian.AppendUint16(nil, v))
}

// AppendManufacturerData appends a Manufacturer Specific Data structure.
func (p Packet) AppendManufacturerData(companyID uint16, data []byte) Packet {
	b := binary.LittleEndian.AppendUint16(nil, companyID)
	return p.AppendField(TypeManufacturerData, append(b, data...))
}

// Len ...
func (p Packet) Len() int {
	return len(p)
}

// Fits reports whether the packet fits a legacy advertising PDU.
func (p Packet) Fits() bool {
	return len(p) <= MaxPayloadLength
}

func pick(complete bool, all, some Type) Type {
	if complete {
		return all
	}
	return some
}
