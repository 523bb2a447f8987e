package adstruct

import (
	"bytes"
	"encoding/binary"
	"iter"
	"slices"

	"github.com/go-ble/ble"
	"github.com/srg/blescan/internal/device"
)

// Decode returns the fields carried by payload, in payload order.
//
// The sequence is lazy and re-scans payload from the start on every range.
// Decode never fails: malformed structures are skipped (see Structures) and
// structures of unknown type, or too short for their type's fixed layout, are
// emitted byte by byte as KindUnhandled fields.
func Decode(payload []byte) iter.Seq[Field] {
	return func(yield func(Field) bool) {
		for s := range Structures(payload) {
			if !decodeStructure(s, yield) {
				return
			}
		}
	}
}

// DecodeReport decodes the announced payload of r.
func DecodeReport(r device.Report) iter.Seq[Field] {
	return Decode(r.Payload())
}

// DecodeAll collects every field of payload.
func DecodeAll(payload []byte) []Field {
	return slices.Collect(Decode(payload))
}

func decodeStructure(s Structure, yield func(Field) bool) bool {
	d := s.Data

	switch s.Type {
	case TypeFlags:
		return yield(Field{Type: s.Type, Kind: KindFlags, Flags: Flags(d[0])})

	case TypeSomeUUID16, TypeAllUUID16:
		return uuidList(s, 2, yield)

	case TypeSomeUUID32, TypeAllUUID32:
		return uuidList(s, 4, yield)

	case TypeSomeUUID128, TypeAllUUID128:
		return uuidList(s, 16, yield)

	case TypeShortName, TypeCompleteName:
		if i := bytes.IndexByte(d, 0); i >= 0 {
			d = d[:i]
		}
		return yield(Field{Type: s.Type, Kind: KindLocalName, Name: string(d)})

	case TypeTxPower:
		return yield(Field{Type: s.Type, Kind: KindTxPower, TxPower: int8(d[0])})

	case TypeConnIntervalRange:
		if len(d) < 4 {
			return unhandled(s, yield)
		}
		return yield(Field{
			Type:        s.Type,
			Kind:        KindConnIntervalRange,
			IntervalMin: binary.LittleEndian.Uint16(d[0:]),
			IntervalMax: binary.LittleEndian.Uint16(d[2:]),
		})

	case TypeServiceData16:
		if len(d) < 2 {
			return unhandled(s, yield)
		}
		return yield(Field{
			Type:    s.Type,
			Kind:    KindServiceData,
			UUID:    ble.UUID(bytes.Clone(d[:2])),
			Data:    bytes.Clone(d[2:]),
			DataLen: len(d) - 2,
		})

	case TypeAppearance:
		if len(d) < 2 {
			return unhandled(s, yield)
		}
		return yield(Field{Type: s.Type, Kind: KindAppearance, Appearance: binary.LittleEndian.Uint16(d)})

	case TypeManufacturerData:
		if len(d) < 2 {
			return unhandled(s, yield)
		}
		return yield(Field{
			Type:      s.Type,
			Kind:      KindManufacturerData,
			CompanyID: binary.LittleEndian.Uint16(d),
			Data:      bytes.Clone(d[2:]),
			DataLen:   len(d) - 2,
		})

	default:
		return unhandled(s, yield)
	}
}

// uuidList emits one field per complete width-sized UUID; a trailing partial
// UUID is dropped.
func uuidList(s Structure, width int, yield func(Field) bool) bool {
	for d := s.Data; len(d) >= width; d = d[width:] {
		if !yield(Field{Type: s.Type, Kind: KindUUID, UUID: ble.UUID(bytes.Clone(d[:width]))}) {
			return false
		}
	}
	return true
}

func unhandled(s Structure, yield func(Field) bool) bool {
	for _, b := range s.Data {
		if !yield(Field{Type: s.Type, Kind: KindUnhandled, Byte: b}) {
			return false
		}
	}
	return true
}
