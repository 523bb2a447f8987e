package adstruct

import (
	"encoding/binary"
	"fmt"

	"github.com/go-ble/ble"
)

// Company identifiers with known manufacturer data layouts.
const (
	CompanyApple uint16 = 0x004C
)

// ManufacturerDataParser parses the company specific remainder of a
// Manufacturer Specific Data structure (the bytes after the company ID).
type ManufacturerDataParser func([]byte) (any, error)

// manufacturerDataParsers maps company IDs to their parser functions
var manufacturerDataParsers = map[uint16]ManufacturerDataParser{
	CompanyApple: parseAppleManufacturerData,
}

// ParseManufacturerData parses the data of a manufacturer specific field.
//
// Returns (nil, nil) for companies or layouts without a parser; an error means
// the company layout was recognized but the data is malformed.
func ParseManufacturerData(f Field) (any, error) {
	if f.Kind != KindManufacturerData {
		return nil, fmt.Errorf("not a manufacturer data field: %s", f.Kind)
	}

	parser, exists := manufacturerDataParsers[f.CompanyID]
	if !exists {
		return nil, nil
	}
	return parser(f.Data)
}

// IBeacon is Apple's proximity beacon advertisement.
//
// Format (23 bytes after the company ID):
//   - Byte 0:      Type (0x02)
//   - Byte 1:      Length (0x15)
//   - Bytes 2-17:  Proximity UUID, big-endian
//   - Bytes 18-19: Major, big-endian
//   - Bytes 20-21: Minor, big-endian
//   - Byte 22:     Measured power at 1 m, signed dBm
type IBeacon struct {
	UUID          ble.UUID // over-the-air (little-endian) order like every other ble.UUID
	Major         uint16
	Minor         uint16
	MeasuredPower int8
}

func (b *IBeacon) String() string {
	return fmt.Sprintf("iBeacon %s major %d minor %d power %d dBm", b.UUID, b.Major, b.Minor, b.MeasuredPower)
}

const (
	appleTypeIBeacon = 0x02
	iBeaconLength    = 0x15
)

func parseAppleManufacturerData(data []byte) (any, error) {
	if len(data) < 2 || data[0] != appleTypeIBeacon {
		return nil, nil
	}
	if data[1] != iBeaconLength || len(data) < 2+iBeaconLength {
		return nil, fmt.Errorf("iBeacon data too short: %d bytes, expected %d", len(data), 2+iBeaconLength)
	}

	return &IBeacon{
		UUID:          ble.Reverse(data[2:18]),
		Major:         binary.BigEndian.Uint16(data[18:20]),
		Minor:         binary.BigEndian.Uint16(data[20:22]),
		MeasuredPower: int8(data[22]),
	}, nil
}
