package adstruct_test

import (
	"encoding/json"
	"testing"

	"github.com/go-ble/ble"
	"github.com/srg/blescan/internal/adstruct"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_String(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		expected []string
	}{
		{
			name:     "flags with decoded bits",
			payload:  []byte{0x02, 0x01, 0x06},
			expected: []string{"Flags: 0x6 [LE General Discoverable, BR/EDR Not Supported]"},
		},
		{
			name:     "flags without defined bits",
			payload:  []byte{0x02, 0x01, 0x80},
			expected: []string{"Flags: 0x80"},
		},
		{
			name:     "16-bit uuids",
			payload:  []byte{0x05, 0x02, 0x0A, 0x18, 0x0D, 0x18},
			expected: []string{"UUID16: 0x180A", "UUID16: 0x180D"},
		},
		{
			name:     "32-bit uuid",
			payload:  []byte{0x05, 0x04, 0x78, 0x56, 0x34, 0x12},
			expected: []string{"UUID32: 0x12345678"},
		},
		{
			name:     "128-bit uuid printed most significant word first",
			payload:  append([]byte{0x11, 0x07}, ble.MustParse("6e400001-b5a3-f393-e0a9-e50e24dcca9e")...),
			expected: []string{"UUID128: 0x6E400001B5A3F393E0A9E50E24DCCA9E"},
		},
		{
			name:     "local name",
			payload:  []byte{0x05, 0x09, 'b', 'l', 'e', '!'},
			expected: []string{"Local Name: ble!"},
		},
		{
			name:     "tx power",
			payload:  []byte{0x02, 0x0A, 0xF8},
			expected: []string{"TX Power: -8 dBm"},
		},
		{
			name:     "connection interval range",
			payload:  []byte{0x05, 0x12, 0x06, 0x00, 0x0C, 0x00},
			expected: []string{"Conn Interval Range: 0x6 - 0xC"},
		},
		{
			name:     "service data",
			payload:  []byte{0x06, 0x16, 0x0A, 0x18, 0x01, 0x02, 0x03},
			expected: []string{"Service Data: UUID 0x180A, len 3"},
		},
		{
			name:     "appearance",
			payload:  []byte{0x03, 0x19, 0x40, 0x03},
			expected: []string{"Appearance: 832"},
		},
		{
			name:     "manufacturer data",
			payload:  []byte{0x07, 0xFF, 0x4C, 0x00, 0x01, 0x02, 0x03, 0x04},
			expected: []string{"Manufacturer: company_id 0x4C, len 4"},
		},
		{
			name:     "unhandled bytes",
			payload:  []byte{0x03, 0xE0, 0xAA, 0xBB},
			expected: []string{"Unhandled(0xE0): 0xAA", "Unhandled(0xE0): 0xBB"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var actual []string
			for f := range adstruct.Decode(tt.payload) {
				actual = append(actual, f.String())
			}
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestField_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		expected string
	}{
		{
			name:     "flags",
			payload:  []byte{0x02, 0x01, 0x06},
			expected: `{"type":"0x01","kind":"flags","value":6,"names":["LE General Discoverable","BR/EDR Not Supported"]}`,
		},
		{
			name:     "uuid",
			payload:  []byte{0x03, 0x03, 0x0F, 0x18},
			expected: `{"type":"0x03","kind":"uuid","uuid":"0x180F"}`,
		},
		{
			name:     "service data",
			payload:  []byte{0x04, 0x16, 0x0F, 0x18, 0x64},
			expected: `{"type":"0x16","kind":"service_data","uuid":"0x180F","len":1,"data":"64"}`,
		},
		{
			name:     "manufacturer data",
			payload:  []byte{0x04, 0xFF, 0x59, 0x00, 0x01},
			expected: `{"type":"0xFF","kind":"manufacturer_data","company_id":89,"len":1,"data":"01"}`,
		},
		{
			name:     "unhandled",
			payload:  []byte{0x02, 0xE0, 0xAA},
			expected: `{"type":"0xE0","kind":"unhandled","value":170}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := adstruct.DecodeAll(tt.payload)
			require.Len(t, fields, 1)

			data, err := json.Marshal(fields[0])
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestField_MarshalJSON_KeyOrder(t *testing.T) {
	fields := adstruct.DecodeAll([]byte{0x05, 0x12, 0x06, 0x00, 0x0C, 0x00})
	require.Len(t, fields, 1)

	data, err := json.Marshal(fields[0])
	require.NoError(t, err)
	assert.Equal(t, `{"type":"0x12","kind":"conn_interval_range","min":6,"max":12}`, string(data))
}

func TestFlags(t *testing.T) {
	f := adstruct.FlagLimitedDiscoverable | adstruct.FlagSimultaneousLEBREDRHost

	assert.True(t, f.Has(adstruct.FlagLimitedDiscoverable))
	assert.False(t, f.Has(adstruct.FlagGeneralDiscoverable))
	assert.Equal(t, []string{"LE Limited Discoverable", "LE and BR/EDR Host"}, f.Names())
	assert.Nil(t, adstruct.Flags(0).Names())
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "Flags", adstruct.TypeFlags.String())
	assert.Equal(t, "Manufacturer Specific Data", adstruct.TypeManufacturerData.String())
	assert.Equal(t, "Unknown", adstruct.Type(0xE0).String())
}
