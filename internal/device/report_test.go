package device_test

import (
	"testing"

	"github.com/srg/blescan/internal/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_ParseAndString(t *testing.T) {
	addr, err := device.ParseAddress("AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)

	// Over-the-air order is least significant byte first
	assert.Equal(t, device.Address{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA}, addr)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", addr.String())
	assert.False(t, addr.IsZero())
}

func TestAddress_ParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "garbage", input: "not-an-address"},
		{name: "eight bytes", input: "00:11:22:33:44:55:66:77"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := device.ParseAddress(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestEventType_String(t *testing.T) {
	tests := []struct {
		raw      uint8
		expected string
	}{
		{raw: 0x00, expected: "CON_UNDIRECT"},
		{raw: 0x01, expected: "CON_DIRECT"},
		{raw: 0x02, expected: "SCAN_UNDIRECT"},
		{raw: 0x03, expected: "NON_CONNECTABLE"},
		{raw: 0x04, expected: "SCAN_RSP"},
		{raw: 0x05, expected: "unknown"},
		{raw: 0xAB, expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, device.ParseEventType(tt.raw).String())
		})
	}
}

func TestAddressType_String(t *testing.T) {
	assert.Equal(t, "public", device.AddressPublic.String())
	assert.Equal(t, "random", device.AddressRandom.String())
	assert.Equal(t, "unknown", device.AddressUnknown.String())
	assert.Equal(t, "unknown", device.AddressType(9).String())
}

func TestReport_Payload(t *testing.T) {
	data := []byte{0x02, 0x01, 0x06, 0x00, 0x00}

	tests := []struct {
		name     string
		length   int
		expected []byte
	}{
		{name: "announced length shorter than buffer", length: 3, expected: data[:3]},
		{name: "announced length equals buffer", length: 5, expected: data},
		{name: "announced length overruns buffer", length: 40, expected: data},
		{name: "negative length", length: -1, expected: data},
		{name: "zero length", length: 0, expected: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := device.Report{Data: data, Length: tt.length}
			assert.Equal(t, tt.expected, r.Payload())
		})
	}
}

func TestReport_Key(t *testing.T) {
	addr, err := device.ParseAddress("11:22:33:44:55:66")
	require.NoError(t, err)

	assert.Equal(t, "11:22:33:44:55:66", device.Report{Address: addr, PeerID: "ignored"}.Key())
	assert.Equal(t, "5c2a4b8e-0000-4000-8000-00805f9b34fb",
		device.Report{PeerID: "5C2A4B8E-0000-4000-8000-00805F9B34FB"}.Key())
	assert.Equal(t, "00:00:00:00:00:00", device.Report{}.Key())
}
