package testutils

import (
	"fmt"

	"github.com/go-ble/ble"
	"github.com/srg/blescan/internal/adstruct"
	"github.com/srg/blescan/internal/device"
)

// ReportBuilder builds advertisement reports for testing.
// It provides a fluent API; AD structures are appended to the payload in the
// order the With* calls are made.
type ReportBuilder struct {
	address     string
	addressType device.AddressType
	eventType   device.EventType
	rssi        int
	payload     adstruct.Packet
	scanRsp     adstruct.Packet
	length      *int

	// high level view used by BuildAdvertisement
	name        string
	services    []ble.UUID
	manufData   []byte
	serviceData []ble.ServiceData
	txPower     int
}

// NewReportBuilder creates a ReportBuilder for a connectable, public-address
// peer at 00:00:00:00:00:01 with an empty payload.
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{
		address:     "00:00:00:00:00:01",
		addressType: device.AddressPublic,
		eventType:   device.EventConnectableUndirected,
		rssi:        -50,
	}
}

// WithAddress sets the peer address ("AA:BB:CC:DD:EE:FF").
func (b *ReportBuilder) WithAddress(addr string) *ReportBuilder {
	b.address = addr
	return b
}

// WithAddressType sets the peer address type.
func (b *ReportBuilder) WithAddressType(t device.AddressType) *ReportBuilder {
	b.addressType = t
	return b
}

// WithEventType sets the advertising event type.
func (b *ReportBuilder) WithEventType(t device.EventType) *ReportBuilder {
	b.eventType = t
	return b
}

// WithRSSI sets the signal strength.
func (b *ReportBuilder) WithRSSI(rssi int) *ReportBuilder {
	b.rssi = rssi
	return b
}

// WithFlags appends a Flags structure.
func (b *ReportBuilder) WithFlags(f adstruct.Flags) *ReportBuilder {
	b.payload = b.payload.AppendFlags(f)
	return b
}

// WithName appends a Complete Local Name structure.
func (b *ReportBuilder) WithName(name string) *ReportBuilder {
	b.name = name
	b.payload = b.payload.AppendCompleteName(name)
	return b
}

// WithServices appends a complete list of 16-bit service UUIDs.
func (b *ReportBuilder) WithServices(uuids ...uint16) *ReportBuilder {
	for _, u := range uuids {
		b.services = append(b.services, ble.UUID16(u))
	}
	b.payload = b.payload.AppendUUID16s(true, uuids...)
	return b
}

// WithTxPower appends a TX Power Level structure.
func (b *ReportBuilder) WithTxPower(dbm int8) *ReportBuilder {
	b.txPower = int(dbm)
	b.payload = b.payload.AppendTxPower(dbm)
	return b
}

// WithManufacturerData appends a Manufacturer Specific Data structure.
func (b *ReportBuilder) WithManufacturerData(companyID uint16, data []byte) *ReportBuilder {
	b.manufData = append([]byte{byte(companyID), byte(companyID >> 8)}, data...)
	b.payload = b.payload.AppendManufacturerData(companyID, data)
	return b
}

// WithServiceData appends a 16-bit Service Data structure.
func (b *ReportBuilder) WithServiceData(uuid uint16, data []byte) *ReportBuilder {
	b.serviceData = append(b.serviceData, ble.ServiceData{UUID: ble.UUID16(uuid), Data: data})
	b.payload = b.payload.AppendServiceData16(uuid, data)
	return b
}

// WithRawPayload appends raw bytes to the payload, malformed or not.
func (b *ReportBuilder) WithRawPayload(raw ...byte) *ReportBuilder {
	b.payload = append(b.payload, raw...)
	return b
}

// WithScanResponse sets the scan response payload delivered alongside the
// advertisement by BuildAdvertisement.
func (b *ReportBuilder) WithScanResponse(p adstruct.Packet) *ReportBuilder {
	b.scanRsp = p
	return b
}

// WithLength overrides the announced payload length.
func (b *ReportBuilder) WithLength(n int) *ReportBuilder {
	b.length = &n
	return b
}

// Payload returns the payload built so far.
func (b *ReportBuilder) Payload() []byte {
	return append([]byte(nil), b.payload...)
}

// Build returns the device.Report. Panics on an invalid address as this is
// intended for test data setup.
func (b *ReportBuilder) Build() device.Report {
	addr, err := device.ParseAddress(b.address)
	if err != nil {
		panic(fmt.Sprintf("ReportBuilder: %v", err))
	}

	length := len(b.payload)
	if b.length != nil {
		length = *b.length
	}

	return device.Report{
		Address:     addr,
		AddressType: b.addressType,
		EventType:   b.eventType,
		RSSI:        b.rssi,
		Data:        b.Payload(),
		Length:      length,
	}
}

// BuildAdvertisement returns a ble.Advertisement as delivered by the go-ble HCI
// backend, exposing the raw payload and event metadata.
func (b *ReportBuilder) BuildAdvertisement() ble.Advertisement {
	return &RawAdvertisement{
		FakeAdvertisement: b.BuildHighLevelAdvertisement().(*FakeAdvertisement),
		eventType:         uint8(b.eventType),
		addressType:       uint8(b.addressType),
		data:              b.Payload(),
		scanRsp:           append([]byte(nil), b.scanRsp...),
	}
}

// BuildHighLevelAdvertisement returns a ble.Advertisement that only exposes
// parsed fields, as the CoreBluetooth backend does.
func (b *ReportBuilder) BuildHighLevelAdvertisement() ble.Advertisement {
	return &FakeAdvertisement{
		name:        b.name,
		addr:        ble.NewAddr(b.address),
		rssi:        b.rssi,
		services:    b.services,
		manufData:   b.manufData,
		serviceData: b.serviceData,
		txPower:     b.txPower,
		connectable: b.eventType == device.EventConnectableUndirected || b.eventType == device.EventConnectableDirected,
	}
}

// FakeAdvertisement implements ble.Advertisement with fixed values.
type FakeAdvertisement struct {
	name        string
	addr        ble.Addr
	rssi        int
	services    []ble.UUID
	manufData   []byte
	serviceData []ble.ServiceData
	txPower     int
	connectable bool
}

func (a *FakeAdvertisement) LocalName() string              { return a.name }
func (a *FakeAdvertisement) ManufacturerData() []byte       { return a.manufData }
func (a *FakeAdvertisement) ServiceData() []ble.ServiceData { return a.serviceData }
func (a *FakeAdvertisement) Services() []ble.UUID           { return a.services }
func (a *FakeAdvertisement) OverflowService() []ble.UUID    { return nil }
func (a *FakeAdvertisement) TxPowerLevel() int              { return a.txPower }
func (a *FakeAdvertisement) Connectable() bool              { return a.connectable }
func (a *FakeAdvertisement) SolicitedService() []ble.UUID   { return nil }
func (a *FakeAdvertisement) RSSI() int                      { return a.rssi }
func (a *FakeAdvertisement) Addr() ble.Addr                 { return a.addr }

// RawAdvertisement adds the HCI level accessors of go-ble's linux backend.
type RawAdvertisement struct {
	*FakeAdvertisement
	eventType   uint8
	addressType uint8
	data        []byte
	scanRsp     []byte
}

func (a *RawAdvertisement) EventType() uint8     { return a.eventType }
func (a *RawAdvertisement) AddressType() uint8   { return a.addressType }
func (a *RawAdvertisement) Data() []byte         { return a.data }
func (a *RawAdvertisement) ScanResponse() []byte { return a.scanRsp }
