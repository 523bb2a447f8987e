package goble

import (
	"encoding/binary"

	"github.com/go-ble/ble"
	"github.com/srg/blescan/internal/adstruct"
	"github.com/srg/blescan/internal/device"
)

// rawAdvertisement is implemented by advertisements from the HCI backend,
// which keeps the report as it came off the air.
type rawAdvertisement interface {
	EventType() uint8
	AddressType() uint8
	Data() []byte
	ScanResponse() []byte
}

// ToReports converts a go-ble advertisement into advertisement reports.
//
// HCI advertisements carry the raw payload; a merged scan response becomes a
// second SCAN_RSP report. Other backends only expose parsed fields, so the
// payload is rebuilt from them and the address type is unknown.
func ToReports(adv ble.Advertisement) []device.Report {
	base := device.Report{RSSI: adv.RSSI()}
	if adv.Addr() != nil {
		addr := adv.Addr().String()
		if parsed, err := device.ParseAddress(addr); err == nil {
			base.Address = parsed
		} else {
			base.PeerID = addr
		}
	}

	raw, ok := adv.(rawAdvertisement)
	if !ok {
		r := base
		r.AddressType = device.AddressUnknown
		r.EventType = device.EventNonConnectable
		if adv.Connectable() {
			r.EventType = device.EventConnectableUndirected
		}
		r.Data = synthesizePayload(adv)
		r.Length = len(r.Data)
		return []device.Report{r}
	}

	base.AddressType = device.ParseAddressType(raw.AddressType())

	r := base
	r.EventType = device.ParseEventType(raw.EventType())
	r.Data = raw.Data()
	r.Length = len(r.Data)
	reports := []device.Report{r}

	if rsp := raw.ScanResponse(); len(rsp) > 0 {
		sr := base
		sr.EventType = device.EventScanResponse
		sr.Data = rsp
		sr.Length = len(rsp)
		reports = append(reports, sr)
	}
	return reports
}

// synthesizePayload encodes the parsed advertisement fields back into AD
// structures. The result may exceed the legacy frame; the decoder ignores
// whatever does not fit.
func synthesizePayload(adv ble.Advertisement) []byte {
	var p adstruct.Packet

	if name := adv.LocalName(); name != "" {
		p = p.AppendCompleteName(name)
	}

	var uuid16 []uint16
	var uuid32 []uint32
	var uuid128 []ble.UUID
	for _, u := range adv.Services() {
		switch len(u) {
		case 2:
			uuid16 = append(uuid16, binary.LittleEndian.Uint16(u))
		case 4:
			uuid32 = append(uuid32, binary.LittleEndian.Uint32(u))
		case 16:
			uuid128 = append(uuid128, u)
		}
	}
	if len(uuid16) > 0 {
		p = p.AppendUUID16s(true, uuid16...)
	}
	if len(uuid32) > 0 {
		p = p.AppendUUID32s(true, uuid32...)
	}
	for _, u := range uuid128 {
		p = p.AppendUUID128(true, u)
	}

	// go-ble reports a missing TX Power Level as 0, so 0 dBm is never synthesized.
	if tx := adv.TxPowerLevel(); tx != 0 {
		p = p.AppendTxPower(int8(tx))
	}

	for _, sd := range adv.ServiceData() {
		if len(sd.UUID) == 2 {
			p = p.AppendServiceData16(binary.LittleEndian.Uint16(sd.UUID), sd.Data)
		}
	}

	if md := adv.ManufacturerData(); len(md) >= 2 {
		p = p.AppendManufacturerData(binary.LittleEndian.Uint16(md), md[2:])
	}

	return p
}
