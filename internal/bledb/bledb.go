// Package bledb resolves Bluetooth SIG assigned numbers (service UUIDs,
// company identifiers and appearance categories) to human readable names.
//
// The tables carry the commonly advertised subset of the assigned numbers
// documents; lookups of anything else return "".
package bledb

import (
	"strings"
)

// sigBaseSuffix is the Bluetooth SIG base UUID without its 32-bit prefix,
// in normalized form.
const sigBaseSuffix = "00001000800000805f9b34fb"

// NormalizeUUID converts a UUID string to the lookup format: lowercase hex,
// no dashes, braces or 0x prefix. UUIDs built on the Bluetooth SIG base are
// shortened to their 16-bit form. Returns "" if the input is not a 16-, 32- or
// 128-bit UUID.
func NormalizeUUID(uuid string) string {
	s := strings.ToLower(strings.TrimSpace(uuid))
	s = strings.TrimPrefix(strings.TrimSuffix(s, "}"), "{")
	s = strings.TrimPrefix(s, "0x")
	s = strings.ReplaceAll(s, "-", "")

	switch len(s) {
	case 4, 8, 32:
	default:
		return ""
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return ""
		}
	}

	if len(s) == 32 && strings.HasPrefix(s, "0000") && strings.HasSuffix(s, sigBaseSuffix) {
		return s[4:8]
	}
	return s
}

// NormalizeUUIDs normalizes every UUID in uuids.
func NormalizeUUIDs(uuids []string) []string {
	out := make([]string, len(uuids))
	for i, u := range uuids {
		out[i] = NormalizeUUID(u)
	}
	return out
}

// LookupService returns the name of a SIG assigned service UUID.
func LookupService(uuid string) string {
	return services[NormalizeUUID(uuid)]
}

// LookupCompany returns the name of a SIG assigned company identifier.
func LookupCompany(id uint16) string {
	return companies[id]
}

// LookupAppearance returns the category name of an appearance value. The
// category is held in the upper ten bits.
func LookupAppearance(appearance uint16) string {
	return appearanceCategories[appearance>>6]
}

var services = map[string]string{
	"1800": "Generic Access",
	"1801": "Generic Attribute",
	"1802": "Immediate Alert",
	"1803": "Link Loss",
	"1804": "Tx Power",
	"1805": "Current Time Service",
	"1809": "Health Thermometer",
	"180a": "Device Information",
	"180d": "Heart Rate",
	"180f": "Battery Service",
	"1810": "Blood Pressure",
	"1812": "Human Interface Device",
	"1814": "Running Speed and Cadence",
	"1816": "Cycling Speed and Cadence",
	"1818": "Cycling Power",
	"1819": "Location and Navigation",
	"181a": "Environmental Sensing",
	"181c": "User Data",
	"181d": "Weight Scale",
	"1826": "Fitness Machine",
	"183b": "Binary Sensor",
	"fd6f": "Exposure Notification",
	"fe9f": "Google",
	"feaa": "Eddystone",
	"fef5": "Dialog Semiconductor",

	"6e400001b5a3f393e0a9e50e24dcca9e": "Nordic UART Service",
}

var companies = map[uint16]string{
	0x0000: "Ericsson AB",
	0x0002: "Intel Corp.",
	0x0006: "Microsoft",
	0x000A: "Qualcomm Technologies International, Ltd. (QTIL)",
	0x000D: "Texas Instruments Inc.",
	0x000F: "Broadcom Corporation",
	0x004C: "Apple, Inc.",
	0x0059: "Nordic Semiconductor ASA",
	0x0075: "Samsung Electronics Co. Ltd.",
	0x0087: "Garmin International, Inc.",
	0x00E0: "Google",
	0x0131: "Cypress Semiconductor",
	0x0157: "Anhui Huami Information Technology Co., Ltd.",
	0x02E5: "Espressif Systems (Shanghai) Co., Ltd.",
	0x038F: "Xiaomi Inc.",
	0x05A7: "Sonos Inc",
	0x0822: "Tesla, Inc.",
}

var appearanceCategories = map[uint16]string{
	0x000: "Unknown",
	0x001: "Phone",
	0x002: "Computer",
	0x003: "Watch",
	0x004: "Clock",
	0x005: "Display",
	0x006: "Remote Control",
	0x007: "Eye-glasses",
	0x008: "Tag",
	0x009: "Keyring",
	0x00A: "Media Player",
	0x00B: "Barcode Scanner",
	0x00C: "Thermometer",
	0x00D: "Heart Rate Sensor",
	0x00E: "Blood Pressure",
	0x00F: "Human Interface Device",
	0x010: "Glucose Meter",
	0x011: "Running Walking Sensor",
	0x012: "Cycling",
	0x015: "Light Fixtures",
	0x016: "Fan",
	0x01A: "Power Device",
	0x01B: "Light Source",
	0x020: "Motorized Device",
	0x031: "Pulse Oximeter",
	0x032: "Weight Scale",
	0x033: "Personal Mobility Device",
	0x034: "Continuous Glucose Monitor",
	0x035: "Insulin Pump",
	0x036: "Medication Delivery",
	0x037: "Spirometer",
	0x051: "Outdoor Sports Activity",
}
