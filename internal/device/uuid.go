package device

import (
	"encoding/hex"
	"fmt"

	"github.com/go-ble/ble"
	"github.com/srg/blescan/internal/bledb"
)

// NormalizeUUID is re-exported from bledb for convenience.
// It converts a UUID string to lowercase hex without dashes, braces or 0x
// prefix; UUIDs on the Bluetooth SIG base are shortened to 16 bits.
func NormalizeUUID(uuid string) string {
	return bledb.NormalizeUUID(uuid)
}

// ParseUUIDs parses service UUIDs given in any form NormalizeUUID accepts.
// Accepts one or more UUIDs as variadic arguments.
func ParseUUIDs(uuids ...string) ([]ble.UUID, error) {
	if len(uuids) == 0 {
		return nil, fmt.Errorf("at least one UUID is required")
	}

	result := make([]ble.UUID, 0, len(uuids))
	for i, uuid := range uuids {
		if uuid == "" {
			return nil, fmt.Errorf("UUID at index %d cannot be empty", i)
		}
		normalized := NormalizeUUID(uuid)
		if normalized == "" {
			return nil, fmt.Errorf("invalid UUID format at index %d: %s", i, uuid)
		}
		u, err := parseUUID(normalized)
		if err != nil {
			return nil, fmt.Errorf("invalid UUID format at index %d: %s: %w", i, uuid, err)
		}
		result = append(result, u)
	}
	return result, nil
}

// parseUUID accepts the 16, 32 and 128-bit forms. ble.Parse has no 32-bit
// form, so those are decoded here into the same little-endian layout.
func parseUUID(s string) (ble.UUID, error) {
	if len(s) != 8 {
		return ble.Parse(s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return ble.UUID(ble.Reverse(b)), nil
}
