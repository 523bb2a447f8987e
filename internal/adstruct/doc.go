// Package adstruct decodes the Advertising Data (AD) carried by BLE
// advertisement reports.
//
// An AD payload is a sequence of length-prefixed, type-tagged structures:
//
//	| length (1) | type (1) | data (length-1) | length (1) | type (1) | ...
//
// Structures walks that sequence, Decode turns each structure into one or more
// Fields, and Packet builds payloads for tests and tools. Malformed structures
// are skipped and the walk resynchronizes on the next length byte; none of the
// functions in this package return errors.
package adstruct
