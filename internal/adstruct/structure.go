package adstruct

import "iter"

// Structure is a single AD structure. Data excludes the length and type octets
// and aliases the payload it was read from.
type Structure struct {
	Type Type
	Data []byte
}

// Structures yields the well-formed AD structures of payload in payload order.
//
// A structure is skipped when its length octet is 0 or 1 (no data), or when the
// declared length would overrun the payload or the 31-octet frame. The cursor
// always advances by the declared length, so a bad structure never desynchronizes
// the walk.
func Structures(payload []byte) iter.Seq[Structure] {
	return func(yield func(Structure) bool) {
		pos := 0
		for pos < len(payload) {
			length := int(payload[pos])
			pos++

			end := pos + length
			if length > 1 && end <= MaxPayloadLength && end <= len(payload) {
				s := Structure{
					Type: Type(payload[pos]),
					Data: payload[pos+1 : end : end],
				}
				if !yield(s) {
					return
				}
			}

			pos = end
		}
	}
}
