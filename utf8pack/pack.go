// Package utf8pack implements the restricted-alphabet byte packer used to
// serialize 16-bit words as 1-3 byte UTF-8-shaped sequences, skewed to
// avoid the Unicode surrogate-pair range.
package utf8pack

import "github.com/arloliu/webglmesh/sink"

const (
	moreBytesPrefix = 0x80
	twoBytePrefix   = 0xC0
	threeBytePrefix = 0xE0

	twoByteLimit       = 0x0800
	surrogatePairStart = 0xD800
	surrogatePairSkew  = 0x0800
	encodableEnd       = 0xE000

	moreBytesMask = 0x3F
)

// MaxEncodable is the largest word Pack can encode, exclusive of the
// surrogate-pair reservation.
const MaxEncodable = encodableEnd - 1

// Pack writes word to sink as 1, 2, or 3 bytes depending on its magnitude,
// skewing values in the surrogate-pair range upward by 0x800 so the emitted
// bytes never form an illegal UTF-8 surrogate sequence. It returns
// ok == false without writing anything if word is too large to encode
// (>= 0xE000). A non-nil error is the sink's own write error and is
// surfaced to the caller unchanged; ok is meaningless when err != nil.
func Pack(word uint16, s sink.Sink) (ok bool, err error) {
	switch {
	case word < 0x80:
		if err := s.PutByte(byte(word)); err != nil {
			return false, err
		}

	case word < twoByteLimit:
		if err := s.PutByte(byte(twoBytePrefix + (word >> 6))); err != nil {
			return false, err
		}
		if err := s.PutByte(byte(moreBytesPrefix + (word & moreBytesMask))); err != nil {
			return false, err
		}

	case word < encodableEnd:
		v := word
		if v >= surrogatePairStart {
			v += surrogatePairSkew
		}
		if err := s.PutByte(byte(threeBytePrefix + (v >> 12))); err != nil {
			return false, err
		}
		if err := s.PutByte(byte(moreBytesPrefix + ((v >> 6) & moreBytesMask))); err != nil {
			return false, err
		}
		if err := s.PutByte(byte(moreBytesPrefix + (v & moreBytesMask))); err != nil {
			return false, err
		}

	default:
		return false, nil
	}

	return true, nil
}

// Unpack decodes a single packed word from the front of data, returning the
// decoded word, the number of bytes consumed, and whether decoding
// succeeded. It is the inverse of Pack and is primarily used by tests and
// diagnostic tooling; the browser-side runtime decoder is out of scope.
func Unpack(data []byte) (word uint16, n int, ok bool) {
	if len(data) == 0 {
		return 0, 0, false
	}

	b0 := data[0]
	switch {
	case b0 < moreBytesPrefix:
		return uint16(b0), 1, true

	case b0 < threeBytePrefix:
		if len(data) < 2 {
			return 0, 0, false
		}
		v := (uint16(b0&^twoBytePrefix) << 6) | uint16(data[1]&moreBytesMask)

		return v, 2, true

	case b0 < 0xF0:
		if len(data) < 3 {
			return 0, 0, false
		}
		v := (uint16(b0&^threeBytePrefix) << 12) |
			(uint16(data[1]&moreBytesMask) << 6) |
			uint16(data[2]&moreBytesMask)
		switch {
		case v >= encodableEnd+surrogatePairSkew:
			return 0, 0, false // beyond anything Pack ever emits
		case v >= encodableEnd:
			v -= surrogatePairSkew // unskew: was >= 0xD800 originally
		case v >= surrogatePairStart:
			return 0, 0, false // lands in the reserved surrogate range
		}

		return v, 3, true

	default:
		return 0, 0, false
	}
}
