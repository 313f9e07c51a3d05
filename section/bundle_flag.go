package section

import (
	"github.com/arloliu/webglmesh/endian"
	"github.com/arloliu/webglmesh/errs"
)

// BundleFlag is the packed field for the bundle header's endianness,
// format identification, and compression choice.
type BundleFlag struct {
	// Options packs endianness (bit 1), reserved bits (2-3), and the magic
	// number (bits 4-15) that identifies this as a webglmesh bundle.
	Options uint16

	// Compression identifies the codec applied to the stream+sidecar
	// payloads (section.CompressionNone/Zstd/S2/LZ4).
	Compression uint8

	// Reserved is padding, must be 0.
	Reserved uint8
}

var validCompressions = map[uint8]struct{}{
	CompressionNone: {},
	CompressionZstd: {},
	CompressionS2:   {},
	CompressionLZ4:  {},
}

// NewBundleFlag creates a BundleFlag with the bundle magic number set,
// little-endian byte order, and no compression.
func NewBundleFlag() BundleFlag {
	flag := BundleFlag{
		Options:     MagicBundleV1,
		Compression: CompressionNone,
	}
	flag.WithLittleEndian()

	return flag
}

// IsLittleEndian returns whether the header's multi-byte fields are
// little-endian.
func (f BundleFlag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the header's multi-byte fields are
// big-endian.
func (f BundleFlag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *BundleFlag) WithLittleEndian() {
	f.Options &= ^uint16(EndiannessMask)
}

// WithBigEndian sets big-endian byte order.
func (f *BundleFlag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// GetMagicNumber returns the magic number from the Options field.
func (f BundleFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// IsValidMagicNumber reports whether the magic number identifies a
// webglmesh bundle.
func (f BundleFlag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicBundleV1
}

// IsValidCompression reports whether Compression is a recognized value.
func (f BundleFlag) IsValidCompression() bool {
	_, ok := validCompressions[f.Compression]

	return ok
}

// Validate checks that the flag's magic number and compression choice are
// recognized.
func (f BundleFlag) Validate() error {
	if !f.IsValidMagicNumber() {
		return errs.ErrInvalidHeaderFlags
	}

	if !f.IsValidCompression() {
		return errs.ErrInvalidHeaderFlags
	}

	return nil
}

// GetEndianEngine returns the endian.EndianEngine matching this flag's
// byte order.
func (f BundleFlag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}
