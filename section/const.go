package section

import "math"

const (
	// Bit masks for BundleFlag.Options.
	EndiannessMask   = 0x0002 // 0=little-endian, 1=big-endian
	ReservedBitsMask = 0x000C // bits 2-3, must be 0
	MagicNumberMask  = 0xFFF0 // bits 4-15, format identifier

	// MagicBundleV1 identifies a version-1 webglmesh bundle container.
	MagicBundleV1 = 0xEC10
)

// Compression identifies the single codec applied to both of the bundle
// container's payloads (the stream bytes and the sidecar bytes, each
// compressed separately), mirroring format.CompressionType.
const (
	CompressionNone = uint8(1)
	CompressionZstd = uint8(2)
	CompressionS2   = uint8(3)
	CompressionLZ4  = uint8(4)
)

// offset and section sizes in the bundle file
const (
	HeaderSize    = 32             // fixed header size, shared by every bundle
	MaxPayloadLen = math.MaxUint32 // largest representable stream or sidecar length
)
