package section

import (
	"github.com/arloliu/webglmesh/errs"
)

// BundleHeader is the fixed 32-byte header of the optional bundle
// container that packages a mesh's UTF-8 stream together with a
// caller-supplied sidecar payload (see the bundle package). Unlike the
// canonical UTF-8 stream itself, which spec.md defines as framing-free,
// the bundle is a webglmesh-specific at-rest/transit format with exactly
// two payload sections and no per-entry index.
type BundleHeader struct {
	// StreamOffset/StreamLength locate the (possibly compressed) UTF-8
	// stream bytes within the bundle.
	StreamOffset uint32 // byte offset 8-11
	StreamLength uint32 // byte offset 12-15

	// SidecarOffset/SidecarLength locate the (possibly compressed) opaque
	// sidecar payload the caller passed to bundle.Write.
	SidecarOffset uint32 // byte offset 16-19
	SidecarLength uint32 // byte offset 20-23

	// ContentHash is the xxHash64 digest of the uncompressed stream bytes
	// followed by the uncompressed sidecar bytes, computed by the bundle
	// writer for content-addressed naming and at-rest integrity checks.
	ContentHash uint64 // byte offset 24-31

	// Reserved is padding for future use, always 0 in this version.
	Reserved uint32 // byte offset 4-7

	// Flag packs endianness, the format magic number, and the
	// compression choice. byte offset 0-3
	Flag BundleFlag
}

// NewBundleHeader creates a BundleHeader with a fresh BundleFlag. Offsets,
// lengths, and the content hash are populated by bundle.Write once the
// payload sizes are known.
func NewBundleHeader() *BundleHeader {
	return &BundleHeader{Flag: NewBundleFlag()}
}

// Parse parses a header from exactly HeaderSize bytes.
func (h *BundleHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Flag.Compression = data[2]
	h.Flag.Reserved = data[3]

	engine := h.Flag.GetEndianEngine()

	h.Reserved = engine.Uint32(data[4:8])
	h.StreamOffset = engine.Uint32(data[8:12])
	h.StreamLength = engine.Uint32(data[12:16])
	h.SidecarOffset = engine.Uint32(data[16:20])
	h.SidecarLength = engine.Uint32(data[20:24])
	h.ContentHash = engine.Uint64(data[24:32])

	return h.Flag.Validate()
}

// Bytes serializes the header into HeaderSize bytes.
func (h *BundleHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)

	engine := h.Flag.GetEndianEngine()

	engine.PutUint16(b[0:2], h.Flag.Options)
	b[2] = h.Flag.Compression
	b[3] = h.Flag.Reserved
	engine.PutUint32(b[4:8], h.Reserved)
	engine.PutUint32(b[8:12], h.StreamOffset)
	engine.PutUint32(b[12:16], h.StreamLength)
	engine.PutUint32(b[16:20], h.SidecarOffset)
	engine.PutUint32(b[20:24], h.SidecarLength)
	engine.PutUint64(b[24:32], h.ContentHash)

	return b
}

// ParseBundleHeader parses a BundleHeader from a byte slice of at least
// HeaderSize bytes.
func ParseBundleHeader(data []byte) (BundleHeader, error) {
	if len(data) < HeaderSize {
		return BundleHeader{}, errs.ErrInvalidHeaderSize
	}

	h := BundleHeader{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return BundleHeader{}, err
	}

	return h, nil
}
