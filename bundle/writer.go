package bundle

import (
	"fmt"

	"github.com/arloliu/webglmesh/compress"
	"github.com/arloliu/webglmesh/errs"
	"github.com/arloliu/webglmesh/format"
	"github.com/arloliu/webglmesh/internal/hash"
	"github.com/arloliu/webglmesh/internal/options"
	"github.com/arloliu/webglmesh/internal/pool"
	"github.com/arloliu/webglmesh/section"
)

type config struct {
	compression format.CompressionType
}

// Option configures Write.
type Option = options.Option[*config]

// WithCompression selects the codec applied to both payloads. Defaults to
// format.CompressionNone (the payloads are stored as-is after the header).
func WithCompression(c format.CompressionType) Option {
	return options.New(func(cfg *config) error {
		if _, err := compress.GetCodec(c); err != nil {
			return err
		}
		cfg.compression = c

		return nil
	})
}

// Bundle is a parsed container: its header plus the decompressed stream and
// sidecar payloads.
type Bundle struct {
	Header  section.BundleHeader
	Stream  []byte
	Sidecar []byte
}

// Write packages stream (the bytes EmitTo wrote for a mesh) and sidecar
// (caller-supplied, opaque to this package) into a single container:
// a 32-byte section.BundleHeader followed by the two, optionally
// compressed, payloads back to back.
func Write(stream, sidecar []byte, opts ...Option) ([]byte, error) {
	cfg := &config{compression: format.CompressionNone}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	digest := pool.GetBundleBuffer()
	defer pool.PutBundleBuffer(digest)
	digest.MustWrite(stream)
	digest.MustWrite(sidecar)
	contentHash := hash.ID(string(digest.Bytes()))

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	compressedStream, err := codec.Compress(stream)
	if err != nil {
		return nil, fmt.Errorf("bundle: compress stream: %w", err)
	}
	compressedSidecar, err := codec.Compress(sidecar)
	if err != nil {
		return nil, fmt.Errorf("bundle: compress sidecar: %w", err)
	}

	header := section.NewBundleHeader()
	header.Flag.Compression = uint8(cfg.compression)
	header.StreamOffset = section.HeaderSize
	header.StreamLength = uint32(len(compressedStream))
	header.SidecarOffset = header.StreamOffset + header.StreamLength
	header.SidecarLength = uint32(len(compressedSidecar))
	header.ContentHash = contentHash

	out := make([]byte, 0, int(header.SidecarOffset)+len(compressedSidecar))
	out = append(out, header.Bytes()...)
	out = append(out, compressedStream...)
	out = append(out, compressedSidecar...)

	return out, nil
}

// Read parses a container produced by Write and decompresses both payloads
// according to the header's recorded compression choice.
func Read(data []byte) (*Bundle, error) {
	header, err := section.ParseBundleHeader(data)
	if err != nil {
		return nil, err
	}

	streamEnd := int(header.StreamOffset) + int(header.StreamLength)
	sidecarEnd := int(header.SidecarOffset) + int(header.SidecarLength)
	if streamEnd > len(data) || sidecarEnd > len(data) {
		return nil, errs.ErrInvalidHeaderSize
	}

	codec, err := compress.GetCodec(format.CompressionType(header.Flag.Compression))
	if err != nil {
		return nil, err
	}

	stream, err := codec.Decompress(data[header.StreamOffset:streamEnd])
	if err != nil {
		return nil, fmt.Errorf("bundle: decompress stream: %w", err)
	}
	sidecar, err := codec.Decompress(data[header.SidecarOffset:sidecarEnd])
	if err != nil {
		return nil, fmt.Errorf("bundle: decompress sidecar: %w", err)
	}

	return &Bundle{Header: header, Stream: stream, Sidecar: sidecar}, nil
}

// Filename returns the content-addressed output name a bundle should be
// written under: the lowercase hex content hash plus ext, mirroring
// utils/objcompress/main.cpp's ToHex(SimpleHash(...))+"."+argv[2] naming,
// reimplemented with the xxHash64 digest already carried in the header.
func Filename(header section.BundleHeader, ext string) string {
	return fmt.Sprintf("%016x.%s", header.ContentHash, ext)
}
