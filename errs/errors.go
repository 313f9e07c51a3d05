// Package errs defines the sentinel errors returned across webglmesh's
// packages, so callers can compare with errors.Is instead of parsing
// message strings.
package errs

import "errors"

var (
	// ErrDegenerateBounds is returned by quantize.BoundsParamsFromBounds when
	// a mesh's position channels have zero extent on every axis, making the
	// uniform position scale zero and quantization undefined.
	ErrDegenerateBounds = errors.New("webglmesh: degenerate bounds, uniform position scale is zero")

	// ErrEmptyAttribs is returned when an attribute vector's length is not a
	// positive multiple of the interleaved 8-float vertex stride.
	ErrEmptyAttribs = errors.New("webglmesh: attribute vector length is not a positive multiple of 8")

	// ErrIndexOutOfRange is returned when an input triangle index list
	// references a vertex beyond the attribute vector's vertex count.
	ErrIndexOutOfRange = errors.New("webglmesh: triangle index out of range")

	// ErrIndexListLength is returned when an input index list's length is
	// not a multiple of 3.
	ErrIndexListLength = errors.New("webglmesh: index list length is not a multiple of 3")

	// ErrInvalidHeaderSize is returned by section.BundleHeader.Parse when the
	// input is not exactly section.HeaderSize bytes.
	ErrInvalidHeaderSize = errors.New("webglmesh: invalid bundle header size")

	// ErrInvalidHeaderFlags is returned when a parsed bundle header's magic
	// number or compression type fields are not recognized.
	ErrInvalidHeaderFlags = errors.New("webglmesh: invalid bundle header flags")

	// ErrUnsupportedCompression is returned by compress.CreateCodec and
	// compress.GetCodec for a format.CompressionType with no registered
	// codec.
	ErrUnsupportedCompression = errors.New("webglmesh: unsupported compression type")

	// ErrSinkClosed is returned when a Sink is written to after Close.
	ErrSinkClosed = errors.New("webglmesh: sink is closed")
)
