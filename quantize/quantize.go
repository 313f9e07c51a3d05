package quantize

import (
	"github.com/arloliu/webglmesh/format"
	"github.com/arloliu/webglmesh/internal/pool"
	"github.com/arloliu/webglmesh/sink"
	"github.com/arloliu/webglmesh/utf8pack"
)

// Quantize maps a single float scalar to an unsigned 16-bit integer using
// the channel's affine parameters. No clamping is applied; callers are
// responsible for ensuring f falls within the range the BoundsParams were
// derived from.
func Quantize(f float32, chMin float32, chScale float32, outMax uint16) uint16 {
	return uint16(float32(outMax) * ((f - chMin) / chScale))
}

// AttribsToQuantized quantizes every channel of every vertex in an
// interleaved attribute vector. attribs must be a multiple of
// format.NumChannels in length; out receives the same length.
func AttribsToQuantized(attribs []float32, params BoundsParams, out []uint16) {
	for i := 0; i < len(attribs); i += format.NumChannels {
		for j := 0; j < format.NumChannels; j++ {
			ch := params.Channels[j]
			out[i+j] = Quantize(attribs[i+j], ch.Min, ch.Scale, ch.OutputMax)
		}
	}
}

// EncodeGroupBounds quantizes a sub-group's position bounding box against
// the mesh-wide position BoundsParams and writes six codes to s: the
// quantized minimum xyz, followed by the quantized extent xyz (max-min, not
// max itself, so the extent is always representable even when the group's
// box touches the mesh-wide maximum). ok is false if a code fell outside
// utf8pack's encodable range; err is the sink's own write error, surfaced
// unchanged.
func EncodeGroupBounds(group *Bounds, total BoundsParams, s sink.Sink) (ok bool, err error) {
	var mins, maxes [format.PositionChannelCount]uint16

	for i := 0; i < format.PositionChannelCount; i++ {
		ch := total.Channels[i]
		mins[i] = Quantize(group.Mins[i], ch.Min, ch.Scale, ch.OutputMax)
		maxes[i] = Quantize(group.Maxes[i], ch.Min, ch.Scale, ch.OutputMax)
	}

	for i := 0; i < format.PositionChannelCount; i++ {
		ok, err := utf8pack.Pack(mins[i], s)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	for i := 0; i < format.PositionChannelCount; i++ {
		ok, err := utf8pack.Pack(maxes[i]-mins[i], s)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// AcquireQuantizedSlice borrows a pooled uint16 slice sized for an
// interleaved attribute vector of the given vertex count, plus a cleanup
// function the caller must invoke once done.
func AcquireQuantizedSlice(vertexCount int) ([]uint16, func()) {
	return pool.GetUint16Slice(vertexCount * format.NumChannels)
}
