// Package quantize computes per-mesh attribute bounds and maps interleaved
// float32 attribute vectors to quantized unsigned 16-bit integers.
package quantize

import (
	"math"

	"github.com/arloliu/webglmesh/errs"
	"github.com/arloliu/webglmesh/format"
)

// Bounds tracks the running per-channel minima and maxima of an interleaved
// 8-float attribute vector (3 position, 2 texcoord, 3 normal).
type Bounds struct {
	Mins  [format.NumChannels]float32
	Maxes [format.NumChannels]float32
}

// NewBounds returns a Bounds initialized so the first EncloseAttrib call
// always widens it.
func NewBounds() *Bounds {
	b := &Bounds{}
	b.Clear()

	return b
}

// Clear resets the bounds to their initial, unenclosed state.
func (b *Bounds) Clear() {
	for i := range b.Mins {
		b.Mins[i] = math.MaxFloat32
		b.Maxes[i] = -math.MaxFloat32
	}
}

// EncloseAttrib widens the bounds to include one interleaved vertex's 8
// channel values. attrib must have at least format.NumChannels elements.
func (b *Bounds) EncloseAttrib(attrib []float32) {
	for i := 0; i < format.NumChannels; i++ {
		v := attrib[i]
		if b.Mins[i] > v {
			b.Mins[i] = v
		}
		if b.Maxes[i] < v {
			b.Maxes[i] = v
		}
	}
}

// Enclose widens the bounds to include every vertex in an interleaved
// attribute vector. Returns errs.ErrEmptyAttribs if attribs is not a
// positive multiple of format.NumChannels.
func (b *Bounds) Enclose(attribs []float32) error {
	if len(attribs) == 0 || len(attribs)%format.NumChannels != 0 {
		return errs.ErrEmptyAttribs
	}

	for i := 0; i < len(attribs); i += format.NumChannels {
		b.EncloseAttrib(attribs[i : i+format.NumChannels])
	}

	return nil
}

// UniformScale returns the maximum extent across the three position
// channels, used as the single shared position quantization scale.
func (b *Bounds) UniformScale() float32 {
	x := b.Maxes[0] - b.Mins[0]
	y := b.Maxes[1] - b.Mins[1]
	z := b.Maxes[2] - b.Mins[2]

	if x > y {
		if x > z {
			return x
		}
		return z
	}
	if y > z {
		return y
	}
	return z
}

// ChannelParams holds the quantization parameters for a single attribute
// channel.
type ChannelParams struct {
	Min          float32
	Scale        float32
	OutputMax    uint16
	DecodeOffset int32
	DecodeScale  float32
}

// BoundsParams holds the derived quantization parameters for all 8
// channels of the interleaved vertex format.
type BoundsParams struct {
	Channels [format.NumChannels]ChannelParams
}

// BoundsParamsFromBounds derives quantization parameters from Bounds.
// Position channels (0-2) share a uniform scale derived from bounds;
// texcoord channels (3-4) and normal channels (5-7) are locked to fixed
// ranges regardless of the observed bounds. Returns errs.ErrDegenerateBounds
// if the uniform position scale is zero.
func BoundsParamsFromBounds(b *Bounds) (BoundsParams, error) {
	var result BoundsParams

	scale := b.UniformScale()
	if scale == 0 {
		return result, errs.ErrDegenerateBounds
	}

	for i := 0; i < format.PositionChannelCount; i++ {
		result.Channels[i] = ChannelParams{
			Min:          b.Mins[i],
			Scale:        scale,
			OutputMax:    format.PositionMax,
			DecodeOffset: int32(float32(format.PositionMax) * b.Mins[i] / scale),
			DecodeScale:  scale / float32(format.PositionMax),
		}
	}

	for i := format.TexCoordChannelStart; i < format.TexCoordChannelStart+format.TexCoordChannelCount; i++ {
		result.Channels[i] = ChannelParams{
			Min:          0,
			Scale:        1,
			OutputMax:    format.TexCoordMax,
			DecodeOffset: 0,
			DecodeScale:  1.0 / float32(format.TexCoordMax),
		}
	}

	for i := format.NormalChannelStart; i < format.NormalChannelStart+format.NormalChannelCount; i++ {
		result.Channels[i] = ChannelParams{
			Min:          -1,
			Scale:        2,
			OutputMax:    format.NormalMax,
			DecodeOffset: format.NormalCenter,
			DecodeScale:  1.0 / float32(format.NormalHalfSpan),
		}
	}

	return result, nil
}
