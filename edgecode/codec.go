package edgecode

import (
	"math"

	"github.com/arloliu/webglmesh/errs"
	"github.com/arloliu/webglmesh/format"
	"github.com/arloliu/webglmesh/sink"
	"github.com/arloliu/webglmesh/utf8pack"
	"github.com/arloliu/webglmesh/vcache"
)

// predictedChannels is the number of leading channels (position + texcoord)
// that parallelogram/simple prediction applies to. Normal channels are
// filled entirely by the pre-pass and never touched by the triangle loop.
const predictedChannels = format.TexCoordChannelStart + format.TexCoordChannelCount

// ZigZag bijectively maps a signed 16-bit delta to an unsigned 16-bit code,
// placing small magnitudes near zero: 0->0, -1->1, 1->2, -2->3, and so on.
// It is the inverse of (x>>1) ^ -(x&1).
func ZigZag(x int16) uint16 {
	return uint16((x >> 15) ^ (x << 1))
}

// Compressor implements the edge-caching delta compressor over a single
// vcache.WebGLMesh batch. Triangle winding may be rewound in place to
// align a matched edge first; the attribute vector is never mutated.
type Compressor struct {
	attribs    []uint16
	indices    []uint16 // mutable copy of the batch's indices
	numAttribs int

	deltas []uint16 // channel-major, length 8*numAttribs
	codes  []uint16 // at most 3*numTriangles; an edge-matched triangle contributes 2

	highWater  uint16
	lastAttrib [format.NumChannels]uint16

	// HistoryDepth bounds how many index-array slots back the backward edge
	// scan reaches. Defaults to format.EdgeHistorySize; callers that know
	// their meshes have tighter locality can shrink it to cut scan cost, at
	// the expense of fewer edge matches. Must be set before Compress runs.
	HistoryDepth int
}

// NewCompressor copies mesh's index list (winding gets rewound during
// compression) and allocates the delta/code output buffers.
func NewCompressor(mesh vcache.WebGLMesh) (*Compressor, error) {
	if len(mesh.QuantizedAttribs) == 0 || len(mesh.QuantizedAttribs)%format.NumChannels != 0 {
		return nil, errs.ErrEmptyAttribs
	}
	if len(mesh.Indices)%3 != 0 {
		return nil, errs.ErrIndexListLength
	}

	indices := make([]uint16, len(mesh.Indices))
	copy(indices, mesh.Indices)

	return &Compressor{
		attribs:      mesh.QuantizedAttribs,
		indices:      indices,
		numAttribs:   len(mesh.QuantizedAttribs) / format.NumChannels,
		deltas:       make([]uint16, len(mesh.QuantizedAttribs)),
		codes:        make([]uint16, 0, len(mesh.Indices)),
		HistoryDepth: format.EdgeHistorySize,
	}, nil
}

// Compress runs the normal pre-pass followed by the main triangle loop and
// returns the channel-major delta buffer and the index/edge code buffer.
// The returned slices alias the Compressor's internal state.
func (c *Compressor) Compress() (deltas []uint16, codes []uint16) {
	c.predictNormals()

	for tsi := 0; tsi+3 <= len(c.indices); tsi += 3 {
		c.compressTriangle(tsi)
	}

	return c.deltas, c.codes
}

// NumVertices returns the vertex count of the batch this Compressor was
// built from.
func (c *Compressor) NumVertices() int { return c.numAttribs }

// NumTriangles returns the triangle count of the batch this Compressor was
// built from.
func (c *Compressor) NumTriangles() int { return len(c.indices) / 3 }

// predictNormals computes, for every vertex, the area-weighted average of
// its incident face normals and stores the zig-zag residue against the
// vertex's own quantized normal into deltas[5..7]. Positions and texcoords
// are left for compressTriangle to fill in.
func (c *Compressor) predictNormals() {
	crosses := make([]int32, 3*c.numAttribs)

	for t := 0; t+3 <= len(c.indices); t += 3 {
		i0, i1, i2 := int(c.indices[t]), int(c.indices[t+1]), int(c.indices[t+2])

		var e1, e2, cross [3]int32
		for j := 0; j < 3; j++ {
			e1[j] = int32(c.attribs[8*i1+j]) - int32(c.attribs[8*i0+j])
			e2[j] = int32(c.attribs[8*i2+j]) - int32(c.attribs[8*i0+j])
		}
		cross[0] = e1[1]*e2[2] - e1[2]*e2[1]
		cross[1] = e1[2]*e2[0] - e1[0]*e2[2]
		cross[2] = e1[0]*e2[1] - e1[1]*e2[0]

		for j := 0; j < 3; j++ {
			crosses[3*i0+j] += cross[j]
			crosses[3*i1+j] += cross[j]
			crosses[3*i2+j] += cross[j]
		}
	}

	const half = float32(format.NormalHalfSpan)

	for idx := 0; idx < c.numAttribs; idx++ {
		pnx := float32(crosses[3*idx+0])
		pny := float32(crosses[3*idx+1])
		pnz := float32(crosses[3*idx+2])
		pnorm := half / float32(math.Sqrt(float64(pnx*pnx+pny*pny+pnz*pnz)))
		pnx *= pnorm
		pny *= pnorm
		pnz *= pnorm

		nx := float32(c.attribs[8*idx+5]) - half
		ny := float32(c.attribs[8*idx+6]) - half
		nz := float32(c.attribs[8*idx+7]) - half
		norm := half / float32(math.Sqrt(float64(nx*nx+ny*ny+nz*nz)))
		nx *= norm
		ny *= norm
		nz *= norm

		c.deltas[5*c.numAttribs+idx] = ZigZag(int16(nx - pnx))
		c.deltas[6*c.numAttribs+idx] = ZigZag(int16(ny - pny))
		c.deltas[7*c.numAttribs+idx] = ZigZag(int16(nz - pnz))
	}
}

// compressTriangle processes the triangle at index-array offset tsi: it
// scans backward for a reusable edge and, failing that, falls back to the
// simple predictor.
func (c *Compressor) compressTriangle(tsi int) {
	i0, i1, i2 := c.indices[tsi], c.indices[tsi+1], c.indices[tsi+2]

	maxBackref := tsi
	if maxBackref > c.HistoryDepth {
		maxBackref = c.HistoryDepth
	}

	for backref := 3; backref <= maxBackref; backref += 3 {
		cs := tsi - backref
		j0, j1, j2 := c.indices[cs], c.indices[cs+1], c.indices[cs+2]

		switch {
		case j1 == i1 && j2 == i0:
			c.parallelogramPredictor(uint16(backref), j0, tsi)
		case j1 == i0 && j2 == i2:
			c.rotate(tsi, i2, i0, i1)
			c.parallelogramPredictor(uint16(backref), j0, tsi)
		case j1 == i2 && j2 == i1:
			c.rotate(tsi, i1, i2, i0)
			c.parallelogramPredictor(uint16(backref), j0, tsi)
		case j2 == i1 && j0 == i0:
			c.parallelogramPredictor(uint16(backref+1), j1, tsi)
		case j2 == i0 && j0 == i2:
			c.rotate(tsi, i2, i0, i1)
			c.parallelogramPredictor(uint16(backref+1), j1, tsi)
		case j2 == i2 && j0 == i1:
			c.rotate(tsi, i1, i2, i0)
			c.parallelogramPredictor(uint16(backref+1), j1, tsi)
		case j0 == i1 && j1 == i0:
			c.parallelogramPredictor(uint16(backref+2), j2, tsi)
		case j0 == i0 && j1 == i2:
			c.rotate(tsi, i2, i0, i1)
			c.parallelogramPredictor(uint16(backref+2), j2, tsi)
		case j0 == i2 && j1 == i1:
			c.rotate(tsi, i1, i2, i0)
			c.parallelogramPredictor(uint16(backref+2), j2, tsi)
		default:
			continue
		}

		return
	}

	c.simplePredictor(uint16(maxBackref), tsi)
}

func (c *Compressor) rotate(tsi int, v0, v1, v2 uint16) {
	c.indices[tsi], c.indices[tsi+1], c.indices[tsi+2] = v0, v1, v2
}

// parallelogramPredictor emits an edge-match code and, if the triangle's
// third vertex is new, predicts its position/texcoord channels as
// a[i0] + a[i1] - a[backrefVert] (the candidate's opposite vertex).
func (c *Compressor) parallelogramPredictor(backrefEdge uint16, backrefVert uint16, tsi int) {
	c.codes = append(c.codes, backrefEdge)

	i2 := c.indices[tsi+2]
	if !c.highwaterMark(i2, 0) {
		return
	}

	i0 := c.indices[tsi]
	i1 := c.indices[tsi+1]

	for j := 0; j < predictedChannels; j++ {
		orig := c.attribs[8*int(i2)+j]
		predicted := int32(c.attribs[8*int(i0)+j]) + int32(c.attribs[8*int(i1)+j]) - int32(c.attribs[8*int(backrefVert)+j])
		c.lastAttrib[j] = orig
		c.deltas[c.numAttribs*j+int(i2)] = ZigZag(int16(int32(orig) - predicted))
	}
}

// simplePredictor handles a triangle with no edge match: the first vertex
// predicts from lastAttrib, the second from the first vertex's attributes,
// and the third from the component-wise average of the first two.
func (c *Compressor) simplePredictor(maxBackref uint16, tsi int) {
	i0 := c.indices[tsi]
	i1 := c.indices[tsi+1]
	i2 := c.indices[tsi+2]

	if c.highwaterMark(i0, maxBackref) {
		c.encodeDeltaAttrib(i0, c.lastAttrib)
	}
	if c.highwaterMark(i1, 0) {
		var predicted [format.NumChannels]uint16
		copy(predicted[:], c.attribs[8*int(i0):8*int(i0)+format.NumChannels])
		c.encodeDeltaAttrib(i1, predicted)
	}
	if c.highwaterMark(i2, 0) {
		var avg [format.NumChannels]uint16
		for j := 0; j < format.NumChannels; j++ {
			avg[j] = uint16((int32(c.attribs[8*int(i0)+j]) + int32(c.attribs[8*int(i1)+j])) / 2)
		}
		c.lastAttrib = avg
		c.encodeDeltaAttrib(i2, avg)
	}
}

// encodeDeltaAttrib delta-codes index's position/texcoord channels against
// predicted and updates lastAttrib to index's full attribute vector.
func (c *Compressor) encodeDeltaAttrib(index uint16, predicted [format.NumChannels]uint16) {
	for j := 0; j < predictedChannels; j++ {
		delta := int32(c.attribs[8*int(index)+j]) - int32(predicted[j])
		c.deltas[c.numAttribs*j+int(index)] = ZigZag(int16(delta))
	}
	c.updateLastAttrib(index)
}

// highwaterMark emits the index code (distance from the high-water mark,
// offset by startCode) and advances the mark if index is newly seen.
// Otherwise it refreshes lastAttrib from index's attributes.
func (c *Compressor) highwaterMark(index uint16, startCode uint16) bool {
	c.codes = append(c.codes, c.highWater-index+startCode)

	if index == c.highWater {
		c.highWater++
		return true
	}

	c.updateLastAttrib(index)

	return false
}

func (c *Compressor) updateLastAttrib(index uint16) {
	copy(c.lastAttrib[:], c.attribs[8*int(index):8*int(index)+format.NumChannels])
}

// EmitTo writes deltas followed by codes to s through utf8pack.Pack. A
// delta that falls outside the packer's encodable range (the documented
// lossy fallback for texcoord channels under the locked bounds scale) is
// replaced with 0 rather than failing the whole stream. An unencodable
// index/edge code indicates the vertex-cache optimizer's batch cap was
// violated and is a fatal invariant break. A non-nil error is the sink's
// own write error (SinkError, spec.md §7), surfaced to the caller unchanged.
func (c *Compressor) EmitTo(s sink.Sink) error {
	for _, d := range c.deltas {
		ok, err := utf8pack.Pack(d, s)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := utf8pack.Pack(0, s); err != nil {
				return err
			}
		}
	}

	for _, code := range c.codes {
		ok, err := utf8pack.Pack(code, s)
		if err != nil {
			return err
		}
		if !ok {
			panic("edgecode: index/edge code exceeds utf8pack.MaxEncodable, batch cap was violated")
		}
	}

	return nil
}
