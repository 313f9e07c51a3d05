// Package vcache implements the Forsyth linear-speed vertex-cache
// optimizer: it consumes quantized triangles and reorders them for a
// 32-entry FIFO vertex-transform cache, splitting the output into
// WebGLMesh batches whose indices stay below format.MaxOutputIndex.
package vcache

import (
	"math"

	"github.com/arloliu/webglmesh/errs"
	"github.com/arloliu/webglmesh/format"
)

const (
	lastTriScore = 0.75
	scaler       = 1.0

	unassignedIndex = 0xFFFF
)

// WebGLMesh is a single optimized batch: a quantized attribute vector and
// an index list into it, with every index below format.MaxOutputIndex and
// in high-water-mark order.
type WebGLMesh struct {
	QuantizedAttribs []uint16
	Indices          []uint16
}

type vertexState struct {
	faces       []int32
	cacheTag    int
	score       float64
	outputIndex uint16
}

type triangleState struct {
	v      [3]int32
	active bool
}

// Optimizer runs the vertex-cache optimization over one material's
// quantized attribute vector. A single Optimizer may receive multiple
// AddTriangles calls (one per OBJ group range sharing this material); the
// output batch boundaries do not need to align with group boundaries.
type Optimizer struct {
	attribs    []uint16
	vertices   []vertexState
	cache      []int32
	nextUnused uint16
	triangles  []triangleState

	batch WebGLMesh
	done  []WebGLMesh
}

// NewOptimizer creates an Optimizer over a quantized, interleaved attribute
// vector. attribs must be a multiple of format.NumChannels in length.
func NewOptimizer(attribs []uint16) (*Optimizer, error) {
	if len(attribs) == 0 || len(attribs)%format.NumChannels != 0 {
		return nil, errs.ErrEmptyAttribs
	}

	n := len(attribs) / format.NumChannels
	vertices := make([]vertexState, n)
	for i := range vertices {
		vertices[i].outputIndex = unassignedIndex
		vertices[i].cacheTag = format.CacheNotPresent
	}

	return &Optimizer{
		attribs:  attribs,
		vertices: vertices,
		cache:    make([]int32, 0, format.VertexCacheSize),
	}, nil
}

func cacheScore(pos int) float64 {
	if pos == format.CacheNotPresent {
		return 0
	}
	if pos < 2 {
		return lastTriScore
	}

	const cacheSize = float64(format.VertexCacheSize)
	x := (cacheSize - float64(pos)) / (cacheSize - 3)

	return math.Pow(x, 1.5) * scaler
}

func valenceBoost(remainingFaces int) float64 {
	if remainingFaces <= 0 {
		return 0
	}

	return 2 * math.Pow(float64(remainingFaces), -0.5)
}

func (o *Optimizer) updateScore(v int32) {
	vs := &o.vertices[v]
	vs.score = cacheScore(vs.cacheTag) + valenceBoost(len(vs.faces))
}

func (o *Optimizer) triangleScore(tri int32) float64 {
	t := &o.triangles[tri]

	return o.vertices[t.v[0]].score + o.vertices[t.v[1]].score + o.vertices[t.v[2]].score
}

// findBestTriangle looks for the highest-scoring active triangle among the
// faces of recently touched vertices, falling back to a full scan when
// that candidate set yields nothing. Ties are broken by lowest triangle
// index regardless of which path found the winner.
func (o *Optimizer) findBestTriangle(touched []int32) int32 {
	best := int32(-1)
	bestScore := 0.0
	considered := make(map[int32]bool)

	consider := func(tri int32) {
		if !o.triangles[tri].active || considered[tri] {
			return
		}
		considered[tri] = true

		sc := o.triangleScore(tri)
		if best == -1 || sc > bestScore || (sc == bestScore && tri < best) {
			best = tri
			bestScore = sc
		}
	}

	for _, v := range touched {
		for _, f := range o.vertices[v].faces {
			consider(f)
		}
	}

	if best == -1 {
		for i := range o.triangles {
			consider(int32(i))
		}
	}

	return best
}

func (o *Optimizer) closeBatch() {
	if len(o.batch.Indices) > 0 {
		o.done = append(o.done, o.batch)
	}
	o.batch = WebGLMesh{}
	o.nextUnused = 0
	for i := range o.vertices {
		o.vertices[i].outputIndex = unassignedIndex
	}
}

func (o *Optimizer) emit(tri int32) {
	t := &o.triangles[tri]

	newCount := 0
	for _, v := range t.v {
		if o.vertices[v].outputIndex == unassignedIndex {
			newCount++
		}
	}
	if int(o.nextUnused)+newCount > format.MaxOutputIndex {
		o.closeBatch()
	}

	var outIdx [3]uint16
	for i, v := range t.v {
		vs := &o.vertices[v]
		if vs.outputIndex == unassignedIndex {
			vs.outputIndex = o.nextUnused
			o.nextUnused++
			start := int(v) * format.NumChannels
			o.batch.QuantizedAttribs = append(o.batch.QuantizedAttribs, o.attribs[start:start+format.NumChannels]...)
		}
		outIdx[i] = vs.outputIndex
	}
	o.batch.Indices = append(o.batch.Indices, outIdx[0], outIdx[1], outIdx[2])
}

func (o *Optimizer) removeFace(tri int32) {
	t := &o.triangles[tri]
	t.active = false

	for _, v := range t.v {
		faces := o.vertices[v].faces
		for i, f := range faces {
			if f == tri {
				faces[i] = faces[len(faces)-1]
				faces = faces[:len(faces)-1]

				break
			}
		}
		o.vertices[v].faces = faces
	}
}

// updateCache prepends the triangle's three vertices to the front of the
// cache, evicting anything pushed past format.VertexCacheSize, and returns
// every vertex whose cache position or eviction status changed this step.
func (o *Optimizer) updateCache(tri int32) []int32 {
	t := &o.triangles[tri]
	in3 := func(v int32) bool { return v == t.v[0] || v == t.v[1] || v == t.v[2] }

	newCache := make([]int32, 0, format.VertexCacheSize)
	newCache = append(newCache, t.v[0], t.v[1], t.v[2])

	var evicted []int32
	for _, v := range o.cache {
		if in3(v) {
			continue
		}
		if len(newCache) < format.VertexCacheSize {
			newCache = append(newCache, v)
		} else {
			evicted = append(evicted, v)
		}
	}
	o.cache = newCache

	for pos, v := range o.cache {
		o.vertices[v].cacheTag = pos
	}
	for _, v := range evicted {
		o.vertices[v].cacheTag = format.CacheNotPresent
	}

	touched := make([]int32, 0, len(o.cache)+len(evicted))
	touched = append(touched, o.cache...)
	touched = append(touched, evicted...)
	for _, v := range touched {
		o.updateScore(v)
	}

	return touched
}

// AddTriangles feeds one more range of triangle indices into the
// optimizer, fully draining it (emitting every newly active triangle,
// closing batches as the index cap demands) before returning.
func (o *Optimizer) AddTriangles(indices []int32) error {
	if len(indices)%3 != 0 {
		return errs.ErrIndexListLength
	}

	n := int32(len(o.vertices))
	touched := make([]int32, 0, len(indices))

	for i := 0; i < len(indices); i += 3 {
		var tri triangleState
		tri.v = [3]int32{indices[i], indices[i+1], indices[i+2]}
		for _, v := range tri.v {
			if v < 0 || v >= n {
				return errs.ErrIndexOutOfRange
			}
		}
		tri.active = true

		idx := int32(len(o.triangles))
		o.triangles = append(o.triangles, tri)
		for _, v := range tri.v {
			o.vertices[v].faces = append(o.vertices[v].faces, idx)
			touched = append(touched, v)
		}
	}

	for _, v := range touched {
		o.updateScore(v)
	}

	for {
		best := o.findBestTriangle(touched)
		if best < 0 {
			break
		}

		o.emit(best)
		o.removeFace(best)
		touched = o.updateCache(best)
	}

	return nil
}

// Finish flushes the in-progress batch (if non-empty) and returns every
// completed WebGLMesh batch produced so far.
func (o *Optimizer) Finish() []WebGLMesh {
	if len(o.batch.Indices) > 0 {
		o.done = append(o.done, o.batch)
		o.batch = WebGLMesh{}
	}

	return o.done
}
