// Package webglmesh implements an offline compressor for triangle meshes:
// quantize float32 attributes to 16-bit fixed point, reorder triangles for
// the GPU's post-transform vertex cache, delta-code attributes and indices
// against a bounded edge history, and pack the result into a restricted
// UTF-8 alphabet. See SPEC_FULL.md for the full package layout.
//
// EncodeMesh is the top-level driver, grounded on
// original_source/utils/objcompress/main.cpp's two-pass structure: a first
// pass computes mesh-wide bounds, a second pass quantizes, optimizes,
// compresses, and packs each material's batches in turn.
package webglmesh

import (
	"fmt"

	"github.com/arloliu/webglmesh/edgecode"
	"github.com/arloliu/webglmesh/errs"
	"github.com/arloliu/webglmesh/format"
	"github.com/arloliu/webglmesh/internal/options"
	"github.com/arloliu/webglmesh/quantize"
	"github.com/arloliu/webglmesh/sink"
	"github.com/arloliu/webglmesh/vcache"
)

// Group names a contiguous range of a MaterialBatch's index list belonging
// to one OBJ group, carried through so the per-group bounding box can be
// emitted into the stream. Every group's box is written after all of the
// material's batches and recorded in the last batch's BatchRange.Groups.
type Group struct {
	Name        string
	IndexOffset int // offset into Indices, in index-array elements (a multiple of 3)
	IndexLength int // length in index-array elements (a multiple of 3)
}

// MaterialBatch is one material's share of the mesh: its own interleaved
// attribute pool, the triangle index list into that pool, and the OBJ
// groups partitioning the index list. This mirrors the original driver's
// per-material DrawMesh plus its GroupStart list.
type MaterialBatch struct {
	Material string
	Attribs  []float32 // interleaved, format.NumChannels floats per vertex
	Indices  []int32
	Groups   []Group
}

// Mesh is the external collaborator's (OBJ/MTL parser's) output: one mesh
// split into per-material batches sharing a single mesh-wide bounding box.
type Mesh struct {
	Batches []MaterialBatch
}

// GroupRange records where a group's six bounding-box codes landed in the
// material's stream.
type GroupRange struct {
	Name        string
	ByteOffset  int
	IndexLength int
}

// BatchRange records one optimized vcache.WebGLMesh batch's byte range
// within its material's stream (the packed delta buffer immediately
// followed by the packed code buffer, with no boundary marker between
// them), mirroring utils/objcompress/main.cpp's attribRange/indexRange
// bookkeeping adapted to this format's single interleaved UTF-8 stream.
type BatchRange struct {
	ByteOffset    int
	AttribCount   int // vertices
	TriangleCount int
	Groups        []GroupRange
}

// MaterialResult is the encoded output for a single material: its own
// self-contained UTF-8 stream plus the byte ranges needed to describe it in
// a sidecar document.
type MaterialResult struct {
	Material string
	Stream   []byte
	Batches  []BatchRange
}

// Result is the encoded output for an entire mesh.
type Result struct {
	BoundsParams quantize.BoundsParams
	Materials    []MaterialResult
}

type config struct {
	historyDepth int
}

// Option configures EncodeMesh and EncodeMaterialBatches.
type Option = options.Option[*config]

// WithHistoryDepth overrides the edge-caching compressor's backward scan
// depth (default format.EdgeHistorySize). Smaller values trade fewer edge
// matches for less scan work; it can never exceed format.EdgeHistorySize,
// since codes beyond that range would collide with the simple predictor's
// reserved code space.
func WithHistoryDepth(n int) Option {
	return options.New(func(cfg *config) error {
		if n <= 0 || n > format.EdgeHistorySize {
			return fmt.Errorf("webglmesh: history depth %d out of range (1..%d)", n, format.EdgeHistorySize)
		}
		cfg.historyDepth = n

		return nil
	})
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{historyDepth: format.EdgeHistorySize}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EncodeMesh computes a single mesh-wide bounding box across every
// material's attributes, then compresses each material batch against that
// shared quantization scale. Each material's UTF-8 stream is independent
// and self-contained, matching the original driver's one-output-file-per-
// material convention.
func EncodeMesh(mesh Mesh, opts ...Option) (*Result, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	bounds := quantize.NewBounds()
	for _, batch := range mesh.Batches {
		if len(batch.Attribs) == 0 {
			continue
		}
		if err := bounds.Enclose(batch.Attribs); err != nil {
			return nil, err
		}
	}

	boundsParams, err := quantize.BoundsParamsFromBounds(bounds)
	if err != nil {
		return nil, err
	}

	result := &Result{BoundsParams: boundsParams}
	for _, batch := range mesh.Batches {
		if len(batch.Indices) == 0 {
			continue
		}

		mr, err := encodeMaterialBatch(batch, boundsParams, cfg)
		if err != nil {
			return nil, fmt.Errorf("webglmesh: material %q: %w", batch.Material, err)
		}
		result.Materials = append(result.Materials, *mr)
	}

	return result, nil
}

// EncodeMaterialBatches encodes a single material's batch against an
// already-derived mesh-wide BoundsParams (as returned in a prior
// EncodeMesh's Result.BoundsParams), for callers that stream materials in
// independently rather than holding the whole Mesh in memory at once.
func EncodeMaterialBatches(batch MaterialBatch, params quantize.BoundsParams, opts ...Option) (*MaterialResult, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return encodeMaterialBatch(batch, params, cfg)
}

func encodeMaterialBatch(batch MaterialBatch, params quantize.BoundsParams, cfg *config) (*MaterialResult, error) {
	if len(batch.Indices)%3 != 0 {
		return nil, errs.ErrIndexListLength
	}

	quantized, release := quantize.AcquireQuantizedSlice(len(batch.Attribs) / format.NumChannels)
	defer release()
	quantize.AttribsToQuantized(batch.Attribs, params, quantized)

	optimizer, err := vcache.NewOptimizer(quantized)
	if err != nil {
		return nil, err
	}

	groups := batch.Groups
	if len(groups) == 0 {
		groups = []Group{{Name: "", IndexOffset: 0, IndexLength: len(batch.Indices)}}
	}
	for _, g := range groups {
		if g.IndexOffset < 0 || g.IndexLength < 0 || g.IndexOffset+g.IndexLength > len(batch.Indices) {
			return nil, errs.ErrIndexOutOfRange
		}
		if err := optimizer.AddTriangles(batch.Indices[g.IndexOffset : g.IndexOffset+g.IndexLength]); err != nil {
			return nil, err
		}
	}

	meshes := optimizer.Finish()

	s := sink.NewBufferSink()
	defer s.Close()
	mr := &MaterialResult{Material: batch.Material}

	for _, mesh := range meshes {
		byteOffset := s.Len()

		compressor, err := edgecode.NewCompressor(mesh)
		if err != nil {
			return nil, err
		}
		compressor.HistoryDepth = cfg.historyDepth
		compressor.Compress()
		if err := compressor.EmitTo(s); err != nil {
			return nil, fmt.Errorf("webglmesh: material %q: %w", batch.Material, err)
		}

		mr.Batches = append(mr.Batches, BatchRange{
			ByteOffset:    byteOffset,
			AttribCount:   compressor.NumVertices(),
			TriangleCount: compressor.NumTriangles(),
		})
	}

	for _, g := range groups {
		groupBounds := quantize.NewBounds()
		for i := g.IndexOffset; i < g.IndexOffset+g.IndexLength; i++ {
			v := batch.Indices[i]
			start := int(v) * format.NumChannels
			groupBounds.EncloseAttrib(batch.Attribs[start : start+format.NumChannels])
		}

		byteOffset := s.Len()
		ok, err := quantize.EncodeGroupBounds(groupBounds, params, s)
		if err != nil {
			return nil, fmt.Errorf("webglmesh: material %q: %w", batch.Material, err)
		}
		if !ok {
			return nil, fmt.Errorf("webglmesh: group %q bounding box exceeds utf8pack range", g.Name)
		}

		if len(mr.Batches) > 0 {
			last := &mr.Batches[len(mr.Batches)-1]
			last.Groups = append(last.Groups, GroupRange{
				Name:        g.Name,
				ByteOffset:  byteOffset,
				IndexLength: g.IndexLength / 3,
			})
		}
	}

	mr.Stream = append([]byte(nil), s.Bytes()...)

	return mr, nil
}
