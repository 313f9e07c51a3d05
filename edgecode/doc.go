// Package edgecode implements the edge-caching attribute/index compressor:
// the 45% component of the core pipeline. It consumes a single
// vcache.WebGLMesh batch and produces two parallel 16-bit word streams — a
// channel-major delta buffer for attributes and an operation-code buffer
// for indices — ready for utf8pack.Pack.
//
// Index triangles are walked in input order. For each triangle, a bounded
// backward scan looks for a shared edge among the last EdgeHistorySize
// index-array slots; a match triggers parallelogram prediction of the
// triangle's new vertex and an edge-match code. Otherwise the triangle
// falls back to a simple predictor keyed off the monotonic high-water
// mark of distinct vertices seen so far.
package edgecode
