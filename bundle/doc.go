// Package bundle packages a mesh's canonical UTF-8 stream together with a
// caller-supplied sidecar payload (typically the JSON descriptor an OBJ/MTL
// driver produces alongside it) into a single optionally-compressed
// container: section.BundleHeader followed by the two payloads.
//
// The container is purely an at-rest/transit convenience. It never touches
// the canonical stream format itself, which spec.md defines as
// framing-free and must round-trip unmodified through Write/Read when
// format.CompressionNone is selected.
//
// Grounded on utils/objcompress/main.cpp's SimpleHash-named-output
// convention (reimplemented here with xxhash instead of the original's
// 32-bit hash) and the teacher's blob.NumericEncoder.Finish() pattern of
// computing a header once a payload's final size is known.
package bundle
