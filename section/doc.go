// Package section defines the fixed-size binary header for webglmesh's
// optional bundle container.
//
// # Bundle structure
//
//	┌─────────────────────────────────────────────┐
//	│ Header (32 bytes, fixed)                     │
//	│  - Flag (4 bytes): endianness/magic/compress │
//	│  - Reserved (4 bytes)                        │
//	│  - StreamOffset/StreamLength (8 bytes)       │
//	│  - SidecarOffset/SidecarLength (8 bytes)     │
//	│  - ContentHash (8 bytes, xxHash64)           │
//	├───────────────────────────────────────────────┤
//	│ Stream payload (variable, optionally compressed) │
//	├───────────────────────────────────────────────┤
//	│ Sidecar payload (variable, optionally compressed) │
//	└───────────────────────────────────────────────┘
//
// A bundle has exactly two payloads and no per-entry index: the canonical
// UTF-8 stream (see utf8pack/edgecode) and an opaque sidecar payload the
// caller supplies (typically their JSON sidecar document, serialized
// outside this module). Most callers should use the bundle package rather
// than section directly; this package only defines the wire layout.
package section
