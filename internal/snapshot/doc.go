// Package snapshot implements the JSON envelope used to persist an
// execution.Frozen to disk and load it back (spec §6.5). Because
// graph.Task is an opaque, caller-supplied value with no serialization
// contract of its own, the envelope carries only a digest of the graph's
// structural shape (keys, dependency edges, StructureNode/TaskNode kind)
// plus the status map — never the shape itself or a reconstructible Task. Loading a snapshot therefore
// always takes the caller's own in-memory *graph.Graph and verifies it
// against the snapshot's structural digest, rather than deserializing a
// graph from scratch.
package snapshot
