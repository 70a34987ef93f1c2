// Package protocol implements the binary encoding of host tree mutations.
//
// Each commit of the renderer can be recorded as a CommitFrame: a sequence
// number, the render generation that produced it, and the ordered list of
// mutations (create, set/clear property, add/remove listener, append/remove
// child) addressed by node IDs. Frames are what the inspector streams to
// connected clients and what tests use to assert on exact commit output.
//
// # Encoding
//
// All integers are varints (protobuf style, 7 bits per byte). Strings are a
// varint length followed by UTF-8 bytes. A Frame adds a 6-byte header:
// type, flags and a big-endian uint32 payload length.
package protocol
