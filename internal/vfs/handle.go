package vfs

import (
	"context"
	"encoding/binary"
)

// HandleSize is the wire size of an opaque file handle: an 8-byte
// little-endian generation stamp followed by an 8-byte little-endian
// file-id.
const HandleSize = 16

// EncodeHandle builds the opaque handle bytes for (generation, fileID).
func EncodeHandle(generation, fileID uint64) []byte {
	buf := make([]byte, HandleSize)
	binary.LittleEndian.PutUint64(buf[0:8], generation)
	binary.LittleEndian.PutUint64(buf[8:16], fileID)
	return buf
}

// DecodeHandle splits a wire handle back into its generation and file-id,
// without checking the generation against the server's current one — that
// comparison is Codec.FhToID's job, since only it knows the live
// generation.
func DecodeHandle(fh []byte) (generation, fileID uint64, err error) {
	if len(fh) != HandleSize {
		return 0, 0, NewError(ErrBadHandle, nil)
	}
	return binary.LittleEndian.Uint64(fh[0:8]), binary.LittleEndian.Uint64(fh[8:16]), nil
}

// Codec resolves opaque handles against one Filesystem's generation stamp
// (invariant I1: every handle that decodes successfully carries the
// server's current generation).
type Codec struct {
	fs         Filesystem
	generation uint64
}

// NewCodec creates a Codec bound to fs, capturing fs.Generation() once.
func NewCodec(fs Filesystem) *Codec {
	return &Codec{fs: fs, generation: fs.Generation()}
}

// IDToHandle encodes a file-id as an opaque handle under this codec's
// generation.
func (c *Codec) IDToHandle(fileID uint64) []byte {
	return EncodeHandle(c.generation, fileID)
}

// FhToID decodes fh and enforces I1: a generation older than the server's
// current one is STALE (the file predates a restart and may no longer
// exist under that id); a generation newer is BADHANDLE (it could not
// possibly have been issued by this server instance); wrong length is
// BADHANDLE.
func (c *Codec) FhToID(fh []byte) (uint64, error) {
	generation, fileID, err := DecodeHandle(fh)
	if err != nil {
		return 0, err
	}
	switch {
	case generation < c.generation:
		return 0, NewError(ErrStale, nil)
	case generation > c.generation:
		return 0, NewError(ErrBadHandle, nil)
	}
	return fileID, nil
}

// PathToID walks path component-by-component via Filesystem.Lookup,
// starting at the filesystem's root directory.
func (c *Codec) PathToID(ctx context.Context, path string) (uint64, error) {
	id := c.fs.RootDir()
	for _, name := range splitPath(path) {
		next, err := c.fs.Lookup(ctx, id, name)
		if err != nil {
			return 0, err
		}
		id = next
	}
	return id, nil
}

// ServerID returns the 8-byte little-endian server generation, used as the
// NFSv3 write verifier.
func (c *Codec) ServerID() [8]byte {
	var id [8]byte
	binary.LittleEndian.PutUint64(id[:], c.generation)
	return id
}

// splitPath breaks a "/"-delimited path into non-empty components.
func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i > start {
				parts = append(parts, path[start:i])
			}
			start = i + 1
		}
	}
	return parts
}
