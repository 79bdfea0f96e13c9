package nfs3

import (
	"context"

	"github.com/lunixbochs/gonfsd/internal/vfs"
)

// Handler serves the NFSv3 procedures against one VFS back-end, sharing the
// teacher's one-struct-many-procedures shape (its *Handler carries a
// *runtime.Runtime; this one carries a vfs.Filesystem and its handle codec,
// since this project has no multi-share registry to look up).
type Handler struct {
	fs    vfs.Filesystem
	codec *vfs.Codec
}

// NewHandler builds a Handler serving fs, deriving a handle codec from it.
func NewHandler(fs vfs.Filesystem) *Handler {
	return &Handler{fs: fs, codec: vfs.NewCodec(fs)}
}

// serverID returns the write/commit verifier: the server generation as an
// 8-byte opaque value.
func (h *Handler) serverID() [8]byte {
	return h.codec.ServerID()
}

// resolve decodes an opaque handle to a file-id.
func (h *Handler) resolve(fh []byte) (uint64, error) {
	return h.codec.FhToID(fh)
}

// postOpAttr fetches an object's attributes for a post_op_attr field,
// returning nil (absent) rather than propagating an error — a directory
// that vanished mid-operation should not turn a real result into a bare
// protocol error.
func (h *Handler) postOpAttr(ctx context.Context, id uint64) *vfs.Attr {
	attr, err := h.fs.GetAttr(ctx, id)
	if err != nil {
		return nil
	}
	return &attr
}

// preOpAttr snapshots a directory's wcc_attr before a mutating call.
func (h *Handler) preOpAttr(ctx context.Context, dir uint64) *vfs.WccAttr {
	attr, err := h.fs.GetAttr(ctx, dir)
	if err != nil {
		return nil
	}
	return wccAttrOf(attr)
}
