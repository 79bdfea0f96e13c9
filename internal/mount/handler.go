package mount

import (
	"context"
	"errors"

	"github.com/lunixbochs/gonfsd/internal/vfs"
)

// ErrProcUnavail signals a procedure number this handler does not serve —
// DUMP(2) is deliberately unimplemented, and anything outside 0-5 is
// unrecognized.
var ErrProcUnavail = errors.New("mount: procedure unavailable")

// ErrGarbageArgs signals an argument payload that failed to decode.
var ErrGarbageArgs = errors.New("mount: garbage arguments")

// Handler serves the MOUNT procedures against one VFS root.
type Handler struct {
	codec       *vfs.Codec
	exportName  string
	mountEvents chan<- bool
}

// NewHandler builds a Handler resolving mounts against codec's filesystem,
// validating paths against exportName. mountEvents may be nil; if set, a
// successful MNT sends true and every UMNT/UMNTALL sends false, letting
// tests observe mount/unmount activity.
func NewHandler(codec *vfs.Codec, exportName string, mountEvents chan<- bool) *Handler {
	return &Handler{codec: codec, exportName: exportName, mountEvents: mountEvents}
}

// Handle dispatches one MOUNT call by procedure number, returning the
// XDR-encoded reply payload (the part of the RPC reply after the accepted
// success header).
func (h *Handler) Handle(ctx context.Context, proc uint32, clientAddr string, data []byte) ([]byte, error) {
	switch proc {
	case ProcNull:
		return nil, nil
	case ProcMnt:
		return h.mnt(ctx, data)
	case ProcUmnt:
		return h.umnt(data)
	case ProcUmntAll:
		return h.umntAll()
	case ProcExport:
		return encodeExportList(h.exportName), nil
	default:
		return nil, ErrProcUnavail
	}
}

func (h *Handler) mnt(ctx context.Context, data []byte) ([]byte, error) {
	dirpath, err := decodeDirpathRequest(data)
	if err != nil {
		return nil, ErrGarbageArgs
	}

	path, ok := canonicalizePath(dirpath, h.exportName)
	if !ok {
		return encodeMntReply(StatusErrNoEnt, nil, nil), nil
	}

	id, err := h.codec.PathToID(ctx, path)
	if err != nil {
		return encodeMntReply(StatusErrNoEnt, nil, nil), nil
	}

	h.sendMountEvent(true)
	fh := h.codec.IDToHandle(id)
	return encodeMntReply(StatusOK, fh, []uint32{AuthNull, AuthUnix}), nil
}

func (h *Handler) umnt(data []byte) ([]byte, error) {
	if _, err := decodeDirpathRequest(data); err != nil {
		return nil, ErrGarbageArgs
	}
	h.sendMountEvent(false)
	return nil, nil
}

func (h *Handler) umntAll() ([]byte, error) {
	h.sendMountEvent(false)
	return nil, nil
}

func (h *Handler) sendMountEvent(mounted bool) {
	if h.mountEvents == nil {
		return
	}
	select {
	case h.mountEvents <- mounted:
	default:
	}
}
