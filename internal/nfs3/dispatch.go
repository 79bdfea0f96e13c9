package nfs3

import (
	"context"
	"errors"
)

// ErrGarbageArgs signals a request payload that failed to decode.
var ErrGarbageArgs = errors.New("nfs3: garbage arguments")

// Handle dispatches one NFSv3 call by procedure number, returning the
// XDR-encoded reply payload that follows the RPC success header.
func (h *Handler) Handle(ctx context.Context, proc uint32, data []byte) ([]byte, error) {
	switch proc {
	case ProcNull:
		return nil, nil
	case ProcGetAttr:
		return h.getattr(ctx, data)
	case ProcSetAttr:
		return h.setattr(ctx, data)
	case ProcLookup:
		return h.lookup(ctx, data)
	case ProcAccess:
		return h.access(ctx, data)
	case ProcReadlink:
		return h.readlink(ctx, data)
	case ProcRead:
		return h.read(ctx, data)
	case ProcWrite:
		return h.write(ctx, data)
	case ProcCreate:
		return h.create(ctx, data)
	case ProcMkdir:
		return h.mkdir(ctx, data)
	case ProcSymlink:
		return h.symlink(ctx, data)
	case ProcMknod:
		return h.mknod(ctx, data)
	case ProcRemove:
		return h.remove(ctx, data)
	case ProcRmdir:
		return h.rmdir(ctx, data)
	case ProcRename:
		return h.rename(ctx, data)
	case ProcLink:
		return h.link(ctx, data)
	case ProcReaddir:
		return h.readdir(ctx, data)
	case ProcReaddirPlus:
		return h.readdirplus(ctx, data)
	case ProcFsstat:
		return h.fsstat(ctx, data)
	case ProcFsinfo:
		return h.fsinfo(ctx, data)
	case ProcPathconf:
		return h.pathconf(ctx, data)
	case ProcCommit:
		return h.commit(ctx, data)
	default:
		return nil, ErrGarbageArgs
	}
}
