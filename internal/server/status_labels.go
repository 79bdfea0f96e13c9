package server

import (
	"fmt"

	"github.com/lunixbochs/gonfsd/internal/rpc"
	"github.com/lunixbochs/gonfsd/internal/vfs"
)

// acceptStatNames labels the RPC-level outcomes a reply can carry besides
// SUCCESS, for metrics where "this call never reached the NFSv3 handler"
// is itself a useful status to distinguish from an nfsstat3 failure.
var acceptStatNames = map[uint32]string{
	rpc.ProgUnavail:  "RPC_PROG_UNAVAIL",
	rpc.ProgMismatch: "RPC_PROG_MISMATCH",
	rpc.ProcUnavail:  "RPC_PROC_UNAVAIL",
	rpc.GarbageArgs:  "RPC_GARBAGE_ARGS",
	rpc.SystemErr:    "RPC_SYSTEM_ERR",
}

func acceptStatName(stat uint32) string {
	if name, ok := acceptStatNames[stat]; ok {
		return name
	}
	return fmt.Sprintf("RPC_%d", stat)
}

// nfsStatusNames labels nfsstat3 values (RFC 1813 §2.6) for metrics.
// vfs.Status has no String method of its own — that mapping belongs to
// the wire-facing layer, not the storage contract.
var nfsStatusNames = map[vfs.Status]string{
	vfs.OK:             "OK",
	vfs.ErrPerm:        "ERR_PERM",
	vfs.ErrNoEnt:       "ERR_NOENT",
	vfs.ErrIO:          "ERR_IO",
	vfs.ErrNxio:        "ERR_NXIO",
	vfs.ErrAccess:      "ERR_ACCES",
	vfs.ErrExist:       "ERR_EXIST",
	vfs.ErrXdev:        "ERR_XDEV",
	vfs.ErrNodev:       "ERR_NODEV",
	vfs.ErrNotDir:      "ERR_NOTDIR",
	vfs.ErrIsDir:       "ERR_ISDIR",
	vfs.ErrInval:       "ERR_INVAL",
	vfs.ErrFbig:        "ERR_FBIG",
	vfs.ErrNoSpc:       "ERR_NOSPC",
	vfs.ErrRofs:        "ERR_ROFS",
	vfs.ErrMlink:       "ERR_MLINK",
	vfs.ErrNameTooLong: "ERR_NAMETOOLONG",
	vfs.ErrNotEmpty:    "ERR_NOTEMPTY",
	vfs.ErrDquot:       "ERR_DQUOT",
	vfs.ErrStale:       "ERR_STALE",
	vfs.ErrRemote:      "ERR_REMOTE",
	vfs.ErrBadHandle:   "ERR_BADHANDLE",
	vfs.ErrNotSync:     "ERR_NOT_SYNC",
	vfs.ErrBadCookie:   "ERR_BAD_COOKIE",
	vfs.ErrNotSupp:     "ERR_NOTSUPP",
	vfs.ErrTooSmall:    "ERR_TOOSMALL",
	vfs.ErrServerFault: "ERR_SERVERFAULT",
	vfs.ErrBadType:     "ERR_BADTYPE",
	vfs.ErrJukebox:     "ERR_JUKEBOX",
}

func nfsStatusName(status vfs.Status) string {
	if name, ok := nfsStatusNames[status]; ok {
		return name
	}
	return fmt.Sprintf("ERR_%d", status)
}
