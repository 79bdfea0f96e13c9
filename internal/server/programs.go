package server

import (
	"github.com/lunixbochs/gonfsd/internal/mount"
	"github.com/lunixbochs/gonfsd/internal/nfs3"
	"github.com/lunixbochs/gonfsd/internal/portmap"
)

// Program/version numbers this dispatcher knows about, aliased from each
// program's own package so the routing table and the handlers it calls
// can never drift apart.
const (
	nfs3Program    = nfs3.ProgramNumber
	nfs3Version    = nfs3.Version
	mountProgram   = mount.ProgramNumber
	mountVersion   = mount.Version
	portmapProgram = portmap.ProgramNumber
	portmapVersion = portmap.Version
)

// Real, registered NFS-family program numbers this server deliberately
// does not implement. Routing them to prog_unavail rather than letting
// them fall through the default case documents that the omission is
// intentional.
const (
	nfsACLProgram      = 100227
	nfsIDMapProgram    = 100270
	nfsLocalIOProgram  = 400122
	nfsMetadataProgram = 200024
)

// nfsProcName labels NFSv3 procedures for metrics; procedureName labels a
// procedure outside RFC 1813 §3.3's range "UNKNOWN", and nfs3.Handler then
// rejects that call with garbage_args.
var nfsProcName = map[uint32]string{
	nfs3.ProcNull:        "NULL",
	nfs3.ProcGetAttr:     "GETATTR",
	nfs3.ProcSetAttr:     "SETATTR",
	nfs3.ProcLookup:      "LOOKUP",
	nfs3.ProcAccess:      "ACCESS",
	nfs3.ProcReadlink:    "READLINK",
	nfs3.ProcRead:        "READ",
	nfs3.ProcWrite:       "WRITE",
	nfs3.ProcCreate:      "CREATE",
	nfs3.ProcMkdir:       "MKDIR",
	nfs3.ProcSymlink:     "SYMLINK",
	nfs3.ProcMknod:       "MKNOD",
	nfs3.ProcRemove:      "REMOVE",
	nfs3.ProcRmdir:       "RMDIR",
	nfs3.ProcRename:      "RENAME",
	nfs3.ProcLink:        "LINK",
	nfs3.ProcReaddir:     "READDIR",
	nfs3.ProcReaddirPlus: "READDIRPLUS",
	nfs3.ProcFsstat:      "FSSTAT",
	nfs3.ProcFsinfo:      "FSINFO",
	nfs3.ProcPathconf:    "PATHCONF",
	nfs3.ProcCommit:      "COMMIT",
}

func procedureName(proc uint32) string {
	if name, ok := nfsProcName[proc]; ok {
		return name
	}
	return "UNKNOWN"
}
