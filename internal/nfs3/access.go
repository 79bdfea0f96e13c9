package nfs3

import "github.com/lunixbochs/gonfsd/internal/vfs"

// computeAccess implements the ACCESS grant rule (spec §4.I.ACCESS): start
// from LOOKUP (the object exists, so it can always be looked up), then
// widen by object type and the back-end's write capability. Real
// permission checks are left to a back-end that wants to tighten this.
func computeAccess(ftype vfs.FileType, caps vfs.Capabilities, requested uint32) uint32 {
	granted := AccessLookup

	switch ftype {
	case vfs.TypeReg:
		granted |= AccessRead | AccessExecute
		if caps == vfs.ReadWrite {
			granted |= AccessModify | AccessExtend | AccessDelete
		}
	case vfs.TypeDir:
		granted |= AccessRead | AccessExecute
		if caps == vfs.ReadWrite {
			granted |= AccessModify | AccessExtend | AccessDelete
		}
	case vfs.TypeLnk:
		granted |= AccessRead
	default:
		granted |= AccessRead | AccessExecute
	}

	return granted & requested
}
