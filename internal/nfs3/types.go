// Package nfs3 implements the NFS version 3 procedures, RFC 1813 §3.3,
// against a vfs.Filesystem back-end.
package nfs3

// ProgramNumber and Version identify NFSv3 on the RPC program/version pair.
const (
	ProgramNumber = 100003
	Version       = 3
)

// Procedure numbers, RFC 1813 §3.3.
const (
	ProcNull        = 0
	ProcGetAttr     = 1
	ProcSetAttr     = 2
	ProcLookup      = 3
	ProcAccess      = 4
	ProcReadlink    = 5
	ProcRead        = 6
	ProcWrite       = 7
	ProcCreate      = 8
	ProcMkdir       = 9
	ProcSymlink     = 10
	ProcMknod       = 11
	ProcRemove      = 12
	ProcRmdir       = 13
	ProcRename      = 14
	ProcLink        = 15
	ProcReaddir     = 16
	ProcReaddirPlus = 17
	ProcFsstat      = 18
	ProcFsinfo      = 19
	ProcPathconf    = 20
	ProcCommit      = 21
)

// Access mask bits, RFC 1813 §3.3.4.
const (
	AccessRead    uint32 = 0x0001
	AccessLookup  uint32 = 0x0002
	AccessModify  uint32 = 0x0004
	AccessExtend  uint32 = 0x0008
	AccessDelete  uint32 = 0x0010
	AccessExecute uint32 = 0x0020
)

// createverf3/cookieverf3/writeverf3 are all 8-byte opaque values.
const VerifierSize = 8

// CreateMode selects CREATE3args's createmode3 discriminant.
type CreateMode uint32

const (
	CreateUnchecked CreateMode = 0
	CreateGuarded   CreateMode = 1
	CreateExclusive CreateMode = 2
)
