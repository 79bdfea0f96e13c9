// Package mount implements the MOUNT protocol, RFC 1813 Appendix I: the
// companion to NFSv3 that hands a client its first file handle.
package mount

// ProgramNumber and Version identify MOUNT on the RPC program/version pair
// carried by every rpcbind/portmap registration and RPC call.
const (
	ProgramNumber = 100005
	Version       = 3
)

// Procedure numbers, RFC 1813 Appendix I.
const (
	ProcNull     = 0
	ProcMnt      = 1
	ProcDump     = 2
	ProcUmnt     = 3
	ProcUmntAll  = 4
	ProcExport   = 5
)

// Status is the mountstat3 result code carried in an MNT reply.
type Status uint32

const (
	StatusOK           Status = 0
	StatusErrPerm      Status = 1
	StatusErrNoEnt     Status = 2
	StatusErrIO        Status = 5
	StatusErrAccess    Status = 13
	StatusErrNotDir    Status = 20
	StatusErrInval     Status = 22
	StatusErrNameTooLong Status = 63
	StatusErrNotSupp   Status = 10004
	StatusErrServerFault Status = 10006
)

// AuthFlavor values advertised in a successful MNT reply.
const (
	AuthNull = 0
	AuthUnix = 1
)
