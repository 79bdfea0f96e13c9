// Package vfs defines the capability contract (RFC 1813's file-object model,
// generalized to a back-end-agnostic uint64 file-id) that every NFSv3
// back-end must satisfy, plus the opaque file-handle codec built on top of
// it. internal/nfs3 calls only through this package; it never knows whether
// the data lives in memory, on local disk, or anywhere else.
package vfs

// FileType mirrors RFC 1813's ftype3.
type FileType uint32

const (
	TypeReg FileType = iota + 1
	TypeDir
	TypeBlk
	TypeChr
	TypeLnk
	TypeSock
	TypeFifo
)

// TimeSpec is RFC 1813's nfstime3: seconds and nanoseconds since the epoch.
type TimeSpec struct {
	Seconds  uint32
	Nseconds uint32
}

// SpecData is RFC 1813's specdata3, meaningful only for TypeChr/TypeBlk.
type SpecData struct {
	Major uint32
	Minor uint32
}

// Attr is RFC 1813's fattr3: the full attribute set returned by GETATTR and
// embedded in post_op_attr.
type Attr struct {
	Type   FileType
	Mode   uint32
	Nlink  uint32
	UID    uint32
	GID    uint32
	Size   uint64
	Used   uint64
	Rdev   SpecData
	Fsid   uint64
	FileID uint64
	Atime  TimeSpec
	Mtime  TimeSpec
	Ctime  TimeSpec
}

// WccAttr is RFC 1813's pre_op_attr payload: the subset of Attr cheap enough
// to snapshot before a mutating call so the post-image can be compared
// against it.
type WccAttr struct {
	Size  uint64
	Mtime TimeSpec
	Ctime TimeSpec
}

// SetableTime selects how an atime/mtime SETATTR field was supplied, mirroring
// RFC 1813's set_mtime/set_atime unions (DONT_CHANGE / SET_TO_SERVER_TIME /
// SET_TO_CLIENT_TIME).
type SetableTime int

const (
	TimeDontChange SetableTime = iota
	TimeSetToServer
	TimeSetToClient
)

// SetAttr is RFC 1813's sattr3: every field is independently optional, so a
// SETATTR call touches only what the client actually supplied.
type SetAttr struct {
	Mode     *uint32
	UID      *uint32
	GID      *uint32
	Size     *uint64
	AtimeSet SetableTime
	Atime    TimeSpec
	MtimeSet SetableTime
	Mtime    TimeSpec
}

// StableHow is RFC 1813's stable_how: how durably a WRITE must land before
// the server may reply.
type StableHow uint32

const (
	Unstable StableHow = iota
	DataSync
	FileSync
)

// Capabilities reports what a back-end permits; NFSv3 handlers consult it to
// decide whether a mutating call should even reach the back-end.
type Capabilities uint32

const (
	ReadOnly Capabilities = iota
	ReadWrite
)

// DirEntry is one entry of a ReadDirResult: RFC 1813's entry3 (plain
// READDIR) generalized with the post-op attributes READDIRPLUS
// additionally needs; NFSv3 handlers drop Attr for plain READDIR, and
// READDIRPLUS derives each entry's handle from FileID.
type DirEntry struct {
	FileID uint64
	Name   string
	Attr   *Attr
}

// ReadDirResult is what Filesystem.Readdir/ReaddirIndex returns: the
// directory slice starting at the requested position, and whether that
// slice reaches the end of the directory.
type ReadDirResult struct {
	Entries []DirEntry
	EOF     bool
}

// FSInfo is RFC 1813's fsinfo3 payload (minus the leading post_op_attr,
// which the NFSv3 handler attaches itself).
type FSInfo struct {
	RtMax       uint32
	RtPref      uint32
	RtMult      uint32
	WtMax       uint32
	WtPref      uint32
	WtMult      uint32
	DtPref      uint32
	MaxFileSize uint64
	TimeDelta   TimeSpec
	Properties  uint32
}

// FSInfo.Properties bits (RFC 1813 FSF3_*).
const (
	FSFLink uint32 = 1 << iota
	FSFSymlink
	FSFHomogeneous
	FSFCanSetTime
)

// FSStat is RFC 1813's fsstat3 payload (minus the leading post_op_attr).
type FSStat struct {
	TBytes   uint64
	FBytes   uint64
	ABytes   uint64
	TFiles   uint64
	FFiles   uint64
	AFiles   uint64
	Invarsec uint32
}
