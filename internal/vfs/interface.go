package vfs

import "context"

// Filesystem is the capability contract every NFSv3 back-end implements.
// internal/nfs3 calls only through this interface. Implementations are
// responsible for their own internal locking — handlers never hold a lock
// across a call into Filesystem that they did not take themselves.
//
// Every method takes a context.Context so a back-end whose storage is
// itself network-attached can respect cancellation; internal/server
// passes context.Background(), so it never cancels a call, and an
// in-flight call runs to completion even if the owning TCP connection is
// dropped.
type Filesystem interface {
	// Generation is a value stable for the lifetime of this Filesystem
	// instance, used to stamp every handle this instance issues.
	Generation() uint64

	// Capabilities reports whether this back-end accepts mutating calls.
	Capabilities() Capabilities

	// RootDir returns the file-id of the filesystem root.
	RootDir() uint64

	Lookup(ctx context.Context, dir uint64, name string) (uint64, error)
	GetAttr(ctx context.Context, id uint64) (Attr, error)
	SetAttr(ctx context.Context, id uint64, attr SetAttr) (Attr, error)

	Read(ctx context.Context, id uint64, offset uint64, count uint32) (data []byte, eof bool, err error)
	Write(ctx context.Context, id uint64, offset uint64, data []byte, stable StableHow) (Attr, StableHow, uint32, error)

	Create(ctx context.Context, dir uint64, name string, attr SetAttr) (uint64, Attr, error)
	CreateExclusive(ctx context.Context, dir uint64, name string, verifier [8]byte) (uint64, error)
	Mkdir(ctx context.Context, dir uint64, name string, attr SetAttr) (uint64, Attr, error)
	Symlink(ctx context.Context, dir uint64, name string, target string, attr SetAttr) (uint64, Attr, error)
	Mknod(ctx context.Context, dir uint64, name string, ftype FileType, spec SpecData, attr SetAttr) (uint64, Attr, error)
	Remove(ctx context.Context, dir uint64, name string) error
	Rename(ctx context.Context, fromDir uint64, fromName string, toDir uint64, toName string) error
	Link(ctx context.Context, file uint64, dir uint64, name string) (Attr, error)
	Readlink(ctx context.Context, id uint64) (string, error)

	Readdir(ctx context.Context, dir uint64, startAfterFileID uint64, maxEntries int) (ReadDirResult, error)
	ReaddirIndex(ctx context.Context, dir uint64, startIndex int, maxEntries int) (ReadDirResult, error)

	Commit(ctx context.Context, id uint64, offset uint64, count uint32) (Attr, error)
	FSInfo(ctx context.Context, id uint64) (FSInfo, error)
	FSStat(ctx context.Context, id uint64) (FSStat, error)
}

// DefaultFSInfo is the static fsinfo3 payload spec §4.I prescribes for
// back-ends that do not override FSInfo.
var DefaultFSInfo = FSInfo{
	RtMax:       1 << 20,
	RtPref:      1 << 20,
	RtMult:      4096,
	WtMax:       1 << 20,
	WtPref:      1 << 20,
	WtMult:      4096,
	DtPref:      1 << 20,
	MaxFileSize: 128 << 30,
	TimeDelta:   TimeSpec{Seconds: 0, Nseconds: 1_000_000},
	Properties:  FSFSymlink | FSFHomogeneous | FSFCanSetTime,
}
