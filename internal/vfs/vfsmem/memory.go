// Package vfsmem is an in-memory vfs.Filesystem: a demonstration back-end
// that keeps every file's metadata and content as Go values behind one
// mutex, for tests and for running the server without a real storage
// layer wired in.
package vfsmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lunixbochs/gonfsd/internal/vfs"
)

type child struct {
	name string
	id   uint64
}

type node struct {
	id      uint64
	ftype   vfs.FileType
	mode    uint32
	uid     uint32
	gid     uint32
	nlink   uint32
	size    uint64
	rdev    vfs.SpecData
	atime   vfs.TimeSpec
	mtime   vfs.TimeSpec
	ctime   vfs.TimeSpec
	data    []byte
	target  string
	order   []child // directory children, creation order (drives cookie stability)
	byName  map[string]uint64
	verifs  map[string][8]byte // pending CREATE-EXCLUSIVE verifiers, by name
}

func (n *node) attr() vfs.Attr {
	return vfs.Attr{
		Type:   n.ftype,
		Mode:   n.mode,
		Nlink:  n.nlink,
		UID:    n.uid,
		GID:    n.gid,
		Size:   n.size,
		Used:   n.size,
		Rdev:   n.rdev,
		Fsid:   1,
		FileID: n.id,
		Atime:  n.atime,
		Mtime:  n.mtime,
		Ctime:  n.ctime,
	}
}

// FS is an in-memory vfs.Filesystem.
type FS struct {
	mu         sync.RWMutex
	generation uint64
	caps       vfs.Capabilities
	nodes      map[uint64]*node
	nextID     uint64
}

// New creates an empty filesystem with a single root directory (file-id 1)
// and the given capability.
func New(caps vfs.Capabilities) *FS {
	now := nowStamp()
	root := &node{
		id:     1,
		ftype:  vfs.TypeDir,
		mode:   0o755,
		nlink:  2,
		atime:  now,
		mtime:  now,
		ctime:  now,
		byName: make(map[string]uint64),
	}
	return &FS{
		generation: uint64(time.Now().UnixMilli()),
		caps:       caps,
		nodes:      map[uint64]*node{1: root},
		nextID:     2,
	}
}

func nowStamp() vfs.TimeSpec {
	t := time.Now()
	return vfs.TimeSpec{Seconds: uint32(t.Unix()), Nseconds: uint32(t.Nanosecond())}
}

func (fs *FS) Generation() uint64            { return fs.generation }
func (fs *FS) Capabilities() vfs.Capabilities { return fs.caps }
func (fs *FS) RootDir() uint64                { return 1 }

func (fs *FS) get(id uint64) (*node, error) {
	n, ok := fs.nodes[id]
	if !ok {
		return nil, vfs.NewError(vfs.ErrNoEnt, nil)
	}
	return n, nil
}

func (fs *FS) getDir(id uint64) (*node, error) {
	n, err := fs.get(id)
	if err != nil {
		return nil, err
	}
	if n.ftype != vfs.TypeDir {
		return nil, vfs.NewError(vfs.ErrNotDir, nil)
	}
	return n, nil
}

func (fs *FS) Lookup(ctx context.Context, dir uint64, name string) (uint64, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	d, err := fs.getDir(dir)
	if err != nil {
		return 0, err
	}
	id, ok := d.byName[name]
	if !ok {
		return 0, vfs.NewError(vfs.ErrNoEnt, nil)
	}
	return id, nil
}

func (fs *FS) GetAttr(ctx context.Context, id uint64) (vfs.Attr, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	n, err := fs.get(id)
	if err != nil {
		return vfs.Attr{}, err
	}
	return n.attr(), nil
}

func (fs *FS) SetAttr(ctx context.Context, id uint64, attr vfs.SetAttr) (vfs.Attr, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.get(id)
	if err != nil {
		return vfs.Attr{}, err
	}
	if attr.Mode != nil {
		n.mode = *attr.Mode
	}
	if attr.UID != nil {
		n.uid = *attr.UID
	}
	if attr.GID != nil {
		n.gid = *attr.GID
	}
	if attr.Size != nil {
		n.size = *attr.Size
		if uint64(len(n.data)) > n.size {
			n.data = n.data[:n.size]
		} else if uint64(len(n.data)) < n.size {
			grown := make([]byte, n.size)
			copy(grown, n.data)
			n.data = grown
		}
	}
	switch attr.AtimeSet {
	case vfs.TimeSetToClient:
		n.atime = attr.Atime
	case vfs.TimeSetToServer:
		n.atime = nowStamp()
	}
	switch attr.MtimeSet {
	case vfs.TimeSetToClient:
		n.mtime = attr.Mtime
	case vfs.TimeSetToServer:
		n.mtime = nowStamp()
	}
	n.ctime = nowStamp()
	return n.attr(), nil
}

func (fs *FS) Read(ctx context.Context, id uint64, offset uint64, count uint32) ([]byte, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	n, err := fs.get(id)
	if err != nil {
		return nil, false, err
	}
	if n.ftype != vfs.TypeReg {
		return nil, false, vfs.NewError(vfs.ErrInval, nil)
	}
	if offset >= uint64(len(n.data)) {
		return nil, true, nil
	}
	end := offset + uint64(count)
	if end > uint64(len(n.data)) {
		end = uint64(len(n.data))
	}
	data := make([]byte, end-offset)
	copy(data, n.data[offset:end])
	return data, end == uint64(len(n.data)), nil
}

func (fs *FS) Write(ctx context.Context, id uint64, offset uint64, data []byte, stable vfs.StableHow) (vfs.Attr, vfs.StableHow, uint32, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.get(id)
	if err != nil {
		return vfs.Attr{}, stable, 0, err
	}
	if n.ftype != vfs.TypeReg {
		return vfs.Attr{}, stable, 0, vfs.NewError(vfs.ErrInval, nil)
	}
	end := offset + uint64(len(data))
	if end > uint64(len(n.data)) {
		grown := make([]byte, end)
		copy(grown, n.data)
		n.data = grown
	}
	copy(n.data[offset:end], data)
	n.size = uint64(len(n.data))
	n.mtime = nowStamp()
	n.ctime = n.mtime
	return n.attr(), vfs.FileSync, uint32(len(data)), nil
}

func (fs *FS) newNode(ftype vfs.FileType, mode uint32, attr vfs.SetAttr) *node {
	id := fs.nextID
	fs.nextID++
	now := nowStamp()
	n := &node{id: id, ftype: ftype, mode: mode, nlink: 1, atime: now, mtime: now, ctime: now}
	if ftype == vfs.TypeDir {
		n.byName = make(map[string]uint64)
		n.nlink = 2
	}
	if attr.Mode != nil {
		n.mode = *attr.Mode
	}
	if attr.UID != nil {
		n.uid = *attr.UID
	}
	if attr.GID != nil {
		n.gid = *attr.GID
	}
	fs.nodes[id] = n
	return n
}

func (fs *FS) link(dir *node, name string, id uint64) {
	if _, exists := dir.byName[name]; !exists {
		dir.order = append(dir.order, child{name: name, id: id})
	}
	dir.byName[name] = id
	dir.mtime = nowStamp()
	dir.ctime = dir.mtime
}

func (fs *FS) Create(ctx context.Context, dir uint64, name string, attr vfs.SetAttr) (uint64, vfs.Attr, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d, err := fs.getDir(dir)
	if err != nil {
		return 0, vfs.Attr{}, err
	}
	if _, ok := d.byName[name]; ok {
		return 0, vfs.Attr{}, vfs.NewError(vfs.ErrExist, nil)
	}
	n := fs.newNode(vfs.TypeReg, 0o644, attr)
	fs.link(d, name, n.id)
	return n.id, n.attr(), nil
}

func (fs *FS) CreateExclusive(ctx context.Context, dir uint64, name string, verifier [8]byte) (uint64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d, err := fs.getDir(dir)
	if err != nil {
		return 0, err
	}
	if d.verifs == nil {
		d.verifs = make(map[string][8]byte)
	}
	if existing, ok := d.byName[name]; ok {
		if prior, seen := d.verifs[name]; seen && prior == verifier {
			return existing, nil
		}
		return 0, vfs.NewError(vfs.ErrExist, nil)
	}
	n := fs.newNode(vfs.TypeReg, 0o644, vfs.SetAttr{})
	fs.link(d, name, n.id)
	d.verifs[name] = verifier
	return n.id, nil
}

func (fs *FS) Mkdir(ctx context.Context, dir uint64, name string, attr vfs.SetAttr) (uint64, vfs.Attr, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d, err := fs.getDir(dir)
	if err != nil {
		return 0, vfs.Attr{}, err
	}
	if _, ok := d.byName[name]; ok {
		return 0, vfs.Attr{}, vfs.NewError(vfs.ErrExist, nil)
	}
	n := fs.newNode(vfs.TypeDir, 0o755, attr)
	fs.link(d, name, n.id)
	return n.id, n.attr(), nil
}

func (fs *FS) Symlink(ctx context.Context, dir uint64, name, target string, attr vfs.SetAttr) (uint64, vfs.Attr, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d, err := fs.getDir(dir)
	if err != nil {
		return 0, vfs.Attr{}, err
	}
	if _, ok := d.byName[name]; ok {
		return 0, vfs.Attr{}, vfs.NewError(vfs.ErrExist, nil)
	}
	n := fs.newNode(vfs.TypeLnk, 0o777, attr)
	n.target = target
	n.size = uint64(len(target))
	fs.link(d, name, n.id)
	return n.id, n.attr(), nil
}

func (fs *FS) Mknod(ctx context.Context, dir uint64, name string, ftype vfs.FileType, spec vfs.SpecData, attr vfs.SetAttr) (uint64, vfs.Attr, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d, err := fs.getDir(dir)
	if err != nil {
		return 0, vfs.Attr{}, err
	}
	if _, ok := d.byName[name]; ok {
		return 0, vfs.Attr{}, vfs.NewError(vfs.ErrExist, nil)
	}
	mode := uint32(0o644)
	if ftype == vfs.TypeDir {
		mode = 0o755
	}
	n := fs.newNode(ftype, mode, attr)
	n.rdev = spec
	fs.link(d, name, n.id)
	return n.id, n.attr(), nil
}

// Remove implements the VFS contract's single remove(dir, name) operation,
// which backs both REMOVE and RMDIR: the NFSv3 handler layer has already
// checked the target's type against the procedure it is serving (REMOVE
// rejects directories, RMDIR rejects non-directories) before calling this,
// so Remove only needs to enforce that a directory be empty.
func (fs *FS) Remove(ctx context.Context, dir uint64, name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d, err := fs.getDir(dir)
	if err != nil {
		return err
	}
	id, ok := d.byName[name]
	if !ok {
		return vfs.NewError(vfs.ErrNoEnt, nil)
	}
	n, err := fs.get(id)
	if err != nil {
		return err
	}
	if n.ftype == vfs.TypeDir && len(n.byName) != 0 {
		return vfs.NewError(vfs.ErrNotEmpty, nil)
	}
	fs.unlink(d, name)
	n.nlink--
	if n.ftype == vfs.TypeDir || n.nlink == 0 {
		delete(fs.nodes, id)
	}
	return nil
}

func (fs *FS) unlink(dir *node, name string) {
	delete(dir.byName, name)
	delete(dir.verifs, name)
	for i, c := range dir.order {
		if c.name == name {
			dir.order = append(dir.order[:i], dir.order[i+1:]...)
			break
		}
	}
	dir.mtime = nowStamp()
	dir.ctime = dir.mtime
}

func (fs *FS) Rename(ctx context.Context, fromDir uint64, fromName string, toDir uint64, toName string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	from, err := fs.getDir(fromDir)
	if err != nil {
		return err
	}
	to, err := fs.getDir(toDir)
	if err != nil {
		return err
	}
	id, ok := from.byName[fromName]
	if !ok {
		return vfs.NewError(vfs.ErrNoEnt, nil)
	}
	if existingID, exists := to.byName[toName]; exists {
		existing, err := fs.get(existingID)
		if err == nil && existing.ftype == vfs.TypeDir && len(existing.byName) != 0 {
			return vfs.NewError(vfs.ErrNotEmpty, nil)
		}
		fs.unlink(to, toName)
	}
	fs.unlink(from, fromName)
	fs.link(to, toName, id)
	return nil
}

func (fs *FS) Link(ctx context.Context, file uint64, dir uint64, name string) (vfs.Attr, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.get(file)
	if err != nil {
		return vfs.Attr{}, err
	}
	if n.ftype == vfs.TypeDir {
		return vfs.Attr{}, vfs.NewError(vfs.ErrIsDir, nil)
	}
	d, err := fs.getDir(dir)
	if err != nil {
		return vfs.Attr{}, err
	}
	if _, exists := d.byName[name]; exists {
		return vfs.Attr{}, vfs.NewError(vfs.ErrExist, nil)
	}
	fs.link(d, name, file)
	n.nlink++
	n.ctime = nowStamp()
	return n.attr(), nil
}

func (fs *FS) Readlink(ctx context.Context, id uint64) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	n, err := fs.get(id)
	if err != nil {
		return "", err
	}
	if n.ftype != vfs.TypeLnk {
		return "", vfs.NewError(vfs.ErrInval, nil)
	}
	return n.target, nil
}

func (fs *FS) Readdir(ctx context.Context, dir uint64, startAfterFileID uint64, maxEntries int) (vfs.ReadDirResult, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	d, err := fs.getDir(dir)
	if err != nil {
		return vfs.ReadDirResult{}, err
	}

	startIndex := 0
	if startAfterFileID != 0 {
		found := false
		for i, c := range d.order {
			if c.id == startAfterFileID {
				startIndex = i + 1
				found = true
				break
			}
		}
		if !found {
			return vfs.ReadDirResult{}, vfs.NewError(vfs.ErrBadCookie, nil)
		}
	}
	return fs.sliceDir(d, startIndex, maxEntries), nil
}

func (fs *FS) ReaddirIndex(ctx context.Context, dir uint64, startIndex int, maxEntries int) (vfs.ReadDirResult, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	d, err := fs.getDir(dir)
	if err != nil {
		return vfs.ReadDirResult{}, err
	}
	if startIndex < 0 || startIndex > len(d.order) {
		return vfs.ReadDirResult{}, vfs.NewError(vfs.ErrBadCookie, nil)
	}
	return fs.sliceDir(d, startIndex, maxEntries), nil
}

func (fs *FS) sliceDir(d *node, startIndex int, maxEntries int) vfs.ReadDirResult {
	result := vfs.ReadDirResult{}
	for i := startIndex; i < len(d.order) && len(result.Entries) < maxEntries; i++ {
		c := d.order[i]
		n := fs.nodes[c.id]
		attr := n.attr()
		result.Entries = append(result.Entries, vfs.DirEntry{FileID: c.id, Name: c.name, Attr: &attr})
	}
	result.EOF = startIndex+len(result.Entries) >= len(d.order)
	return result
}

func (fs *FS) Commit(ctx context.Context, id uint64, offset uint64, count uint32) (vfs.Attr, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	n, err := fs.get(id)
	if err != nil {
		return vfs.Attr{}, err
	}
	return n.attr(), nil
}

func (fs *FS) FSInfo(ctx context.Context, id uint64) (vfs.FSInfo, error) {
	return vfs.DefaultFSInfo, nil
}

func (fs *FS) FSStat(ctx context.Context, id uint64) (vfs.FSStat, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var files uint64
	for range fs.nodes {
		files++
	}
	return vfs.FSStat{
		TBytes: 1 << 40,
		FBytes: 1 << 40,
		ABytes: 1 << 40,
		TFiles: 1 << 30,
		FFiles: (1 << 30) - files,
		AFiles: (1 << 30) - files,
	}, nil
}

// sortedIDs is a test/debug helper returning every live file-id in order.
func (fs *FS) sortedIDs() []uint64 {
	ids := make([]uint64, 0, len(fs.nodes))
	for id := range fs.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
