package vfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFS struct {
	generation uint64
	root       uint64
	children   map[uint64]map[string]uint64
}

func newFakeFS(generation uint64) *fakeFS {
	return &fakeFS{
		generation: generation,
		root:       1,
		children:   map[uint64]map[string]uint64{1: {"a": 2, "b": 3}, 2: {"c": 4}},
	}
}

func (f *fakeFS) Generation() uint64      { return f.generation }
func (f *fakeFS) Capabilities() Capabilities { return ReadWrite }
func (f *fakeFS) RootDir() uint64         { return f.root }

func (f *fakeFS) Lookup(ctx context.Context, dir uint64, name string) (uint64, error) {
	id, ok := f.children[dir][name]
	if !ok {
		return 0, NewError(ErrNoEnt, nil)
	}
	return id, nil
}

func (f *fakeFS) GetAttr(ctx context.Context, id uint64) (Attr, error)    { return Attr{}, nil }
func (f *fakeFS) SetAttr(ctx context.Context, id uint64, a SetAttr) (Attr, error) {
	return Attr{}, nil
}
func (f *fakeFS) Read(ctx context.Context, id uint64, offset uint64, count uint32) ([]byte, bool, error) {
	return nil, true, nil
}
func (f *fakeFS) Write(ctx context.Context, id uint64, offset uint64, data []byte, stable StableHow) (Attr, StableHow, uint32, error) {
	return Attr{}, stable, uint32(len(data)), nil
}
func (f *fakeFS) Create(ctx context.Context, dir uint64, name string, attr SetAttr) (uint64, Attr, error) {
	return 0, Attr{}, nil
}
func (f *fakeFS) CreateExclusive(ctx context.Context, dir uint64, name string, verifier [8]byte) (uint64, error) {
	return 0, nil
}
func (f *fakeFS) Mkdir(ctx context.Context, dir uint64, name string, attr SetAttr) (uint64, Attr, error) {
	return 0, Attr{}, nil
}
func (f *fakeFS) Symlink(ctx context.Context, dir uint64, name, target string, attr SetAttr) (uint64, Attr, error) {
	return 0, Attr{}, nil
}
func (f *fakeFS) Mknod(ctx context.Context, dir uint64, name string, ftype FileType, spec SpecData, attr SetAttr) (uint64, Attr, error) {
	return 0, Attr{}, nil
}
func (f *fakeFS) Remove(ctx context.Context, dir uint64, name string) error { return nil }
func (f *fakeFS) Rename(ctx context.Context, fromDir uint64, fromName string, toDir uint64, toName string) error {
	return nil
}
func (f *fakeFS) Link(ctx context.Context, file uint64, dir uint64, name string) (Attr, error) {
	return Attr{}, nil
}
func (f *fakeFS) Readlink(ctx context.Context, id uint64) (string, error) { return "", nil }
func (f *fakeFS) Readdir(ctx context.Context, dir uint64, startAfterFileID uint64, maxEntries int) (ReadDirResult, error) {
	return ReadDirResult{}, nil
}
func (f *fakeFS) ReaddirIndex(ctx context.Context, dir uint64, startIndex int, maxEntries int) (ReadDirResult, error) {
	return ReadDirResult{}, nil
}
func (f *fakeFS) Commit(ctx context.Context, id uint64, offset uint64, count uint32) (Attr, error) {
	return Attr{}, nil
}
func (f *fakeFS) FSInfo(ctx context.Context, id uint64) (FSInfo, error) { return DefaultFSInfo, nil }
func (f *fakeFS) FSStat(ctx context.Context, id uint64) (FSStat, error) { return FSStat{}, nil }

func TestHandleRoundTrip(t *testing.T) {
	fh := EncodeHandle(42, 7)
	require.Len(t, fh, HandleSize)

	gen, id, err := DecodeHandle(fh)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), gen)
	assert.Equal(t, uint64(7), id)
}

func TestDecodeHandleRejectsWrongLength(t *testing.T) {
	_, _, err := DecodeHandle([]byte{1, 2, 3})
	assert.Equal(t, ErrBadHandle, StatusOf(err))
}

func TestCodecFhToIDDistinguishesStaleFromBad(t *testing.T) {
	fs := newFakeFS(100)
	codec := NewCodec(fs)

	id, err := codec.FhToID(EncodeHandle(100, 7))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)

	_, err = codec.FhToID(EncodeHandle(50, 7))
	assert.Equal(t, ErrStale, StatusOf(err), "older generation is stale, not bad")

	_, err = codec.FhToID(EncodeHandle(150, 7))
	assert.Equal(t, ErrBadHandle, StatusOf(err), "newer generation could not have been issued by this server")
}

func TestCodecPathToID(t *testing.T) {
	ctx := context.Background()
	fs := newFakeFS(1)
	codec := NewCodec(fs)

	id, err := codec.PathToID(ctx, "/a/c")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), id)

	id, err = codec.PathToID(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, fs.root, id)

	_, err = codec.PathToID(ctx, "/nope")
	assert.Equal(t, ErrNoEnt, StatusOf(err))
}

func TestStatusOfMapsUntypedErrorsToIO(t *testing.T) {
	assert.Equal(t, OK, StatusOf(nil))
	assert.Equal(t, ErrIO, StatusOf(assertErr{}))
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
