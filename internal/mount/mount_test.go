package mount

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalxdr "github.com/lunixbochs/gonfsd/internal/xdr"
	"github.com/lunixbochs/gonfsd/internal/vfs"
	"github.com/lunixbochs/gonfsd/internal/vfs/vfsmem"
)

func encodeDirpathRequest(t *testing.T, path string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, internalxdr.WriteString(&buf, path))
	return buf.Bytes()
}

func TestMntSuccess(t *testing.T) {
	ctx := context.Background()
	fs := vfsmem.New(vfs.ReadWrite)
	codec := vfs.NewCodec(fs)
	events := make(chan bool, 1)
	h := NewHandler(codec, "/export", events)

	reply, err := h.Handle(ctx, ProcMnt, "127.0.0.1:123", encodeDirpathRequest(t, "/export"))
	require.NoError(t, err)

	status, err := internalxdr.DecodeUint32(bytes.NewReader(reply))
	require.NoError(t, err)
	assert.Equal(t, uint32(StatusOK), status)

	select {
	case mounted := <-events:
		assert.True(t, mounted)
	default:
		t.Fatal("expected a mount event")
	}
}

func TestMntRejectsWrongPrefix(t *testing.T) {
	ctx := context.Background()
	fs := vfsmem.New(vfs.ReadWrite)
	codec := vfs.NewCodec(fs)
	h := NewHandler(codec, "/export", nil)

	reply, err := h.Handle(ctx, ProcMnt, "127.0.0.1:123", encodeDirpathRequest(t, "/nope"))
	require.NoError(t, err)

	status, err := internalxdr.DecodeUint32(bytes.NewReader(reply))
	require.NoError(t, err)
	assert.Equal(t, uint32(StatusErrNoEnt), status)
}

func TestMntFailsOnMissingSubpath(t *testing.T) {
	ctx := context.Background()
	fs := vfsmem.New(vfs.ReadWrite)
	codec := vfs.NewCodec(fs)
	h := NewHandler(codec, "/export", nil)

	reply, err := h.Handle(ctx, ProcMnt, "127.0.0.1:123", encodeDirpathRequest(t, "/export/missing"))
	require.NoError(t, err)

	status, err := internalxdr.DecodeUint32(bytes.NewReader(reply))
	require.NoError(t, err)
	assert.Equal(t, uint32(StatusErrNoEnt), status)
}

func TestUmntAndUmntAllAlwaysSucceed(t *testing.T) {
	ctx := context.Background()
	fs := vfsmem.New(vfs.ReadWrite)
	codec := vfs.NewCodec(fs)
	events := make(chan bool, 2)
	h := NewHandler(codec, "/export", events)

	reply, err := h.Handle(ctx, ProcUmnt, "127.0.0.1:123", encodeDirpathRequest(t, "/export"))
	require.NoError(t, err)
	assert.Empty(t, reply)

	reply, err = h.Handle(ctx, ProcUmntAll, "127.0.0.1:123", nil)
	require.NoError(t, err)
	assert.Empty(t, reply)

	assert.False(t, <-events)
	assert.False(t, <-events)
}

func TestExportReturnsSingleRecord(t *testing.T) {
	ctx := context.Background()
	fs := vfsmem.New(vfs.ReadWrite)
	codec := vfs.NewCodec(fs)
	h := NewHandler(codec, "/export", nil)

	reply, err := h.Handle(ctx, ProcExport, "127.0.0.1:123", nil)
	require.NoError(t, err)

	r := bytes.NewReader(reply)
	hasEntry, err := internalxdr.DecodeBool(r)
	require.NoError(t, err)
	assert.True(t, hasEntry)

	dirpath, err := internalxdr.DecodeString(r)
	require.NoError(t, err)
	assert.Equal(t, "/export", dirpath)
}

func TestDumpIsUnimplemented(t *testing.T) {
	ctx := context.Background()
	fs := vfsmem.New(vfs.ReadWrite)
	codec := vfs.NewCodec(fs)
	h := NewHandler(codec, "/export", nil)

	_, err := h.Handle(ctx, ProcDump, "127.0.0.1:123", nil)
	assert.ErrorIs(t, err, ErrProcUnavail)
}

func TestNullIsEmptySuccess(t *testing.T) {
	ctx := context.Background()
	fs := vfsmem.New(vfs.ReadWrite)
	codec := vfs.NewCodec(fs)
	h := NewHandler(codec, "/export", nil)

	reply, err := h.Handle(ctx, ProcNull, "127.0.0.1:123", nil)
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestCanonicalizePath(t *testing.T) {
	path, ok := canonicalizePath("/export/a/b", "/export")
	require.True(t, ok)
	assert.Equal(t, "/a/b", path)

	path, ok = canonicalizePath("/export", "/export")
	require.True(t, ok)
	assert.Equal(t, "/", path)

	_, ok = canonicalizePath("/other", "/export")
	assert.False(t, ok)
}
