package nfs3

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

func newTestHandler(t *testing.T, caps vfs.Capabilities) (*Handler, vfs.Filesystem, *vfs.Codec) {
	t.Helper()
	fs := vfsmem.New(caps)
	return NewHandler(fs), fs, vfs.NewCodec(fs)
}

func decodeStatus(t *testing.T, reply []byte) (uint32, *bytes.Reader) {
	t.Helper()
	r := bytes.NewReader(reply)
	status, err := internalxdr.DecodeUint32(r)
	require.NoError(t, err)
	return status, r
}

func encodeFhName(t *testing.T, fh []byte, name string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, internalxdr.WriteOpaque(&buf, fh))
	require.NoError(t, internalxdr.WriteString(&buf, name))
	return buf.Bytes()
}

func encodeFh(t *testing.T, fh []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, internalxdr.WriteOpaque(&buf, fh))
	return buf.Bytes()
}

// emptySattr3 encodes an all-absent sattr3 with both time fields set to
// DONT_CHANGE.
func emptySattr3(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	for i := 0; i < 4; i++ {
		require.NoError(t, internalxdr.WriteBool(buf, false))
	}
	require.NoError(t, internalxdr.WriteUint32(buf, uint32(vfs.TimeDontChange)))
	require.NoError(t, internalxdr.WriteUint32(buf, uint32(vfs.TimeDontChange)))
}

func TestGetAttrRoot(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)

	reply, err := h.Handle(ctx, ProcGetAttr, encodeFh(t, codec.IDToHandle(fs.RootDir())))
	require.NoError(t, err)

	status, r := decodeStatus(t, reply)
	assert.Equal(t, uint32(vfs.OK), status)
	ftype, err := internalxdr.DecodeUint32(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(vfs.TypeDir), ftype)
}

func TestGetAttrBadHandle(t *testing.T) {
	ctx := context.Background()
	h, _, _ := newTestHandler(t, vfs.ReadWrite)

	reply, err := h.Handle(ctx, ProcGetAttr, encodeFh(t, []byte("short")))
	require.NoError(t, err)
	status, _ := decodeStatus(t, reply)
	assert.Equal(t, uint32(vfs.ErrBadHandle), status)
}

func createFile(t *testing.T, h *Handler, dirfh []byte, name string) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(encodeFhName(t, dirfh, name))
	require.NoError(t, internalxdr.WriteUint32(&buf, uint32(CreateGuarded)))
	emptySattr3(t, &buf)

	reply, err := h.Handle(context.Background(), ProcCreate, buf.Bytes())
	require.NoError(t, err)
	status, r := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)

	hasObj, err := internalxdr.DecodeBool(r)
	require.NoError(t, err)
	require.True(t, hasObj)
	fh, err := internalxdr.DecodeOpaque(r)
	require.NoError(t, err)
	return fh
}

func TestCreateGuardedRejectsExisting(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	createFile(t, h, root, "a")

	var buf bytes.Buffer
	buf.Write(encodeFhName(t, root, "a"))
	require.NoError(t, internalxdr.WriteUint32(&buf, uint32(CreateGuarded)))
	emptySattr3(t, &buf)

	reply, err := h.Handle(ctx, ProcCreate, buf.Bytes())
	require.NoError(t, err)
	status, _ := decodeStatus(t, reply)
	assert.Equal(t, uint32(vfs.ErrExist), status)
}

func TestCreateUncheckedUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	createFile(t, h, root, "a")

	var buf bytes.Buffer
	buf.Write(encodeFhName(t, root, "a"))
	require.NoError(t, internalxdr.WriteUint32(&buf, uint32(CreateUnchecked)))
	emptySattr3(t, &buf)

	reply, err := h.Handle(ctx, ProcCreate, buf.Bytes())
	require.NoError(t, err)
	status, _ := decodeStatus(t, reply)
	assert.Equal(t, uint32(vfs.OK), status)
}

func TestCreateExclusiveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())

	verifier := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	build := func() []byte {
		var buf bytes.Buffer
		buf.Write(encodeFhName(t, root, "x"))
		require.NoError(t, internalxdr.WriteUint32(&buf, uint32(CreateExclusive)))
		require.NoError(t, internalxdr.WriteFixedOpaque(&buf, verifier[:]))
		return buf.Bytes()
	}

	reply1, err := h.Handle(ctx, ProcCreate, build())
	require.NoError(t, err)
	status1, _ := decodeStatus(t, reply1)
	assert.Equal(t, uint32(vfs.OK), status1)

	reply2, err := h.Handle(ctx, ProcCreate, build())
	require.NoError(t, err)
	status2, _ := decodeStatus(t, reply2)
	assert.Equal(t, uint32(vfs.OK), status2)
}

func TestMkdirAndLookup(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())

	var buf bytes.Buffer
	buf.Write(encodeFhName(t, root, "sub"))
	emptySattr3(t, &buf)

	reply, err := h.Handle(ctx, ProcMkdir, buf.Bytes())
	require.NoError(t, err)
	status, _ := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)

	lookupReply, err := h.Handle(ctx, ProcLookup, encodeFhName(t, root, "sub"))
	require.NoError(t, err)
	status, _ = decodeStatus(t, lookupReply)
	assert.Equal(t, uint32(vfs.OK), status)
}

func TestAccessGrantsByType(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	fileFh := createFile(t, h, root, "f")

	var buf bytes.Buffer
	buf.Write(encodeFh(t, fileFh))
	requested := AccessRead | AccessModify | AccessExecute | AccessLookup
	require.NoError(t, internalxdr.WriteUint32(&buf, requested))

	reply, err := h.Handle(ctx, ProcAccess, buf.Bytes())
	require.NoError(t, err)
	status, r := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)

	// skip post_op_attr
	present, err := internalxdr.DecodeBool(r)
	require.NoError(t, err)
	require.True(t, present)
	_, err = internalxdr.DecodeFixedOpaque(r, 84)
	require.NoError(t, err)

	granted, err := internalxdr.DecodeUint32(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(AccessRead|AccessModify|AccessExecute), granted)
	_ = fs
}

func TestSymlinkDiscardsAttrsAndReadlink(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())

	var buf bytes.Buffer
	buf.Write(encodeFhName(t, root, "link"))
	emptySattr3(t, &buf)
	require.NoError(t, internalxdr.WriteString(&buf, "/target/path"))

	reply, err := h.Handle(ctx, ProcSymlink, buf.Bytes())
	require.NoError(t, err)
	status, _ := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)

	lookupReply, err := h.Handle(ctx, ProcLookup, encodeFhName(t, root, "link"))
	require.NoError(t, err)
	status, r := decodeStatus(t, lookupReply)
	require.Equal(t, uint32(vfs.OK), status)
	fh, err := internalxdr.DecodeOpaque(r)
	require.NoError(t, err)

	rlReply, err := h.Handle(ctx, ProcReadlink, encodeFh(t, fh))
	require.NoError(t, err)
	status, r = decodeStatus(t, rlReply)
	require.Equal(t, uint32(vfs.OK), status)
	present, err := internalxdr.DecodeBool(r)
	require.NoError(t, err)
	require.True(t, present)
	_, err = internalxdr.DecodeFixedOpaque(r, 84)
	require.NoError(t, err)
	target, err := internalxdr.DecodeString(r)
	require.NoError(t, err)
	assert.Equal(t, "/target/path", target)
	_ = fs
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	fileFh := createFile(t, h, root, "f")

	payload := []byte("hello world")
	var wbuf bytes.Buffer
	wbuf.Write(encodeFh(t, fileFh))
	require.NoError(t, internalxdr.WriteUint64(&wbuf, 0))
	require.NoError(t, internalxdr.WriteUint32(&wbuf, uint32(len(payload))))
	require.NoError(t, internalxdr.WriteUint32(&wbuf, uint32(vfs.FileSync)))
	require.NoError(t, internalxdr.WriteOpaque(&wbuf, payload))

	wreply, err := h.Handle(ctx, ProcWrite, wbuf.Bytes())
	require.NoError(t, err)
	status, _ := decodeStatus(t, wreply)
	require.Equal(t, uint32(vfs.OK), status)

	var rbuf bytes.Buffer
	rbuf.Write(encodeFh(t, fileFh))
	require.NoError(t, internalxdr.WriteUint64(&rbuf, 0))
	require.NoError(t, internalxdr.WriteUint32(&rbuf, uint32(len(payload))))

	rreply, err := h.Handle(ctx, ProcRead, rbuf.Bytes())
	require.NoError(t, err)
	status, r := decodeStatus(t, rreply)
	require.Equal(t, uint32(vfs.OK), status)
	present, err := internalxdr.DecodeBool(r)
	require.NoError(t, err)
	require.True(t, present)
	_, err = internalxdr.DecodeFixedOpaque(r, 84)
	require.NoError(t, err)
	count, err := internalxdr.DecodeUint32(r)
	require.NoError(t, err)
	eof, err := internalxdr.DecodeBool(r)
	require.NoError(t, err)
	data, err := internalxdr.DecodeOpaque(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(payload)), count)
	assert.True(t, eof)
	assert.Equal(t, payload, data)
	_ = fs
}

func TestWriteGarbageArgsOnLengthMismatch(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	fileFh := createFile(t, h, root, "f")

	var buf bytes.Buffer
	buf.Write(encodeFh(t, fileFh))
	require.NoError(t, internalxdr.WriteUint64(&buf, 0))
	require.NoError(t, internalxdr.WriteUint32(&buf, 100))
	require.NoError(t, internalxdr.WriteUint32(&buf, uint32(vfs.FileSync)))
	require.NoError(t, internalxdr.WriteOpaque(&buf, []byte("short")))

	_, err := h.Handle(ctx, ProcWrite, buf.Bytes())
	assert.ErrorIs(t, err, ErrGarbageArgs)
}

func TestWriteRejectedOnReadOnlyBackend(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadOnly)
	root := codec.IDToHandle(fs.RootDir())

	var buf bytes.Buffer
	buf.Write(encodeFh(t, root))
	require.NoError(t, internalxdr.WriteUint64(&buf, 0))
	require.NoError(t, internalxdr.WriteUint32(&buf, 1))
	require.NoError(t, internalxdr.WriteUint32(&buf, uint32(vfs.FileSync)))
	require.NoError(t, internalxdr.WriteOpaque(&buf, []byte("x")))

	reply, err := h.Handle(ctx, ProcWrite, buf.Bytes())
	require.NoError(t, err)
	status, _ := decodeStatus(t, reply)
	assert.Equal(t, uint32(vfs.ErrRofs), status)
}

func TestRemoveRejectsDirectory(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())

	var mkbuf bytes.Buffer
	mkbuf.Write(encodeFhName(t, root, "sub"))
	emptySattr3(t, &mkbuf)
	_, err := h.Handle(ctx, ProcMkdir, mkbuf.Bytes())
	require.NoError(t, err)

	reply, err := h.Handle(ctx, ProcRemove, encodeFhName(t, root, "sub"))
	require.NoError(t, err)
	status, _ := decodeStatus(t, reply)
	assert.Equal(t, uint32(vfs.ErrIsDir), status)
	_ = fs
}

func TestRmdirRejectsNonDirectory(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	createFile(t, h, root, "f")

	reply, err := h.Handle(ctx, ProcRmdir, encodeFhName(t, root, "f"))
	require.NoError(t, err)
	status, _ := decodeStatus(t, reply)
	assert.Equal(t, uint32(vfs.ErrNotDir), status)
	_ = fs
}

func TestRemoveThenLookupFails(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	createFile(t, h, root, "f")

	reply, err := h.Handle(ctx, ProcRemove, encodeFhName(t, root, "f"))
	require.NoError(t, err)
	status, _ := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)

	lookupReply, err := h.Handle(ctx, ProcLookup, encodeFhName(t, root, "f"))
	require.NoError(t, err)
	status, _ = decodeStatus(t, lookupReply)
	assert.Equal(t, uint32(vfs.ErrNoEnt), status)
	_ = fs
}

func TestRenameSameDirectory(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	createFile(t, h, root, "old")

	var buf bytes.Buffer
	buf.Write(encodeFhName(t, root, "old"))
	buf.Write(encodeFhName(t, root, "new"))

	reply, err := h.Handle(ctx, ProcRename, buf.Bytes())
	require.NoError(t, err)
	status, _ := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)

	lookupReply, err := h.Handle(ctx, ProcLookup, encodeFhName(t, root, "new"))
	require.NoError(t, err)
	status, _ = decodeStatus(t, lookupReply)
	assert.Equal(t, uint32(vfs.OK), status)
	_ = fs
}

func TestLinkRefusesDirectories(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())

	var mkbuf bytes.Buffer
	mkbuf.Write(encodeFhName(t, root, "sub"))
	emptySattr3(t, &mkbuf)
	_, err := h.Handle(ctx, ProcMkdir, mkbuf.Bytes())
	require.NoError(t, err)

	lookupReply, err := h.Handle(ctx, ProcLookup, encodeFhName(t, root, "sub"))
	require.NoError(t, err)
	_, r := decodeStatus(t, lookupReply)
	subFh, err := internalxdr.DecodeOpaque(r)
	require.NoError(t, err)

	reply, err := h.Handle(ctx, ProcLink, encodeFhName(t, subFh, "alias"))
	require.NoError(t, err)
	status, _ := decodeStatus(t, reply)
	assert.Equal(t, uint32(vfs.ErrIsDir), status)
	_ = fs
}

func TestReaddirCookiePaginationAndBadCookie(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	for _, name := range []string{"a", "b", "c"} {
		createFile(t, h, root, name)
	}

	readdirArgs := func(cookie uint64, count uint32) []byte {
		var buf bytes.Buffer
		buf.Write(encodeFh(t, root))
		require.NoError(t, internalxdr.WriteUint64(&buf, cookie))
		require.NoError(t, internalxdr.WriteFixedOpaque(&buf, make([]byte, 8)))
		require.NoError(t, internalxdr.WriteUint32(&buf, count))
		return buf.Bytes()
	}

	reply, err := h.Handle(ctx, ProcReaddir, readdirArgs(0, 4096))
	require.NoError(t, err)
	status, r := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)

	present, err := internalxdr.DecodeBool(r)
	require.NoError(t, err)
	require.True(t, present)
	_, err = internalxdr.DecodeFixedOpaque(r, 84)
	require.NoError(t, err)
	_, err = internalxdr.DecodeFixedOpaque(r, 8)
	require.NoError(t, err)

	var names []string
	var lastCookie uint64
	for {
		hasEntry, err := internalxdr.DecodeBool(r)
		require.NoError(t, err)
		if !hasEntry {
			break
		}
		_, err = internalxdr.DecodeUint64(r)
		require.NoError(t, err)
		name, err := internalxdr.DecodeString(r)
		require.NoError(t, err)
		lastCookie, err = internalxdr.DecodeUint64(r)
		require.NoError(t, err)
		names = append(names, name)
	}
	eof, err := internalxdr.DecodeBool(r)
	require.NoError(t, err)
	assert.True(t, eof)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, names)

	badReply, err := h.Handle(ctx, ProcReaddir, readdirArgs(lastCookie+100, 4096))
	require.NoError(t, err)
	status, _ = decodeStatus(t, badReply)
	assert.Equal(t, uint32(vfs.ErrBadCookie), status)
	_ = fs
}

func TestReaddirBudgetTruncatesAndForcesEofFalse(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	for _, name := range []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"} {
		createFile(t, h, root, name)
	}

	var buf bytes.Buffer
	buf.Write(encodeFh(t, root))
	require.NoError(t, internalxdr.WriteUint64(&buf, 0))
	require.NoError(t, internalxdr.WriteFixedOpaque(&buf, make([]byte, 8)))
	require.NoError(t, internalxdr.WriteUint32(&buf, 160)) // tight budget forces truncation

	reply, err := h.Handle(ctx, ProcReaddir, buf.Bytes())
	require.NoError(t, err)
	status, r := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)

	_, err = internalxdr.DecodeBool(r)
	require.NoError(t, err)
	_, err = internalxdr.DecodeFixedOpaque(r, 84)
	require.NoError(t, err)
	_, err = internalxdr.DecodeFixedOpaque(r, 8)
	require.NoError(t, err)

	count := 0
	for {
		hasEntry, err := internalxdr.DecodeBool(r)
		require.NoError(t, err)
		if !hasEntry {
			break
		}
		count++
		_, err = internalxdr.DecodeUint64(r)
		require.NoError(t, err)
		_, err = internalxdr.DecodeString(r)
		require.NoError(t, err)
		_, err = internalxdr.DecodeUint64(r)
		require.NoError(t, err)
	}
	eof, err := internalxdr.DecodeBool(r)
	require.NoError(t, err)
	assert.Less(t, count, 3)
	assert.False(t, eof)
	_ = fs
}

func TestReaddirPlusIncludesHandlesAndAttrs(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	createFile(t, h, root, "a")

	var buf bytes.Buffer
	buf.Write(encodeFh(t, root))
	require.NoError(t, internalxdr.WriteUint64(&buf, 0))
	require.NoError(t, internalxdr.WriteFixedOpaque(&buf, make([]byte, 8)))
	require.NoError(t, internalxdr.WriteUint32(&buf, 8192))
	require.NoError(t, internalxdr.WriteUint32(&buf, 8192))

	reply, err := h.Handle(ctx, ProcReaddirPlus, buf.Bytes())
	require.NoError(t, err)
	status, r := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)

	_, err = internalxdr.DecodeBool(r)
	require.NoError(t, err)
	_, err = internalxdr.DecodeFixedOpaque(r, 84)
	require.NoError(t, err)
	_, err = internalxdr.DecodeFixedOpaque(r, 8)
	require.NoError(t, err)

	hasEntry, err := internalxdr.DecodeBool(r)
	require.NoError(t, err)
	require.True(t, hasEntry)
	_, err = internalxdr.DecodeUint64(r)
	require.NoError(t, err)
	name, err := internalxdr.DecodeString(r)
	require.NoError(t, err)
	assert.Equal(t, "a", name)
	_, err = internalxdr.DecodeUint64(r)
	require.NoError(t, err)
	attrPresent, err := internalxdr.DecodeBool(r)
	require.NoError(t, err)
	assert.True(t, attrPresent)
	_, err = internalxdr.DecodeFixedOpaque(r, 84)
	require.NoError(t, err)
	handlePresent, err := internalxdr.DecodeBool(r)
	require.NoError(t, err)
	assert.True(t, handlePresent)
	_, err = internalxdr.DecodeOpaque(r)
	require.NoError(t, err)
	_ = fs
}

func TestFsstatReturnsLargeStaticValues(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())

	reply, err := h.Handle(ctx, ProcFsstat, encodeFh(t, root))
	require.NoError(t, err)
	status, r := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)
	_, err = internalxdr.DecodeBool(r)
	require.NoError(t, err)
	_, err = internalxdr.DecodeFixedOpaque(r, 84)
	require.NoError(t, err)
	tbytes, err := internalxdr.DecodeUint64(r)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), tbytes)
}

func TestFsinfoReturnsConfiguredLimits(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())

	reply, err := h.Handle(ctx, ProcFsinfo, encodeFh(t, root))
	require.NoError(t, err)
	status, r := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)
	_, err = internalxdr.DecodeBool(r)
	require.NoError(t, err)
	_, err = internalxdr.DecodeFixedOpaque(r, 84)
	require.NoError(t, err)
	rtmax, err := internalxdr.DecodeUint32(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(1<<20), rtmax)
}

func TestPathconfReturnsStaticLimits(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())

	reply, err := h.Handle(ctx, ProcPathconf, encodeFh(t, root))
	require.NoError(t, err)
	status, r := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)
	_, err = internalxdr.DecodeBool(r)
	require.NoError(t, err)
	_, err = internalxdr.DecodeFixedOpaque(r, 84)
	require.NoError(t, err)
	linkmax, err := internalxdr.DecodeUint32(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), linkmax)
	nameMax, err := internalxdr.DecodeUint32(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(32768), nameMax)
}

func TestCommitReturnsVerifier(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	fileFh := createFile(t, h, root, "f")

	var buf bytes.Buffer
	buf.Write(encodeFh(t, fileFh))
	require.NoError(t, internalxdr.WriteUint64(&buf, 0))
	require.NoError(t, internalxdr.WriteUint32(&buf, 0))

	reply, err := h.Handle(ctx, ProcCommit, buf.Bytes())
	require.NoError(t, err)
	status, r := decodeStatus(t, reply)
	require.Equal(t, uint32(vfs.OK), status)
	_, err = internalxdr.DecodeBool(r)
	require.NoError(t, err)
	_, err = internalxdr.DecodeFixedOpaque(r, 84)
	require.NoError(t, err)
	verf, err := internalxdr.DecodeFixedOpaque(r, 8)
	require.NoError(t, err)
	assert.Len(t, verf, 8)
	_ = fs
}

func TestSetattrGuardMismatchReturnsNotSync(t *testing.T) {
	ctx := context.Background()
	h, fs, codec := newTestHandler(t, vfs.ReadWrite)
	root := codec.IDToHandle(fs.RootDir())
	fileFh := createFile(t, h, root, "f")

	var buf bytes.Buffer
	buf.Write(encodeFh(t, fileFh))
	emptySattr3(t, &buf)
	require.NoError(t, internalxdr.WriteBool(&buf, true))
	require.NoError(t, internalxdr.WriteUint32(&buf, 999999))
	require.NoError(t, internalxdr.WriteUint32(&buf, 0))

	reply, err := h.Handle(ctx, ProcSetAttr, buf.Bytes())
	require.NoError(t, err)
	status, _ := decodeStatus(t, reply)
	assert.Equal(t, uint32(vfs.ErrNotSync), status)
	_ = fs
}

func TestNullReturnsEmptyReply(t *testing.T) {
	ctx := context.Background()
	h, _, _ := newTestHandler(t, vfs.ReadWrite)
	reply, err := h.Handle(ctx, ProcNull, nil)
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestHandleUnknownProcReturnsGarbageArgs(t *testing.T) {
	ctx := context.Background()
	h, _, _ := newTestHandler(t, vfs.ReadWrite)
	_, err := h.Handle(ctx, 9999, nil)
	assert.ErrorIs(t, err, ErrGarbageArgs)
}
