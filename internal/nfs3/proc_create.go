package nfs3

import (
	"bytes"
	"context"

	internalxdr "github.com/lunixbochs/gonfsd/internal/xdr"
	"github.com/lunixbochs/gonfsd/internal/vfs"
)

// decodeDirOps reads the common {dir fh3, name} pair every directory-mutating
// procedure's arguments begin with.
func decodeDirOps(r *bytes.Reader) ([]byte, string, error) {
	dirfh, err := internalxdr.DecodeOpaque(r)
	if err != nil {
		return nil, "", err
	}
	name, err := internalxdr.DecodeString(r)
	if err != nil {
		return nil, "", err
	}
	return dirfh, name, nil
}

// encodeObjResult writes the {obj: post_op_fh3, obj_attributes:
// post_op_attr} pair CREATE/MKDIR/SYMLINK/MKNOD share on success, or just an
// absent obj/obj_attributes pair when id is 0 (unknown).
func encodeObjResult(ctx context.Context, buf *bytes.Buffer, h *Handler, id uint64) {
	if id == 0 {
		_ = internalxdr.WriteBool(buf, false)
		_ = internalxdr.WriteBool(buf, false)
		return
	}
	_ = internalxdr.WriteBool(buf, true)
	_ = internalxdr.WriteOpaque(buf, h.codec.IDToHandle(id))
	encodePostOpAttr(buf, h.postOpAttr(ctx, id))
}

func (h *Handler) create(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	dirfh, name, err := decodeDirOps(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	modeVal, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	mode := CreateMode(modeVal)

	var sattr vfs.SetAttr
	var verifier [8]byte
	switch mode {
	case CreateUnchecked, CreateGuarded:
		sattr, err = decodeSattr3(r)
		if err != nil {
			return nil, ErrGarbageArgs
		}
	case CreateExclusive:
		raw, err := internalxdr.DecodeFixedOpaque(r, VerifierSize)
		if err != nil {
			return nil, ErrGarbageArgs
		}
		copy(verifier[:], raw)
	default:
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	if h.fs.Capabilities() != vfs.ReadWrite {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.ErrRofs))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}

	dirID, err := h.resolve(dirfh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}
	pre := h.preOpAttr(ctx, dirID)

	var id uint64
	switch mode {
	case CreateGuarded:
		id, _, err = h.fs.Create(ctx, dirID, name, sattr)
	case CreateUnchecked:
		if existing, lookupErr := h.fs.Lookup(ctx, dirID, name); lookupErr == nil {
			_, err = h.fs.SetAttr(ctx, existing, sattr)
			id = existing
		} else {
			id, _, err = h.fs.Create(ctx, dirID, name, sattr)
		}
	case CreateExclusive:
		id, err = h.fs.CreateExclusive(ctx, dirID, name, verifier)
	}

	post := h.postOpAttr(ctx, dirID)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, pre, post)
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodeObjResult(ctx, &buf, h, id)
	encodeWccData(&buf, pre, post)
	return buf.Bytes(), nil
}

func (h *Handler) mkdir(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	dirfh, name, err := decodeDirOps(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	sattr, err := decodeSattr3(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	if h.fs.Capabilities() != vfs.ReadWrite {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.ErrRofs))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}

	dirID, err := h.resolve(dirfh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}
	pre := h.preOpAttr(ctx, dirID)

	id, _, err := h.fs.Mkdir(ctx, dirID, name, sattr)
	post := h.postOpAttr(ctx, dirID)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, pre, post)
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodeObjResult(ctx, &buf, h, id)
	encodeWccData(&buf, pre, post)
	return buf.Bytes(), nil
}

func (h *Handler) symlink(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	dirfh, name, err := decodeDirOps(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	// symlink_attributes is decoded but, per RFC 1813, never applied beyond
	// the target string itself.
	if _, err := decodeSattr3(r); err != nil {
		return nil, ErrGarbageArgs
	}
	target, err := internalxdr.DecodeString(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	if h.fs.Capabilities() != vfs.ReadWrite {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.ErrRofs))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}

	dirID, err := h.resolve(dirfh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}
	pre := h.preOpAttr(ctx, dirID)

	id, _, err := h.fs.Symlink(ctx, dirID, name, target, vfs.SetAttr{})
	post := h.postOpAttr(ctx, dirID)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, pre, post)
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodeObjResult(ctx, &buf, h, id)
	encodeWccData(&buf, pre, post)
	return buf.Bytes(), nil
}

func (h *Handler) mknod(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	dirfh, name, err := decodeDirOps(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	ftypeVal, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	ftype := vfs.FileType(ftypeVal)

	var sattr vfs.SetAttr
	var spec vfs.SpecData
	switch ftype {
	case vfs.TypeChr, vfs.TypeBlk:
		sattr, err = decodeSattr3(r)
		if err != nil {
			return nil, ErrGarbageArgs
		}
		spec, err = decodeSpecdata3(r)
		if err != nil {
			return nil, ErrGarbageArgs
		}
	case vfs.TypeSock, vfs.TypeFifo, vfs.TypeReg, vfs.TypeDir:
		sattr, err = decodeSattr3(r)
		if err != nil {
			return nil, ErrGarbageArgs
		}
	default:
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	if h.fs.Capabilities() != vfs.ReadWrite {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.ErrRofs))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}

	dirID, err := h.resolve(dirfh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}
	pre := h.preOpAttr(ctx, dirID)

	var id uint64
	switch ftype {
	case vfs.TypeReg:
		id, _, err = h.fs.Create(ctx, dirID, name, sattr)
	case vfs.TypeDir:
		id, _, err = h.fs.Mkdir(ctx, dirID, name, sattr)
	default:
		id, _, err = h.fs.Mknod(ctx, dirID, name, ftype, spec, sattr)
	}

	post := h.postOpAttr(ctx, dirID)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, pre, post)
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodeObjResult(ctx, &buf, h, id)
	encodeWccData(&buf, pre, post)
	return buf.Bytes(), nil
}
