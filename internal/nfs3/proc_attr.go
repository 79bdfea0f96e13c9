package nfs3

import (
	"bytes"
	"context"

	internalxdr "github.com/lunixbochs/gonfsd/internal/xdr"
	"github.com/lunixbochs/gonfsd/internal/vfs"
)

func (h *Handler) getattr(ctx context.Context, data []byte) ([]byte, error) {
	fh, err := internalxdr.DecodeOpaque(bytes.NewReader(data))
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	id, err := h.resolve(fh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		return buf.Bytes(), nil
	}
	attr, err := h.fs.GetAttr(ctx, id)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		return buf.Bytes(), nil
	}
	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodeFattr3(&buf, attr)
	return buf.Bytes(), nil
}

func (h *Handler) setattr(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	fh, err := internalxdr.DecodeOpaque(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	sattr, err := decodeSattr3(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	guardPresent, err := internalxdr.DecodeBool(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	var guardCtime *vfs.TimeSpec
	if guardPresent {
		t, err := decodeTime(r)
		if err != nil {
			return nil, ErrGarbageArgs
		}
		guardCtime = &t
	}

	var buf bytes.Buffer
	if h.fs.Capabilities() != vfs.ReadWrite {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.ErrRofs))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}

	id, err := h.resolve(fh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}

	pre := h.preOpAttr(ctx, id)

	if guardCtime != nil && pre != nil {
		if guardCtime.Seconds != pre.Ctime.Seconds || guardCtime.Nseconds != pre.Ctime.Nseconds {
			_ = internalxdr.WriteUint32(&buf, uint32(vfs.ErrNotSync))
			encodeWccData(&buf, pre, h.postOpAttr(ctx, id))
			return buf.Bytes(), nil
		}
	}

	_, err = h.fs.SetAttr(ctx, id, sattr)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, pre, h.postOpAttr(ctx, id))
		return buf.Bytes(), nil
	}
	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodeWccData(&buf, pre, h.postOpAttr(ctx, id))
	return buf.Bytes(), nil
}

func (h *Handler) lookup(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	dirfh, err := internalxdr.DecodeOpaque(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	name, err := internalxdr.DecodeString(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	dirID, err := h.resolve(dirfh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, nil)
		return buf.Bytes(), nil
	}

	id, err := h.fs.Lookup(ctx, dirID, name)
	dirAttr := h.postOpAttr(ctx, dirID)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, dirAttr)
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	_ = internalxdr.WriteOpaque(&buf, h.codec.IDToHandle(id))
	encodePostOpAttr(&buf, h.postOpAttr(ctx, id))
	encodePostOpAttr(&buf, dirAttr)
	return buf.Bytes(), nil
}

func (h *Handler) access(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	fh, err := internalxdr.DecodeOpaque(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	requested, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	id, err := h.resolve(fh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, nil)
		return buf.Bytes(), nil
	}
	attr, err := h.fs.GetAttr(ctx, id)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, nil)
		return buf.Bytes(), nil
	}

	granted := computeAccess(attr.Type, h.fs.Capabilities(), requested)
	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodePostOpAttr(&buf, &attr)
	_ = internalxdr.WriteUint32(&buf, granted)
	return buf.Bytes(), nil
}

func (h *Handler) readlink(ctx context.Context, data []byte) ([]byte, error) {
	fh, err := internalxdr.DecodeOpaque(bytes.NewReader(data))
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	id, err := h.resolve(fh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, nil)
		return buf.Bytes(), nil
	}

	target, err := h.fs.Readlink(ctx, id)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, h.postOpAttr(ctx, id))
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodePostOpAttr(&buf, h.postOpAttr(ctx, id))
	_ = internalxdr.WriteString(&buf, target)
	return buf.Bytes(), nil
}
