package nfs3

import (
	"bytes"
	"context"

	internalxdr "github.com/lunixbochs/gonfsd/internal/xdr"
	"github.com/lunixbochs/gonfsd/internal/vfs"
)

func (h *Handler) read(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	fh, err := internalxdr.DecodeOpaque(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	offset, err := internalxdr.DecodeUint64(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	count, err := internalxdr.DecodeUint32(r)
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

	readData, eof, err := h.fs.Read(ctx, id, offset, count)
	attr := h.postOpAttr(ctx, id)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, attr)
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodePostOpAttr(&buf, attr)
	_ = internalxdr.WriteUint32(&buf, uint32(len(readData)))
	_ = internalxdr.WriteBool(&buf, eof)
	_ = internalxdr.WriteOpaque(&buf, readData)
	return buf.Bytes(), nil
}

func (h *Handler) write(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	fh, err := internalxdr.DecodeOpaque(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	offset, err := internalxdr.DecodeUint64(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	count, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	stable, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	payload, err := internalxdr.DecodeOpaque(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	if uint32(len(payload)) != count {
		return nil, ErrGarbageArgs
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

	_, committed, written, err := h.fs.Write(ctx, id, offset, payload, vfs.StableHow(stable))
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, pre, h.postOpAttr(ctx, id))
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodeWccData(&buf, pre, h.postOpAttr(ctx, id))
	_ = internalxdr.WriteUint32(&buf, written)
	_ = internalxdr.WriteUint32(&buf, uint32(committed))
	verf := h.serverID()
	_ = internalxdr.WriteFixedOpaque(&buf, verf[:])
	return buf.Bytes(), nil
}

func (h *Handler) commit(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	fh, err := internalxdr.DecodeOpaque(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	offset, err := internalxdr.DecodeUint64(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	count, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	id, err := h.resolve(fh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}
	pre := h.preOpAttr(ctx, id)

	_, err = h.fs.Commit(ctx, id, offset, count)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, pre, h.postOpAttr(ctx, id))
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodeWccData(&buf, pre, h.postOpAttr(ctx, id))
	verf := h.serverID()
	_ = internalxdr.WriteFixedOpaque(&buf, verf[:])
	return buf.Bytes(), nil
}
