package nfs3

import (
	"bytes"
	"context"

	internalxdr "github.com/lunixbochs/gonfsd/internal/xdr"
	"github.com/lunixbochs/gonfsd/internal/vfs"
)

func (h *Handler) removeLike(ctx context.Context, data []byte, wantDir bool, wrongTypeStatus vfs.Status) ([]byte, error) {
	r := bytes.NewReader(data)
	dirfh, name, err := decodeDirOps(r)
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

	targetID, lookupErr := h.fs.Lookup(ctx, dirID, name)
	if lookupErr == nil {
		attr, attrErr := h.fs.GetAttr(ctx, targetID)
		if attrErr == nil {
			isDir := attr.Type == vfs.TypeDir
			if isDir != wantDir {
				_ = internalxdr.WriteUint32(&buf, uint32(wrongTypeStatus))
				encodeWccData(&buf, pre, h.postOpAttr(ctx, dirID))
				return buf.Bytes(), nil
			}
		}
	}

	err = h.fs.Remove(ctx, dirID, name)
	post := h.postOpAttr(ctx, dirID)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, pre, post)
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodeWccData(&buf, pre, post)
	return buf.Bytes(), nil
}

func (h *Handler) remove(ctx context.Context, data []byte) ([]byte, error) {
	return h.removeLike(ctx, data, false, vfs.ErrIsDir)
}

func (h *Handler) rmdir(ctx context.Context, data []byte) ([]byte, error) {
	return h.removeLike(ctx, data, true, vfs.ErrNotDir)
}

func (h *Handler) rename(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	fromDirFh, fromName, err := decodeDirOps(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	toDirFh, toName, err := decodeDirOps(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	if h.fs.Capabilities() != vfs.ReadWrite {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.ErrRofs))
		encodeWccData(&buf, nil, nil)
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}

	fromDirID, err := h.resolve(fromDirFh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, nil, nil)
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}
	toDirID, err := h.resolve(toDirFh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, h.preOpAttr(ctx, fromDirID), h.postOpAttr(ctx, fromDirID))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}

	preFrom := h.preOpAttr(ctx, fromDirID)
	preTo := h.preOpAttr(ctx, toDirID)

	err = h.fs.Rename(ctx, fromDirID, fromName, toDirID, toName)
	postFrom := h.postOpAttr(ctx, fromDirID)
	postTo := h.postOpAttr(ctx, toDirID)

	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodeWccData(&buf, preFrom, postFrom)
		encodeWccData(&buf, preTo, postTo)
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodeWccData(&buf, preFrom, postFrom)
	encodeWccData(&buf, preTo, postTo)
	return buf.Bytes(), nil
}

func (h *Handler) link(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	fileFh, err := internalxdr.DecodeOpaque(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	dirFh, name, err := decodeDirOps(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	if h.fs.Capabilities() != vfs.ReadWrite {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.ErrRofs))
		encodePostOpAttr(&buf, nil)
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}

	fileID, err := h.resolve(fileFh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, nil)
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}
	dirID, err := h.resolve(dirFh)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, h.postOpAttr(ctx, fileID))
		encodeWccData(&buf, nil, nil)
		return buf.Bytes(), nil
	}
	pre := h.preOpAttr(ctx, dirID)

	_, err = h.fs.Link(ctx, fileID, dirID, name)
	post := h.postOpAttr(ctx, dirID)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, h.postOpAttr(ctx, fileID))
		encodeWccData(&buf, pre, post)
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodePostOpAttr(&buf, h.postOpAttr(ctx, fileID))
	encodeWccData(&buf, pre, post)
	return buf.Bytes(), nil
}
