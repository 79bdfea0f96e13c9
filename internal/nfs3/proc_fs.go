package nfs3

import (
	"bytes"
	"context"

	internalxdr "github.com/lunixbochs/gonfsd/internal/xdr"
	"github.com/lunixbochs/gonfsd/internal/vfs"
)

func (h *Handler) fsstat(ctx context.Context, data []byte) ([]byte, error) {
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

	stat, err := h.fs.FSStat(ctx, id)
	attr := h.postOpAttr(ctx, id)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, attr)
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodePostOpAttr(&buf, attr)
	_ = internalxdr.WriteUint64(&buf, stat.TBytes)
	_ = internalxdr.WriteUint64(&buf, stat.FBytes)
	_ = internalxdr.WriteUint64(&buf, stat.ABytes)
	_ = internalxdr.WriteUint64(&buf, stat.TFiles)
	_ = internalxdr.WriteUint64(&buf, stat.FFiles)
	_ = internalxdr.WriteUint64(&buf, stat.AFiles)
	_ = internalxdr.WriteUint32(&buf, stat.Invarsec)
	return buf.Bytes(), nil
}

func (h *Handler) fsinfo(ctx context.Context, data []byte) ([]byte, error) {
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

	info, err := h.fs.FSInfo(ctx, id)
	attr := h.postOpAttr(ctx, id)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, attr)
		return buf.Bytes(), nil
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodePostOpAttr(&buf, attr)
	_ = internalxdr.WriteUint32(&buf, info.RtMax)
	_ = internalxdr.WriteUint32(&buf, info.RtPref)
	_ = internalxdr.WriteUint32(&buf, info.RtMult)
	_ = internalxdr.WriteUint32(&buf, info.WtMax)
	_ = internalxdr.WriteUint32(&buf, info.WtPref)
	_ = internalxdr.WriteUint32(&buf, info.WtMult)
	_ = internalxdr.WriteUint32(&buf, info.DtPref)
	_ = internalxdr.WriteUint64(&buf, info.MaxFileSize)
	encodeTime(&buf, info.TimeDelta)
	_ = internalxdr.WriteUint32(&buf, info.Properties)
	return buf.Bytes(), nil
}

// pathconf has no VFS back-end hook: RFC 1813's pathconf3 is a set of
// filesystem-wide constants the server already knows statically.
func (h *Handler) pathconf(ctx context.Context, data []byte) ([]byte, error) {
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

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodePostOpAttr(&buf, h.postOpAttr(ctx, id))
	_ = internalxdr.WriteUint32(&buf, 0)     // linkmax
	_ = internalxdr.WriteUint32(&buf, 32768) // name_max
	_ = internalxdr.WriteBool(&buf, true)    // no_trunc
	_ = internalxdr.WriteBool(&buf, true)    // chown_restricted
	_ = internalxdr.WriteBool(&buf, false)   // case_insensitive
	_ = internalxdr.WriteBool(&buf, true)    // case_preserving
	return buf.Bytes(), nil
}
