package nfs3

import (
	"bytes"
	"context"

	internalxdr "github.com/lunixbochs/gonfsd/internal/xdr"
	"github.com/lunixbochs/gonfsd/internal/vfs"
)

// cookieverf derives an 8-byte cookie verifier from a directory's mtime
// (spec §3): stable across calls as long as the directory is not mutated,
// changing if it is, which is all a client needs to detect a stale cookie.
func cookieverf(attr *vfs.Attr) [8]byte {
	var v [8]byte
	if attr == nil {
		return v
	}
	var buf bytes.Buffer
	_ = internalxdr.WriteUint32(&buf, attr.Mtime.Seconds)
	_ = internalxdr.WriteUint32(&buf, attr.Mtime.Nseconds)
	copy(v[:], buf.Bytes())
	return v
}

func (h *Handler) readdir(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	dirfh, err := internalxdr.DecodeOpaque(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	cookie, err := internalxdr.DecodeUint64(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	if _, err := internalxdr.DecodeFixedOpaque(r, VerifierSize); err != nil {
		return nil, ErrGarbageArgs
	}
	count, err := internalxdr.DecodeUint32(r)
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
	dirAttr := h.postOpAttr(ctx, dirID)

	result, err := h.fs.ReaddirIndex(ctx, dirID, int(cookie), 1<<20)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, dirAttr)
		return buf.Bytes(), nil
	}

	maxBytes := int64(count) - 128
	var entries bytes.Buffer
	written := int64(0)
	truncated := false
	nextCookie := cookie + 1
	for _, entry := range result.Entries {
		var one bytes.Buffer
		_ = internalxdr.WriteBool(&one, true)
		_ = internalxdr.WriteUint64(&one, entry.FileID)
		_ = internalxdr.WriteString(&one, entry.Name)
		_ = internalxdr.WriteUint64(&one, nextCookie)

		if written+int64(one.Len()) >= maxBytes {
			truncated = true
			break
		}
		entries.Write(one.Bytes())
		written += int64(one.Len())
		nextCookie++
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodePostOpAttr(&buf, dirAttr)
	verf := cookieverf(dirAttr)
	_ = internalxdr.WriteFixedOpaque(&buf, verf[:])
	buf.Write(entries.Bytes())
	_ = internalxdr.WriteBool(&buf, false)
	_ = internalxdr.WriteBool(&buf, !truncated && result.EOF)
	return buf.Bytes(), nil
}

func (h *Handler) readdirplus(ctx context.Context, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	dirfh, err := internalxdr.DecodeOpaque(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	cookie, err := internalxdr.DecodeUint64(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	if _, err := internalxdr.DecodeFixedOpaque(r, VerifierSize); err != nil {
		return nil, ErrGarbageArgs
	}
	dircount, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	maxcount, err := internalxdr.DecodeUint32(r)
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
	dirAttr := h.postOpAttr(ctx, dirID)

	result, err := h.fs.ReaddirIndex(ctx, dirID, int(cookie), 1<<20)
	if err != nil {
		_ = internalxdr.WriteUint32(&buf, uint32(vfs.StatusOf(err)))
		encodePostOpAttr(&buf, dirAttr)
		return buf.Bytes(), nil
	}

	maxBytes := int64(maxcount) - 128
	dircountBudget := int64(dircount) - 128
	var entries bytes.Buffer
	written := int64(0)
	dirWritten := int64(0)
	truncated := false
	nextCookie := cookie + 1
	for _, entry := range result.Entries {
		dirSize := int64(8 + 4 + len(entry.Name) + 8)

		var one bytes.Buffer
		_ = internalxdr.WriteBool(&one, true)
		_ = internalxdr.WriteUint64(&one, entry.FileID)
		_ = internalxdr.WriteString(&one, entry.Name)
		_ = internalxdr.WriteUint64(&one, nextCookie)
		encodePostOpAttr(&one, entry.Attr)
		_ = internalxdr.WriteBool(&one, true)
		_ = internalxdr.WriteOpaque(&one, h.codec.IDToHandle(entry.FileID))

		if written+int64(one.Len()) >= maxBytes || dirWritten+dirSize >= dircountBudget {
			truncated = true
			break
		}
		entries.Write(one.Bytes())
		written += int64(one.Len())
		dirWritten += dirSize
		nextCookie++
	}

	_ = internalxdr.WriteUint32(&buf, uint32(vfs.OK))
	encodePostOpAttr(&buf, dirAttr)
	verf := cookieverf(dirAttr)
	_ = internalxdr.WriteFixedOpaque(&buf, verf[:])
	buf.Write(entries.Bytes())
	_ = internalxdr.WriteBool(&buf, false)
	_ = internalxdr.WriteBool(&buf, !truncated && result.EOF)
	return buf.Bytes(), nil
}
