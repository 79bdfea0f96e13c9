package nfs3

import (
	"bytes"
	"io"

	internalxdr "github.com/lunixbochs/gonfsd/internal/xdr"
	"github.com/lunixbochs/gonfsd/internal/vfs"
)

func encodeTime(buf *bytes.Buffer, t vfs.TimeSpec) {
	_ = internalxdr.WriteUint32(buf, t.Seconds)
	_ = internalxdr.WriteUint32(buf, t.Nseconds)
}

func decodeTime(r io.Reader) (vfs.TimeSpec, error) {
	sec, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return vfs.TimeSpec{}, err
	}
	nsec, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return vfs.TimeSpec{}, err
	}
	return vfs.TimeSpec{Seconds: sec, Nseconds: nsec}, nil
}

// encodeFattr3 writes the full fattr3 attribute struct (RFC 1813 §2.6).
func encodeFattr3(buf *bytes.Buffer, a vfs.Attr) {
	_ = internalxdr.WriteUint32(buf, uint32(a.Type))
	_ = internalxdr.WriteUint32(buf, a.Mode)
	_ = internalxdr.WriteUint32(buf, a.Nlink)
	_ = internalxdr.WriteUint32(buf, a.UID)
	_ = internalxdr.WriteUint32(buf, a.GID)
	_ = internalxdr.WriteUint64(buf, a.Size)
	_ = internalxdr.WriteUint64(buf, a.Used)
	_ = internalxdr.WriteUint32(buf, a.Rdev.Major)
	_ = internalxdr.WriteUint32(buf, a.Rdev.Minor)
	_ = internalxdr.WriteUint64(buf, a.Fsid)
	_ = internalxdr.WriteUint64(buf, a.FileID)
	encodeTime(buf, a.Atime)
	encodeTime(buf, a.Mtime)
	encodeTime(buf, a.Ctime)
}

// encodePostOpAttr writes a post_op_attr: present flag then, if present, a
// full fattr3. A nil attr encodes as absent.
func encodePostOpAttr(buf *bytes.Buffer, a *vfs.Attr) {
	_ = internalxdr.WriteBool(buf, a != nil)
	if a != nil {
		encodeFattr3(buf, *a)
	}
}

// encodeWccAttr writes a pre_op_attr (wcc_attr): present flag then, if
// present, {size, mtime, ctime}.
func encodeWccAttr(buf *bytes.Buffer, a *vfs.WccAttr) {
	_ = internalxdr.WriteBool(buf, a != nil)
	if a != nil {
		_ = internalxdr.WriteUint64(buf, a.Size)
		encodeTime(buf, a.Mtime)
		encodeTime(buf, a.Ctime)
	}
}

// encodeWccData writes a wcc_data {pre_op_attr, post_op_attr}, invariant I4:
// every mutating reply carries one of these per touched directory, success
// or failure.
func encodeWccData(buf *bytes.Buffer, pre *vfs.WccAttr, post *vfs.Attr) {
	encodeWccAttr(buf, pre)
	encodePostOpAttr(buf, post)
}

func wccAttrOf(a vfs.Attr) *vfs.WccAttr {
	return &vfs.WccAttr{Size: a.Size, Mtime: a.Mtime, Ctime: a.Ctime}
}

// decodeSattr3 reads an sattr3 (RFC 1813 §2.6): every field is an optional
// union, so each is preceded by its own present flag.
func decodeSattr3(r io.Reader) (vfs.SetAttr, error) {
	var sattr vfs.SetAttr

	if present, err := internalxdr.DecodeBool(r); err != nil {
		return sattr, err
	} else if present {
		v, err := internalxdr.DecodeUint32(r)
		if err != nil {
			return sattr, err
		}
		sattr.Mode = &v
	}
	if present, err := internalxdr.DecodeBool(r); err != nil {
		return sattr, err
	} else if present {
		v, err := internalxdr.DecodeUint32(r)
		if err != nil {
			return sattr, err
		}
		sattr.UID = &v
	}
	if present, err := internalxdr.DecodeBool(r); err != nil {
		return sattr, err
	} else if present {
		v, err := internalxdr.DecodeUint32(r)
		if err != nil {
			return sattr, err
		}
		sattr.GID = &v
	}
	if present, err := internalxdr.DecodeBool(r); err != nil {
		return sattr, err
	} else if present {
		v, err := internalxdr.DecodeUint64(r)
		if err != nil {
			return sattr, err
		}
		sattr.Size = &v
	}

	atimeHow, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return sattr, err
	}
	sattr.AtimeSet = vfs.SetableTime(atimeHow)
	if sattr.AtimeSet == vfs.TimeSetToClient {
		t, err := decodeTime(r)
		if err != nil {
			return sattr, err
		}
		sattr.Atime = t
	}

	mtimeHow, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return sattr, err
	}
	sattr.MtimeSet = vfs.SetableTime(mtimeHow)
	if sattr.MtimeSet == vfs.TimeSetToClient {
		t, err := decodeTime(r)
		if err != nil {
			return sattr, err
		}
		sattr.Mtime = t
	}

	return sattr, nil
}

func decodeSpecdata3(r io.Reader) (vfs.SpecData, error) {
	major, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return vfs.SpecData{}, err
	}
	minor, err := internalxdr.DecodeUint32(r)
	if err != nil {
		return vfs.SpecData{}, err
	}
	return vfs.SpecData{Major: major, Minor: minor}, nil
}
