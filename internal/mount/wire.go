package mount

import (
	"bytes"
	"fmt"

	xdr "github.com/rasky/go-xdr/xdr2"

	internalxdr "github.com/lunixbochs/gonfsd/internal/xdr"
)

// dirpathRequest is the wire shape shared by MNT and UMNT: a single
// variable-length string naming the export path the client wants.
// Decoded with the reflection-based rasky/go-xdr marshaler, the way the
// teacher decodes every simple fixed-shape request.
type dirpathRequest struct {
	DirPath string
}

func decodeDirpathRequest(data []byte) (string, error) {
	var req dirpathRequest
	if _, err := xdr.Unmarshal(bytes.NewReader(data), &req); err != nil {
		return "", fmt.Errorf("decode dirpath request: %w", err)
	}
	return req.DirPath, nil
}

// encodeMntReply serializes a mountres3 reply: the status, and, only on
// StatusOK, the opaque root file handle followed by the list of supported
// auth flavors.
func encodeMntReply(status Status, fh []byte, authFlavors []uint32) []byte {
	var buf bytes.Buffer
	_ = internalxdr.WriteUint32(&buf, uint32(status))
	if status != StatusOK {
		return buf.Bytes()
	}
	_ = internalxdr.WriteOpaque(&buf, fh)
	_ = internalxdr.WriteUint32(&buf, uint32(len(authFlavors)))
	for _, flavor := range authFlavors {
		_ = internalxdr.WriteUint32(&buf, flavor)
	}
	return buf.Bytes()
}

// encodeExportList serializes the exports result: one exportnode record
// {dirpath, groups: empty, next: none} followed by the list terminator,
// mirroring the mountlist/exportlist optional-linked-list shape PORTMAP's
// DUMP uses.
func encodeExportList(exportName string) []byte {
	var buf bytes.Buffer
	_ = internalxdr.WriteBool(&buf, true) // one entry follows
	_ = internalxdr.WriteString(&buf, exportName)
	_ = internalxdr.WriteBool(&buf, false) // groups: empty list
	_ = internalxdr.WriteBool(&buf, false) // next: no further entries
	return buf.Bytes()
}
