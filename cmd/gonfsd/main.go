// Command gonfsd runs a user-space NFSv3 server: ONC RPC over TCP with
// record marking (RFC 5531), PORTMAP/RPCBIND (RFC 1057 Appendix A), MOUNT
// (RFC 1813 Appendix I), and the NFSv3 procedure set itself (RFC 1813),
// all serving one export backed by an in-memory filesystem.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
