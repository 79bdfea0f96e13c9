package mount

import (
	"net"
	"strings"
)

// canonicalizePath validates that dirpath begins with exportName and
// rewrites it to the canonical form the VFS root resolves from: the
// exportName prefix stripped, leading/trailing slashes trimmed, and a
// single leading slash restored. Returns false if dirpath does not carry
// the expected prefix.
func canonicalizePath(dirpath, exportName string) (string, bool) {
	if !strings.HasPrefix(dirpath, exportName) {
		return "", false
	}
	rest := strings.Trim(strings.TrimPrefix(dirpath, exportName), "/")
	return "/" + rest, true
}

// extractClientIP strips the port from a "host:port" network address,
// returning the address unchanged if it does not contain one.
func extractClientIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
