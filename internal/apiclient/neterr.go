package apiclient

import (
	"errors"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// networkSignatures are lower-cased fragments of transport error messages
// that indicate the upstream could not be reached.
var networkSignatures = []string{
	"failed to fetch",
	"networkerror",
	"network request failed",
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"unexpected eof",
	"tls handshake timeout",
	"i/o timeout",
}

// isNetworkError reports whether err is a transport-level failure.
func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	inner := err
	var uerr *url.Error
	if errors.As(err, &uerr) {
		inner = uerr.Err
	}
	var netErr net.Error
	if errors.As(inner, &netErr) {
		return true
	}
	if errors.Is(inner, io.ErrUnexpectedEOF) || errors.Is(inner, syscall.ECONNREFUSED) || errors.Is(inner, syscall.ECONNRESET) {
		return true
	}
	msg := strings.ToLower(inner.Error())
	for _, sig := range networkSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
