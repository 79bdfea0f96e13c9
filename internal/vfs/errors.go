package vfs

import (
	"errors"
	"fmt"
)

// Status is an RFC 1813 nfsstat3 value. Back-ends return errors that carry
// one of these so the NFSv3 handler layer never has to guess a mapping the
// way a generic error-string back-end would force it to.
type Status uint32

// nfsstat3 values (RFC 1813 §2.6), the full set the contract can produce.
const (
	OK               Status = 0
	ErrPerm          Status = 1
	ErrNoEnt         Status = 2
	ErrIO            Status = 5
	ErrNxio          Status = 6
	ErrAccess        Status = 13
	ErrExist         Status = 17
	ErrXdev          Status = 18
	ErrNodev         Status = 19
	ErrNotDir        Status = 20
	ErrIsDir         Status = 21
	ErrInval         Status = 22
	ErrFbig          Status = 27
	ErrNoSpc         Status = 28
	ErrRofs          Status = 30
	ErrMlink         Status = 31
	ErrNameTooLong   Status = 63
	ErrNotEmpty      Status = 66
	ErrDquot         Status = 69
	ErrStale         Status = 70
	ErrRemote        Status = 71
	ErrBadHandle     Status = 10001
	ErrNotSync       Status = 10002
	ErrBadCookie     Status = 10003
	ErrNotSupp       Status = 10004
	ErrTooSmall      Status = 10005
	ErrServerFault   Status = 10006
	ErrBadType       Status = 10007
	ErrJukebox       Status = 10008
)

// Error pairs an nfsstat3 value with the underlying cause, the same way the
// reference repository's store layer carries a typed code alongside a
// message instead of forcing callers to pattern-match error strings.
type Error struct {
	Status Status
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vfs: %v (nfsstat3 %d)", e.Err, e.Status)
	}
	return fmt.Sprintf("vfs: nfsstat3 %d", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with the given nfsstat3 status. Back-ends use this to
// report any failure; NFSv3 handlers use StatusOf to recover the status.
func NewError(status Status, err error) *Error {
	return &Error{Status: status, Err: err}
}

// StatusOf extracts the nfsstat3 value a back-end call failed with. A nil
// err maps to OK; any error not produced by NewError maps to ErrIO, the
// same fallback the reference repository's error mapper applies to
// untyped errors.
func StatusOf(err error) Status {
	if err == nil {
		return OK
	}
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Status
	}
	return ErrIO
}
