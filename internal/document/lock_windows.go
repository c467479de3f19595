//go:build windows

package document

import (
	"errors"
	"syscall"
)

// Windows reports a document held open by Word as a sharing or lock
// violation rather than access denied.
const (
	errorSharingViolation syscall.Errno = 32
	errorLockViolation    syscall.Errno = 33
)

func isSharingViolation(err error) bool {
	return errors.Is(err, errorSharingViolation) || errors.Is(err, errorLockViolation)
}
