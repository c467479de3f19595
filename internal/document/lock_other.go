//go:build !windows

package document

func isSharingViolation(error) bool { return false }
