package testutils

import (
	"errors"
	"strings"
	"syscall"
)

// PTYUnavailable reports whether err means the environment cannot allocate
// pseudo-terminals at all, as opposed to a real failure worth reporting.
func PTYUnavailable(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "ptmx") && !strings.Contains(msg, "pty") {
		return false
	}

	if errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.ENODEV) {
		return true
	}
	if errors.Is(err, syscall.ENOENT) && strings.Contains(msg, "ptmx") {
		return true
	}
	if strings.Contains(msg, "permission denied") || strings.Contains(msg, "operation not permitted") ||
		strings.Contains(msg, "not permitted") || strings.Contains(msg, "no such device") ||
		strings.Contains(msg, "not supported") {
		return true
	}

	return false
}
