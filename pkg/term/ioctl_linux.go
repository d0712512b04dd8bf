//go:build linux

package term

import "golang.org/x/sys/unix"

const (
	ioctlGetTermios = unix.TCGETS
	// TCSETSF drains pending output and discards unread input before applying.
	ioctlSetTermios = unix.TCSETSF
)
