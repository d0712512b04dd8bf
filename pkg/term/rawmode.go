package term

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Poll timeout for a single read in raw mode, in tenths of a second.
const readTimeoutDeciseconds = 1

var errPartialApply = errors.New("raw attributes only partially applied")

// makeRaw derives the raw attribute set from orig. Only the bits that matter
// for raw input are touched; everything else is carried over unchanged.
func makeRaw(orig unix.Termios) unix.Termios {
	raw := orig

	// BRKINT: break sends SIGINT
	// ICRNL: translate CR to NL (ctrl-m)
	// INPCK: parity checking
	// ISTRIP: strip the 8th bit
	// IXON: software flow control (ctrl-s, ctrl-q)
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON

	raw.Oflag &^= unix.OPOST

	raw.Cflag |= unix.CS8

	// IEXTEN covers ctrl-v and ctrl-o, ISIG covers ctrl-c and ctrl-z.
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG

	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = readTimeoutDeciseconds

	return raw
}

// isRaw reports whether t carries every attribute makeRaw sets.
func isRaw(t unix.Termios) bool {
	switch {
	case t.Iflag&(unix.BRKINT|unix.ICRNL|unix.INPCK|unix.ISTRIP|unix.IXON) != 0:
		return false
	case t.Oflag&unix.OPOST != 0:
		return false
	case t.Cflag&unix.CS8 != unix.CS8:
		return false
	case t.Lflag&(unix.ECHO|unix.ICANON|unix.IEXTEN|unix.ISIG) != 0:
		return false
	}
	return t.Cc[unix.VMIN] == 0 && t.Cc[unix.VTIME] == readTimeoutDeciseconds
}
