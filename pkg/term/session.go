// Package term owns the controlling terminal: it captures the original mode,
// switches to raw mode, restores the original mode on the way out, reports the
// terminal geometry and reads single key bytes.
package term

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/sys/unix"
	xterm "golang.org/x/term"
)

// Session is the terminal state of one program run. Only a Session may change
// the terminal mode.
type Session struct {
	out   io.Writer
	inFd  int
	outFd int

	// original is captured once in Open and never modified.
	original unix.Termios

	keys io.Reader

	rows int
	cols int

	restoreOnce sync.Once
	restoreErr  error
}

// Open captures the current attributes of in so they can be restored later.
// in must be a terminal device. Geometry is queried on out.
func Open(in, out *os.File) (*Session, error) {
	inFd := int(in.Fd())
	if !xterm.IsTerminal(inFd) {
		return nil, &OpError{Op: "tcgetattr", Kind: ErrTerminalQuery, Err: unix.ENOTTY}
	}

	attrs, err := unix.IoctlGetTermios(inFd, ioctlGetTermios)
	if err != nil {
		return nil, &OpError{Op: "tcgetattr", Kind: ErrTerminalQuery, Err: err}
	}
	slog.Debug("term_mode_captured", "fd", inFd)

	return &Session{
		out:      out,
		inFd:     inFd,
		outFd:    int(out.Fd()),
		original: *attrs,
		keys:     fdReader(inFd),
	}, nil
}

// EnableRawMode applies the raw attribute set derived from the captured
// original. Pending output is drained and unread input discarded first.
func (s *Session) EnableRawMode() error {
	raw := makeRaw(s.original)
	if err := unix.IoctlSetTermios(s.inFd, ioctlSetTermios, &raw); err != nil {
		return &OpError{Op: "tcsetattr", Kind: ErrTerminalConfig, Err: err}
	}

	// tcsetattr succeeds when any of the requested changes took effect.
	applied, err := unix.IoctlGetTermios(s.inFd, ioctlGetTermios)
	if err != nil {
		return &OpError{Op: "tcsetattr", Kind: ErrTerminalConfig, Err: err}
	}
	if !isRaw(*applied) {
		return &OpError{Op: "tcsetattr", Kind: ErrTerminalConfig, Err: errPartialApply}
	}

	slog.Info("term_raw_mode_enabled", "fd", s.inFd)
	return nil
}

// Restore re-applies the original attributes. Only the first call touches the
// terminal; later calls return the first call's result.
func (s *Session) Restore() error {
	s.restoreOnce.Do(func() {
		orig := s.original
		if err := unix.IoctlSetTermios(s.inFd, ioctlSetTermios, &orig); err != nil {
			s.restoreErr = &OpError{Op: "tcsetattr", Kind: ErrTerminalConfig, Err: err}
			slog.Error("term_restore_failed", "fd", s.inFd, "error", err)
			return
		}
		slog.Info("term_mode_restored", "fd", s.inFd)
	})
	return s.restoreErr
}

// QueryGeometry asks the terminal for its size in cells. A terminal reporting
// zero columns or rows is treated as having no usable geometry.
func (s *Session) QueryGeometry() (rows, cols int, err error) {
	cols, rows, err = xterm.GetSize(s.outFd)
	if err != nil {
		return 0, 0, &OpError{Op: "getWindowSize", Kind: ErrGeometryUnavailable, Err: err}
	}
	if cols <= 0 || rows <= 0 {
		return 0, 0, &OpError{Op: "getWindowSize", Kind: ErrGeometryUnavailable}
	}

	s.rows, s.cols = rows, cols
	slog.Debug("term_geometry", "rows", rows, "cols", cols)
	return rows, cols, nil
}

// Size returns the geometry from the last successful QueryGeometry.
func (s *Session) Size() (rows, cols int) {
	return s.rows, s.cols
}

// PollKey makes one read attempt. In raw mode the attempt returns after at
// most one read timeout; ok is false when no byte arrived in that window.
func (s *Session) PollKey() (b byte, ok bool, err error) {
	var buf [1]byte
	n, err := s.keys.Read(buf[:])
	if n == 1 {
		return buf[0], true, nil
	}
	if err != nil && !noData(err) {
		return 0, false, &OpError{Op: "read", Kind: ErrRead, Err: err}
	}
	return 0, false, nil
}

// ReadKey polls until a byte arrives, a read fails or ctx is done.
func (s *Session) ReadKey(ctx context.Context) (byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		b, ok, err := s.PollKey()
		if err != nil {
			return 0, err
		}
		if ok {
			return b, nil
		}
	}
}

// Write sends p to the terminal unmodified.
func (s *Session) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

// ClearAndHome erases the screen and moves the cursor to the top-left cell.
func (s *Session) ClearAndHome() error {
	return ClearAndHome(s.out)
}

// ClearAndHome writes the erase-screen and cursor-home sequences to w.
func ClearAndHome(w io.Writer) error {
	_, err := io.WriteString(w, ansi.EraseEntireScreen+ansi.CursorHomePosition)
	return err
}

func noData(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR)
}

// fdReader reads straight from the descriptor so a timed-out raw read is
// reported as zero bytes instead of io.EOF.
type fdReader int

func (fd fdReader) Read(p []byte) (int, error) {
	n, err := unix.Read(int(fd), p)
	if n < 0 {
		n = 0
	}
	return n, err
}
