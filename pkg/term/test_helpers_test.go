package term

import (
	"os"
	"testing"

	"arc/pkg/testutils"

	cpty "github.com/creack/pty"
)

// openPTY returns a master/slave pair, skipping the test when the sandbox
// does not provide pseudo-terminals.
func openPTY(t *testing.T) (ptmx, tty *os.File) {
	t.Helper()
	ptmx, tty, err := cpty.Open()
	if err != nil {
		if testutils.PTYUnavailable(err) {
			t.Skipf("PTY unavailable: %v", err)
		}
		t.Fatalf("Open PTY failed: %v", err)
	}
	t.Cleanup(func() {
		_ = tty.Close()
		_ = ptmx.Close()
	})
	return ptmx, tty
}

func requireSession(t *testing.T) (*Session, *os.File, *os.File) {
	t.Helper()
	ptmx, tty := openPTY(t)
	sess, err := Open(tty, tty)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = sess.Restore() })
	return sess, ptmx, tty
}
