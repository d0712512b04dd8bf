//go:build linux || darwin

package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"reflect"
	"strings"
	"syscall"
	"testing"
	"time"

	expect "github.com/Netflix/go-expect"
	cpty "github.com/creack/pty"
	"github.com/hinshun/vt10x"
	xterm "golang.org/x/term"

	"arc/pkg/editor"
	"arc/pkg/testutils"
)

const (
	eraseScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
)

func frame(rows int) string {
	return eraseScreen + cursorHome + strings.Repeat("~\r\n", rows) + cursorHome
}

// newConsole returns a console whose terminal reports the given size, with
// everything the child prints mirrored into an 80x24 vt10x screen.
func newConsole(t *testing.T, rows, cols int) (*expect.Console, vt10x.Terminal) {
	t.Helper()
	vt := vt10x.New(vt10x.WithSize(80, 24))

	c, err := expect.NewConsole(
		expect.WithStdout(vt),
		expect.WithDefaultTimeout(5*time.Second),
	)
	if err != nil {
		if testutils.PTYUnavailable(err) {
			t.Skipf("PTY unavailable: %v", err)
		}
		t.Fatalf("NewConsole() failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	size := &cpty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}
	if err := cpty.Setsize(c.Tty(), size); err != nil {
		t.Fatalf("Setsize() failed: %v", err)
	}
	return c, vt
}

func startChild(t *testing.T, c *expect.Console) *exec.Cmd {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("Executable() failed: %v", err)
	}

	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), childEnv+"=1", "HOME="+t.TempDir())
	cmd.Stdin = c.Tty()
	cmd.Stdout = c.Tty()
	cmd.Stderr = c.Tty()

	if err := cmd.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() {
		if cmd.ProcessState == nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	})
	return cmd
}

func ttyState(t *testing.T, c *expect.Console) *xterm.State {
	t.Helper()
	state, err := xterm.GetState(int(c.Tty().Fd()))
	if err != nil {
		t.Fatalf("GetState() failed: %v", err)
	}
	return state
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func TestEndToEnd_DrawsAndQuits(t *testing.T) {
	c, vt := newConsole(t, 24, 80)
	before := ttyState(t, c)
	cmd := startChild(t, c)

	if _, err := c.ExpectString(frame(24)); err != nil {
		t.Fatalf("Expected a 24-row frame: %v", err)
	}

	// String takes the emulator lock itself.
	screen := vt.String()
	tildes := 0
	for _, line := range strings.Split(screen, "\n") {
		if strings.TrimSpace(line) == "~" {
			tildes++
		}
	}
	// The CR LF after the last row scrolls the screen by one line.
	if tildes < 23 || tildes > 24 {
		t.Errorf("Expected a column of placeholders, got %d:\n%s", tildes, screen)
	}

	if _, err := c.Send(string([]byte{editor.QuitKey})); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if _, err := c.ExpectString(eraseScreen + cursorHome); err != nil {
		t.Fatalf("Expected screen clear on quit: %v", err)
	}

	if code := exitCode(cmd.Wait()); code != 0 {
		t.Errorf("exit status = %d, want 0", code)
	}
	if after := ttyState(t, c); !reflect.DeepEqual(before, after) {
		t.Error("Terminal mode not restored after quit")
	}
}

func TestEndToEnd_OtherKeysRepaint(t *testing.T) {
	c, _ := newConsole(t, 5, 20)
	cmd := startChild(t, c)

	if _, err := c.ExpectString(frame(5)); err != nil {
		t.Fatalf("Expected first frame: %v", err)
	}

	// ctrl-c must not kill the program in raw mode.
	for _, key := range []string{"x", "\x03", "\r"} {
		if _, err := c.Send(key); err != nil {
			t.Fatalf("Send(%q) failed: %v", key, err)
		}
		if _, err := c.ExpectString(frame(5)); err != nil {
			t.Fatalf("Expected repaint after %q: %v", key, err)
		}
	}

	if _, err := c.Send(string([]byte{editor.QuitKey})); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if code := exitCode(cmd.Wait()); code != 0 {
		t.Errorf("exit status = %d, want 0", code)
	}
}

func TestEndToEnd_GeometryUnavailable(t *testing.T) {
	c, _ := newConsole(t, 0, 0)
	before := ttyState(t, c)
	cmd := startChild(t, c)

	if _, err := c.ExpectString(eraseScreen + cursorHome); err != nil {
		t.Fatalf("Expected screen clear before the diagnostic: %v", err)
	}
	if _, err := c.ExpectString("getWindowSize"); err != nil {
		t.Fatalf("Expected diagnostic naming the geometry query: %v", err)
	}

	if code := exitCode(cmd.Wait()); code != exitFatal {
		t.Errorf("exit status = %d, want %d", code, exitFatal)
	}
	if after := ttyState(t, c); !reflect.DeepEqual(before, after) {
		t.Error("Terminal mode not restored after fatal error")
	}
}

func TestEndToEnd_SignalsRestore(t *testing.T) {
	tests := []struct {
		name string
		sig  syscall.Signal
	}{
		{name: "SIGTERM", sig: syscall.SIGTERM},
		{name: "SIGHUP", sig: syscall.SIGHUP},
		{name: "SIGINT", sig: syscall.SIGINT},
		{name: "SIGQUIT", sig: syscall.SIGQUIT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newConsole(t, 10, 40)
			before := ttyState(t, c)
			cmd := startChild(t, c)

			if _, err := c.ExpectString(frame(10)); err != nil {
				t.Fatalf("Expected first frame: %v", err)
			}
			if err := cmd.Process.Signal(tt.sig); err != nil {
				t.Fatalf("Signal() failed: %v", err)
			}
			if _, err := c.ExpectString(eraseScreen + cursorHome); err != nil {
				t.Fatalf("Expected screen clear on %v: %v", tt.sig, err)
			}

			if code, want := exitCode(cmd.Wait()), 128+int(tt.sig); code != want {
				t.Errorf("exit status = %d, want %d", code, want)
			}
			if after := ttyState(t, c); !reflect.DeepEqual(before, after) {
				t.Errorf("Terminal mode not restored after %v", tt.sig)
			}
		})
	}
}

func TestEndToEnd_NotATerminal(t *testing.T) {
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("Executable() failed: %v", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), childEnv+"=1", "HOME="+t.TempDir())
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if code := exitCode(cmd.Run()); code != exitFatal {
		t.Errorf("exit status = %d, want %d", code, exitFatal)
	}
	if !strings.HasPrefix(stdout.String(), eraseScreen+cursorHome) {
		t.Errorf("Expected erase-screen on stdout, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "tcgetattr") {
		t.Errorf("Expected tcgetattr diagnostic, got %q", stderr.String())
	}
}
