// Package editor is the application loop: it repaints the screen and
// dispatches keys read from the terminal.
package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/x/ansi"
)

// Placeholder drawn at the start of every row with no content.
const Placeholder = '~'

// QuitKey ends the loop: ctrl-q.
const QuitKey byte = 'q' & 0x1f

// Terminal is the part of a terminal session the loop depends on.
type Terminal interface {
	ReadKey(ctx context.Context) (byte, error)
	Write(p []byte) (int, error)
	ClearAndHome() error
}

// Editor draws a screen of rows lines and waits for the quit key.
type Editor struct {
	term Terminal
	rows int
	cols int

	// frame is reused between refreshes.
	frame []byte
}

// New returns an editor for a terminal of the given geometry.
func New(t Terminal, rows, cols int) *Editor {
	return &Editor{
		term: t,
		rows: rows,
		cols: cols,
	}
}

// ProcessKeypress reads one key and acts on it. It reports quit when the key
// was QuitKey, after clearing the screen.
func (e *Editor) ProcessKeypress(ctx context.Context) (quit bool, err error) {
	key, err := e.term.ReadKey(ctx)
	if err != nil {
		return false, err
	}

	switch key {
	case QuitKey:
		if err := e.term.ClearAndHome(); err != nil {
			return false, fmt.Errorf("clear screen: %w", err)
		}
		slog.Info("editor_quit")
		return true, nil
	}
	return false, nil
}

// RefreshScreen repaints the whole screen in a single write.
func (e *Editor) RefreshScreen() error {
	e.frame = e.frame[:0]
	e.frame = append(e.frame, ansi.EraseEntireScreen...)
	e.frame = append(e.frame, ansi.CursorHomePosition...)
	e.frame = e.drawRows(e.frame)
	e.frame = append(e.frame, ansi.CursorHomePosition...)

	if _, err := e.term.Write(e.frame); err != nil {
		return fmt.Errorf("refresh screen: %w", err)
	}
	return nil
}

func (e *Editor) drawRows(buf []byte) []byte {
	for y := 0; y < e.rows; y++ {
		buf = append(buf, Placeholder, '\r', '\n')
	}
	return buf
}

// Run alternates RefreshScreen and ProcessKeypress. It returns nil once the
// quit key was read, or the first error.
func (e *Editor) Run(ctx context.Context) error {
	slog.Debug("editor_run", "rows", e.rows, "cols", e.cols)
	for {
		if err := e.RefreshScreen(); err != nil {
			return err
		}
		quit, err := e.ProcessKeypress(ctx)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}
