package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"arc/pkg/config"
	"arc/pkg/editor"
	"arc/pkg/logging"
	"arc/pkg/term"
	"arc/pkg/version"
)

const (
	exitOK    = 0
	exitFatal = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration; a broken file only costs us the log settings
	cfg, cfgErr := config.Load(config.GetConfigPath())
	if _, err := logging.Init(cfg); err != nil {
		slog.Warn("log_init_failed", "error", err)
	}
	if cfgErr != nil {
		slog.Warn("config_load_failed", "error", cfgErr, "config_path", config.GetConfigPath())
	}
	slog.Info("arc_started", "version", version.Summary(), "platform", version.Platform())

	ctx, stop := notifyTermination(context.Background())
	defer stop()

	return runEditor(ctx, os.Stdin, os.Stdout, os.Stderr)
}

// runEditor drives one terminal session and returns the process exit status.
// Raw mode is released on every path out of this function.
func runEditor(ctx context.Context, in, out *os.File, errOut io.Writer) (code int) {
	sess, err := term.Open(in, out)
	if err != nil {
		return die(out, errOut, err)
	}

	// Registered before raw mode is entered so a failed or partial
	// tcsetattr is still undone.
	defer func() {
		if err := sess.Restore(); err != nil {
			code = die(out, errOut, err)
		}
	}()

	if err := sess.EnableRawMode(); err != nil {
		return die(out, errOut, err)
	}

	rows, cols, err := sess.QueryGeometry()
	if err != nil {
		return die(out, errOut, err)
	}

	ed := editor.New(sess, rows, cols)
	err = ed.Run(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		_ = sess.ClearAndHome()
		status := terminationStatus(ctx)
		slog.Info("arc_terminated", "exit_code", status)
		return status
	default:
		return die(out, errOut, err)
	}
}

// die clears the screen so the diagnostic is readable, reports err and
// returns the fatal exit status.
func die(out, errOut io.Writer, err error) int {
	_ = term.ClearAndHome(out)
	// Output post-processing may be off, so end the line explicitly.
	fmt.Fprintf(errOut, "%v\r\n", err)
	slog.Error("arc_fatal", "error", err)
	return exitFatal
}
