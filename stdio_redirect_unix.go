//go:build unix

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// redirectStdIO points stdout and stderr at path so panics and stray
// prints from any goroutine land in the log. It returns a handle on the
// original terminal for the control panel to draw on.
func redirectStdIO(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	termFd, err := unix.Dup(int(os.Stdout.Fd()))
	if err != nil {
		return nil, err
	}
	term := os.NewFile(uintptr(termFd), "/dev/tty")

	if err := unix.Dup2(int(f.Fd()), int(os.Stdout.Fd())); err != nil {
		term.Close()
		return nil, err
	}
	if err := unix.Dup2(int(f.Fd()), int(os.Stderr.Fd())); err != nil {
		term.Close()
		return nil, err
	}
	return term, nil
}
