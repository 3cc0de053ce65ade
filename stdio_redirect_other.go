//go:build !unix

package main

import "os"

// redirectStdIO swaps os.Stdout and os.Stderr for the log file. Output
// written by the runtime itself (panics) is not captured.
func redirectStdIO(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	term := os.Stdout
	os.Stdout = f
	os.Stderr = f
	return term, nil
}
