// Package process stops the browser launched for PDF conversion together
// with the helper processes it forks.
package process

import "errors"

// ErrInvalidPID is returned for PIDs that would target the caller's own
// process group or init.
var ErrInvalidPID = errors.New("invalid pid")

func checkPID(pid int) error {
	if pid <= 1 {
		return ErrInvalidPID
	}
	return nil
}
