//go:build !unix

package process

import (
	"syscall"
	"time"
)

// pollReadable has no readiness primitive for pipes here. It never reports
// ready, so HasMore stays non-blocking and records are read once the process
// has exited; a positive timeout is slept through.
func pollReadable(raw syscall.RawConn, timeout time.Duration) (bool, error) {
	if timeout > 0 {
		time.Sleep(timeout)
	}
	return false, nil
}
