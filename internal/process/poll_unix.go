//go:build unix

package process

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// pollReadable waits up to timeout for fd to become readable or hung up.
// A zero timeout polls without blocking. An error means the descriptor is
// no longer usable (typically closed by Terminate).
func pollReadable(raw syscall.RawConn, timeout time.Duration) (bool, error) {
	var (
		ready   bool
		pollErr error
	)
	ms := int(timeout / time.Millisecond)

	err := raw.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		for {
			n, err := unix.Poll(fds, ms)
			if err == unix.EINTR {
				continue
			}
			if err != nil {
				pollErr = err
				return
			}
			ready = n > 0 && fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0
			return
		}
	})
	if err != nil {
		return false, err
	}
	return ready, pollErr
}
