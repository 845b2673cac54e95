//go:build windows

package daemon

import (
	"os"
	"syscall"
)

// IsRunning reports the PID in the file and whether that process is alive.
func (p *PIDFile) IsRunning() (int, bool) {
	pid, err := p.Read()
	if err != nil {
		return 0, false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, false
	}
	// FindProcess always succeeds on Windows; probe with a zero signal.
	err = proc.Signal(syscall.Signal(0))
	return pid, err == nil
}
