// Package daemon tracks a running 'yr serve' process through a PID file.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PIDFile records the process ID of a running server.
type PIDFile struct {
	Path string
}

// NewPIDFile creates a PIDFile for the given path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{Path: path}
}

// Acquire writes the current PID, failing if another live process holds the
// file. A file left behind by a dead process is taken over.
func (p *PIDFile) Acquire() error {
	if pid, running := p.IsRunning(); running && pid != os.Getpid() {
		return fmt.Errorf("server already running (pid %d)", pid)
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("create PID directory: %w", err)
	}
	return p.WritePID(os.Getpid())
}

// Release removes the file if it still holds the current PID.
func (p *PIDFile) Release() error {
	pid, err := p.Read()
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil || pid != os.Getpid() {
		return err
	}
	return os.Remove(p.Path)
}

// WritePID writes the given PID to the file.
func (p *PIDFile) WritePID(pid int) error {
	return os.WriteFile(p.Path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// Read reads the PID from the file.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file content: %w", err)
	}
	return pid, nil
}
