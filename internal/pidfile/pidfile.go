// Package pidfile guards against two janitor processes sweeping from the
// same database.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning is returned by Acquire when a live process owns the file.
var ErrAlreadyRunning = errors.New("another instance is already running")

// PIDFile is a held PID file.
type PIDFile struct {
	path string
	pid  int
}

// Acquire записывает PID текущего процесса в path. A file left behind by a
// dead process is taken over.
func Acquire(path string) (*PIDFile, error) {
	pid := os.Getpid()

	if existing, err := Read(path); err == nil && existing != pid && IsRunning(existing) {
		return nil, fmt.Errorf("%w (pid %d, %s)", ErrAlreadyRunning, existing, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create PID directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write PID file: %w", err)
	}
	return &PIDFile{path: path, pid: pid}, nil
}

// Path returns the file location.
func (p *PIDFile) Path() string {
	return p.path
}

// Release удаляет PID файл, если он всё ещё принадлежит этому процессу.
func (p *PIDFile) Release() error {
	current, err := Read(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err == nil && current != p.pid {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Read читает PID из файла
func Read(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file %s: %w", path, err)
	}
	return pid, nil
}

// IsRunning проверяет что процесс запущен
func IsRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 only checks that the process exists.
	return process.Signal(syscall.Signal(0)) == nil
}
