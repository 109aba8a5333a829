package supervisor

import (
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// readPID reads a plain integer PID out of path, returning
// orcherrors.KindNodeNotRunning if the file does not exist.
func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, orcherrors.New(orcherrors.KindNodeNotRunning, "supervisor.readPID", "no pid file at "+path)
		}
		return 0, orcherrors.Wrap(orcherrors.KindIO, "supervisor.readPID", "failed to read pid file", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, orcherrors.Wrap(orcherrors.KindNode, "supervisor.readPID", "pid file contains non-numeric data", err)
	}
	return pid, nil
}

func writePID(path string, pid int) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "supervisor.writePID", "failed to write pid file", err)
	}
	return nil
}

func removePID(path string) {
	_ = os.Remove(path)
}

// processExists probes liveness with signal 0, the standard way to check
// for a process without affecting it.
func processExists(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
