package supervisor

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/config"
)

// Status is the supervisor's view of the node process, suitable for
// `status` text output or JSON mode.
type Status struct {
	Running      bool    `json:"running"`
	PID          int     `json:"pid,omitempty"`
	UptimeSecs   int64   `json:"uptime_seconds,omitempty"`
	RSSMB        uint64  `json:"rss_mb,omitempty"`
	SyncProgress float64 `json:"sync_progress,omitempty"`
	TipSlot      uint64  `json:"tip_slot,omitempty"`
	TipEpoch     uint32  `json:"tip_epoch,omitempty"`
}

// Query builds a full Status snapshot: PID-file liveness, process resource
// usage read from /proc, and — if a CLI binary was configured — chain-tip
// progress read by querying the node's local socket. CLI failures are
// swallowed: sync/tip fields are simply omitted rather than failing the
// whole status call, matching every other caller that treats the node's
// query path as best-effort diagnostics, not a source of truth.
func (s *Supervisor) Query() (*Status, error) {
	paths := s.cfg.Paths()
	pid, err := readPID(paths.NodePID)
	if err != nil {
		return &Status{Running: false}, nil
	}
	if !processExists(pid) {
		removePID(paths.NodePID)
		return &Status{Running: false}, nil
	}

	status := &Status{Running: true, PID: pid}
	status.UptimeSecs = processUptimeSeconds(pid)
	status.RSSMB = processRSSMB(pid)

	if s.cliBinary != "" {
		if progress, slot, epoch, err := s.queryTip(); err == nil {
			status.SyncProgress = progress
			status.TipSlot = slot
			status.TipEpoch = epoch
		}
	}

	return status, nil
}

// clockTicksPerSecond is sysconf(_SC_CLK_TCK) on every Linux platform this
// orchestrator targets; it is not exposed to cgo-free Go without an extra
// dependency, and has been 100 on every architecture Linux runs on since
// the mid-1990s.
const clockTicksPerSecond = 100

// processUptimeSeconds derives a process's age from the 22nd
// whitespace-separated field of /proc/{pid}/stat (process start time, in
// clock ticks since boot) against the system's own uptime from
// /proc/uptime. Returns 0 if either file is unreadable or malformed —
// platforms without /proc (non-Linux) simply report no uptime rather than
// failing the status call.
func processUptimeSeconds(pid int) int64 {
	statData, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return 0
	}
	fields := splitStatFields(string(statData))
	if len(fields) < 22 {
		return 0
	}
	startTicks, err := strconv.ParseInt(fields[21], 10, 64)
	if err != nil {
		return 0
	}

	uptimeData, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return 0
	}
	uptimeFields := strings.Fields(string(uptimeData))
	if len(uptimeFields) < 1 {
		return 0
	}
	systemUptime, err := strconv.ParseFloat(uptimeFields[0], 64)
	if err != nil {
		return 0
	}

	startSeconds := float64(startTicks) / clockTicksPerSecond
	age := systemUptime - startSeconds
	if age < 0 {
		return 0
	}
	return int64(age)
}

// splitStatFields splits a /proc/{pid}/stat line on whitespace, taking
// care that the second field (comm, the executable basename in
// parentheses) may itself contain spaces.
func splitStatFields(line string) []string {
	closeIdx := strings.LastIndexByte(line, ')')
	if closeIdx == -1 {
		return strings.Fields(line)
	}
	open := strings.IndexByte(line, '(')
	if open == -1 || open > closeIdx {
		return strings.Fields(line)
	}
	fields := []string{line[:open-1], line[open+1 : closeIdx]}
	fields = append(fields, strings.Fields(line[closeIdx+1:])...)
	return fields
}

// processRSSMB reads the VmRSS: line of /proc/{pid}/status, reported there
// in kilobytes, and converts it to megabytes.
func processRSSMB(pid int) uint64 {
	data, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/status")
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kb / 1024
	}
	return 0
}

// tipQueryResult mirrors the shape of the node query CLI's JSON tip
// output: a percent string for sync progress, a numeric slot, and a
// numeric epoch.
type tipQueryResult struct {
	SyncProgress string `json:"syncProgress"`
	Slot         uint64 `json:"slot"`
	Epoch        uint32 `json:"epoch"`
}

// queryTip invokes the node's query CLI against the supervised node's
// Unix-domain socket and parses its JSON tip response. This shells out
// rather than speaking the node's wire protocol directly: the CLI is the
// only documented, stable interface to that protocol.
func (s *Supervisor) queryTip() (progress float64, slot uint64, epoch uint32, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	args := []string{"query", "tip", "--socket-path", s.cfg.Node.SocketPath}
	if s.cfg.Network != config.NetworkMainnet {
		args = append(args, "--testnet-magic", strconv.Itoa(s.cfg.Network.Defaults().Magic))
	} else {
		args = append(args, "--mainnet")
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, s.cliBinary, args...)
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, 0, 0, err
	}

	var parsed tipQueryResult
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		return 0, 0, 0, err
	}

	progress, _ = strconv.ParseFloat(strings.TrimSuffix(parsed.SyncProgress, "%"), 64)
	progress = progress / 100
	return progress, parsed.Slot, parsed.Epoch, nil
}
