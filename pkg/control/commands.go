package control

import (
	"fmt"
	"math"
	"strings"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plctypes"
)

// handleCommand dispatches one line of text per handle_unix_socket_commands,
// returning the newline-terminated response to write back.
func (s *Server) handleCommand(command string) string {
	switch {
	case command == "PING":
		s.logf(s.LogDebug, "received PING command")
		return "PING:OK\n"

	case command == "STATUS":
		s.logf(s.LogDebug, "received STATUS command")
		return "STATUS:" + statusName(s.Manager.State()) + "\n"

	case command == "STOP":
		s.logf(s.LogDebug, "received STOP command")
		if s.Manager.SetStopped() {
			return "STOP:OK\n"
		}
		return "STOP:ERROR\n"

	case command == "START":
		s.logf(s.LogDebug, "received START command")
		if s.Manager.State() == plctypes.Running {
			s.logf(s.LogError, "received START command but PLC is already RUNNING")
			return "START:ERROR_ALREADY_RUNNING\n"
		}
		if s.Manager.SetRunning() {
			return "START:OK\n"
		}
		return "START:ERROR\n"

	case command == "STATS":
		s.logf(s.LogDebug, "received STATS command")
		return formatStats(s.Manager.EngineStats())

	case strings.HasPrefix(command, "DEBUG:"):
		s.logf(s.LogDebug, "received DEBUG command")
		data, ok := decodeHexFrame(command[len("DEBUG:"):])
		if !ok {
			return "DEBUG:ERROR_PARSING\n"
		}
		response := processDebugFrame(s.Manager.Handle(), s.Manager.Tick(), data)
		if len(response) == 0 {
			return "DEBUG:ERROR_PROCESSING\n"
		}
		return "DEBUG:" + encodeHexFrame(response) + "\n"

	default:
		s.logf(s.LogError, "unknown command received: %s", command)
		return "COMMAND:ERROR\n"
	}
}

func statusName(state plctypes.LifecycleState) string {
	switch state {
	case plctypes.Init:
		return "INIT"
	case plctypes.Running:
		return "RUNNING"
	case plctypes.Stopped:
		return "STOPPED"
	case plctypes.Error:
		return "ERROR"
	case plctypes.Empty:
		return "EMPTY"
	default:
		return "UNKNOWN"
	}
}

// formatStats renders a timing snapshot as the legacy STATS:{...} JSON body,
// per format_timing_stats_response's exact field order and its all-null,
// all-zero shape when no cycle has completed.
func formatStats(stats plctypes.TimingStats) string {
	if !stats.Valid() {
		return "STATS:{" +
			`"scan_count":0,` +
			`"scan_time_min":null,` +
			`"scan_time_max":null,` +
			`"scan_time_avg":null,` +
			`"cycle_time_min":null,` +
			`"cycle_time_max":null,` +
			`"cycle_time_avg":null,` +
			`"cycle_latency_min":null,` +
			`"cycle_latency_max":null,` +
			`"cycle_latency_avg":null,` +
			`"overruns":0` +
			"}\n"
	}

	return fmt.Sprintf("STATS:{"+
		`"scan_count":%d,`+
		`"scan_time_min":%d,`+
		`"scan_time_max":%d,`+
		`"scan_time_avg":%d,`+
		`"cycle_time_min":%d,`+
		`"cycle_time_max":%d,`+
		`"cycle_time_avg":%d,`+
		`"cycle_latency_min":%d,`+
		`"cycle_latency_max":%d,`+
		`"cycle_latency_avg":%d,`+
		`"overruns":%d}`+"\n",
		stats.ScanCount,
		round(stats.ScanTimeMinUs), round(stats.ScanTimeMaxUs), round(stats.ScanTimeAvgUs),
		round(stats.CycleTimeMinUs), round(stats.CycleTimeMaxUs), round(stats.CycleTimeAvgUs),
		round(stats.CycleLatencyMinUs), round(stats.CycleLatencyMaxUs), round(stats.CycleLatencyAvgUs),
		stats.Overruns)
}

func round(v float64) int64 {
	return int64(math.Round(v))
}
