/*
Package log provides structured logging for the runtime using zerolog.

Init configures a package-level Logger from a Config (level, JSON vs.
console output, and destination writer). Component loggers are created with
WithComponent for tagging records from a particular subsystem (scan,
control, plugin, watchdog) without threading a logger through every call.

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		SocketPath: "/run/runtime/plc_log.socket",
	})
	log.Info("runtime starting")
	scanLog := log.WithComponent("scan")
	scanLog.Warn().Msg("failed to elevate scan thread priority")

When Config.SocketPath is set, Init also installs a zerolog.Hook (see
transport.go) that mirrors every record, reformatted as the minimal
{"timestamp","level","message"} JSON object §6 specifies, into a
1024-entry ring buffer. A drain goroutine owns the connection to that
socket, flushing the ring and reconnecting with backoff whenever the peer
is unreachable; a missing or down log collector is never fatal to the
runtime. The watchdog's own failure line bypasses this façade entirely, by
direct requirement (§4.7.2): it writes straight to stderr so a stuck logger
can't also silence the one message that says the process is about to die.
*/
package log
