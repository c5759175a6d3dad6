package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/control"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/image"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/lifecycle"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/log"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/loader"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/metrics"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plctypes"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plugin"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/runtimeconfig"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/watchdog"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the PLC runtime daemon in the foreground",
	RunE:  runDaemon,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "/etc/plcruntime/config.yaml", "path to the daemon's YAML configuration")
}

// logFuncFor adapts a component logger into the func(format string,
// args ...any) callback shape every package in the runtime accepts, so a
// single zerolog sink backs every subsystem's log lines.
func logFuncFor(component string, level zerolog.Level) func(string, ...any) {
	logger := log.WithComponent(component)
	return func(format string, args ...any) {
		logger.WithLevel(level).Msg(fmt.Sprintf(format, args...))
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := runtimeconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: true,
		SocketPath: cfg.LogSocketPath,
	})
	defer log.StopTransport()
	log.Info("plcruntimed starting")

	tables := image.New()

	driver := plugin.NewDriver(tables, loader.StdlibOpener{})
	driver.LogInfo = plugin.LogFunc(logFuncFor("plugin", zerolog.InfoLevel))
	driver.LogDebug = plugin.LogFunc(logFuncFor("plugin", zerolog.DebugLevel))
	driver.LogWarn = plugin.LogFunc(logFuncFor("plugin", zerolog.WarnLevel))
	driver.LogError = plugin.LogFunc(logFuncFor("plugin", zerolog.ErrorLevel))

	defaultPluginConfigPath := cfg.PluginConfigPath + ".default"
	if err := driver.LoadConfig(cfg.PluginConfigPath, defaultPluginConfigPath); err != nil {
		log.Error(fmt.Sprintf("loading plugin configuration: %v", err))
	}
	if err := driver.Init(); err != nil {
		log.Error(fmt.Sprintf("initializing plugins: %v", err))
	}
	if err := driver.Start(); err != nil {
		log.Error(fmt.Sprintf("starting plugins: %v", err))
	}

	var heartbeat atomic.Int64
	mgr := lifecycle.NewManager(cfg.BuildDir, loader.StdlibOpener{}, tables, driver, &heartbeat)
	mgr.LogInfo = lifecycle.LogFunc(logFuncFor("lifecycle", zerolog.InfoLevel))
	mgr.LogError = lifecycle.LogFunc(logFuncFor("lifecycle", zerolog.ErrorLevel))
	defer mgr.Cleanup()

	wd := watchdog.New(&heartbeat, func() bool { return mgr.State() == plctypes.Running })
	wd.LogInfo = watchdog.LogFunc(logFuncFor("watchdog", zerolog.InfoLevel))

	controlServer := &control.Server{
		SocketPath: cfg.ControlSocketPath,
		Manager:    mgr,
		LogInfo:    control.LogFunc(logFuncFor("control", zerolog.InfoLevel)),
		LogDebug:   control.LogFunc(logFuncFor("control", zerolog.DebugLevel)),
		LogError:   control.LogFunc(logFuncFor("control", zerolog.ErrorLevel)),
	}

	collector := metrics.NewCollector(mgr, driver, &heartbeat)
	collector.Start()
	defer collector.Stop()

	health := &metrics.HealthSource{
		Manager:   mgr,
		Driver:    driver,
		Heartbeat: &heartbeat,
		StartTime: time.Now(),
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsMux.Handle("/health", health.HealthHandler())
	metricsMux.Handle("/ready", health.ReadyHandler())
	metricsMux.Handle("/live", health.LivenessHandler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(fmt.Sprintf("metrics server: %v", err))
		}
	}()

	stopWatchdog := make(chan struct{})
	go wd.Run(stopWatchdog)

	stopControl := make(chan struct{})
	controlErrCh := make(chan error, 1)
	go func() {
		if err := controlServer.Serve(stopControl); err != nil {
			controlErrCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("received shutdown signal")
	case err := <-controlErrCh:
		log.Error(fmt.Sprintf("control socket error: %v", err))
	}

	close(stopControl)
	close(stopWatchdog)
	mgr.SetStopped()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)

	driver.Destroy()
	log.Info("plcruntimed stopped")
	return nil
}
