package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"timeturner/internal/clock"
	"timeturner/internal/config"
	"timeturner/internal/daemon"
	"timeturner/internal/history"
	"timeturner/internal/logging"
)

// retentionSweepInterval paces the periodic log and history pruning.
const retentionSweepInterval = 24 * time.Hour

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the timeturner daemon runtime loop and blocks until SIGINT or
// SIGTERM. cfgPath is where configuration updates are persisted and watched.
func Run(cmdCtx context.Context, cfg *config.Config, cfgPath string, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("timeturner-%s.log", runID))
	logHub := logging.NewStreamHub(4096)

	logger, err := logging.New(logging.Options{
		Level:            opts.LogLevel,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
		Stream:           logHub,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update timeturner.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "timeturner-*.log", Exclude: []string{logPath}},
	)

	pidPath := filepath.Join(cfg.Paths.LogDir, "timeturner.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := history.Open(cfg, logger)
	if err != nil {
		logger.Error("open correction history", logging.Error(err))
		return err
	}
	defer store.Close()

	cfgStore := config.NewStore(cfg, cfgPath)
	if err := cfgStore.Watch(signalCtx, logger); err != nil {
		logging.WarnWithContext(logger, "config watcher unavailable", "config_watch_failed",
			logging.Error(err),
			logging.String("path", cfgPath),
			logging.String(logging.FieldErrorHint, "edit the config and restart the daemon instead"),
			logging.String(logging.FieldImpact, "on-disk config changes are ignored until restart"),
		)
	}

	if clock.ChronyActive(signalCtx) {
		logging.WarnWithContext(logger, "chrony is active", "ntp_daemon_active",
			logging.String(logging.FieldErrorHint, "stop chrony or disable auto sync so the two do not fight"),
			logging.String(logging.FieldImpact, "NTP may undo timecode corrections"),
		)
	}

	d, err := daemon.New(cfgStore, store, clock.NewSystemSetter(), logger, logHub)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check the serial device, lock file, and API bind address"),
		)
		return err
	}

	go func() {
		ticker := time.NewTicker(retentionSweepInterval)
		defer ticker.Stop()
		d.RetentionSweep(signalCtx)
		for {
			select {
			case <-signalCtx.Done():
				return
			case <-ticker.C:
				d.RetentionSweep(signalCtx)
			}
		}
	}()

	<-signalCtx.Done()
	logger.Info("timeturner daemon shutting down")
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "timeturner.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
