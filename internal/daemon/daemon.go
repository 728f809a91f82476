package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"timeturner/internal/api"
	"timeturner/internal/clock"
	"timeturner/internal/config"
	"timeturner/internal/control"
	"timeturner/internal/decoder"
	"timeturner/internal/history"
	"timeturner/internal/logging"
	"timeturner/internal/ltc"
)

// Daemon owns the background services and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Store
	logger  *slog.Logger
	hub     *logging.StreamHub
	store   *history.Store
	state   *ltc.State
	setter  clock.Setter
	ingest  *decoder.Ingestor
	serial  *decoder.Supervisor
	control *control.Controller
	hotplug *decoder.HotplugMonitor
	apiSrv  *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. hub may be nil when
// log streaming is not wanted.
func New(cfg *config.Store, store *history.Store, setter clock.Setter, logger *slog.Logger, hub *logging.StreamHub) (*Daemon, error) {
	if cfg == nil || store == nil || setter == nil || logger == nil {
		return nil, errors.New("daemon requires config, history store, clock setter, and logger")
	}

	snapshot := cfg.Snapshot()
	state := ltc.NewState()
	ingest := decoder.NewIngestor(state, func() int64 {
		return cfg.Snapshot().Sync.HardwareOffsetMS
	}, logger)

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		hub:      hub,
		store:    store,
		state:    state,
		setter:   setter,
		ingest:   ingest,
		serial:   decoder.NewSupervisor(snapshot.Serial.Device, snapshot.Serial.BaudRate, ingest, logger),
		control:  control.NewController(state, cfg, setter, store, logger),
		lockPath: filepath.Join(snapshot.Paths.LogDir, "timeturnerd.lock"),
	}
	d.lock = flock.New(d.lockPath)

	srv, err := newAPIServer(snapshot, d, logger)
	if err != nil {
		return nil, err
	}
	d.apiSrv = srv
	return d, nil
}

// Start acquires the daemon lock and launches the background services.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another timeturner daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	go d.serial.Run(d.ctx)
	go d.control.Run(d.ctx)

	device := d.cfg.Snapshot().Serial.Device
	d.hotplug = decoder.NewHotplugMonitor(device, d.logger, d.serial.NotifyAttach)
	if d.hotplug != nil {
		if err := d.hotplug.Start(d.ctx); err != nil {
			logging.WarnWithContext(d.logger, "hotplug monitor unavailable", "hotplug_start_failed",
				logging.Error(err),
				logging.String(logging.FieldDevice, device),
				logging.String(logging.FieldErrorHint, "udev netlink access requires running on Linux"),
				logging.String(logging.FieldImpact, "device reattach falls back to the retry interval"),
			)
			d.hotplug = nil
		}
	}

	if d.apiSrv != nil {
		if err := d.apiSrv.start(d.ctx); err != nil {
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			_ = d.lock.Unlock()
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("timeturner daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldDevice, device),
	)
	return nil
}

// Stop halts background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.hotplug != nil {
		d.hotplug.Stop()
		d.hotplug = nil
	}
	if d.apiSrv != nil {
		d.apiSrv.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("timeturner daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Sync applies an immediate clock correction from the latest locked frame.
func (d *Daemon) Sync(ctx context.Context) error {
	return d.control.Sync(ctx)
}

// Nudge steps the system clock by amountMS milliseconds (0 = default).
func (d *Daemon) Nudge(ctx context.Context, amountMS int64) error {
	return d.control.Nudge(ctx, amountMS)
}

// History returns the most recent clock adjustments.
func (d *Daemon) History(ctx context.Context, limit int) ([]history.Entry, error) {
	return d.store.Recent(ctx, limit)
}

// LogStream returns the in-memory log hub, if streaming is enabled.
func (d *Daemon) LogStream() *logging.StreamHub {
	return d.hub
}

// Config returns the live configuration store.
func (d *Daemon) Config() *config.Store {
	return d.cfg
}

// RetentionSweep prunes old correction rows and log files once.
func (d *Daemon) RetentionSweep(ctx context.Context) {
	cfg := d.cfg.Snapshot()
	if cfg.Logging.RetentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -cfg.Logging.RetentionDays)
	if removed, err := d.store.Prune(ctx, cutoff); err != nil {
		d.logger.Warn("correction history prune failed", logging.Error(err))
	} else if removed > 0 {
		d.logger.Info("correction history pruned",
			logging.Int64("removed", removed),
			logging.Time("cutoff", cutoff),
		)
	}
	logging.CleanupOldLogs(d.logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     cfg.Paths.LogDir,
		Pattern: "*.log",
	})
}

// Status assembles the live status payload served by the API.
func (d *Daemon) Status(ctx context.Context) api.Status {
	cfg := d.cfg.Snapshot()
	status := api.FromSnapshot(d.state.Snapshot(), cfg, time.Now())
	status.Running = d.running.Load()
	status.PID = os.Getpid()
	status.NTPActive = clock.ChronyActive(ctx)
	status.FramesDecoded = d.ingest.FrameCount()
	status.FramesMalformed = d.ingest.MalformedCount()
	status.Interfaces = localAddresses()
	status.LockFilePath = d.lockPath
	status.HistoryDBPath = d.store.Path()
	return status
}

// localAddresses lists non-loopback unicast addresses so operators can find
// the API from the status output.
func localAddresses() []string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	var out []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.IsLoopback() {
				continue
			}
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				out = append(out, fmt.Sprintf("%s (%s)", ip4.String(), iface.Name))
			}
		}
	}
	return out
}
