package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// OnlineFunc reports the number of currently registered sessions.
type OnlineFunc func() int

// HealthMonitoringWorker periodically logs the server process CPU/RAM
// usage together with the number of connected users. Purely an
// observability aid; it never touches the registry's lock beyond the
// snapshot callback.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	online         OnlineFunc
	metricInterval time.Duration
}

func NewHealthMonitoringWorker(log *slog.Logger, online OnlineFunc, metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		online:         online,
		metricInterval: metricInterval,
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			cpu, err := proc.CPUPercent()
			if err != nil {
				w.log.Error("Error while finding process cpu usage", "err", err)
				continue
			}
			ram, err := proc.MemoryPercent()
			if err != nil {
				w.log.Error("Error while finding process ram usage", "err", err)
				continue
			}
			w.log.Info("Health", "cpu_percent", cpu, "ram_percent", ram, "online", w.online())
		}
	}
}
