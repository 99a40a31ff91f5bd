package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"skipper/internal/config"
	"skipper/internal/logging"
)

// minFreeBytes is the free-space floor for the data directory. The caches
// are small; running this low signals a disk problem worth surfacing.
const minFreeBytes = 50 << 20

const healthCheckTimeout = 10 * time.Second

// Status classifies a single check outcome.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check is one named environment check and its outcome.
type Check struct {
	Name   string
	Status Status
	Detail string
}

// Result aggregates all preflight checks.
type Result struct {
	Checks []Check
}

// Ok reports whether no check failed. Warnings do not block startup.
func (r *Result) Ok() bool {
	for _, check := range r.Checks {
		if check.Status == StatusFail {
			return false
		}
	}
	return true
}

func (r *Result) add(name string, status Status, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: detail})
}

// HealthChecker probes the classifier API. Optional; pass nil to skip the
// network check (used by commands that must work offline).
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Run executes every preflight check and returns the collected outcomes.
func Run(ctx context.Context, cfg *config.Config, health HealthChecker, logger *slog.Logger) *Result {
	log := logging.NewComponentLogger(logger, "preflight")
	result := &Result{}

	if err := cfg.Validate(); err != nil {
		result.add("config", StatusFail, err.Error())
	} else {
		result.add("config", StatusOK, "configuration valid")
	}

	checkDataDir(result, cfg.Paths.DataDir)

	if health != nil {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()
		if err := health.HealthCheck(checkCtx); err != nil {
			result.add("classifier", StatusFail, err.Error())
		} else {
			result.add("classifier", StatusOK, "classifier API reachable")
		}
	}

	for _, check := range result.Checks {
		if check.Status != StatusOK {
			log.Warn("preflight check not ok",
				logging.String("check", check.Name),
				logging.String("status", string(check.Status)),
				logging.String("detail", check.Detail))
		}
	}
	return result
}

func checkDataDir(result *Result, dir string) {
	if dir == "" {
		result.add("data_dir", StatusFail, "data directory not configured")
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.add("data_dir", StatusFail, fmt.Sprintf("create %s: %v", dir, err))
		return
	}
	if err := unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		result.add("data_dir", StatusFail, fmt.Sprintf("%s not writable: %v", dir, err))
		return
	}
	result.add("data_dir", StatusOK, dir)

	var statfs unix.Statfs_t
	if err := unix.Statfs(dir, &statfs); err != nil {
		result.add("disk_space", StatusWarn, fmt.Sprintf("statfs %s: %v", dir, err))
		return
	}
	free := statfs.Bavail * uint64(statfs.Bsize)
	if free < minFreeBytes {
		result.add("disk_space", StatusWarn, fmt.Sprintf("only %d MiB free under %s", free>>20, dir))
		return
	}
	result.add("disk_space", StatusOK, fmt.Sprintf("%d MiB free", free>>20))
}
