package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/internal/infrastructure/docstore"
)

const snapshotPrefix = "taskdeck-"

// BackupConfig controls how often store snapshots are taken and how many
// are retained.
type BackupConfig struct {
	Dir      string
	Interval time.Duration
	Keep     int
}

// BackupRunner takes periodic hot snapshots of the document store.
type BackupRunner struct {
	store  *docstore.Store
	logger *zap.Logger
	cron   *cron.Cron
	cfg    BackupConfig
}

func NewBackupRunner(store *docstore.Store, logger *zap.Logger, cfg BackupConfig) *BackupRunner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Keep <= 0 {
		cfg.Keep = 5
	}
	if cfg.Dir == "" {
		cfg.Dir = "./data/backups"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	br := &BackupRunner{
		store:  store,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = br.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := br.Run(ctx); err != nil {
			br.logger.Error("store backup failed", zap.Error(err))
		}
	})

	return br
}

// Start launches the cron scheduler.
func (br *BackupRunner) Start() {
	if br == nil || br.cron == nil {
		return
	}
	br.cron.Start()
	br.logger.Info("backup runner started",
		zap.String("dir", br.cfg.Dir),
		zap.Duration("interval", br.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (br *BackupRunner) Stop(ctx context.Context) {
	if br == nil || br.cron == nil {
		return
	}
	stopCtx := br.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	br.logger.Info("backup runner stopped")
}

// Run takes one snapshot and prunes old ones beyond the retention count.
func (br *BackupRunner) Run(ctx context.Context) error {
	if br == nil || br.store == nil {
		return nil
	}
	if err := os.MkdirAll(br.cfg.Dir, 0o755); err != nil {
		return err
	}

	name := snapshotPrefix + time.Now().UTC().Format("20060102T150405") + ".db"
	path := filepath.Join(br.cfg.Dir, name)
	if err := br.store.Snapshot(ctx, path); err != nil {
		return err
	}
	br.logger.Info("store snapshot written", zap.String("path", path))

	return br.prune()
}

func (br *BackupRunner) prune() error {
	entries, err := filepath.Glob(filepath.Join(br.cfg.Dir, snapshotPrefix+"*.db"))
	if err != nil {
		return err
	}
	if len(entries) <= br.cfg.Keep {
		return nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(entries)
	for _, stale := range entries[:len(entries)-br.cfg.Keep] {
		if err := os.Remove(stale); err != nil {
			return err
		}
		br.logger.Debug("stale snapshot removed", zap.String("path", stale))
	}
	return nil
}
