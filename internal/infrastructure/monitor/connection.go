package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/internal/infrastructure/docstore"
)

// Monitor periodically probes the document store and caches the result
// for the health endpoint.
type Monitor struct {
	store *docstore.Store

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(store *docstore.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		store:    store,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Store
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes the store once and updates the cached status.
func (m *Monitor) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	status := Status{LastCheck: time.Now()}
	if err := m.store.Ping(ctx); err != nil {
		m.logger.Warn("store health check failed", zap.Error(err))
	} else {
		status.Store = true
		status.Users, _ = m.store.Count(ctx, "users")
		status.Tasks, _ = m.store.Count(ctx, "tasks")
	}

	m.mu.Lock()
	wasOnline := m.status.Store
	m.status = status
	m.mu.Unlock()

	if wasOnline != status.Store {
		m.logger.Info("store availability changed", zap.Bool("online", status.Store))
	}
}
