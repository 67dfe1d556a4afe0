package bot

import (
	"sync"
	"time"
)

// Status is a point-in-time snapshot of the bot's cycle activity, served by
// the dashboard's status and health endpoints.
type Status struct {
	Running         bool   `json:"running"`
	Uptime          string `json:"uptime"`
	LastCycleTime   string `json:"last_cycle_time"`
	LastCycleStatus string `json:"last_cycle_status"`
}

// Monitor tracks when cycles finish and how they went. Safe for concurrent
// use: the orchestrator writes, HTTP handlers read.
type Monitor struct {
	mu              sync.RWMutex
	startTime       time.Time
	lastCycleTime   time.Time
	lastCycleStatus string
}

func NewMonitor() *Monitor {
	return &Monitor{startTime: time.Now()}
}

// CycleFinished records the outcome of the cycle that just ended.
func (m *Monitor) CycleFinished(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCycleTime = time.Now()
	m.lastCycleStatus = status
}

// Snapshot reports the current status. running is passed in by the caller
// because the orchestrator owns the single-flight flag.
func (m *Monitor) Snapshot(running bool) Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		Running:         running,
		Uptime:          time.Since(m.startTime).Round(time.Second).String(),
		LastCycleStatus: m.lastCycleStatus,
	}
	if m.lastCycleStatus == "" {
		s.LastCycleStatus = "never run"
	}
	if !m.lastCycleTime.IsZero() {
		s.LastCycleTime = m.lastCycleTime.Format("2006-01-02 15:04:05")
	}
	return s
}
