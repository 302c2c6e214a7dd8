// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Finding metrics (only for agent operations)
	TotalFindings int64
	MinFindings   int64
	MaxFindings   int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64

	// Finding stats (nil if not applicable)
	TotalFindings *int64
	AvgFindings   *float64
	MinFindings   *int64
	MaxFindings   *int64
}

// Snapshot represents the full engine statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64
	AgentRun      *OperationSnapshot
	LLMGenerate   *OperationSnapshot
	SourceFetch   *OperationSnapshot
	JobRead       *OperationSnapshot
	JobWrite      *OperationSnapshot
}

// Operation names for the collector.
const (
	OpAgentRun    = "agent_run"
	OpLLMGenerate = "llm_generate"
	OpSourceFetch = "source_fetch"
	OpJobRead     = "job_read"
	OpJobWrite    = "job_write"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{
			MinTime:     time.Duration(math.MaxInt64),
			MinFindings: math.MaxInt64,
		}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordAgentRun records timing and finding volume for one agent pass.
func (c *Collector) RecordAgentRun(op string, duration time.Duration, findings int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}

	m.TotalFindings += findings

	if findings < m.MinFindings {
		m.MinFindings = findings
	}
	if findings > m.MaxFindings {
		m.MaxFindings = findings
	}
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics, includeFindings bool) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}

	if includeFindings {
		total := m.TotalFindings
		avg := float64(m.TotalFindings) / float64(m.Count)
		minF := m.MinFindings
		maxF := m.MaxFindings

		// Reset sentinel values for display
		if minF == math.MaxInt64 {
			minF = 0
		}

		snap.TotalFindings = &total
		snap.AvgFindings = &avg
		snap.MinFindings = &minF
		snap.MaxFindings = &maxF
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		AgentRun:      snapshotOp(c.ops[OpAgentRun], true),
		LLMGenerate:   snapshotOp(c.ops[OpLLMGenerate], false),
		SourceFetch:   snapshotOp(c.ops[OpSourceFetch], false),
		JobRead:       snapshotOp(c.ops[OpJobRead], false),
		JobWrite:      snapshotOp(c.ops[OpJobWrite], false),
	}
}
