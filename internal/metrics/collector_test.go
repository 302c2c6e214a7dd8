package metrics

import (
	"testing"
	"time"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpSourceFetch, 10*time.Millisecond)
	c.RecordTiming(OpSourceFetch, 30*time.Millisecond)

	snap := c.Snapshot()
	if snap.SourceFetch == nil {
		t.Fatal("SourceFetch snapshot missing")
	}
	if snap.SourceFetch.Count != 2 {
		t.Errorf("Count = %d, want 2", snap.SourceFetch.Count)
	}
	if snap.SourceFetch.MinTimeMs != 10 || snap.SourceFetch.MaxTimeMs != 30 {
		t.Errorf("min/max = %d/%d, want 10/30", snap.SourceFetch.MinTimeMs, snap.SourceFetch.MaxTimeMs)
	}
	if snap.SourceFetch.AvgTimeMs != 20 {
		t.Errorf("AvgTimeMs = %f, want 20", snap.SourceFetch.AvgTimeMs)
	}
	if snap.SourceFetch.TotalFindings != nil {
		t.Error("timing-only op should not carry finding stats")
	}
}

func TestRecordAgentRun(t *testing.T) {
	c := NewCollector()
	c.RecordAgentRun(OpAgentRun, 100*time.Millisecond, 3)
	c.RecordAgentRun(OpAgentRun, 200*time.Millisecond, 7)

	snap := c.Snapshot()
	if snap.AgentRun == nil {
		t.Fatal("AgentRun snapshot missing")
	}
	if snap.AgentRun.Count != 2 {
		t.Errorf("Count = %d, want 2", snap.AgentRun.Count)
	}
	if snap.AgentRun.TotalFindings == nil || *snap.AgentRun.TotalFindings != 10 {
		t.Fatalf("TotalFindings = %v, want 10", snap.AgentRun.TotalFindings)
	}
	if *snap.AgentRun.MinFindings != 3 || *snap.AgentRun.MaxFindings != 7 {
		t.Errorf("min/max findings = %d/%d, want 3/7", *snap.AgentRun.MinFindings, *snap.AgentRun.MaxFindings)
	}
	if *snap.AgentRun.AvgFindings != 5 {
		t.Errorf("AvgFindings = %f, want 5", *snap.AgentRun.AvgFindings)
	}
}

func TestSnapshotEmptyOps(t *testing.T) {
	snap := NewCollector().Snapshot()
	if snap.AgentRun != nil || snap.LLMGenerate != nil || snap.JobRead != nil {
		t.Error("unrecorded operations should snapshot as nil")
	}
	if snap.UptimeSeconds < 0 {
		t.Errorf("UptimeSeconds = %f", snap.UptimeSeconds)
	}
}
