package dblog

import "testing"

func TestNewNopNeverPanics(t *testing.T) {
	l := NewNop()
	l.Trace("trace")
	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")
	if err := l.Sync(); err != nil {
		t.Fatalf("sync on nop logger returned error: %v", err)
	}
}

func TestNewVerboseLowersThresholdBelowDebug(t *testing.T) {
	l := New(true, false)
	if l == nil {
		t.Fatal("New returned nil")
	}
	if !l.z.Core().Enabled(TraceLevel) {
		t.Fatal("verbose logger does not enable TraceLevel")
	}
	l.Trace("should not panic even though nothing observes it")
}

func TestNewQuietAndVerboseTogetherPrefersVerbose(t *testing.T) {
	l := New(true, true)
	if l == nil {
		t.Fatal("New returned nil")
	}
	if !l.z.Core().Enabled(TraceLevel) {
		t.Fatal("verbose+quiet logger does not enable TraceLevel; quiet won over verbose")
	}
}
