package crawler

import "testing"

// TestStateString tests state names.
func TestStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state    State
		want     string
		terminal bool
	}{
		{StateInit, "init", false},
		{StateLoaded, "loaded", false},
		{StateSizeConfigured, "size_configured", false},
		{StateViewConfigured, "view_configured", false},
		{StateScrapingPage, "scraping_page", false},
		{StateDone, "done", true},
		{StateFailed, "failed", true},
		{State(99), "unknown", false},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
		if got := tt.state.Terminal(); got != tt.terminal {
			t.Errorf("State(%d).Terminal() = %v", tt.state, got)
		}
	}
}

// TestDeduplicator tests seeding and recording codes.
func TestDeduplicator(t *testing.T) {
	t.Parallel()

	d := NewDeduplicator(nil)
	if d.Len() != 0 || d.Seen("102210277") {
		t.Fatal("new deduplicator must be empty")
	}

	d.Record("102210277")
	d.Record("102210277")
	if !d.Seen("102210277") || d.Len() != 1 {
		t.Errorf("expected one recorded code, got %d", d.Len())
	}
}
