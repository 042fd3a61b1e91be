package browser

import (
	"context"
	"testing"
)

func TestShouldBlock(t *testing.T) {
	set := blockSet([]string{"Images", " fonts ", "xhr"})
	tests := []struct {
		resType string
		want    bool
	}{
		{"Image", true},
		{"Font", true},
		{"Stylesheet", false},
		{"Media", false},
		{"XHR", true},
		{"Document", false},
	}
	for _, tt := range tests {
		if got := shouldBlock(set, tt.resType); got != tt.want {
			t.Errorf("shouldBlock(%q) = %v, want %v", tt.resType, got, tt.want)
		}
	}
}

func TestSignalString(t *testing.T) {
	for sig, want := range map[Signal]string{
		DOMContentLoaded: "dom-content-loaded",
		Loaded:           "load",
		Navigated:        "navigated",
		Signal(9):        "signal(9)",
	} {
		if got := sig.String(); got != want {
			t.Errorf("%d: got %q, want %q", int(sig), got, want)
		}
	}
}

func TestManager_ClosedAndUnstarted(t *testing.T) {
	m := NewManager(Config{})
	if m.Browser() != nil {
		t.Fatal("browser before Start")
	}
	if _, err := OpenTab(context.Background(), m); err == nil {
		t.Error("OpenTab without a browser: want error")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := m.Start(context.Background()); err == nil {
		t.Error("Start after Close: want error")
	}
}
