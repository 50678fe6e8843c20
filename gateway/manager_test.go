package gateway

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testKey = "sk-test-0123456789abcdef"

func TestStartConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     StartConfig
		wantErr string
	}{
		{"anthropic ok", StartConfig{Provider: "anthropic", APIKey: testKey}, ""},
		{"openai ok", StartConfig{Provider: "openai", APIKey: testKey}, ""},
		{"bad provider", StartConfig{Provider: "gemini", APIKey: testKey}, "invalid provider"},
		{"short key", StartConfig{Provider: "anthropic", APIKey: "short"}, "at least 16"},
		{"whitespace key", StartConfig{Provider: "anthropic", APIKey: strings.Repeat(" ", 32)}, "at least 16"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestManagerNotRunning(t *testing.T) {
	m := NewManager(t.TempDir(), []string{"sleep", "30"}, "http://127.0.0.1:18789")

	st := m.Status("alice")
	if st.Running {
		t.Fatal("fresh manager reports running")
	}
	if err := m.Stop("alice"); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop = %v, want ErrNotRunning", err)
	}
	if _, err := m.Token("alice"); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Token = %v, want ErrNotRunning", err)
	}
}

func TestManagerLifecycle(t *testing.T) {
	stateDir := t.TempDir()
	m := NewManager(stateDir, []string{"sleep", "30"}, "http://127.0.0.1:18789")

	cfg := StartConfig{Provider: "anthropic", APIKey: testKey, Model: "claude-sonnet-4"}
	if err := m.Start("alice", cfg); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Start("bob", cfg); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start = %v, want ErrAlreadyRunning", err)
	}

	if _, err := os.Stat(filepath.Join(stateDir, "gateway.json")); err != nil {
		t.Errorf("gateway.json not written: %v", err)
	}

	st := m.Status("bob")
	if !st.Running || st.Provider != "anthropic" || st.OwnerUserID != "alice" {
		t.Errorf("Status for non-owner = %+v", st)
	}
	if st.IsOwner {
		t.Error("non-owner marked as owner")
	}
	if !m.Status("alice").IsOwner {
		t.Error("owner not marked as owner")
	}

	if _, err := m.Token("bob"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Token for non-owner = %v, want ErrNotOwner", err)
	}
	tok, err := m.Token("alice")
	if err != nil || len(tok) != 48 {
		t.Errorf("owner Token = %q, %v", tok, err)
	}

	if err := m.Stop("bob"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Stop by non-owner = %v, want ErrNotOwner", err)
	}
	if err := m.Stop("alice"); err != nil {
		t.Fatalf("owner Stop: %v", err)
	}

	// the reaper clears state asynchronously after the kill
	deadline := time.Now().Add(3 * time.Second)
	for m.Status("alice").Running {
		if time.Now().After(deadline) {
			t.Fatal("gateway still reported running after Stop")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	m := NewManager(t.TempDir(), []string{"sleep", "30"}, "http://127.0.0.1:18789")
	if err := m.Start("alice", StartConfig{Provider: "nope", APIKey: testKey}); err == nil {
		t.Fatal("Start with bad provider succeeded")
	}
	if m.Status("alice").Running {
		t.Error("manager running after rejected Start")
	}
}
