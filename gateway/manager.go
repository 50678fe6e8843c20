// Package gateway starts, stops and fronts the external AI-assistant
// gateway process. One instance per server; the user who started it owns
// it until it stops.
package gateway

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	ErrAlreadyRunning = errors.New("gateway is already running")
	ErrNotRunning     = errors.New("gateway is not running")
	ErrNotOwner       = errors.New("only the owner may control this gateway")
)

// StartConfig is what a user supplies to launch the gateway.
type StartConfig struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
	Model    string `json:"model,omitempty"`
}

var providerEnvKeys = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
}

const minAPIKeyLen = 16

// Validate enforces the request contract before anything is spawned.
func (c StartConfig) Validate() error {
	if _, ok := providerEnvKeys[c.Provider]; !ok {
		return fmt.Errorf("invalid provider %q", c.Provider)
	}
	if len(strings.TrimSpace(c.APIKey)) < minAPIKeyLen {
		return fmt.Errorf("API key must be at least %d characters", minAPIKeyLen)
	}
	return nil
}

// Status is the view any authenticated user may see. The token is owner-only
// and never part of Status.
type Status struct {
	Running       bool      `json:"running"`
	Provider      string    `json:"provider,omitempty"`
	Model         string    `json:"model,omitempty"`
	OwnerUserID   string    `json:"owner_user_id,omitempty"`
	IsOwner       bool      `json:"is_owner"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	UptimeSeconds int64     `json:"uptime_seconds,omitempty"`
}

// Manager supervises a single gateway process.
type Manager struct {
	mu       sync.Mutex
	stateDir string
	command  []string
	baseURL  string

	cmd       *exec.Cmd
	running   bool
	owner     string
	token     string
	provider  string
	model     string
	startedAt time.Time
}

// NewManager builds a manager that runs command (binary plus args) and
// proxies to baseURL. stateDir holds the generated config file.
func NewManager(stateDir string, command []string, baseURL string) *Manager {
	return &Manager{stateDir: stateDir, command: command, baseURL: baseURL}
}

// BaseURL is where the running gateway serves HTTP.
func (m *Manager) BaseURL() string {
	return m.baseURL
}

// Start validates the config, writes the gateway config file, and spawns
// the process with the API key passed through the environment only.
func (m *Manager) Start(userID string, cfg StartConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrAlreadyRunning
	}

	if err := os.MkdirAll(m.stateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	token := newToken()
	fileCfg := map[string]string{"provider": cfg.Provider, "model": cfg.Model}
	data, _ := json.MarshalIndent(fileCfg, "", "  ")
	if err := os.WriteFile(filepath.Join(m.stateDir, "gateway.json"), data, 0o600); err != nil {
		return fmt.Errorf("write gateway config: %w", err)
	}

	cmd := exec.Command(m.command[0], m.command[1:]...)
	cmd.Env = append(os.Environ(),
		providerEnvKeys[cfg.Provider]+"="+cfg.APIKey,
		"GATEWAY_TOKEN="+token,
		"GATEWAY_STATE_DIR="+m.stateDir,
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start gateway process: %w", err)
	}

	m.cmd = cmd
	m.running = true
	m.owner = userID
	m.token = token
	m.provider = cfg.Provider
	m.model = cfg.Model
	m.startedAt = time.Now()
	log.Printf("🚀 Gateway started (pid %d, provider %s) by %s", cmd.Process.Pid, cfg.Provider, userID)

	go m.reap(cmd)
	return nil
}

// reap waits for the process and clears state when it exits, whether we
// stopped it or it died on its own.
func (m *Manager) reap(cmd *exec.Cmd) {
	err := cmd.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd != cmd {
		return // a newer instance took over
	}
	m.running = false
	m.cmd = nil
	m.owner = ""
	m.token = ""
	if err != nil {
		log.Printf("⚠️ Gateway process exited: %v", err)
	} else {
		log.Printf("🛑 Gateway process exited cleanly")
	}
}

// Stop terminates the process. Owner-only.
func (m *Manager) Stop(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return ErrNotRunning
	}
	if userID != m.owner {
		return ErrNotOwner
	}
	if m.cmd != nil && m.cmd.Process != nil {
		if err := m.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("kill gateway process: %w", err)
		}
	}
	return nil
}

// Status reports the gateway state as seen by userID.
func (m *Manager) Status(userID string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return Status{Running: false}
	}
	return Status{
		Running:       true,
		Provider:      m.provider,
		Model:         m.model,
		OwnerUserID:   m.owner,
		IsOwner:       userID != "" && userID == m.owner,
		StartedAt:     m.startedAt,
		UptimeSeconds: int64(time.Since(m.startedAt).Seconds()),
	}
}

// Token returns the gateway access token. Owner-only.
func (m *Manager) Token(userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return "", ErrNotRunning
	}
	if userID != m.owner {
		return "", ErrNotOwner
	}
	return m.token, nil
}

func newToken() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
