// Package session holds the signed-in identity for Tablero and persists it
// across restarts.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tablerohq/tablero/internal/api"
	"github.com/tablerohq/tablero/internal/models"
)

const credentialsFile = "credentials.json"

// Credentials is the persisted identity triple. Loading it on startup
// restores the authenticated state without a network round trip; a stale
// token surfaces as an Unauthenticated-style failure on the first call.
type Credentials struct {
	User     models.User `json:"user"`
	Token    string      `json:"token"`
	SignedIn int64       `json:"signed_in"`
}

// Manager handles the current identity. Safe for concurrent use.
type Manager struct {
	configDir   string
	mu          sync.RWMutex
	credentials *Credentials
}

// NewManager creates a manager rooted at configDir and loads any persisted
// credentials.
func NewManager(configDir string) (*Manager, error) {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	m := &Manager{configDir: configDir}
	_ = m.loadCredentials()
	return m, nil
}

// IsAuthenticated reports whether a credential pair is present.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credentials != nil && m.credentials.Token != ""
}

// User returns the current user, or nil when signed out.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.credentials == nil {
		return nil
	}
	u := m.credentials.User
	return &u
}

// Token returns the current bearer token, or "" when signed out. Handed to
// API clients as their TokenFunc so the token is read at call time.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.credentials == nil {
		return ""
	}
	return m.credentials.Token
}

// Login exchanges credentials with the backend and persists the result.
// Failure counting and form lockout stay with the caller.
func (m *Manager) Login(ctx context.Context, auth *api.AuthClient, email, password string) (*models.User, error) {
	result, err := auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.credentials = &Credentials{
		User:     result.User,
		Token:    result.Token,
		SignedIn: time.Now().Unix(),
	}
	m.mu.Unlock()

	if err := m.saveCredentials(); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}

	u := result.User
	return &u, nil
}

// Logout clears the identity and removes the persisted credentials.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.credentials = nil
	m.mu.Unlock()

	if err := os.Remove(m.credentialsPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// UpdateUser shallow-merges a patch into the current user. Local echo only;
// the backend stays authoritative.
func (m *Manager) UpdateUser(patch models.UserPatch) {
	m.mu.Lock()
	if m.credentials != nil {
		patch.Apply(&m.credentials.User)
	}
	m.mu.Unlock()

	_ = m.saveCredentials()
}

func (m *Manager) credentialsPath() string {
	return filepath.Join(m.configDir, credentialsFile)
}

func (m *Manager) loadCredentials() error {
	data, err := os.ReadFile(m.credentialsPath())
	if err != nil {
		return err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return err
	}

	m.mu.Lock()
	m.credentials = &creds
	m.mu.Unlock()
	return nil
}

func (m *Manager) saveCredentials() error {
	m.mu.RLock()
	creds := m.credentials
	m.mu.RUnlock()

	if creds == nil {
		return nil
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.credentialsPath(), data, 0600)
}
