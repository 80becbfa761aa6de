package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation, useful for tests
// and simple single-process deployments.
type MemoryStorage struct {
	mu            sync.RWMutex
	installations map[string]Installation
	snaps         map[string]TariffSnapshot
	periods       map[string]PeriodRecord
	estimators    map[string]EstimatorState
	settings      map[string]string
	users         map[string]User
	tokens        map[string]Token
	emailConfig   *EmailConfig
}

// NewMemory returns an empty MemoryStorage.
func NewMemory() *MemoryStorage {
	return &MemoryStorage{
		installations: make(map[string]Installation),
		snaps:         make(map[string]TariffSnapshot),
		periods:       make(map[string]PeriodRecord),
		estimators:    make(map[string]EstimatorState),
		settings:      make(map[string]string),
		users:         make(map[string]User),
		tokens:        make(map[string]Token),
	}
}

func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) Ping(ctx context.Context) error { return nil }

// Installations

func (m *MemoryStorage) ListInstallations(ctx context.Context) ([]Installation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Installation, 0, len(m.installations))
	for _, inst := range m.installations {
		out = append(out, inst)
	}
	return out, nil
}

func (m *MemoryStorage) GetInstallation(ctx context.Context, id string) (*Installation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.installations[id]
	if !ok {
		return nil, nil
	}
	return &inst, nil
}

func (m *MemoryStorage) UpsertInstallation(ctx context.Context, inst Installation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installations[inst.ID] = inst
	return nil
}

func (m *MemoryStorage) DeleteInstallation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.installations, id)
	return nil
}

// Tariff snapshots

func (m *MemoryStorage) GetTariffSnapshot(ctx context.Context, provider string) (*TariffSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snaps[provider]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStorage) SaveTariffSnapshot(ctx context.Context, snap TariffSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	m.snaps[snap.Provider] = snap
	return nil
}

// Period records

func periodKey(installationID, slot string) string {
	return installationID + ":" + slot
}

func (m *MemoryStorage) GetPeriodRecord(ctx context.Context, installationID, slot string) (*PeriodRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.periods[periodKey(installationID, slot)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryStorage) SavePeriodRecord(ctx context.Context, rec PeriodRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}
	m.periods[periodKey(rec.InstallationID, rec.Slot)] = rec
	return nil
}

// Estimator state

func (m *MemoryStorage) GetEstimatorState(ctx context.Context, installationID string) (*EstimatorState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.estimators[installationID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (m *MemoryStorage) SaveEstimatorState(ctx context.Context, state EstimatorState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state.UpdatedAt = time.Now()
	m.estimators[state.InstallationID] = state
	return nil
}

// Settings

func (m *MemoryStorage) GetSetting(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[key], nil
}

func (m *MemoryStorage) SetSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

// Users

func (m *MemoryStorage) CreateUser(ctx context.Context, user User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MemoryStorage) GetUser(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryStorage) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MemoryStorage) UpdateUser(ctx context.Context, user User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return nil
	}
	m.users[user.ID] = user
	return nil
}

func (m *MemoryStorage) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *MemoryStorage) ListUsers(ctx context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

// Tokens

func (m *MemoryStorage) CreateToken(ctx context.Context, token Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.ID] = token
	return nil
}

func (m *MemoryStorage) GetToken(ctx context.Context, id string) (*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *MemoryStorage) GetTokenByHash(ctx context.Context, hash string) (*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tokens {
		if t.TokenHash == hash {
			return &t, nil
		}
	}
	return nil, nil
}

func (m *MemoryStorage) ListTokens(ctx context.Context, userID string) ([]Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Token
	for _, t := range m.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MemoryStorage) DeleteToken(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, id)
	return nil
}

func (m *MemoryStorage) UpdateTokenLastUsed(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[id]; ok {
		now := time.Now()
		t.LastUsedAt = &now
		m.tokens[id] = t
	}
	return nil
}

func (m *MemoryStorage) LoadCasbinRules(ctx context.Context) ([]CasbinRule, error) {
	// In-memory storage doesn't persist rules; the enforcer starts with
	// default policies.
	return nil, nil
}

func (m *MemoryStorage) AddCasbinRule(ctx context.Context, rule CasbinRule) error {
	return nil
}

func (m *MemoryStorage) RemoveCasbinRule(ctx context.Context, rule CasbinRule) error {
	return nil
}

func (m *MemoryStorage) GetEmailConfig(ctx context.Context) (*EmailConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.emailConfig == nil {
		return nil, nil
	}
	cfg := *m.emailConfig
	return &cfg, nil
}

func (m *MemoryStorage) SaveEmailConfig(ctx context.Context, config EmailConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emailConfig = &config
	return nil
}

func (m *MemoryStorage) AcquireAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	// Single instance always acquires the lock.
	return true, nil
}

func (m *MemoryStorage) ReleaseAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	return true, nil
}

func (m *MemoryStorage) UpdateScheduledJob(ctx context.Context, name string, started time.Time, dur time.Duration, success bool, errMsg string) error {
	return nil
}
