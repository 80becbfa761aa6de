package storage

import (
	"context"
	"time"
)

// Storage abstracts persistence for installations, tariff snapshots,
// billing period records and the auth tables.
type Storage interface {
	// Installations
	ListInstallations(ctx context.Context) ([]Installation, error)
	GetInstallation(ctx context.Context, id string) (*Installation, error)
	UpsertInstallation(ctx context.Context, inst Installation) error
	DeleteInstallation(ctx context.Context, id string) error

	// Tariff snapshots
	GetTariffSnapshot(ctx context.Context, provider string) (*TariffSnapshot, error)
	SaveTariffSnapshot(ctx context.Context, snap TariffSnapshot) error

	// Period records. SavePeriodRecord replaces the slot's occupant.
	GetPeriodRecord(ctx context.Context, installationID, slot string) (*PeriodRecord, error)
	SavePeriodRecord(ctx context.Context, rec PeriodRecord) error

	// Estimator state
	GetEstimatorState(ctx context.Context, installationID string) (*EstimatorState, error)
	SaveEstimatorState(ctx context.Context, state EstimatorState) error

	// Settings
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Users
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]User, error)

	// Tokens
	CreateToken(ctx context.Context, token Token) error
	GetToken(ctx context.Context, id string) (*Token, error)
	GetTokenByHash(ctx context.Context, hash string) (*Token, error)
	ListTokens(ctx context.Context, userID string) ([]Token, error)
	DeleteToken(ctx context.Context, id string) error
	UpdateTokenLastUsed(ctx context.Context, id string) error

	// Casbin rules
	LoadCasbinRules(ctx context.Context) ([]CasbinRule, error)
	AddCasbinRule(ctx context.Context, rule CasbinRule) error
	RemoveCasbinRule(ctx context.Context, rule CasbinRule) error

	// Email config
	GetEmailConfig(ctx context.Context) (*EmailConfig, error)
	SaveEmailConfig(ctx context.Context, config EmailConfig) error

	// Background job coordination
	AcquireAdvisoryLock(ctx context.Context, key int64) (bool, error)
	ReleaseAdvisoryLock(ctx context.Context, key int64) (bool, error)
	UpdateScheduledJob(ctx context.Context, name string, started time.Time, dur time.Duration, success bool, errMsg string) error

	Ping(ctx context.Context) error
	Close() error
}
